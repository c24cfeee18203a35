package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivymerfe/mterm"
)

var dumpScrollbackCmd = &cobra.Command{
	Use:   "dump-scrollback",
	Short: "start a session, wait for its first redraw, print one snapshot, and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile(configPath)
		if err != nil {
			return err
		}

		emu := mterm.New(profile.options()...)
		sessionLog := log.With().Str("session_id", emu.SessionID()).Logger()

		if err := emu.Start(); err != nil {
			sessionLog.Error().Err(err).Msg("failed to start session")
			return err
		}
		defer emu.Close()

		emu.WaitForRedraw(0)
		renderFrame(cmd.OutOrStdout(), emu.View(profile.Rows, profile.Cols))
		return nil
	},
}
