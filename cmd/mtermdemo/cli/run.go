package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivymerfe/mterm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start a session and stream its redrawn view to stdout until the child exits",
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
		sessionLog.Info().Int("rows", profile.Rows).Int("cols", profile.Cols).Msg("session started")

		out := cmd.OutOrStdout()
		var version uint64
		for {
			v, closed := emu.WaitForRedraw(version)
			version = v
			if closed {
				if err := emu.Err(); err != nil {
					sessionLog.Info().Err(err).Msg("session ended")
				} else {
					sessionLog.Info().Msg("session closed")
				}
				return nil
			}
			renderFrame(out, emu.View(profile.Rows, profile.Cols))
		}
	},
}

// renderFrame writes v as a full-screen redraw: clear, home, one line per
// row. It's a minimal stand-in for a real renderer, which would instead walk
// v.Lines[i].Fragments to paint per-run colors and track v.CursorX/Y itself.
func renderFrame(w io.Writer, v mterm.View) {
	fmt.Fprint(w, "\x1b[2J\x1b[H")
	for _, line := range v.Lines {
		fmt.Fprintln(w, string(line.Text))
	}
}
