package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivymerfe/mterm"
)

// Profile is an optional session profile file, the one place in this module
// a YAML config makes sense (the core itself is configured entirely through
// mterm.Option functional options).
type Profile struct {
	ChildCommand  string `yaml:"child_command"`
	Rows          int    `yaml:"rows"`
	Cols          int    `yaml:"cols"`
	ScrollbackCap int    `yaml:"scrollback_cap"`
	TabWidth      int    `yaml:"tab_width"`
}

func defaultProfile() Profile {
	return Profile{
		Rows:          24,
		Cols:          80,
		ScrollbackCap: mterm.DefaultScrollbackCap,
		TabWidth:      8,
	}
}

// loadProfile reads path as a YAML session profile, overlaying it onto the
// defaults. An empty path, or a path that doesn't exist, yields the defaults
// with no error.
func loadProfile(path string) (Profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return Profile{}, err
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("profile: rows and cols must be positive, got %dx%d", p.Rows, p.Cols)
	}
	if p.ScrollbackCap < 0 {
		return fmt.Errorf("profile: scrollback_cap must be non-negative, got %d", p.ScrollbackCap)
	}
	return nil
}

func (p Profile) options() []mterm.Option {
	opts := []mterm.Option{
		mterm.WithSize(p.Rows, p.Cols),
		mterm.WithScrollbackCap(p.ScrollbackCap),
		mterm.WithTabWidth(p.TabWidth),
	}
	if p.ChildCommand != "" {
		opts = append(opts, mterm.WithChildCommand(p.ChildCommand))
	}
	return opts
}
