//go:build windows

package mterm

import "github.com/ivymerfe/mterm/pty"

func newPlatformBridge(command string) pty.Bridge {
	return pty.NewWindowsBridge(command)
}
