//go:build !windows

package pty

import (
	"os"
	"os/exec"
	"os/user"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// UnixBridge starts an interactive shell (`-i`, not a login shell) under
// creack/pty, the same package the wider ecosystem reaches for on POSIX
// platforms.
type UnixBridge struct {
	command string

	mu     sync.Mutex
	cmd    *exec.Cmd
	master *os.File
	closed bool
}

// NewUnixBridge constructs an unstarted bridge that spawns the given command
// (via $SHELL -c) in place of the default interactive shell, or that shell
// itself when command is empty.
func NewUnixBridge(command string) *UnixBridge {
	return &UnixBridge{command: command}
}

func (b *UnixBridge) Start(rows, cols int, onData func([]byte), onExit func()) error {
	shell := loginShell()

	var cmd *exec.Cmd
	if b.command != "" {
		cmd = exec.Command(shell, "-c", b.command)
	} else {
		cmd = exec.Command(shell, "-i")
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")

	if u, err := user.Current(); err == nil {
		cmd.Dir = u.HomeDir
	}

	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.cmd = cmd
	b.master = master
	b.mu.Unlock()

	go b.pump(master, onData, onExit)
	return nil
}

// pump is the read-pump goroutine: block on Read until the child exits or
// the PTY is closed out from under it, handing each chunk to onData and
// calling onExit exactly once when Read finally errors out.
func (b *UnixBridge) pump(master *os.File, onData func([]byte), onExit func()) {
	buf := make([]byte, 4096)
	for {
		n, err := master.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onData(chunk)
		}
		if err != nil {
			if onExit != nil {
				onExit()
			}
			return
		}
	}
}

func (b *UnixBridge) Send(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.master == nil {
		return ErrClosed
	}
	_, err := b.master.Write(data)
	return err
}

func (b *UnixBridge) Resize(rows, cols int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.master == nil {
		return ErrClosed
	}
	return pty.Setsize(b.master, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

func (b *UnixBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.cmd != nil && b.cmd.Process != nil {
		b.cmd.Process.Kill()
	}
	if b.master != nil {
		return b.master.Close()
	}
	return nil
}

func loginShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	for _, candidate := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "/bin/sh"
}
