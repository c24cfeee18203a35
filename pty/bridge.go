// Package pty implements the PTY bridge (C3): it owns the child shell
// process and shuttles bytes between it and the escape parser, on whichever
// platform the module is built for.
package pty

import "errors"

// ErrClosed is returned by Send/Resize once the bridge has been closed or
// the child process has exited.
var ErrClosed = errors.New("pty: bridge closed")

// Bridge is the platform-independent contract the façade (C7) drives: start
// a shell in a pseudo-terminal of the given size, push bytes to it, resize
// it, and receive its output via a callback. Implementations are
// bridge_unix.go (creack/pty), bridge_windows.go (ConPTY), and
// bridge_fake.go (an in-memory stand-in, for tests that don't want a real shell).
type Bridge interface {
	// Start launches the child process at the given size. onData is invoked
	// from a dedicated read-pump goroutine for every chunk read from the
	// PTY; it must not block for long, since it holds up the next read.
	// onExit is invoked exactly once, after the read pump observes EOF or a
	// broken pipe (normal child exit) or a read error — the one-shot "child
	// exited" signal the façade surfaces to its caller.
	Start(rows, cols int, onData func([]byte), onExit func()) error

	// Send writes bytes to the child's stdin (the PTY master's input side).
	Send(data []byte) error

	// Resize changes the PTY's reported window size.
	Resize(rows, cols int) error

	// Close terminates the child process and releases the PTY.
	Close() error
}
