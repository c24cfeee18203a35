package mterm

import "errors"

// Error kinds the core distinguishes. Compare with errors.Is; internal failures
// are wrapped with fmt.Errorf("%w: ...") at the point of detection.
var (
	// ErrBadEncoding is returned by the UTF-8 codec on a malformed byte sequence.
	// The parser recovers by resetting escape state and dropping the offending byte.
	ErrBadEncoding = errors.New("mterm: bad utf-8 encoding")

	// ErrEscapeMalformed marks a control sequence that does not match the grammar.
	// The parser recovers by returning to GROUND and dropping the buffered sequence.
	ErrEscapeMalformed = errors.New("mterm: malformed escape sequence")

	// ErrPtyStartFailed is fatal for a terminal instance: child spawn or pipe
	// creation failed.
	ErrPtyStartFailed = errors.New("mterm: pty start failed")

	// ErrPtyClosed signals normal EOF from the child, or a broken pipe.
	ErrPtyClosed = errors.New("mterm: pty closed")

	// ErrPtyWriteFailed is returned to the caller of Send; non-fatal to terminal state.
	ErrPtyWriteFailed = errors.New("mterm: pty write failed")

	// ErrInvariantViolated indicates programmer error in row/fragment bookkeeping.
	// Only reachable via a bug; never expected in release use.
	ErrInvariantViolated = errors.New("mterm: invariant violated")
)
