package pty

import "sync"

// FakeBridge is an in-memory Bridge for tests that want to drive the façade
// without spawning a real shell: Start only records the callbacks, Send
// records its bytes (see Sent) and hands them to Script (if set), and tests
// push bytes in directly via Feed.
type FakeBridge struct {
	mu      sync.Mutex
	onData  func([]byte)
	onExit  func()
	sent    [][]byte
	resizes [][2]int
	closed  bool

	// Script, if set, is called synchronously from Send with the bytes the
	// façade wrote, returning bytes to hand back to onData — a scripted
	// echo/prompt fixture for tests.
	Script func(sent []byte) []byte
}

// NewFakeBridge constructs a bridge with no backing process.
func NewFakeBridge() *FakeBridge {
	return &FakeBridge{}
}

func (b *FakeBridge) Start(rows, cols int, onData func([]byte), onExit func()) error {
	b.mu.Lock()
	b.onData = onData
	b.onExit = onExit
	b.mu.Unlock()
	return nil
}

// SimulateExit invokes the registered onExit callback, as if the child
// process had just exited — for tests of ErrPtyClosed handling. Each call
// invokes it again; the fake does not limit it to one call.
func (b *FakeBridge) SimulateExit() {
	b.mu.Lock()
	onExit := b.onExit
	b.mu.Unlock()
	if onExit != nil {
		onExit()
	}
}

// Feed delivers data to the bridge's onData callback as if it had arrived
// from the child process.
func (b *FakeBridge) Feed(data []byte) {
	b.mu.Lock()
	onData := b.onData
	closed := b.closed
	b.mu.Unlock()
	if !closed && onData != nil {
		onData(data)
	}
}

// Sent returns every byte slice passed to Send so far, for assertions.
func (b *FakeBridge) Sent() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.sent))
	copy(out, b.sent)
	return out
}

// Resizes returns every (rows, cols) pair passed to Resize so far.
func (b *FakeBridge) Resizes() [][2]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][2]int, len(b.resizes))
	copy(out, b.resizes)
	return out
}

func (b *FakeBridge) Send(data []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.sent = append(b.sent, cp)
	script := b.Script
	onData := b.onData
	b.mu.Unlock()

	if script != nil {
		if reply := script(cp); reply != nil && onData != nil {
			onData(reply)
		}
	}
	return nil
}

func (b *FakeBridge) Resize(rows, cols int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.resizes = append(b.resizes, [2]int{rows, cols})
	return nil
}

func (b *FakeBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return nil
}
