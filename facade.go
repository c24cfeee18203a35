package mterm

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ivymerfe/mterm/pty"
)

// DefaultScrollStepFraction is the fraction of the viewport's row count used
// as the default line-scroll multiplier for Scroll, carried forward from the
// original renderer's delta scaling (`delta *= floor(0.07 * rows)`).
const DefaultScrollStepFraction = 0.07

// Config is built by Option functions and drives Emulator construction; it
// mirrors §6's configuration surface.
type Config struct {
	ChildCommand  string
	ScrollbackCap int
	TabWidth      int
	DefaultFg     Color
	DefaultBg     Color
	InitialRows   int
	InitialCols   int
	ScrollStep    func(viewportRows int) int
	Bridge        pty.Bridge
}

// Option configures an Emulator during construction.
type Option func(*Config)

// WithSize sets the initial terminal dimensions. Non-positive values fall
// back to 24x80.
func WithSize(rows, cols int) Option {
	return func(c *Config) {
		if rows > 0 {
			c.InitialRows = rows
		}
		if cols > 0 {
			c.InitialCols = cols
		}
	}
}

// WithScrollbackCap overrides DefaultScrollbackCap.
func WithScrollbackCap(n int) Option {
	return func(c *Config) { c.ScrollbackCap = n }
}

// WithTabWidth overrides the default tab width of 8.
func WithTabWidth(n int) Option {
	return func(c *Config) { c.TabWidth = n }
}

// WithDefaultColors sets the foreground/background the emulator starts with.
// They are not used by resets: SGR 0, SGR 39, SGR 49 and a full reset (ESC c)
// return to DefaultForeground and DefaultBackground, not to these values.
func WithDefaultColors(fg, bg Color) Option {
	return func(c *Config) {
		c.DefaultFg = fg
		c.DefaultBg = bg
	}
}

// WithChildCommand overrides the platform default shell.
func WithChildCommand(cmd string) Option {
	return func(c *Config) { c.ChildCommand = cmd }
}

// WithScrollStep overrides the line-scroll multiplier Scroll uses when
// translating a wheel/gesture delta into a line count. It receives the
// viewport's row count and returns the number of lines per unit of delta.
func WithScrollStep(f func(viewportRows int) int) Option {
	return func(c *Config) { c.ScrollStep = f }
}

// WithBridge overrides the platform PTY bridge — tests substitute
// pty.NewFakeBridge here.
func WithBridge(b pty.Bridge) Option {
	return func(c *Config) { c.Bridge = b }
}

func defaultConfig() Config {
	return Config{
		ScrollbackCap: DefaultScrollbackCap,
		TabWidth:      8,
		DefaultFg:     DefaultForeground,
		DefaultBg:     DefaultBackground,
		InitialRows:   24,
		InitialCols:   80,
		ScrollStep: func(viewportRows int) int {
			n := int(DefaultScrollStepFraction * float64(viewportRows))
			if n < 1 {
				n = 1
			}
			return n
		},
	}
}

// Emulator is the terminal façade (C7): it wires the PTY bridge's output
// into the escape parser, accepts keystrokes and routes them back to the
// bridge, and owns the concurrency model of §5 — a single RWMutex guarding
// the terminal state plus a version counter and condition variable for
// redraw notification.
type Emulator struct {
	id     uuid.UUID
	cfg    Config
	bridge pty.Bridge

	mu   sync.RWMutex
	term *Terminal
	p    *Parser

	scrollOffset int

	redrawMu   sync.Mutex
	redrawCond *sync.Cond
	version    uint64
	closed     bool
	closeErr   error
}

// New constructs an Emulator from options but does not start the child
// process; call Start for that.
func New(opts ...Option) *Emulator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	term := NewTerminal(cfg.InitialRows, cfg.InitialCols, cfg.ScrollbackCap)
	term.SetAttrs(Attrs{Fg: cfg.DefaultFg, Bg: cfg.DefaultBg, Ul: NoColor})
	if cfg.TabWidth > 0 {
		term.tabWidth = cfg.TabWidth
	}

	e := &Emulator{
		id:   uuid.New(),
		cfg:  cfg,
		term: term,
		p:    NewParser(term),
	}
	e.redrawCond = sync.NewCond(&e.redrawMu)
	return e
}

// SessionID returns this emulator's unique identifier, stable for its
// lifetime — useful for correlating logs across a host embedding multiple
// terminals.
func (e *Emulator) SessionID() string { return e.id.String() }

// Start spawns the child process under the configured (or platform default)
// PTY bridge at the emulator's initial size and begins streaming its output
// through the parser. Per §7, PtyStartFailed is fatal and returned here.
func (e *Emulator) Start() error {
	b := e.cfg.Bridge
	if b == nil {
		b = newPlatformBridge(e.cfg.ChildCommand)
	}
	e.bridge = b

	rows, cols := e.cfg.InitialRows, e.cfg.InitialCols
	if err := b.Start(rows, cols, e.onData, e.onExit); err != nil {
		return fmt.Errorf("%w: %v", ErrPtyStartFailed, err)
	}
	return nil
}

// onData is the bridge's read-pump callback: it runs on whatever goroutine
// the bridge implementation uses, takes the exclusive lock, feeds the
// parser, and bumps the redraw version.
func (e *Emulator) onData(data []byte) {
	e.mu.Lock()
	e.p.Feed(data)
	e.mu.Unlock()
	e.bumpVersion()
}

// onExit is the bridge's one-shot child-exited callback: it marks the
// emulator closed with ErrPtyClosed and wakes any goroutine blocked in
// WaitForRedraw, the same way Close does, without touching the bridge again
// (the bridge is already gone by the time this fires).
func (e *Emulator) onExit() {
	e.redrawMu.Lock()
	if !e.closed {
		e.closed = true
		e.closeErr = ErrPtyClosed
	}
	e.redrawMu.Unlock()
	e.redrawCond.Broadcast()
}

// Err returns the reason the emulator stopped accepting redraws: ErrPtyClosed
// if the child process exited on its own, the error Close returned if the
// caller closed it explicitly, or nil if it is still running.
func (e *Emulator) Err() error {
	e.redrawMu.Lock()
	defer e.redrawMu.Unlock()
	return e.closeErr
}

// InputCodepoint encodes cp as UTF-8 via C1 and sends it to the child.
func (e *Emulator) InputCodepoint(cp rune) error {
	b, err := EncodeCodepoint(cp)
	if err != nil {
		return err
	}
	return e.send(b)
}

// Key identifies a symbolic (non-printable) key for InputKey.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyDelete
	KeyPageUp
	KeyPageDown
)

// keySequences is the xterm-style CSI table of §6.
var keySequences = map[Key]string{
	KeyUp:       "\x1b[A",
	KeyDown:     "\x1b[B",
	KeyRight:    "\x1b[C",
	KeyLeft:     "\x1b[D",
	KeyHome:     "\x1b[H",
	KeyEnd:      "\x1b[F",
	KeyDelete:   "\x1b[3~",
	KeyPageUp:   "\x1b[5~",
	KeyPageDown: "\x1b[6~",
}

// InputKey maps a symbolic key to its byte sequence and sends it; unknown
// keys are ignored, per §4.7.
func (e *Emulator) InputKey(k Key) error {
	seq, ok := keySequences[k]
	if !ok {
		return nil
	}
	return e.send([]byte(seq))
}

// Paste sends utf8 verbatim to the child.
func (e *Emulator) Paste(utf8 []byte) error {
	return e.send(utf8)
}

func (e *Emulator) send(b []byte) error {
	if e.bridge == nil {
		return fmt.Errorf("%w: emulator not started", ErrPtyWriteFailed)
	}
	if err := e.bridge.Send(b); err != nil {
		return fmt.Errorf("%w: %v", ErrPtyWriteFailed, err)
	}
	return nil
}

// Resize changes both the screen model and the PTY bridge's reported size,
// then emits a redraw signal. Safe to call at high frequency (e.g. from a
// GUI resize drag): the exclusive lock is held only for the grid resize, and
// the bridge resize call runs after it is released, so no separate debounce
// is needed here — callers that want debouncing add it outside this module.
func (e *Emulator) Resize(rows, cols int) error {
	e.mu.Lock()
	e.term.Resize(rows, cols)
	e.mu.Unlock()

	if e.bridge != nil {
		if err := e.bridge.Resize(rows, cols); err != nil {
			return fmt.Errorf("%w: %v", ErrPtyWriteFailed, err)
		}
	}
	e.bumpVersion()
	return nil
}

// Scroll adjusts the scroll offset by deltaLines * ScrollStep(viewportRows)
// lines, clamped by View/Project against the current scrollback+grid depth.
func (e *Emulator) Scroll(deltaLines, viewportRows int) {
	step := e.cfg.ScrollStep(viewportRows)
	e.mu.Lock()
	e.scrollOffset += deltaLines * step
	if e.scrollOffset < 0 {
		e.scrollOffset = 0
	}
	e.mu.Unlock()
}

// ScrollToBottom resets the scroll offset to 0 (the live tail).
func (e *Emulator) ScrollToBottom() {
	e.mu.Lock()
	e.scrollOffset = 0
	e.mu.Unlock()
}

// View takes the shared lock and projects the current terminal state for a
// viewport of the given size, per §4.6.
func (e *Emulator) View(viewportRows, viewportCols int) View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Project(e.term, e.scrollOffset, viewportRows, viewportCols)
}

// bumpVersion advances the content version and wakes any goroutine blocked
// in WaitForRedraw.
func (e *Emulator) bumpVersion() {
	e.redrawMu.Lock()
	e.version++
	e.redrawMu.Unlock()
	e.redrawCond.Broadcast()
}

// WaitForRedraw blocks until the content version has advanced past the last
// version this caller observed, or the emulator is closed, and returns the
// version to pass on the next call. This is the renderer-thread suspension
// point of §5: it avoids busy-painting by sleeping on a condition variable
// instead of polling.
func (e *Emulator) WaitForRedraw(lastSeen uint64) (version uint64, closed bool) {
	e.redrawMu.Lock()
	defer e.redrawMu.Unlock()
	for e.version <= lastSeen && !e.closed {
		e.redrawCond.Wait()
	}
	return e.version, e.closed
}

// Close terminates the child process, releases the bridge's resources, and
// wakes any goroutine blocked in WaitForRedraw with closed=true.
func (e *Emulator) Close() error {
	var err error
	if e.bridge != nil {
		err = e.bridge.Close()
	}
	e.redrawMu.Lock()
	wasClosed := e.closed
	e.closed = true
	if !wasClosed {
		e.closeErr = err
	}
	e.redrawMu.Unlock()
	e.redrawCond.Broadcast()
	return err
}
