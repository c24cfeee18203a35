package mterm

import (
	"errors"
	"testing"
	"time"

	"github.com/ivymerfe/mterm/pty"
)

func newTestEmulator(t *testing.T, b *pty.FakeBridge) *Emulator {
	t.Helper()
	e := New(WithSize(4, 10), WithBridge(b))
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEmulatorFeedsDataThroughParser(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	b.Feed([]byte("hi"))

	v := e.View(4, 10)
	if string(v.Lines[0].Text) != "hi" {
		t.Fatalf("Lines[0] = %q, want %q", string(v.Lines[0].Text), "hi")
	}
}

func TestEmulatorInputCodepointReachesBridge(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	if err := e.InputCodepoint('q'); err != nil {
		t.Fatalf("InputCodepoint: %v", err)
	}
	sent := b.Sent()
	if len(sent) != 1 || string(sent[0]) != "q" {
		t.Fatalf("Sent() = %+v", sent)
	}
}

func TestEmulatorInputKeySendsEscapeSequence(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	if err := e.InputKey(KeyUp); err != nil {
		t.Fatalf("InputKey: %v", err)
	}
	sent := b.Sent()
	if len(sent) != 1 || string(sent[0]) != "\x1b[A" {
		t.Fatalf("Sent() = %+v", sent)
	}
}

func TestEmulatorInputKeyUnknownIsIgnored(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	if err := e.InputKey(Key(999)); err != nil {
		t.Fatalf("InputKey(unknown): %v", err)
	}
	if len(b.Sent()) != 0 {
		t.Fatalf("Sent() = %+v, want none", b.Sent())
	}
}

func TestEmulatorPasteSendsVerbatim(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	if err := e.Paste([]byte("pasted text")); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	sent := b.Sent()
	if len(sent) != 1 || string(sent[0]) != "pasted text" {
		t.Fatalf("Sent() = %+v", sent)
	}
}

func TestEmulatorResizePropagatesToBridge(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	if err := e.Resize(30, 100); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	resizes := b.Resizes()
	if len(resizes) != 1 || resizes[0] != [2]int{30, 100} {
		t.Fatalf("Resizes() = %+v", resizes)
	}
}

func TestEmulatorScrollAndScrollToBottom(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	for i := 0; i < 20; i++ {
		b.Feed([]byte("x\r\n"))
	}

	e.Scroll(1, 4)
	v := e.View(4, 10)
	if v.CursorVisible {
		t.Fatalf("expected cursor out of view after scrolling up")
	}

	e.ScrollToBottom()
	v = e.View(4, 10)
	if !v.CursorVisible {
		t.Fatalf("expected cursor visible after ScrollToBottom")
	}
}

func TestEmulatorWaitForRedrawWakesOnData(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	done := make(chan uint64, 1)
	go func() {
		v, _ := e.WaitForRedraw(0)
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	b.Feed([]byte("x"))

	select {
	case v := <-done:
		if v == 0 {
			t.Fatalf("WaitForRedraw returned version 0 after a feed")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForRedraw did not wake up after onData")
	}
}

func TestEmulatorCloseWakesWaitForRedraw(t *testing.T) {
	b := pty.NewFakeBridge()
	e := New(WithSize(4, 10), WithBridge(b))
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan bool, 1)
	go func() {
		_, closed := e.WaitForRedraw(0)
		done <- closed
	}()

	time.Sleep(10 * time.Millisecond)
	e.Close()

	select {
	case closed := <-done:
		if !closed {
			t.Fatalf("WaitForRedraw closed = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForRedraw did not wake up after Close")
	}
}

func TestEmulatorChildExitSurfacesErrPtyClosed(t *testing.T) {
	b := pty.NewFakeBridge()
	e := New(WithSize(4, 10), WithBridge(b))
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan bool, 1)
	go func() {
		_, closed := e.WaitForRedraw(0)
		done <- closed
	}()

	time.Sleep(10 * time.Millisecond)
	b.SimulateExit()

	select {
	case closed := <-done:
		if !closed {
			t.Fatalf("WaitForRedraw closed = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForRedraw did not wake up after SimulateExit")
	}

	if err := e.Err(); !errors.Is(err, ErrPtyClosed) {
		t.Fatalf("Err() = %v, want ErrPtyClosed", err)
	}
}

func TestEmulatorSessionIDIsStable(t *testing.T) {
	b := pty.NewFakeBridge()
	e := newTestEmulator(t, b)

	id1 := e.SessionID()
	id2 := e.SessionID()
	if id1 == "" || id1 != id2 {
		t.Fatalf("SessionID() = %q, %q, want stable non-empty value", id1, id2)
	}
}
