//go:build windows

package pty

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                         = windows.NewLazySystemDLL("kernel32.dll")
	procCreatePseudoConsole          = kernel32.NewProc("CreatePseudoConsole")
	procResizePseudoConsole          = kernel32.NewProc("ResizePseudoConsole")
	procClosePseudoConsole           = kernel32.NewProc("ClosePseudoConsole")
	procInitializeProcThreadAttrList = kernel32.NewProc("InitializeProcThreadAttributeList")
	procUpdateProcThreadAttribute    = kernel32.NewProc("UpdateProcThreadAttribute")
	procDeleteProcThreadAttrList     = kernel32.NewProc("DeleteProcThreadAttributeList")
)

const procThreadAttributePseudoconsole = 0x00020016

// coord packs (cols, rows) the way COORD does: X in the low 16 bits, Y in the high 16.
func coord(cols, rows int) uintptr {
	return uintptr(uint32(uint16(cols)) | uint32(uint16(rows))<<16)
}

// WindowsBridge drives a ConPTY pseudo-console directly through the Win32
// API original_source/core/PseudoConsole.cpp wraps: CreatePseudoConsole /
// ResizePseudoConsole / ClosePseudoConsole, with the child's own stdio
// handles replaced by the ConPTY's pipe ends.
type WindowsBridge struct {
	command string

	mu     sync.Mutex
	hpc    windows.Handle
	inW    windows.Handle // write end the bridge sends input on
	outR   windows.Handle // read end the bridge receives output on
	proc   windows.Handle
	closed bool
}

// NewWindowsBridge constructs an unstarted bridge that launches the given
// command line in place of the default shell (COMSPEC, or cmd.exe), or the
// default shell itself when command is empty.
func NewWindowsBridge(command string) *WindowsBridge {
	return &WindowsBridge{command: command}
}

func (b *WindowsBridge) Start(rows, cols int, onData func([]byte), onExit func()) error {
	var inR, inW, outR, outW windows.Handle
	if err := windows.CreatePipe(&inR, &inW, nil, 0); err != nil {
		return fmt.Errorf("pty: create input pipe: %w", err)
	}
	if err := windows.CreatePipe(&outR, &outW, nil, 0); err != nil {
		windows.CloseHandle(inR)
		windows.CloseHandle(inW)
		return fmt.Errorf("pty: create output pipe: %w", err)
	}

	var hpc windows.Handle
	ret, _, _ := procCreatePseudoConsole.Call(
		coord(cols, rows),
		uintptr(inR),
		uintptr(outW),
		0,
		uintptr(unsafe.Pointer(&hpc)),
	)
	// CreatePseudoConsole returns an HRESULT; S_OK is 0.
	windows.CloseHandle(inR)
	windows.CloseHandle(outW)
	if ret != 0 {
		windows.CloseHandle(inW)
		windows.CloseHandle(outR)
		return fmt.Errorf("pty: CreatePseudoConsole failed: hresult=0x%x", uint32(ret))
	}

	cmdline := b.command
	if cmdline == "" {
		cmdline = comspec()
	}
	proc, err := spawnAttachedToConsole(cmdline, hpc)
	if err != nil {
		procClosePseudoConsole.Call(uintptr(hpc))
		windows.CloseHandle(inW)
		windows.CloseHandle(outR)
		return err
	}

	b.mu.Lock()
	b.hpc = hpc
	b.inW = inW
	b.outR = outR
	b.proc = proc
	b.mu.Unlock()

	go b.pump(outR, onData, onExit)
	return nil
}

// spawnAttachedToConsole starts cmdline with an inherited ConPTY attached via
// the PROC_THREAD_ATTRIBUTE_PSEUDOCONSOLE attribute — the same handshake
// PseudoConsole.cpp performs with InitializeProcThreadAttributeList /
// UpdateProcThreadAttribute / CreateProcessW.
func spawnAttachedToConsole(cmdline string, hpc windows.Handle) (windows.Handle, error) {
	var size uintptr
	procInitializeProcThreadAttrList.Call(0, 1, 0, uintptr(unsafe.Pointer(&size)))

	attrList := make([]byte, size)
	ret, _, err := procInitializeProcThreadAttrList.Call(
		uintptr(unsafe.Pointer(&attrList[0])), 1, 0, uintptr(unsafe.Pointer(&size)))
	if ret == 0 {
		return 0, fmt.Errorf("pty: InitializeProcThreadAttributeList: %w", err)
	}
	defer procDeleteProcThreadAttrList.Call(uintptr(unsafe.Pointer(&attrList[0])))

	ret, _, err = procUpdateProcThreadAttribute.Call(
		uintptr(unsafe.Pointer(&attrList[0])), 0,
		procThreadAttributePseudoconsole,
		uintptr(hpc), unsafe.Sizeof(hpc), 0, 0)
	if ret == 0 {
		return 0, fmt.Errorf("pty: UpdateProcThreadAttribute: %w", err)
	}

	startupInfoEx := struct {
		windows.StartupInfo
		AttributeList uintptr
	}{
		AttributeList: uintptr(unsafe.Pointer(&attrList[0])),
	}
	startupInfoEx.Cb = uint32(unsafe.Sizeof(startupInfoEx))
	startupInfoEx.Flags = windows.STARTF_USESTDHANDLES

	var procInfo windows.ProcessInformation
	cmdLineUTF16, err := syscall.UTF16PtrFromString(cmdline)
	if err != nil {
		return 0, err
	}

	const extendedStartupInfoPresent = 0x00080000
	err = windows.CreateProcess(
		nil, cmdLineUTF16, nil, nil, false,
		extendedStartupInfoPresent, nil, nil,
		&startupInfoEx.StartupInfo, &procInfo,
	)
	if err != nil {
		return 0, fmt.Errorf("pty: CreateProcess: %w", err)
	}
	windows.CloseHandle(procInfo.Thread)
	return procInfo.Process, nil
}

func comspec() string {
	if c := os.Getenv("COMSPEC"); c != "" {
		return c
	}
	return "cmd.exe"
}

// pump is the read-pump goroutine. ReadFile on a ConPTY output pipe returns
// ERROR_BROKEN_PIPE once the child and the console both go away; any other
// error is treated as a clean end of stream too, matching
// PseudoConsole.cpp's ReadCompleteCallback (retry only on a transient
// invalid-user-buffer result, stop on everything else).
func (b *WindowsBridge) pump(outR windows.Handle, onData func([]byte), onExit func()) {
	buf := make([]byte, 4096)
	for {
		var n uint32
		err := windows.ReadFile(outR, buf, &n, nil)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onData(chunk)
		}
		if err != nil {
			if err == windows.ERROR_INVALID_USER_BUFFER {
				continue
			}
			if onExit != nil {
				onExit()
			}
			return
		}
	}
}

func (b *WindowsBridge) Send(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	var written uint32
	return windows.WriteFile(b.inW, data, &written, nil)
}

func (b *WindowsBridge) Resize(rows, cols int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	ret, _, _ := procResizePseudoConsole.Call(uintptr(b.hpc), coord(cols, rows))
	if ret != 0 {
		return fmt.Errorf("pty: ResizePseudoConsole failed: hresult=0x%x", uint32(ret))
	}
	return nil
}

func (b *WindowsBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.proc != 0 {
		windows.TerminateProcess(b.proc, 0)
		windows.CloseHandle(b.proc)
	}
	if b.hpc != 0 {
		procClosePseudoConsole.Call(uintptr(b.hpc))
	}
	windows.CloseHandle(b.inW)
	windows.CloseHandle(b.outR)
	return nil
}
