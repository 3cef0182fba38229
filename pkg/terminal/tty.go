// ABOUTME: TTY is the Device backed by a real terminal descriptor via golang.org/x/sys/unix.
// ABOUTME: OpenTTY takes over the *os.File; the TTY closes it, and only one Session may drive it at a time.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// TTY is a terminal device that owns its file. Session exclusivity is
// enforced by the embedded ownership, not by package state.
type TTY struct {
	ownership

	f         *os.File
	fd        int
	closeOnce sync.Once
	closeErr  error
}

// OpenTTY takes ownership of f, which must be a terminal. The caller
// must not use or close f afterwards; Close closes it.
func OpenTTY(f *os.File) (*TTY, error) {
	// Fd puts f back into blocking mode, which VTIME-timed reads need.
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, &DeviceError{Op: opGetAttr, Kind: ErrDeviceQuery, Err: fmt.Errorf("%s: %w", f.Name(), ErrNotTerminal)}
	}
	return &TTY{f: f, fd: fd}, nil
}

// Close closes the underlying file. Later calls return the first result.
func (t *TTY) Close() error {
	t.closeOnce.Do(func() { t.closeErr = t.f.Close() })
	return t.closeErr
}

// Name returns the file name the TTY was opened from.
func (t *TTY) Name() string { return t.f.Name() }

// Fd returns the underlying descriptor.
func (t *TTY) Fd() int { return t.fd }

// GetAttr reads the live termios configuration.
func (t *TTY) GetAttr() (Attributes, error) {
	tio, err := unix.IoctlGetTermios(t.fd, ioctlGetAttr)
	if err != nil {
		if errors.Is(err, unix.ENOTTY) {
			err = fmt.Errorf("%w: %w", ErrNotTerminal, err)
		}
		return Attributes{}, &DeviceError{Op: opGetAttr, Kind: ErrDeviceQuery, Err: err}
	}
	return Attributes{termios: *tio}, nil
}

// SetAttr writes a configuration to the device.
func (t *TTY) SetAttr(a Attributes, mode ApplyMode) error {
	req, op := uint(ioctlSetAttr), opSetAttr
	if mode == ApplyFlush {
		req, op = ioctlSetAttrFlush, opSetAttrFlush
	}
	tio := a.termios
	if err := unix.IoctlSetTermios(t.fd, req, &tio); err != nil {
		return &DeviceError{Op: op, Kind: ErrDeviceApply, Err: err}
	}
	return nil
}

// Read performs one read(2). With VMIN=0 it returns (0, nil) once the
// VTIME timeout passes with no input.
func (t *TTY) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(t.fd, p)
		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, nil
		default:
			return 0, fmt.Errorf("reading terminal: %w", err)
		}
	}
}

// Size returns the current window geometry in cells.
func (t *TTY) Size() (width, height int, err error) {
	w, h, err := term.GetSize(t.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return w, h, nil
}
