// ABOUTME: Attributes is an immutable snapshot of a terminal's termios configuration.
// ABOUTME: Capture reads the live configuration; Restore writes a snapshot back to the device.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "golang.org/x/sys/unix"

// Attributes is a snapshot of a terminal device configuration: the four
// flag words, the control-character array and the line speeds.
//
// The zero value is not a valid configuration. Obtain one with Capture
// or from a Device; two snapshots are compared whole with Equal.
type Attributes struct {
	termios unix.Termios
}

// Equal reports whether a and b are identical in every field.
func (a Attributes) Equal(b Attributes) bool {
	return a.termios == b.termios
}

// Iflag returns the input-mode flag word.
func (a Attributes) Iflag() uint64 { return uint64(a.termios.Iflag) }

// Oflag returns the output-mode flag word.
func (a Attributes) Oflag() uint64 { return uint64(a.termios.Oflag) }

// Cflag returns the control-mode flag word.
func (a Attributes) Cflag() uint64 { return uint64(a.termios.Cflag) }

// Lflag returns the local-mode flag word.
func (a Attributes) Lflag() uint64 { return uint64(a.termios.Lflag) }

// VMin returns the minimum byte count for a non-canonical read.
func (a Attributes) VMin() uint8 { return a.termios.Cc[unix.VMIN] }

// VTime returns the non-canonical read timeout in deciseconds.
func (a Attributes) VTime() Deciseconds { return Deciseconds(a.termios.Cc[unix.VTIME]) }

// Termios returns a copy of the underlying termios structure.
func (a Attributes) Termios() unix.Termios { return a.termios }

// CookedAttributes returns a canonical-mode configuration: line-buffered
// input with echo and signal keys, CR-to-NL translation, XON/XOFF flow
// control, NL-to-CRNL output processing and a 7-bit even-parity line.
// VirtualDevice starts from it.
func CookedAttributes() Attributes {
	var t unix.Termios
	t.Iflag = unix.BRKINT | unix.ICRNL | unix.IXON | unix.IMAXBEL
	t.Oflag = unix.OPOST | unix.ONLCR
	t.Cflag = unix.CREAD | unix.CS7 | unix.PARENB | unix.HUPCL
	t.Lflag = unix.ECHO | unix.ECHOE | unix.ECHOK | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cc[unix.VINTR] = 0x03
	t.Cc[unix.VQUIT] = 0x1c
	t.Cc[unix.VERASE] = 0x7f
	t.Cc[unix.VKILL] = 0x15
	t.Cc[unix.VEOF] = 0x04
	t.Cc[unix.VSTART] = 0x11
	t.Cc[unix.VSTOP] = 0x13
	t.Cc[unix.VSUSP] = 0x1a
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	t.Ispeed = unix.B38400
	t.Ospeed = unix.B38400
	return Attributes{termios: t}
}

// Capture reads the current configuration of dev.
// Failures are reported as a *DeviceError of kind ErrDeviceQuery.
func Capture(dev Device) (Attributes, error) {
	a, err := dev.GetAttr()
	if err != nil {
		return Attributes{}, asDeviceError(err, ErrDeviceQuery, opGetAttr)
	}
	return a, nil
}

// Restore applies a previously captured snapshot to dev. It is safe to
// call repeatedly and from cleanup paths; applying the same snapshot
// twice leaves the device unchanged.
// Failures are reported as a *DeviceError of kind ErrDeviceApply.
func Restore(dev Device, a Attributes) error {
	if err := dev.SetAttr(a, ApplyFlush); err != nil {
		return asDeviceError(err, ErrDeviceApply, opSetAttrFlush)
	}
	return nil
}
