// ABOUTME: DeriveRaw computes the raw-mode configuration from a captured snapshot.
// ABOUTME: Pure and deterministic; the input snapshot is never modified.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "golang.org/x/sys/unix"

// Deciseconds is a VTIME read timeout in tenths of a second.
type Deciseconds uint8

// DefaultReadTimeout makes a raw read return after 100ms without input.
const DefaultReadTimeout Deciseconds = 1

// RawConfig is a raw-mode configuration derived from an original snapshot.
// It can only be produced by DeriveRaw.
type RawConfig struct {
	attrs Attributes
}

// Attributes returns the configuration to apply to the device.
func (r RawConfig) Attributes() Attributes { return r.attrs }

// Equal reports whether two derived configurations are bit-identical.
func (r RawConfig) Equal(o RawConfig) bool { return r.attrs.Equal(o.attrs) }

// DeriveRaw returns orig with input translation, flow control, output
// post-processing, echo, canonical input, literal-next and signal keys
// turned off, the character size forced to 8 bits, and reads set to
// return after at most timeout deciseconds (VMIN=0).
//
// A zero timeout is raised to DefaultReadTimeout: VMIN=0 with VTIME=0
// makes every read return immediately and the poll loop would spin.
func DeriveRaw(orig Attributes, timeout Deciseconds) RawConfig {
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}

	t := orig.termios
	t.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Cflag &^= unix.CSIZE
	t.Cflag |= unix.CS8
	t.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = uint8(timeout)

	return RawConfig{attrs: Attributes{termios: t}}
}
