// ABOUTME: Defines the Device interface the raw-mode session drives.
// ABOUTME: Implemented by TTY for real descriptors and VirtualDevice for tests.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "sync/atomic"

// ApplyMode selects when a new configuration takes effect.
type ApplyMode int

const (
	// ApplyNow changes the configuration immediately.
	ApplyNow ApplyMode = iota
	// ApplyFlush waits for pending output, discards unread input, then applies.
	ApplyFlush
)

func (m ApplyMode) String() string {
	if m == ApplyFlush {
		return "flush"
	}
	return "now"
}

// Device is the descriptor-level surface of a terminal: attribute
// query and apply, timed reads and geometry.
type Device interface {
	Fd() int
	GetAttr() (Attributes, error)
	SetAttr(a Attributes, mode ApplyMode) error
	// Read returns (0, nil) when the configured read timeout elapses.
	Read(p []byte) (int, error)
	Size() (width, height int, err error)
}

// owner is implemented by devices that allow at most one Session.
type owner interface {
	acquire() bool
	release()
}

// ownership is embedded by devices to implement owner.
type ownership struct {
	held atomic.Bool
}

func (o *ownership) acquire() bool { return o.held.CompareAndSwap(false, true) }
func (o *ownership) release()      { o.held.Store(false) }
