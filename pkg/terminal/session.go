// ABOUTME: Session owns the raw-mode lifecycle of one terminal: enable, restore, suspend and resume.
// ABOUTME: Release is the scoped cleanup for defer; it never masks an in-flight error.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"fmt"
	"os"
	"sync"

	pilog "github.com/mauromedda/rawtty/internal/log"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateUninitialized State = iota
	StateRaw
	StateRestored
	StateFailed
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateRaw:           "raw",
	StateRestored:      "restored",
	StateFailed:        "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a Session.
type Option func(*Session)

// WithReadTimeout sets the VTIME applied in raw mode.
func WithReadTimeout(d Deciseconds) Option {
	return func(s *Session) { s.timeout = d }
}

// withRaise replaces the signal re-raise used after a termination signal.
func withRaise(fn func(os.Signal)) Option {
	return func(s *Session) { s.raise = fn }
}

// Session is the single owner of a terminal's raw mode. The original
// snapshot lives here, not in package state, and is never modified
// after Enable captures it.
//
// A Session is used from one goroutine; the mutex only serialises the
// signal watcher's restore and resume against it.
type Session struct {
	mu sync.Mutex

	dev     Device
	timeout Deciseconds
	raise   func(os.Signal)

	state        State
	orig         Attributes
	raw          RawConfig
	needsRestore bool // device may differ from orig

	releaseOnce sync.Once
}

// NewSession binds a Session to dev. Devices from this package accept
// one Session at a time; a second NewSession fails with ErrDeviceBusy
// until the first is released.
func NewSession(dev Device, opts ...Option) (*Session, error) {
	if o, ok := dev.(owner); ok && !o.acquire() {
		return nil, fmt.Errorf("creating session on fd %d: %w", dev.Fd(), ErrDeviceBusy)
	}
	s := &Session{
		dev:     dev,
		timeout: DefaultReadTimeout,
		raise:   raiseDefault,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Original returns the snapshot captured by Enable.
func (s *Session) Original() Attributes {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orig
}

// Raw returns the configuration applied by Enable.
func (s *Session) Raw() RawConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// Device returns the device the session drives.
func (s *Session) Device() Device { return s.dev }

// Enable captures the original configuration, derives the raw one and
// applies it, discarding any input typed but not yet read. Only valid
// from StateUninitialized. Any device failure moves the session to
// StateFailed; the caller must not start interactive I/O.
func (s *Session) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return fmt.Errorf("enabling raw mode from %s: %w", s.state, ErrInvalidState)
	}

	orig, err := Capture(s.dev)
	if err != nil {
		s.state = StateFailed
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	s.orig = orig
	s.raw = DeriveRaw(orig, s.timeout)
	s.needsRestore = true

	if err := s.dev.SetAttr(s.raw.Attributes(), ApplyFlush); err != nil {
		s.state = StateFailed
		// A failed apply may still have changed part of the configuration.
		if rerr := s.restoreLocked(); rerr != nil {
			pilog.Error("terminal: %v", rerr)
		}
		return fmt.Errorf("enabling raw mode: %w", asDeviceError(err, ErrDeviceApply, opSetAttrFlush))
	}

	s.state = StateRaw
	pilog.Debug("terminal: raw mode enabled on fd %d (vtime=%d)", s.dev.Fd(), s.timeout)
	return nil
}

// Disable restores the original configuration. Calling it again, or
// before Enable, is a no-op.
func (s *Session) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreLocked()
}

func (s *Session) restoreLocked() error {
	if !s.needsRestore {
		return nil
	}
	if err := Restore(s.dev, s.orig); err != nil {
		s.state = StateFailed
		return fmt.Errorf("%w: %w", ErrRestoreFailure, err)
	}
	s.needsRestore = false
	if s.state == StateRaw {
		s.state = StateRestored
	}
	pilog.Debug("terminal: original configuration restored on fd %d", s.dev.Fd())
	return nil
}

// Suspend puts the original configuration back while the process is
// stopped by job control. The session stays in StateRaw; Resume
// re-applies the raw configuration.
func (s *Session) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRaw {
		return nil
	}
	if err := Restore(s.dev, s.orig); err != nil {
		s.state = StateFailed
		return fmt.Errorf("suspending raw mode: %w", err)
	}
	pilog.Debug("terminal: suspended on fd %d", s.dev.Fd())
	return nil
}

// Resume re-applies the raw configuration after the process continues.
// Whatever foreground job ran meanwhile may have changed the device,
// so the raw configuration is written unconditionally.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRaw {
		return fmt.Errorf("resuming raw mode from %s: %w", s.state, ErrInvalidState)
	}
	if err := s.dev.SetAttr(s.raw.Attributes(), ApplyNow); err != nil {
		s.state = StateFailed
		if rerr := s.restoreLocked(); rerr != nil {
			pilog.Error("terminal: %v", rerr)
		}
		return fmt.Errorf("resuming raw mode: %w", asDeviceError(err, ErrDeviceApply, opSetAttr))
	}
	s.needsRestore = true
	pilog.Debug("terminal: raw mode re-applied on fd %d", s.dev.Fd())
	return nil
}

// Read reads from the device. It refuses to run unless the session is
// in raw mode, so a failed or restored session cannot feed a key loop.
func (s *Session) Read(p []byte) (int, error) {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if st != StateRaw {
		return 0, fmt.Errorf("reading in %s state: %w", st, ErrNotRaw)
	}
	return s.dev.Read(p)
}

// Size returns the device geometry.
func (s *Session) Size() (width, height int, err error) {
	return s.dev.Size()
}

// Release restores the terminal and gives up ownership of the device.
// It is meant to be deferred right after NewSession:
//
//	defer sess.Release(&err)
//
// A restore failure is logged. It is stored in *errp only when no other
// error is already pending there, so a fatal error in flight is never
// replaced. errp may be nil.
func (s *Session) Release(errp *error) {
	err := s.Disable()
	s.releaseOnce.Do(func() {
		if o, ok := s.dev.(owner); ok {
			o.release()
		}
	})
	if err == nil {
		return
	}
	pilog.Error("terminal: %v", err)
	if errp != nil && *errp == nil {
		*errp = err
	}
}
