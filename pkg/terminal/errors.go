// ABOUTME: Error taxonomy for terminal configuration failures and session misuse.
// ABOUTME: Describe and ExitCode turn any of them into a diagnosable fatal report.

package terminal

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceQuery means the current configuration could not be read.
	ErrDeviceQuery = errors.New("cannot read terminal configuration")
	// ErrDeviceApply means a new configuration could not be written.
	ErrDeviceApply = errors.New("cannot apply terminal configuration")
	// ErrRestoreFailure means the original snapshot could not be reapplied.
	ErrRestoreFailure = errors.New("cannot restore terminal configuration")
	// ErrNotTerminal means the descriptor is not an interactive terminal.
	ErrNotTerminal = errors.New("not a terminal")
	// ErrDeviceBusy means another Session already drives the device.
	ErrDeviceBusy = errors.New("terminal already owned by another session")
	// ErrNotRaw is returned by Session.Read outside of raw mode.
	ErrNotRaw = errors.New("session is not in raw mode")
	// ErrInvalidState is returned for operations invalid in the current state.
	ErrInvalidState = errors.New("invalid session state")
)

// DeviceError records which device syscall failed and why.
type DeviceError struct {
	Op   string // syscall, e.g. "ioctl(TCGETS)"
	Kind error  // ErrDeviceQuery or ErrDeviceApply
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *DeviceError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// asDeviceError returns err unchanged when it already carries a
// DeviceError, otherwise wraps it with the given kind and op.
func asDeviceError(err error, kind error, op string) error {
	var de *DeviceError
	if errors.As(err, &de) {
		return err
	}
	return &DeviceError{Op: op, Kind: kind, Err: err}
}

// Describe renders err as a one-line diagnostic that tells apart a
// device that is not a terminal, a failed query, a failed apply and a
// failed restore.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var de *DeviceError
	switch {
	case errors.Is(err, ErrNotTerminal):
		return fmt.Sprintf("standard input is not a terminal: %v", err)
	case errors.Is(err, ErrDeviceBusy):
		return fmt.Sprintf("terminal is in use: %v", err)
	case errors.Is(err, ErrRestoreFailure):
		if errors.As(err, &de) {
			return fmt.Sprintf("terminal left in raw mode, run 'reset': %s failed: %v", de.Op, de.Err)
		}
		return fmt.Sprintf("terminal left in raw mode, run 'reset': %v", err)
	case errors.As(err, &de):
		return fmt.Sprintf("%v: %s failed: %v", de.Kind, de.Op, de.Err)
	}
	return err.Error()
}

// ExitCode maps err to a process exit status: 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
