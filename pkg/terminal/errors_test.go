// ABOUTME: Tests for the error taxonomy: errors.Is through DeviceError and Describe output.
// ABOUTME: Checks that not-a-terminal, query, apply and restore failures read differently.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDeviceError_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("enabling raw mode: %w", &DeviceError{Op: opGetAttr, Kind: ErrDeviceQuery, Err: unix.ENOTTY})

	if !errors.Is(err, ErrDeviceQuery) {
		t.Error("expected errors.Is(err, ErrDeviceQuery)")
	}
	if !errors.Is(err, unix.ENOTTY) {
		t.Error("expected errors.Is(err, ENOTTY)")
	}
	if errors.Is(err, ErrDeviceApply) {
		t.Error("query failure must not match ErrDeviceApply")
	}

	var de *DeviceError
	if !errors.As(err, &de) || de.Op != opGetAttr {
		t.Errorf("errors.As did not recover the op, got %+v", de)
	}
}

func TestAsDeviceError_KeepsExisting(t *testing.T) {
	t.Parallel()

	inner := &DeviceError{Op: opSetAttr, Kind: ErrDeviceApply, Err: unix.EIO}
	got := asDeviceError(inner, ErrDeviceQuery, opGetAttr)

	var de *DeviceError
	if !errors.As(got, &de) || de != inner {
		t.Errorf("asDeviceError replaced an existing DeviceError: %v", got)
	}

	wrapped := asDeviceError(unix.EIO, ErrDeviceApply, opSetAttrFlush)
	if !errors.Is(wrapped, ErrDeviceApply) || !errors.Is(wrapped, unix.EIO) {
		t.Errorf("plain error not wrapped: %v", wrapped)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not a terminal",
			err:  &DeviceError{Op: opGetAttr, Kind: ErrDeviceQuery, Err: fmt.Errorf("/dev/stdin: %w", ErrNotTerminal)},
			want: "not a terminal",
		},
		{
			name: "query syscall",
			err:  &DeviceError{Op: opGetAttr, Kind: ErrDeviceQuery, Err: unix.EBADF},
			want: "cannot read terminal configuration: " + opGetAttr + " failed",
		},
		{
			name: "apply syscall",
			err:  &DeviceError{Op: opSetAttrFlush, Kind: ErrDeviceApply, Err: unix.EIO},
			want: "cannot apply terminal configuration: " + opSetAttrFlush + " failed",
		},
		{
			name: "restore",
			err:  fmt.Errorf("%w: %w", ErrRestoreFailure, &DeviceError{Op: opSetAttrFlush, Kind: ErrDeviceApply, Err: unix.EIO}),
			want: "run 'reset'",
		},
		{
			name: "busy",
			err:  fmt.Errorf("opening: %w", ErrDeviceBusy),
			want: "terminal is in use",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Describe(tt.err)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Describe() = %q, want it to contain %q", got, tt.want)
			}
		})
	}

	if Describe(nil) != "" {
		t.Error("Describe(nil) should be empty")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
	if got := ExitCode(ErrDeviceApply); got != 1 {
		t.Errorf("ExitCode(err) = %d, want 1", got)
	}
}
