// ABOUTME: VirtualDevice implements Device in memory for tests without a real TTY.
// ABOUTME: Records every applied configuration, serves scripted input and injects syscall failures.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"errors"
	"sync"

	"golang.org/x/sys/unix"
)

// Applied is one SetAttr call recorded by VirtualDevice.
type Applied struct {
	Attrs Attributes
	Mode  ApplyMode
}

// inputChunk is either bytes to deliver or a single read timeout.
type inputChunk struct {
	data    []byte
	timeout bool
}

// VirtualDevice is a fake Device. Its configuration starts as
// CookedAttributes; reads with nothing queued behave like an expired
// VTIME and return (0, nil).
type VirtualDevice struct {
	ownership

	mu       sync.Mutex
	attrs    Attributes
	applied  []Applied
	input    []inputChunk
	width    int
	height   int
	reads    int
	getErr   error
	setErr   error
	setAfter int // SetAttr calls that succeed before setErr applies
}

// NewVirtualDevice returns a VirtualDevice with the given geometry.
func NewVirtualDevice(width, height int) *VirtualDevice {
	return &VirtualDevice{
		attrs:  CookedAttributes(),
		width:  width,
		height: height,
	}
}

// Fd returns -1; a VirtualDevice has no descriptor.
func (v *VirtualDevice) Fd() int { return -1 }

// GetAttr returns the current configuration or the injected failure.
func (v *VirtualDevice) GetAttr() (Attributes, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.getErr != nil {
		return Attributes{}, &DeviceError{Op: opGetAttr, Kind: ErrDeviceQuery, Err: v.getErr}
	}
	return v.attrs, nil
}

// SetAttr records and applies a configuration. ApplyFlush discards all
// queued input, as the kernel does with unread bytes.
func (v *VirtualDevice) SetAttr(a Attributes, mode ApplyMode) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.setErr != nil {
		if v.setAfter <= 0 {
			return &DeviceError{Op: opSetAttr, Kind: ErrDeviceApply, Err: v.setErr}
		}
		v.setAfter--
	}

	v.attrs = a
	v.applied = append(v.applied, Applied{Attrs: a, Mode: mode})
	if mode == ApplyFlush {
		v.input = nil
	}
	return nil
}

// Read delivers queued bytes, or (0, nil) for a timeout.
func (v *VirtualDevice) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.reads++
	if len(p) == 0 || len(v.input) == 0 {
		return 0, nil
	}

	head := &v.input[0]
	if head.timeout {
		v.input = v.input[1:]
		return 0, nil
	}

	n := copy(p, head.data)
	head.data = head.data[n:]
	if len(head.data) == 0 {
		v.input = v.input[1:]
	}
	return n, nil
}

// Size returns the configured geometry.
func (v *VirtualDevice) Size() (width, height int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.width, v.height, nil
}

// --- Test helpers (not part of Device) ---

// Feed queues bytes for subsequent reads.
func (v *VirtualDevice) Feed(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.input = append(v.input, inputChunk{data: append([]byte(nil), data...)})
}

// FeedTimeout queues one read that times out even if bytes follow.
func (v *VirtualDevice) FeedTimeout() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.input = append(v.input, inputChunk{timeout: true})
}

// Pending returns how many queued bytes have not been read.
func (v *VirtualDevice) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0
	for _, c := range v.input {
		n += len(c.data)
	}
	return n
}

// Current returns the configuration the device currently holds.
func (v *VirtualDevice) Current() Attributes {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.attrs
}

// SetCurrent overwrites the configuration without recording a SetAttr,
// as another process sharing the terminal would.
func (v *VirtualDevice) SetCurrent(a Attributes) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.attrs = a
}

// Applied returns every successful SetAttr call in order.
func (v *VirtualDevice) Applied() []Applied {
	v.mu.Lock()
	defer v.mu.Unlock()

	return append([]Applied(nil), v.applied...)
}

// AppliedCount returns how many times a configuration equal to a was applied.
func (v *VirtualDevice) AppliedCount(a Attributes) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0
	for _, ap := range v.applied {
		if ap.Attrs.Equal(a) {
			n++
		}
	}
	return n
}

// Reads returns how many Read calls were made.
func (v *VirtualDevice) Reads() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.reads
}

// FailGetAttr makes GetAttr fail with err; nil clears it.
func (v *VirtualDevice) FailGetAttr(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.getErr = err
}

// FailSetAttr makes every SetAttr after the first n fail with err;
// a nil err clears it.
func (v *VirtualDevice) FailSetAttr(n int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.setErr = err
	v.setAfter = n
}

// SetSize updates the geometry reported by Size.
func (v *VirtualDevice) SetSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.width = width
	v.height = height
}

// NotTerminal makes GetAttr fail the way ioctl does on a pipe or file.
func (v *VirtualDevice) NotTerminal() {
	v.FailGetAttr(errors.Join(ErrNotTerminal, unix.ENOTTY))
}
