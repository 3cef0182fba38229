// ABOUTME: Tests for DeriveRaw covering every cleared and set flag, purity and determinism.
// ABOUTME: Runs against CookedAttributes, so no terminal device is needed.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestDeriveRaw_ClearsFlags(t *testing.T) {
	t.Parallel()

	raw := DeriveRaw(CookedAttributes(), DefaultReadTimeout).Attributes()

	tests := []struct {
		name string
		word uint64
		bit  uint64
	}{
		{name: "BRKINT", word: raw.Iflag(), bit: unix.BRKINT},
		{name: "ICRNL", word: raw.Iflag(), bit: unix.ICRNL},
		{name: "INPCK", word: raw.Iflag(), bit: unix.INPCK},
		{name: "ISTRIP", word: raw.Iflag(), bit: unix.ISTRIP},
		{name: "IXON", word: raw.Iflag(), bit: unix.IXON},
		{name: "OPOST", word: raw.Oflag(), bit: unix.OPOST},
		{name: "ECHO", word: raw.Lflag(), bit: unix.ECHO},
		{name: "ICANON", word: raw.Lflag(), bit: unix.ICANON},
		{name: "IEXTEN", word: raw.Lflag(), bit: unix.IEXTEN},
		{name: "ISIG", word: raw.Lflag(), bit: unix.ISIG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.word&tt.bit != 0 {
				t.Errorf("%s still set in raw configuration", tt.name)
			}
		})
	}
}

func TestDeriveRaw_Forces8BitCharacters(t *testing.T) {
	t.Parallel()

	orig := CookedAttributes()
	if orig.Cflag()&unix.CSIZE != unix.CS7 {
		t.Fatalf("baseline should use 7-bit characters, Cflag=%#x", orig.Cflag())
	}

	raw := DeriveRaw(orig, DefaultReadTimeout).Attributes()
	if raw.Cflag()&unix.CSIZE != unix.CS8 {
		t.Errorf("character size = %#x, want CS8 (%#x)", raw.Cflag()&unix.CSIZE, unix.CS8)
	}
}

func TestDeriveRaw_KeepsUnrelatedBits(t *testing.T) {
	t.Parallel()

	orig := CookedAttributes()
	raw := DeriveRaw(orig, DefaultReadTimeout).Attributes()

	if raw.Oflag()&unix.ONLCR == 0 {
		t.Error("ONLCR should be left alone; OPOST already disables it")
	}
	if raw.Cflag()&unix.CREAD == 0 {
		t.Error("CREAD should be left alone")
	}
	if raw.Lflag()&unix.ECHOE == 0 {
		t.Error("ECHOE should be left alone")
	}
	origT, rawT := orig.Termios(), raw.Termios()
	if origT.Ispeed != rawT.Ispeed || origT.Ospeed != rawT.Ospeed {
		t.Error("line speeds should be copied from the original")
	}
}

func TestDeriveRaw_ReadParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		timeout   Deciseconds
		wantVTime Deciseconds
	}{
		{name: "default", timeout: DefaultReadTimeout, wantVTime: 1},
		{name: "half second", timeout: 5, wantVTime: 5},
		{name: "maximum", timeout: 255, wantVTime: 255},
		{name: "zero raised to default", timeout: 0, wantVTime: DefaultReadTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := DeriveRaw(CookedAttributes(), tt.timeout).Attributes()
			if raw.VMin() != 0 {
				t.Errorf("VMIN = %d, want 0", raw.VMin())
			}
			if raw.VTime() != tt.wantVTime {
				t.Errorf("VTIME = %d, want %d", raw.VTime(), tt.wantVTime)
			}
		})
	}
}

func TestDeriveRaw_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	orig := CookedAttributes()
	before := orig
	_ = DeriveRaw(orig, 3)

	if !orig.Equal(before) {
		t.Error("DeriveRaw modified its input")
	}
	if !orig.Equal(CookedAttributes()) {
		t.Error("input no longer matches the cooked baseline")
	}
}

func TestDeriveRaw_Deterministic(t *testing.T) {
	t.Parallel()

	orig := CookedAttributes()
	a := DeriveRaw(orig, DefaultReadTimeout)
	b := DeriveRaw(orig, DefaultReadTimeout)

	if !a.Equal(b) {
		t.Error("DeriveRaw returned different configurations for the same input")
	}
	if a.Attributes().Termios() != b.Attributes().Termios() {
		t.Error("termios structures differ")
	}
}

func TestDeriveRaw_Idempotent(t *testing.T) {
	t.Parallel()

	once := DeriveRaw(CookedAttributes(), DefaultReadTimeout)
	twice := DeriveRaw(once.Attributes(), DefaultReadTimeout)

	if !once.Equal(twice) {
		t.Error("deriving from an already raw configuration changed it")
	}
}
