// ABOUTME: E2E tests for rawkeys on a real pseudo-terminal
// ABOUTME: Interrupt bytes arrive as keys, quit and SIGTERM both leave the terminal settings as found

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestRawkeys_QuitRestoresTerminal(t *testing.T) {
	s := startRawkeys(t)
	before := s.termios(t)

	s.expect(t, "press Ctrl+Q to quit", 5*time.Second)
	s.send(t, "a")
	s.expect(t, "LATIN SMALL LETTER A", 2*time.Second)
	s.send(t, "\x11")

	ws := s.wait(t, 5*time.Second)
	if !ws.Exited() || ws.ExitStatus() != 0 {
		t.Fatalf("wait status = %v, want exit 0", ws)
	}
	if after := s.termios(t); after != before {
		t.Errorf("terminal settings changed:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestRawkeys_InterruptBytesAreKeys(t *testing.T) {
	s := startRawkeys(t)
	s.expect(t, "press Ctrl+Q to quit", 5*time.Second)

	s.send(t, "\x03")
	s.expect(t, "Ctrl+C", 2*time.Second)
	s.send(t, "\x1a")
	s.expect(t, "Ctrl+Z", 2*time.Second)

	if s.cmd.ProcessState != nil {
		t.Fatal("rawkeys exited on an interrupt byte")
	}
	s.send(t, "\x11")
	if ws := s.wait(t, 5*time.Second); ws.ExitStatus() != 0 {
		t.Errorf("exit status = %d, want 0", ws.ExitStatus())
	}
}

func TestRawkeys_LoneEscapeDoesNotHang(t *testing.T) {
	s := startRawkeys(t)
	s.expect(t, "press Ctrl+Q to quit", 5*time.Second)

	s.send(t, "\x1b")
	s.expect(t, "Escape", 2*time.Second)
	s.send(t, "\x1b[A")
	s.expect(t, "1b 5b 41", 2*time.Second)

	s.send(t, "\x11")
	s.wait(t, 5*time.Second)
}

func TestRawkeys_SIGTERMRestoresTerminal(t *testing.T) {
	s := startRawkeys(t)
	before := s.termios(t)
	s.expect(t, "press Ctrl+Q to quit", 5*time.Second)

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}
	ws := s.wait(t, 5*time.Second)
	if !ws.Signaled() || ws.Signal() != syscall.SIGTERM {
		t.Errorf("wait status = %v, want killed by SIGTERM", ws)
	}
	if after := s.termios(t); after != before {
		t.Errorf("terminal settings changed after SIGTERM")
	}
}

func TestRawkeys_SIGTERMAsSoonAsRaw(t *testing.T) {
	s := startRawkeys(t)
	before := s.termios(t)

	// Signal the moment raw mode is visible on the device, before the
	// first frame is drawn.
	deadline := time.Now().Add(5 * time.Second)
	for s.termios(t).Lflag&unix.ICANON != 0 {
		if time.Now().After(deadline) {
			t.Fatal("terminal never entered raw mode")
		}
		time.Sleep(time.Millisecond)
	}
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}

	ws := s.wait(t, 5*time.Second)
	if !ws.Signaled() || ws.Signal() != syscall.SIGTERM {
		t.Errorf("wait status = %v, want killed by SIGTERM", ws)
	}
	if after := s.termios(t); after != before {
		t.Errorf("terminal left raw after an early SIGTERM:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestRawkeys_NotATerminal(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	devnull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer devnull.Close()

	var stderr bytes.Buffer
	cmd := exec.Command(binPath)
	cmd.Stdin = devnull
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	cmd.Dir = t.TempDir()

	err = cmd.Run()
	if cmd.ProcessState == nil || cmd.ProcessState.ExitCode() != 1 {
		t.Fatalf("run = %v, want exit status 1", err)
	}
	if !strings.Contains(stderr.String(), "standard input is not a terminal") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
