// ABOUTME: E2E harness: builds the rawkeys binary once and drives it through a pseudo-terminal
// ABOUTME: Keeps the pty slave open in the test so terminal settings can be compared after exit

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package e2e

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

var binPath string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "rawkeys-e2e")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	binPath = filepath.Join(dir, "rawkeys")
	build := exec.Command("go", "build", "-o", binPath, "../cmd/rawkeys")
	build.Stdout, build.Stderr = os.Stderr, os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "building rawkeys: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// ptySession is a running rawkeys process attached to a pty.
type ptySession struct {
	cmd  *exec.Cmd
	ptmx *os.File
	tty  *os.File

	mu   sync.Mutex
	out  bytes.Buffer
	done chan struct{}
}

func startRawkeys(t *testing.T, args ...string) *ptySession {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 100}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}

	cmd := exec.Command(binPath, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "TERM=xterm-256color")
	cmd.Dir = t.TempDir()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}
	if err := cmd.Start(); err != nil {
		ptmx.Close()
		tty.Close()
		t.Fatalf("starting rawkeys: %v", err)
	}

	s := &ptySession{cmd: cmd, ptmx: ptmx, tty: tty, done: make(chan struct{})}
	go s.drain()
	t.Cleanup(s.close)
	return s
}

func (s *ptySession) drain() {
	defer close(s.done)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.out.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *ptySession) output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

func (s *ptySession) expect(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(s.output(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q; output:\n%q", want, s.output())
}

func (s *ptySession) send(t *testing.T, data string) {
	t.Helper()
	if _, err := s.ptmx.Write([]byte(data)); err != nil {
		t.Fatalf("writing to pty: %v", err)
	}
}

// termios returns the current settings of the slave side.
func (s *ptySession) termios(t *testing.T) unix.Termios {
	t.Helper()
	tio, err := unix.IoctlGetTermios(int(s.tty.Fd()), ioctlGetTermios)
	if err != nil {
		t.Fatalf("reading termios: %v", err)
	}
	return *tio
}

// wait waits for the process to exit and returns its wait status.
func (s *ptySession) wait(t *testing.T, timeout time.Duration) syscall.WaitStatus {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- s.cmd.Wait() }()

	select {
	case err := <-errc:
		var ee *exec.ExitError
		if err != nil && !errors.As(err, &ee) {
			t.Fatalf("wait: %v", err)
		}
		return s.cmd.ProcessState.Sys().(syscall.WaitStatus)
	case <-time.After(timeout):
		_ = s.cmd.Process.Kill()
		t.Fatalf("rawkeys did not exit; output:\n%q", s.output())
	}
	return 0
}

func (s *ptySession) close() {
	if s.cmd.ProcessState == nil {
		_ = s.cmd.Process.Kill()
		_, _ = s.cmd.Process.Wait()
	}
	s.tty.Close()
	s.ptmx.Close()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
}
