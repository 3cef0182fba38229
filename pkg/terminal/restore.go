// ABOUTME: RecoverPanic restores the terminal when a panic unwinds main, then exits non-zero.
// ABOUTME: RecoverGoroutine does the same for helper goroutines without exiting.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// panicExit is replaced in tests.
var panicExit = os.Exit

// RecoverPanic should be deferred at the top of main, after the session
// is created. On panic it restores the original configuration, prints
// the panic value and stack trace to stderr and exits with status 1.
func RecoverPanic(s *Session) {
	r := recover()
	if r == nil {
		return
	}
	reportPanic(os.Stderr, s, "panic", r)
	panicExit(1)
}

// RecoverGoroutine should be deferred at the top of goroutines that run
// while the terminal is raw. It restores the terminal and reports the
// panic but leaves shutdown to the main goroutine.
func RecoverGoroutine(s *Session) {
	r := recover()
	if r == nil {
		return
	}
	reportPanic(os.Stderr, s, "goroutine panic", r)
}

func reportPanic(w io.Writer, s *Session, label string, r any) {
	// Restore first: the trace must land on a cooked terminal.
	if err := s.Disable(); err != nil {
		fmt.Fprintf(w, "\r\n%s\r\n", Describe(err))
	}
	fmt.Fprintf(w, "\n%s: %v\n\n%s\n", label, r, debug.Stack())
}
