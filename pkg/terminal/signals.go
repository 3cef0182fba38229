// ABOUTME: Signal watcher that routes termination, job-control and resize signals to a Session.
// ABOUTME: Termination restores then re-raises; SIGTSTP restores then stops; SIGCONT re-applies raw mode.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	pilog "github.com/mauromedda/rawtty/internal/log"
)

// terminationSignals end the process after the terminal is restored.
var terminationSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT}

type signalWatcher struct {
	s        *Session
	ch       chan os.Signal
	onResize func(width, height int)
}

// WatchSignals installs handlers that keep the terminal consistent when
// the process is signalled:
//
//   - SIGINT, SIGTERM, SIGHUP, SIGQUIT: restore, then re-deliver the
//     signal with its default action so the exit status reflects it.
//   - SIGTSTP: restore, then stop the process.
//   - SIGCONT: re-apply the raw configuration.
//   - SIGWINCH: call onResize (if non-nil) with the new geometry.
//
// The returned function uninstalls the handlers; it is safe to call
// more than once.
func (s *Session) WatchSignals(onResize func(width, height int)) (stop func()) {
	w := &signalWatcher{
		s:        s,
		ch:       make(chan os.Signal, 8),
		onResize: onResize,
	}
	signal.Notify(w.ch, terminationSignals...)
	signal.Notify(w.ch, unix.SIGTSTP, unix.SIGCONT, unix.SIGWINCH)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-w.ch:
				w.handle(sig)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(w.ch)
			close(done)
		})
	}
}

// EnableWatched installs the signal handlers and only then enables raw
// mode, so no signal can end the process while the terminal is raw and
// unwatched. If Enable fails the handlers are removed again.
func (s *Session) EnableWatched(onResize func(width, height int)) (stop func(), err error) {
	stop = s.WatchSignals(onResize)
	if err := s.Enable(); err != nil {
		stop()
		return nil, err
	}
	return stop, nil
}

func (w *signalWatcher) handle(sig os.Signal) {
	switch sig {
	case unix.SIGWINCH:
		if w.onResize == nil {
			return
		}
		width, height, err := w.s.Size()
		if err != nil {
			pilog.Debug("terminal: resize: %v", err)
			return
		}
		w.onResize(width, height)

	case unix.SIGTSTP:
		if err := w.s.Suspend(); err != nil {
			pilog.Error("terminal: %v", err)
		}
		// The default action stops us; SIGCONT arrives on resume.
		w.s.raise(sig)
		signal.Notify(w.ch, unix.SIGTSTP)

	case unix.SIGCONT:
		if w.s.State() != StateRaw {
			return
		}
		if err := w.s.Resume(); err != nil {
			pilog.Error("terminal: %v", err)
		}

	default:
		pilog.Debug("terminal: received %v, restoring", sig)
		if err := w.s.Disable(); err != nil {
			pilog.Error("terminal: %v", err)
		}
		w.s.raise(sig)
	}
}

// raiseDefault re-delivers sig to the process with the default action.
func raiseDefault(sig os.Signal) {
	signal.Reset(sig)
	if ss, ok := sig.(syscall.Signal); ok {
		_ = unix.Kill(unix.Getpid(), ss)
	}
}
