// ABOUTME: CLI entry point for rawkeys: shows decoded keystrokes from a raw-mode terminal
// ABOUTME: Loads config, acquires the terminal session, and guarantees restore on every exit path

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mauromedda/rawtty/internal/config"
	"github.com/mauromedda/rawtty/internal/keyview"
	pilog "github.com/mauromedda/rawtty/internal/log"
	"github.com/mauromedda/rawtty/internal/termfix"
	"github.com/mauromedda/rawtty/internal/trace"
	"github.com/mauromedda/rawtty/pkg/terminal"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Exit statuses besides 0 and terminal.ExitCode.
const exitUsage = 2

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without os.Exit; it returns the process exit status.
func run(argv []string, stdin, stdout *os.File, stderr io.Writer) int {
	args, err := parseFlags(argv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "rawkeys: %v\n", err)
		return exitUsage
	}

	if args.version {
		fmt.Fprintf(stdout, "rawkeys %s (%s)\n", version, commit)
		return 0
	}

	cfg, bindings, err := loadSettings(args)
	if err != nil {
		fmt.Fprintf(stderr, "rawkeys: %v\n", err)
		return exitUsage
	}

	if args.keys {
		style := "notty"
		if term.IsTerminal(int(stdout.Fd())) {
			style = "dark"
		}
		if err := renderKeys(stdout, bindings, style, 80); err != nil {
			fmt.Fprintf(stderr, "rawkeys: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runSession(cfg, bindings, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "rawkeys: %s\n", terminal.Describe(err))
		return terminal.ExitCode(err)
	}
	return 0
}

// loadSettings merges config files and flags, validates the result and
// applies the log level.
func loadSettings(args cliArgs) (*config.Settings, config.Bindings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, config.Bindings{}, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, config.Bindings{}, err
	}
	args.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, config.Bindings{}, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := pilog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, config.Bindings{}, err
	}
	pilog.SetLevel(level)

	bindings, err := cfg.Bindings()
	if err != nil {
		return nil, config.Bindings{}, err
	}
	return cfg, bindings, nil
}

// runSession owns the terminal from acquisition to release. Every return
// path after NewSession passes through Release, which restores the
// original configuration without masking the error being returned.
func runSession(cfg *config.Settings, bindings config.Bindings, stdin, stdout *os.File) (err error) {
	tty, err := terminal.OpenTTY(stdin)
	if err != nil {
		return err
	}
	defer tty.Close()

	sess, err := terminal.NewSession(tty, terminal.WithReadTimeout(terminal.Deciseconds(cfg.ReadTimeout)))
	if err != nil {
		return err
	}
	pilog.SetRawLineEndings(true)
	defer pilog.SetRawLineEndings(false)
	defer sess.Release(&err)
	defer terminal.RecoverPanic(sess)

	var tw *trace.Writer
	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer f.Close()
		tw = trace.NewWriter(f)
	}

	view := keyview.New(sess, stdout, keyview.Options{
		Bindings:  bindings,
		FollowUps: cfg.FollowUps,
		Trace:     tw,
		Tracing:   tw != nil,
		Renderer:  termfix.Renderer(stdout, termfix.EnvProfile(stdout)),
		Guard:     sess,
	})
	stop, err := sess.EnableWatched(view.Resize)
	if err != nil {
		return err
	}
	defer func() {
		// Restore while the handlers are still installed.
		sess.Release(&err)
		stop()
	}()

	return view.Run(context.Background())
}
