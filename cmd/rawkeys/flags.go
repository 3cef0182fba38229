// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports -timeout, -follow-ups, -log-level, -trace, -keys, -verbose, -version

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/mauromedda/rawtty/internal/config"
)

type cliArgs struct {
	timeout   int
	followUps int
	logLevel  string
	trace     string
	keys      bool
	verbose   bool
	version   bool
}

func parseFlags(argv []string, stderr io.Writer) (cliArgs, error) {
	var args cliArgs

	fs := flag.NewFlagSet("rawkeys", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&args.timeout, "timeout", 0, "Read timeout in tenths of a second (1-255)")
	fs.IntVar(&args.followUps, "follow-ups", 0, "Empty reads allowed while completing an escape sequence")
	fs.StringVar(&args.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&args.trace, "trace", "", "Append decoded keys as JSON lines to this file")
	fs.BoolVar(&args.keys, "keys", false, "Print the key bindings and exit")
	fs.BoolVar(&args.verbose, "verbose", false, "Shorthand for -log-level debug")
	fs.BoolVar(&args.version, "version", false, "Show version and exit")

	if err := fs.Parse(argv); err != nil {
		return cliArgs{}, err
	}
	if fs.NArg() > 0 {
		return cliArgs{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return args, nil
}

// apply overrides file settings with the flags that were given.
func (a cliArgs) apply(s *config.Settings) {
	if a.timeout != 0 {
		s.ReadTimeout = a.timeout
	}
	if a.followUps != 0 {
		s.FollowUps = a.followUps
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
	if a.verbose {
		s.LogLevel = "debug"
	}
	if a.trace != "" {
		s.TraceFile = a.trace
	}
}
