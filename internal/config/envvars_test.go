// ABOUTME: Tests for environment variable expansion in config
// ABOUTME: Validates ${VAR} replacement for set, unset, and mixed patterns

package config

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("RAWKEYS_TEST_DIR", "/var/tmp")

	tests := []struct {
		in   string
		want string
	}{
		{in: "${RAWKEYS_TEST_DIR}", want: "/var/tmp"},
		{in: "${RAWKEYS_TEST_DIR}/trace.jsonl", want: "/var/tmp/trace.jsonl"},
		{in: "${DEFINITELY_NOT_SET_12345}/x", want: "/x"},
		{in: "plain string", want: "plain string"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := expandEnv(tt.in); got != tt.want {
			t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveEnvVars_TraceFile(t *testing.T) {
	t.Setenv("RAWKEYS_TEST_DIR", "/logs")

	s := &Settings{TraceFile: "${RAWKEYS_TEST_DIR}/keys.jsonl"}
	ResolveEnvVars(s)
	if s.TraceFile != "/logs/keys.jsonl" {
		t.Errorf("TraceFile = %q", s.TraceFile)
	}
}
