// ABOUTME: Settings loading with global + project YAML config merge
// ABOUTME: Defaults, validation and the read-timeout/follow-up bounds for the key reader

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	pilog "github.com/mauromedda/rawtty/internal/log"
)

// Bounds for the numeric settings.
const (
	MinReadTimeout = 1
	MaxReadTimeout = 255
	MinFollowUps   = 1
	MaxFollowUps   = 16
)

// Settings holds the merged configuration.
type Settings struct {
	// ReadTimeout is the VTIME value in tenths of a second.
	ReadTimeout int                 `yaml:"read_timeout_ds,omitempty"`
	FollowUps   int                 `yaml:"follow_ups,omitempty"`
	LogLevel    string              `yaml:"log_level,omitempty"`
	TraceFile   string              `yaml:"trace_file,omitempty"`
	Keybindings map[string][]string `yaml:"keybindings,omitempty"`
}

// Defaults returns the built-in settings every file is merged onto.
func Defaults() *Settings {
	return &Settings{
		ReadTimeout: 1,
		FollowUps:   2,
		LogLevel:    "warn",
		Keybindings: defaultKeybindings(),
	}
}

// Load reads global and project-local settings and merges them onto
// Defaults. Project settings override global settings. Missing files are
// not an error.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(merge(Defaults(), global), project)
	ResolveEnvVars(merged)
	return merged, nil
}

// loadFile reads Settings from a YAML file. Returns empty Settings and the
// os error if the file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	pilog.Debug("config: loaded %s", path)
	return &s, nil
}

// merge overlays non-zero values of over onto base. Keybindings merge
// per action, so a file can rebind one action without repeating the rest.
func merge(base, over *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if over == nil {
		return base
	}

	result := *base

	if over.ReadTimeout != 0 {
		result.ReadTimeout = over.ReadTimeout
	}
	if over.FollowUps != 0 {
		result.FollowUps = over.FollowUps
	}
	if over.LogLevel != "" {
		result.LogLevel = over.LogLevel
	}
	if over.TraceFile != "" {
		result.TraceFile = over.TraceFile
	}

	if len(over.Keybindings) > 0 {
		kb := make(map[string][]string, len(base.Keybindings)+len(over.Keybindings))
		for action, keys := range base.Keybindings {
			kb[action] = keys
		}
		for action, keys := range over.Keybindings {
			kb[action] = keys
		}
		result.Keybindings = kb
	}

	return &result
}

// Validate checks ranges, the log level and every keybinding.
func (s *Settings) Validate() error {
	var errs []error
	if s.ReadTimeout < MinReadTimeout || s.ReadTimeout > MaxReadTimeout {
		errs = append(errs, fmt.Errorf("read_timeout_ds %d out of range %d..%d", s.ReadTimeout, MinReadTimeout, MaxReadTimeout))
	}
	if s.FollowUps < MinFollowUps || s.FollowUps > MaxFollowUps {
		errs = append(errs, fmt.Errorf("follow_ups %d out of range %d..%d", s.FollowUps, MinFollowUps, MaxFollowUps))
	}
	if _, err := pilog.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := s.Bindings(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
