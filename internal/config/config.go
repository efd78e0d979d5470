// Package config manages the installer's settings file at
// <UserConfigDir>/meldmc-installer/settings.json. The schema is versioned to
// support forward-compatible migrations. A missing file means defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/fsutil"
	"github.com/coosanta/meldmc-installer/internal/profile"
	"github.com/coosanta/meldmc-installer/internal/repo"
)

const (
	configVersion = 1
	appDir        = "meldmc-installer"
	configFile    = "settings.json"

	// EnvRepository overrides Settings.RepositoryURL.
	EnvRepository = "MELDMC_REPOSITORY"
)

// Settings controls where the installer looks for MeldMC and how it degrades.
type Settings struct {
	Version        int    `json:"version"`
	RepositoryURL  string `json:"repositoryUrl"`
	Group          string `json:"group"`
	Artifact       string `json:"artifact"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	// AllowFallbackManifest lets an install continue with a synthesized
	// manifest when the real one cannot be downloaded.
	AllowFallbackManifest bool   `json:"allowFallbackManifest"`
	Icon                  string `json:"icon"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		Version:               configVersion,
		RepositoryURL:         catalog.DefaultBaseURL,
		Group:                 catalog.DefaultGroup,
		Artifact:              catalog.DefaultArtifact,
		TimeoutSeconds:        int(repo.DefaultTimeout / time.Second),
		AllowFallbackManifest: true,
		Icon:                  profile.DefaultIcon,
	}
}

// Dir returns the default settings directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// ConfigPath returns the path to the settings file inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, configFile)
}

// Read loads settings from dir, starting from Default so absent fields keep
// their defaults. A missing file is not an error.
func Read(dir string) (*Settings, error) {
	s := Default()
	path := ConfigPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Future: handle s.Version < configVersion migrations here.

	return s, nil
}

// Write persists settings to dir atomically.
func Write(dir string, s *Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := fsutil.WriteFileAtomic(ConfigPath(dir), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment overrides. getenv is os.Getenv outside tests.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvRepository)); v != "" {
		s.RepositoryURL = v
	}
}

// Layout returns the repository layout described by the settings.
func (s *Settings) Layout() catalog.Layout {
	return catalog.Layout{BaseURL: s.RepositoryURL, Group: s.Group, Artifact: s.Artifact}
}

// Timeout returns the per-fetch timeout, falling back to the default for
// non-positive values.
func (s *Settings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return repo.DefaultTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}
