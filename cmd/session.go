package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coosanta/meldmc-installer/internal/config"
	"github.com/coosanta/meldmc-installer/internal/installer"
	"github.com/coosanta/meldmc-installer/internal/logger"
	"github.com/coosanta/meldmc-installer/internal/platform"
)

// session is what every command that touches the repository needs.
type session struct {
	settings *config.Settings
	log      *logger.Logger
	svc      *installer.Service
	tag      platform.Tag
}

// openSession loads settings, opens a log file and wires the install
// service. override is an optional local manifest file.
func openSession(cmd *cobra.Command, override string) (*session, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	tag, err := resolvePlatform(cmd)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logger.NewDiscard()
	if dir, err := logger.Dir(); err == nil {
		if l, err := logger.New(dir, verbose); err == nil {
			log = l
		} else {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		}
	}
	log.Printf("meldmc-installer %s, repository %s, platform %s", cmd.Root().Version, s.RepositoryURL, tag)

	return &session{
		settings: s,
		log:      log,
		svc:      installer.NewService(s, log, override),
		tag:      tag,
	}, nil
}

func (s *session) Close() { s.log.Close() }

// settingsDir returns the --config directory or the default one.
func settingsDir(cmd *cobra.Command) (string, error) {
	if d, _ := cmd.Flags().GetString("config"); d != "" {
		return d, nil
	}
	return config.Dir()
}

// loadSettings reads the settings file and applies environment overrides.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	dir, err := settingsDir(cmd)
	if err != nil {
		return nil, err
	}
	s, err := config.Read(dir)
	if err != nil {
		return nil, err
	}
	s.ApplyEnv(os.Getenv)
	return s, nil
}

func resolvePlatform(cmd *cobra.Command) (platform.Tag, error) {
	if p, _ := cmd.Flags().GetString("platform"); p != "" {
		return platform.Parse(p)
	}
	return platform.Detect(), nil
}

// resolveMinecraftDir returns the --dir flag or the launcher's default directory.
func resolveMinecraftDir(cmd *cobra.Command) (string, error) {
	if d, _ := cmd.Flags().GetString("dir"); strings.TrimSpace(d) != "" {
		return d, nil
	}
	if d := platform.DefaultMinecraftDir(); d != "" {
		return d, nil
	}
	return "", fmt.Errorf("minecraft directory not found; use --dir")
}
