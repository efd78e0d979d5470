package installer

import (
	"context"
	"strings"
	"sync"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/config"
	"github.com/coosanta/meldmc-installer/internal/logger"
	"github.com/coosanta/meldmc-installer/internal/platform"
	"github.com/coosanta/meldmc-installer/internal/repo"
)

// Service is the surface a front end talks to. It owns the current catalog
// and an Installer; front ends own their widgets and call in.
type Service struct {
	Installer *Installer
	Fetcher   catalog.Fetcher
	Layout    catalog.Layout

	mu      sync.RWMutex
	catalog *catalog.Catalog
	report  *catalog.LoadReport
}

// NewService wires a Service from settings. override is an optional local
// manifest file used when the download fails.
func NewService(s *config.Settings, log *logger.Logger, override string) *Service {
	client := repo.NewClient(repo.Options{Timeout: s.Timeout()})
	layout := s.Layout()
	return &Service{
		Fetcher: client,
		Layout:  layout,
		Installer: &Installer{
			Fetcher:          client,
			Layout:           layout,
			Log:              log,
			AllowFallback:    s.AllowFallbackManifest,
			ManifestOverride: override,
			Icon:             s.Icon,
		},
	}
}

// Refresh fetches both channel indexes and replaces the catalog wholesale,
// even when the new one is empty.
func (s *Service) Refresh(ctx context.Context) (*catalog.LoadReport, error) {
	c, report, err := catalog.Load(ctx, s.Fetcher, s.Layout)

	log := s.Installer.log()
	for _, rep := range report.Channels {
		switch {
		case rep.Err != nil:
			log.Warnf("%s index unavailable: %v", rep.Channel, rep.Err)
		case rep.Count == 0:
			log.Warnf("%s index at %s listed no versions", rep.Channel, rep.URL)
		default:
			log.Printf("%s index: %d versions: %s", rep.Channel, rep.Count, strings.Join(c.IDs(rep.Channel), " "))
		}
	}

	s.mu.Lock()
	s.catalog = c
	s.report = report
	s.mu.Unlock()
	return report, err
}

// Catalog returns the current catalog; nil before the first Refresh.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// ListVersions returns the channel's versions, latest first by string order.
func (s *Service) ListVersions(ch catalog.Channel) []catalog.Entry {
	return s.Catalog().Versions(ch)
}

// Install resolves (ch, index) against the current catalog and installs it.
// An index outside the channel is a user-input error.
func (s *Service) Install(ctx context.Context, ch catalog.Channel, index int, minecraftDir string, tag platform.Tag) (*Result, error) {
	entry, err := s.Catalog().Resolve(ch, index)
	if err != nil {
		return nil, &StepError{Stage: StageValidate, Kind: ErrUserInput, Err: err}
	}
	return s.Installer.Install(ctx, Request{MinecraftDir: minecraftDir, Version: entry, Platform: tag})
}
