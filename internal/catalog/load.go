package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/coosanta/meldmc-installer/internal/repo"
)

// ErrNoVersions is returned by Load when neither channel produced a version.
var ErrNoVersions = errors.New("no versions available")

// Fetcher is the slice of repo.Client that Load needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// starter is implemented by *repo.Client.
type starter interface {
	Go(ctx context.Context, url string) *repo.Pending
}

func start(ctx context.Context, f Fetcher, url string) *repo.Pending {
	if s, ok := f.(starter); ok {
		return s.Go(ctx, url)
	}
	return repo.Start(ctx, url, f.Fetch)
}

// ChannelReport records how one channel's index was obtained.
type ChannelReport struct {
	Channel Channel
	URL     string
	Err     error // fetch failure; nil if the document arrived
	Count   int   // entries after parsing; 0 also covers a malformed document
}

// LoadReport describes a Load for logging and status text.
type LoadReport struct {
	Channels []ChannelReport
}

// Degraded reports whether any channel failed to fetch or came back empty.
func (r *LoadReport) Degraded() bool {
	for _, c := range r.Channels {
		if c.Err != nil || c.Count == 0 {
			return true
		}
	}
	return false
}

// Load fetches both channel indexes concurrently and parses them. A channel
// that fails to fetch or parse degrades to empty; only when both are empty
// does Load return an error, wrapping the first fetch failure if there was one.
func Load(ctx context.Context, f Fetcher, layout Layout) (*Catalog, *LoadReport, error) {
	report := &LoadReport{Channels: make([]ChannelReport, len(Channels))}
	entries := make([][]Entry, len(Channels))

	pending := make([]*repo.Pending, len(Channels))
	for i, ch := range Channels {
		pending[i] = start(ctx, f, layout.MetadataURL(ch))
	}
	for i, ch := range Channels {
		rep := ChannelReport{Channel: ch, URL: pending[i].URL}
		data, err := pending[i].Wait()
		if err != nil {
			rep.Err = err
			entries[i] = []Entry{}
		} else {
			entries[i] = Parse(data, ch)
		}
		rep.Count = len(entries[i])
		report.Channels[i] = rep
	}

	c := New(entries[0], entries[1])
	if c.Empty() {
		for _, rep := range report.Channels {
			if rep.Err != nil {
				return c, report, fmt.Errorf("%w: %v", ErrNoVersions, rep.Err)
			}
		}
		return c, report, ErrNoVersions
	}
	return c, report, nil
}
