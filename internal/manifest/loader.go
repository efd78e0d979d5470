// Package manifest obtains the launcher version manifest for a MeldMC
// version. Sources are tried in order:
//
//	Remote URL → Local override file → Synthesized fallback
//
// The synthesized fallback is a degraded mode and only used when allowed.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalid is returned for a document that is empty or not JSON.
	ErrInvalid = errors.New("manifest is empty or not valid JSON")
	// ErrOverride marks a failure of the local override file, as opposed
	// to the download.
	ErrOverride = errors.New("local manifest override")
)

// Fetcher is the slice of repo.Client that Load needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LoadOptions controls where the manifest is loaded from.
type LoadOptions struct {
	// RemoteURL is tried first when Fetcher is set.
	RemoteURL string
	Fetcher   Fetcher
	// LocalOverride, if set, is tried after a remote failure.
	LocalOverride string
	// AllowFallback permits a synthesized manifest as the last resort.
	AllowFallback bool
	// VersionID is the launcher version id, e.g. "meldmc-1.0.0".
	VersionID string
}

// Load returns the manifest using the fallback chain. When every permitted
// source fails, the error wraps the remote failure so callers can match it
// with errors.Is(err, repo.ErrNetwork).
func Load(ctx context.Context, opts LoadOptions) (*Manifest, error) {
	var remoteErr error
	if opts.RemoteURL != "" && opts.Fetcher != nil {
		data, err := loadRemote(ctx, opts.Fetcher, opts.RemoteURL)
		if err == nil {
			return &Manifest{Data: data, Source: SourceRemote}, nil
		}
		remoteErr = err
	} else {
		remoteErr = errors.New("no remote manifest configured")
	}

	if opts.LocalOverride != "" {
		data, readErr := os.ReadFile(opts.LocalOverride)
		if readErr == nil {
			// The file exists, so invalid content is fatal.
			if !valid(data) {
				return nil, fmt.Errorf("%w %s: %w", ErrOverride, opts.LocalOverride, ErrInvalid)
			}
			return &Manifest{Data: data, Source: SourceOverride, RemoteErr: remoteErr}, nil
		}
		if !os.IsNotExist(readErr) {
			return nil, fmt.Errorf("%w %s: %w", ErrOverride, opts.LocalOverride, readErr)
		}
	}

	if opts.AllowFallback {
		return &Manifest{Data: Synthesize(opts.VersionID), Source: SourceFallback, RemoteErr: remoteErr}, nil
	}
	return nil, remoteErr
}

func loadRemote(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !valid(data) {
		return nil, fmt.Errorf("fetch %s: %w", url, ErrInvalid)
	}
	return data, nil
}

func valid(data []byte) bool {
	return len(data) > 0 && gjson.ValidBytes(data)
}
