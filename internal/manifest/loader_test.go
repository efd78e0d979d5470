package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coosanta/meldmc-installer/internal/repo"
)

const clientJSON = `{"id":"meldmc-1.0.0","type":"release","mainClass":"net.minecraft.client.main.Main","libraries":[{"name":"a:b:1"}]}`

// TestLoadRemoteOK verifies that a valid remote manifest is used verbatim.
func TestLoadRemoteOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(clientJSON))
	}))
	defer srv.Close()

	m, err := Load(context.Background(), LoadOptions{
		RemoteURL: srv.URL,
		Fetcher:   repo.NewClient(repo.Options{Timeout: 2 * time.Second}),
		VersionID: "meldmc-1.0.0",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Source != SourceRemote {
		t.Errorf("Source = %q, want remote", m.Source)
	}
	if string(m.Data) != clientJSON {
		t.Errorf("Data = %s, want verbatim remote body", m.Data)
	}
	if m.ID() != "meldmc-1.0.0" {
		t.Errorf("ID() = %q", m.ID())
	}
}

// TestLoadRemoteFallsBackToSynthesized verifies that a remote failure yields the
// synthesized manifest when fallback is allowed.
func TestLoadRemoteFallsBackToSynthesized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m, err := Load(context.Background(), LoadOptions{
		RemoteURL:     srv.URL,
		Fetcher:       repo.NewClient(repo.Options{Timeout: 2 * time.Second}),
		AllowFallback: true,
		VersionID:     "meldmc-1.0.0",
	})
	if err != nil {
		t.Fatalf("Load() should fall back, got error = %v", err)
	}
	if m.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", m.Source)
	}
	if !errors.Is(m.RemoteErr, repo.ErrNetwork) {
		t.Errorf("RemoteErr = %v, want network error", m.RemoteErr)
	}
	if m.ID() != "meldmc-1.0.0" {
		t.Errorf("fallback ID() = %q, want meldmc-1.0.0", m.ID())
	}
}

// TestLoadRemoteFailsWithoutFallback verifies that the network error surfaces
// when fallback is not allowed.
func TestLoadRemoteFailsWithoutFallback(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{
		RemoteURL: "http://127.0.0.1:0/meldmc.json", // nothing listening
		Fetcher:   repo.NewClient(repo.Options{Timeout: 100 * time.Millisecond}),
		VersionID: "meldmc-1.0.0",
	})
	if err == nil {
		t.Fatal("Load() without fallback should fail, got nil")
	}
	if !errors.Is(err, repo.ErrNetwork) {
		t.Errorf("Load() error = %v, want repo.ErrNetwork", err)
	}
}

// TestLoadInvalidRemoteBody verifies that a non-JSON body counts as a remote failure.
func TestLoadInvalidRemoteBody(t *testing.T) {
	var tests = []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"html", "<html>maintenance</html>"},
		{"truncated", `{"id": "meldmc-1.0.0"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m, err := Load(context.Background(), LoadOptions{
				RemoteURL:     srv.URL,
				Fetcher:       repo.NewClient(repo.Options{Timeout: 2 * time.Second}),
				AllowFallback: true,
				VersionID:     "meldmc-1.0.0",
			})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if m.Source != SourceFallback {
				t.Errorf("Source = %q, want fallback", m.Source)
			}
			if !errors.Is(m.RemoteErr, ErrInvalid) {
				t.Errorf("RemoteErr = %v, want ErrInvalid", m.RemoteErr)
			}
		})
	}
}

// TestLoadRemoteFallsBackToLocalOverride verifies the full chain:
// remote fails → local override used.
func TestLoadRemoteFallsBackToLocalOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	os.WriteFile(path, []byte(clientJSON), 0o644)

	m, err := Load(context.Background(), LoadOptions{
		RemoteURL:     "http://127.0.0.1:0/meldmc.json",
		Fetcher:       repo.NewClient(repo.Options{Timeout: 100 * time.Millisecond}),
		LocalOverride: path,
		AllowFallback: true,
		VersionID:     "meldmc-1.0.0",
	})
	if err != nil {
		t.Fatalf("Load() should use local override, got error = %v", err)
	}
	if m.Source != SourceOverride {
		t.Errorf("Source = %q, want override", m.Source)
	}
	if string(m.Data) != clientJSON {
		t.Errorf("Data = %s", m.Data)
	}
}

// TestLoadMissingOverrideFallsThrough verifies that a missing override file is skipped.
func TestLoadMissingOverrideFallsThrough(t *testing.T) {
	m, err := Load(context.Background(), LoadOptions{
		LocalOverride: filepath.Join(t.TempDir(), "absent.json"),
		AllowFallback: true,
		VersionID:     "meldmc-2.0.0",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", m.Source)
	}
}

// TestLoadInvalidOverride verifies that a corrupt override is an error, not a fallback.
func TestLoadInvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not valid json"), 0o644)

	_, err := Load(context.Background(), LoadOptions{
		LocalOverride: path,
		AllowFallback: true,
		VersionID:     "meldmc-1.0.0",
	})
	if !errors.Is(err, ErrInvalid) || !errors.Is(err, ErrOverride) {
		t.Errorf("Load() error = %v, want ErrOverride and ErrInvalid", err)
	}
}

// TestLoadInvalidRemoteMissingOverride verifies that a bad download with a
// missing override and no fallback returns the download error, not an
// override error.
func TestLoadInvalidRemoteMissingOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	_, err := Load(context.Background(), LoadOptions{
		RemoteURL:     srv.URL,
		Fetcher:       repo.NewClient(repo.Options{Timeout: 2 * time.Second}),
		LocalOverride: filepath.Join(t.TempDir(), "absent.json"),
		VersionID:     "meldmc-1.0.0",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
	if errors.Is(err, ErrOverride) {
		t.Errorf("Load() error = %v blames the override", err)
	}
}

// TestSynthesize verifies the fallback document's fields.
func TestSynthesize(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal(Synthesize("meldmc-1.0.0"), &doc); err != nil {
		t.Fatalf("Synthesize() is not valid JSON: %v", err)
	}
	if doc["id"] != "meldmc-1.0.0" || doc["type"] != "release" {
		t.Errorf("doc = %v", doc)
	}
	if doc["releaseTime"] != FallbackTime || doc["time"] != FallbackTime {
		t.Errorf("timestamps = %v / %v", doc["time"], doc["releaseTime"])
	}
	libs, ok := doc["libraries"].([]any)
	if !ok || len(libs) != 0 {
		t.Errorf("libraries = %v, want empty list", doc["libraries"])
	}
}

// TestSynthesizeDeterministic verifies that the fallback is stable across calls.
func TestSynthesizeDeterministic(t *testing.T) {
	if string(Synthesize("meldmc-1.0.0")) != string(Synthesize("meldmc-1.0.0")) {
		t.Error("Synthesize() output differs between calls")
	}
}
