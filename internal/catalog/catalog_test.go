package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/coosanta/meldmc-installer/internal/repo"
)

const sampleMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>net.coosanta</groupId>
  <artifactId>meldmc</artifactId>
  <versioning>
    <latest>1.0.0</latest>
    <release>1.0.0</release>
    <versions>
      <version>0.9.0</version>
      <version>1.0.0</version>
    </versions>
  </versioning>
</metadata>`

// ── Parse ────────────────────────────────────────────────────────────────────

// TestParseSortsDescending verifies that versions come back latest-first.
func TestParseSortsDescending(t *testing.T) {
	got := ids(Parse([]byte(sampleMetadata), Release))
	want := []string{"1.0.0", "0.9.0"}

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

// TestParseTagsChannel verifies that every entry carries the caller's channel.
func TestParseTagsChannel(t *testing.T) {
	for _, e := range Parse([]byte(sampleMetadata), Snapshot) {
		if e.Channel != Snapshot {
			t.Errorf("entry %q channel = %v, want snapshot", e.ID, e.Channel)
		}
	}
}

// TestParseLexicographicOrder verifies that ordering is plain string comparison,
// so a two-digit minor version sorts after a one-digit one.
func TestParseLexicographicOrder(t *testing.T) {
	doc := metadata("0.10.0", "0.9.0", "0.2.0")
	got := ids(Parse([]byte(doc), Release))
	want := []string{"0.9.0", "0.2.0", "0.10.0"}

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

// TestParseDropsDuplicatesAndBlanks verifies that repeated and empty versions are collapsed.
func TestParseDropsDuplicatesAndBlanks(t *testing.T) {
	doc := metadata("1.0.0", " 1.0.0 ", "", "   ", "0.9.0", "0.9.0")
	got := ids(Parse([]byte(doc), Release))
	want := []string{"1.0.0", "0.9.0"}

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

// TestParseStructurallyIncomplete verifies that missing nodes and bad XML yield an empty catalog.
func TestParseStructurallyIncomplete(t *testing.T) {
	var tests = []struct {
		name string
		doc  string
	}{
		{"empty input", ""},
		{"not xml", "this is not xml"},
		{"truncated", "<metadata><versioning><versions><version>1.0"},
		{"wrong root", "<project><versioning><versions><version>1.0.0</version></versions></versioning></project>"},
		{"missing versioning", "<metadata><versions><version>1.0.0</version></versions></metadata>"},
		{"missing versions", "<metadata><versioning><version>1.0.0</version></versioning></metadata>"},
		{"no version nodes", "<metadata><versioning><versions></versions></versioning></metadata>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]byte(tt.doc), Release)
			if got == nil {
				t.Fatal("Parse() returned nil, want empty slice")
			}
			if len(got) != 0 {
				t.Errorf("Parse() = %v, want empty", ids(got))
			}
		})
	}
}

// TestParseNoDuplicatesSorted checks the ordering property over several documents.
func TestParseNoDuplicatesSorted(t *testing.T) {
	docs := [][]string{
		{"a", "b", "c"},
		{"3.0", "1.0", "2.0", "1.0"},
		{"1.0.0-SNAPSHOT", "1.0.0", "1.0.1-SNAPSHOT"},
	}
	for _, d := range docs {
		got := Parse([]byte(metadata(d...)), Release)
		seen := map[string]bool{}
		for i, e := range got {
			if seen[e.ID] {
				t.Errorf("%v: duplicate %q", d, e.ID)
			}
			seen[e.ID] = true
			if i > 0 && got[i-1].ID < e.ID {
				t.Errorf("%v: %q sorted before %q", d, got[i-1].ID, e.ID)
			}
		}
	}
}

// ── Catalog / Resolve ────────────────────────────────────────────────────────

// TestResolveInRange verifies that every valid index resolves to its entry.
func TestResolveInRange(t *testing.T) {
	c := New(Parse([]byte(sampleMetadata), Release), nil)

	for i, want := range []string{"1.0.0", "0.9.0"} {
		e, err := c.Resolve(Release, i)
		if err != nil {
			t.Fatalf("Resolve(Release, %d) error = %v", i, err)
		}
		if e.ID != want {
			t.Errorf("Resolve(Release, %d) = %q, want %q", i, e.ID, want)
		}
	}
}

// TestResolveOutOfRange verifies that indices outside [0, len) always fail.
func TestResolveOutOfRange(t *testing.T) {
	c := New(nil, []Entry{{ID: "b", Channel: Snapshot}, {ID: "a", Channel: Snapshot}})

	for _, idx := range []int{-1, 2, 5, 1 << 20} {
		e, err := c.Resolve(Snapshot, idx)
		if err == nil {
			t.Errorf("Resolve(Snapshot, %d) = %v, want error", idx, e)
			continue
		}
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Resolve(Snapshot, %d) error = %v, want ErrOutOfRange", idx, err)
		}
		if e != (Entry{}) {
			t.Errorf("Resolve(Snapshot, %d) returned non-zero entry %v", idx, e)
		}
	}
}

// TestResolveEmptyChannel verifies that index 0 fails on an empty channel.
func TestResolveEmptyChannel(t *testing.T) {
	c := New([]Entry{{ID: "1.0.0"}}, nil)
	if _, err := c.Resolve(Snapshot, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Resolve(Snapshot, 0) error = %v, want ErrOutOfRange", err)
	}
}

// TestVersionsReturnsCopy verifies that callers cannot mutate the catalog.
func TestVersionsReturnsCopy(t *testing.T) {
	c := New([]Entry{{ID: "1.0.0"}}, nil)
	v := c.Versions(Release)
	v[0].ID = "mutated"

	if c.IDs(Release)[0] != "1.0.0" {
		t.Error("Versions() exposed internal slice")
	}
}

// TestFind verifies lookup by identifier.
func TestFind(t *testing.T) {
	c := New([]Entry{{ID: "1.0.0"}, {ID: "0.9.0"}}, nil)
	if got := c.Find(Release, "0.9.0"); got != 1 {
		t.Errorf("Find(0.9.0) = %d, want 1", got)
	}
	if got := c.Find(Release, "2.0.0"); got != -1 {
		t.Errorf("Find(2.0.0) = %d, want -1", got)
	}
}

// TestParseChannel verifies accepted channel spellings.
func TestParseChannel(t *testing.T) {
	var tests = []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"release", Release, false},
		{"Releases", Release, false},
		{"SNAPSHOT", Snapshot, false},
		{"snapshots", Snapshot, false},
		{"nightly", Release, true},
	}
	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChannel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseChannel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ── Layout ───────────────────────────────────────────────────────────────────

// TestLayoutURLs verifies the repository paths for both channels.
func TestLayoutURLs(t *testing.T) {
	l := DefaultLayout()

	if got, want := l.MetadataURL(Release), "https://repo.coosanta.net/releases/net/coosanta/meldmc/maven-metadata.xml"; got != want {
		t.Errorf("MetadataURL(Release) = %q, want %q", got, want)
	}
	if got, want := l.MetadataURL(Snapshot), "https://repo.coosanta.net/snapshots/net/coosanta/meldmc/maven-metadata.xml"; got != want {
		t.Errorf("MetadataURL(Snapshot) = %q, want %q", got, want)
	}
}

// TestLayoutNormalisesGroup verifies dotted groups and trailing slashes.
func TestLayoutNormalisesGroup(t *testing.T) {
	l := Layout{BaseURL: "http://localhost:8080/", Group: "net.coosanta", Artifact: "meldmc"}
	want := "http://localhost:8080/releases/net/coosanta/meldmc"
	if got := l.ArtifactBaseURL(Release); got != want {
		t.Errorf("ArtifactBaseURL() = %q, want %q", got, want)
	}
}

// ── Load ─────────────────────────────────────────────────────────────────────

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	doc, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("unreachable: %s", url)
	}
	return []byte(doc), nil
}

// TestLoadBothChannels verifies that releases and snapshots are fetched from their own paths.
func TestLoadBothChannels(t *testing.T) {
	l := DefaultLayout()
	f := &fakeFetcher{docs: map[string]string{
		l.MetadataURL(Release):  sampleMetadata,
		l.MetadataURL(Snapshot): metadata("1.1.0-SNAPSHOT", "1.0.1-SNAPSHOT"),
	}}

	c, report, err := Load(context.Background(), f, l)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := strings.Join(c.IDs(Release), ","); got != "1.0.0,0.9.0" {
		t.Errorf("releases = %s", got)
	}
	if got := strings.Join(c.IDs(Snapshot), ","); got != "1.1.0-SNAPSHOT,1.0.1-SNAPSHOT" {
		t.Errorf("snapshots = %s", got)
	}
	if report.Degraded() {
		t.Errorf("report.Degraded() = true, want false: %+v", report.Channels)
	}
}

// TestLoadOneChannelFails verifies that a failing channel degrades to empty.
func TestLoadOneChannelFails(t *testing.T) {
	l := DefaultLayout()
	f := &fakeFetcher{docs: map[string]string{l.MetadataURL(Release): sampleMetadata}}

	c, report, err := Load(context.Background(), f, l)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len(Snapshot) != 0 {
		t.Errorf("snapshots = %v, want empty", c.IDs(Snapshot))
	}
	if !report.Degraded() {
		t.Error("report.Degraded() = false, want true")
	}
	if report.Channels[1].Err == nil {
		t.Error("snapshot report has no error")
	}
}

// TestLoadNothingAvailable verifies that ErrNoVersions is returned when both channels are empty.
func TestLoadNothingAvailable(t *testing.T) {
	l := DefaultLayout()
	f := &fakeFetcher{docs: map[string]string{l.MetadataURL(Release): "<garbage"}}

	c, _, err := Load(context.Background(), f, l)
	if !errors.Is(err, ErrNoVersions) {
		t.Fatalf("Load() error = %v, want ErrNoVersions", err)
	}
	if c == nil || !c.Empty() {
		t.Error("Load() should return an empty, non-nil catalog")
	}
}

// startingFetcher also offers Go, the way repo.Client does.
type startingFetcher struct {
	fakeFetcher
	started []string
}

func (f *startingFetcher) Go(ctx context.Context, url string) *repo.Pending {
	f.started = append(f.started, url)
	return repo.Start(ctx, url, f.Fetch)
}

// TestLoadStartsThroughGo verifies that a fetcher with Go gets both channel
// fetches started before either is awaited.
func TestLoadStartsThroughGo(t *testing.T) {
	l := DefaultLayout()
	f := &startingFetcher{fakeFetcher: fakeFetcher{docs: map[string]string{
		l.MetadataURL(Release):  sampleMetadata,
		l.MetadataURL(Snapshot): metadata("1.1.0-SNAPSHOT"),
	}}}

	c, _, err := Load(context.Background(), f, l)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{l.MetadataURL(Release), l.MetadataURL(Snapshot)}
	if strings.Join(f.started, " ") != strings.Join(want, " ") {
		t.Errorf("started = %v, want %v", f.started, want)
	}
	if c.Len(Release) != 2 || c.Len(Snapshot) != 1 {
		t.Errorf("catalog = %v / %v", c.IDs(Release), c.IDs(Snapshot))
	}
}

// ── OrderAnomalies ───────────────────────────────────────────────────────────

// TestOrderAnomalies verifies that lexicographic/semantic disagreements are reported.
func TestOrderAnomalies(t *testing.T) {
	entries := Parse([]byte(metadata("0.10.0", "0.9.0", "0.8.0")), Release)

	got := OrderAnomalies(entries)
	if len(got) != 1 {
		t.Fatalf("OrderAnomalies() = %v, want 1 anomaly", got)
	}
	if got[0].Listed != "0.8.0" || got[0].Newer != "0.10.0" {
		t.Errorf("OrderAnomalies()[0] = %+v", got[0])
	}
	if ids(entries)[2] != "0.10.0" {
		t.Error("OrderAnomalies() must not reorder entries")
	}
}

// TestOrderAnomaliesNone verifies that a consistent order reports nothing.
func TestOrderAnomaliesNone(t *testing.T) {
	entries := Parse([]byte(sampleMetadata), Release)
	if got := OrderAnomalies(entries); len(got) != 0 {
		t.Errorf("OrderAnomalies() = %v, want none", got)
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func metadata(versions ...string) string {
	var b strings.Builder
	b.WriteString("<metadata><versioning><versions>")
	for _, v := range versions {
		b.WriteString("<version>" + v + "</version>")
	}
	b.WriteString("</versions></versioning></metadata>")
	return b.String()
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
