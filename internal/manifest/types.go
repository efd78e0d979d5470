package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Source records where a Manifest's bytes came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceOverride Source = "override"
	SourceFallback Source = "fallback"
)

// Manifest is a launcher version manifest. The installer does not interpret
// it beyond checking that it is JSON.
type Manifest struct {
	Data   []byte
	Source Source
	// RemoteErr is why the remote fetch was not used, when Source is not remote.
	RemoteErr error
}

// ID returns the manifest's "id" member, or "" if absent.
func (m *Manifest) ID() string { return ID(m.Data) }

// ID reads the "id" member of a manifest document.
func ID(data []byte) string {
	return gjson.GetBytes(data, "id").String()
}

// FallbackTime is the release timestamp written into synthesized manifests.
const FallbackTime = "2024-01-01T00:00:00+00:00"

type fallbackDoc struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
	Libraries   []any  `json:"libraries"`
}

// Synthesize builds the minimal manifest used when the real one cannot be
// fetched: id, type, timestamps and an empty library list.
func Synthesize(versionID string) []byte {
	doc := fallbackDoc{
		ID:          versionID,
		Type:        "release",
		Time:        FallbackTime,
		ReleaseTime: FallbackTime,
		Libraries:   []any{},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	_ = enc.Encode(doc)
	return buf.Bytes()
}
