// Package profile merges a MeldMC entry into the launcher's
// launcher_profiles.json. The file belongs to the Minecraft launcher: every
// member and profile this package does not own is carried through as raw
// JSON, and the file is replaced atomically so a failed write never leaves a
// truncated store behind.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/coosanta/meldmc-installer/internal/fsutil"
)

const (
	// FileName is the launcher's profile store inside the Minecraft dir.
	FileName = "launcher_profiles.json"

	// Epoch is written to created/lastUsed so reinstalls are byte-identical.
	Epoch = "1970-01-01T00:00:00.000Z"

	// DefaultIcon is the launcher's built-in grass block icon.
	DefaultIcon = "Grass"

	profilesKey   = "profiles"
	versionPrefix = "meldmc-"
)

// Entry is one launcher profile.
type Entry struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Created       string `json:"created"`
	LastUsed      string `json:"lastUsed"`
	Icon          string `json:"icon"`
	LastVersionID string `json:"lastVersionId"`
}

// NewEntry builds the profile for a MeldMC version. icon may be empty.
func NewEntry(version, icon string) Entry {
	if icon == "" {
		icon = DefaultIcon
	}
	return Entry{
		Name:          Key(version),
		Type:          "custom",
		Created:       Epoch,
		LastUsed:      Epoch,
		Icon:          icon,
		LastVersionID: versionPrefix + version,
	}
}

// Key is the profiles-map key for a version. Reinstalling a version always
// lands on the same key.
func Key(version string) string { return "MeldMC " + version }

// Outcome describes a successful Merge.
type Outcome struct {
	Path string
	Key  string
	// Created is set when no store existed before.
	Created bool
	// Replaced is set when an entry already existed under Key.
	Replaced bool
	// Recovered is set when the existing store could not be parsed and was
	// reset. Whatever it held is gone; callers should warn the user.
	Recovered bool
	// RecoverCause holds the parse error behind Recovered.
	RecoverCause error
}

// store is the top level of launcher_profiles.json with every member kept raw.
type store struct {
	members  map[string]json.RawMessage
	profiles map[string]json.RawMessage
}

// load reads path. A missing file is an empty store. A file that is not a JSON
// object, or whose profiles member is not an object, is reset and reported
// through cause; only I/O failures are returned as err.
func load(path string) (st *store, existed bool, cause error, err error) {
	st = &store{
		members:  map[string]json.RawMessage{},
		profiles: map[string]json.RawMessage{},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, false, nil, nil
	}
	if err != nil {
		return nil, false, nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Some editors save the store with a UTF-8 byte order mark.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil || members == nil {
		if err == nil {
			err = errors.New("top level is not an object")
		}
		return st, true, fmt.Errorf("parse %s: %w", path, err), nil
	}
	st.members = members

	raw, ok := members[profilesKey]
	if !ok {
		return st, true, nil, nil
	}
	var profiles map[string]json.RawMessage
	if err := json.Unmarshal(raw, &profiles); err != nil || profiles == nil {
		if err == nil {
			err = errors.New("profiles is not an object")
		}
		return st, true, fmt.Errorf("parse %s: %s: %w", path, profilesKey, err), nil
	}
	st.profiles = profiles
	return st, true, nil, nil
}

// encode serializes the store with sorted keys, two-space indent and a
// trailing newline. HTML escaping is off so foreign values keep their text.
func (st *store) encode() ([]byte, error) {
	profiles, err := marshal(st.profiles, false)
	if err != nil {
		return nil, fmt.Errorf("marshal profiles: %w", err)
	}
	st.members[profilesKey] = profiles

	data, err := marshal(st.members, true)
	if err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	return data, nil
}

func marshal(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if !indent {
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}
	return buf.Bytes(), nil
}

// Merge inserts or replaces e under e.Name in the store at path, building the
// full document in memory before atomically replacing the file.
func Merge(path string, e Entry) (*Outcome, error) {
	st, existed, cause, err := load(path)
	if err != nil {
		return nil, err
	}

	key := e.Name
	if key == "" {
		return nil, errors.New("profile entry has no name")
	}
	raw, err := marshal(e, false)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	_, replaced := st.profiles[key]
	st.profiles[key] = raw

	data, err := st.encode()
	if err != nil {
		return nil, err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	return &Outcome{
		Path:         path,
		Key:          key,
		Created:      !existed,
		Replaced:     replaced,
		Recovered:    cause != nil,
		RecoverCause: cause,
	}, nil
}

// Installed is a MeldMC-owned profile found in a store.
type Installed struct {
	Key   string
	Entry Entry
}

// Read lists the MeldMC profiles in the store at path, sorted by key. A
// missing store is not an error. Entries that do not decode are skipped.
func Read(path string) ([]Installed, error) {
	st, _, cause, err := load(path)
	if err != nil {
		return nil, err
	}
	if cause != nil {
		return nil, cause
	}

	var out []Installed
	for k, raw := range st.profiles {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		if strings.HasPrefix(e.LastVersionID, versionPrefix) {
			out = append(out, Installed{Key: k, Entry: e})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
