// Package catalog turns the repository's maven-metadata.xml documents into an
// ordered set of installable MeldMC versions and resolves a user's
// (channel, index) choice to a concrete version.
//
// Ordering is plain lexicographic descending on the version string, not
// semantic version order: "0.9.0" sorts ahead of "0.10.0". Selection order is
// observable to users, so it is kept as is. OrderAnomalies reports the pairs
// where the two orders disagree.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Channel partitions the catalog into releases and snapshots.
type Channel int

const (
	Release Channel = iota
	Snapshot
)

// Channels lists every channel in display order.
var Channels = []Channel{Release, Snapshot}

func (c Channel) String() string {
	if c == Snapshot {
		return "snapshot"
	}
	return "release"
}

// Title returns the label shown in the UI ("Release" / "Snapshot").
func (c Channel) Title() string {
	if c == Snapshot {
		return "Snapshot"
	}
	return "Release"
}

// RepositoryPath returns the Maven repository segment for the channel.
func (c Channel) RepositoryPath() string {
	if c == Snapshot {
		return "snapshots"
	}
	return "releases"
}

// ParseChannel accepts "release"/"releases" and "snapshot"/"snapshots", any case.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "release", "releases":
		return Release, nil
	case "snapshot", "snapshots":
		return Snapshot, nil
	}
	return Release, fmt.Errorf("unknown channel %q (want release or snapshot)", s)
}

// Entry is one installable version.
type Entry struct {
	ID      string
	Channel Channel
}

// ErrOutOfRange matches every *OutOfRangeError via errors.Is.
var ErrOutOfRange = errors.New("version index out of range")

// OutOfRangeError is returned by Resolve for an index outside [0, Len).
type OutOfRangeError struct {
	Channel Channel
	Index   int
	Len     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range: %d versions available", e.Channel, e.Index, e.Len)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// Catalog is an immutable snapshot of both channels. Refreshing replaces the
// whole Catalog.
type Catalog struct {
	releases  []Entry
	snapshots []Entry
}

// New builds a catalog from already-ordered sequences. The slices are copied.
func New(releases, snapshots []Entry) *Catalog {
	return &Catalog{
		releases:  append([]Entry(nil), releases...),
		snapshots: append([]Entry(nil), snapshots...),
	}
}

func (c *Catalog) seq(ch Channel) []Entry {
	if c == nil {
		return nil
	}
	if ch == Snapshot {
		return c.snapshots
	}
	return c.releases
}

// Versions returns a copy of the channel's ordered entries.
func (c *Catalog) Versions(ch Channel) []Entry {
	return append([]Entry(nil), c.seq(ch)...)
}

// IDs returns the channel's version identifiers in display order.
func (c *Catalog) IDs(ch Channel) []string {
	s := c.seq(ch)
	ids := make([]string, len(s))
	for i, e := range s {
		ids[i] = e.ID
	}
	return ids
}

// Len returns the number of entries in the channel.
func (c *Catalog) Len(ch Channel) int { return len(c.seq(ch)) }

// Empty reports whether both channels are empty.
func (c *Catalog) Empty() bool { return c.Len(Release) == 0 && c.Len(Snapshot) == 0 }

// Resolve returns the entry at index. Indices are never clamped.
func (c *Catalog) Resolve(ch Channel, index int) (Entry, error) {
	s := c.seq(ch)
	if index < 0 || index >= len(s) {
		return Entry{}, &OutOfRangeError{Channel: ch, Index: index, Len: len(s)}
	}
	return s[index], nil
}

// Find returns the index of id within the channel, or -1.
func (c *Catalog) Find(ch Channel, id string) int {
	for i, e := range c.seq(ch) {
		if e.ID == id {
			return i
		}
	}
	return -1
}
