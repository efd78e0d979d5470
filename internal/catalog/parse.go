package catalog

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strings"
)

// metadataDoc mirrors the part of maven-metadata.xml we read. Pointers tell
// a missing node apart from an empty one.
type metadataDoc struct {
	XMLName    xml.Name
	Versioning *struct {
		Versions *struct {
			Version []string `xml:"version"`
		} `xml:"versions"`
	} `xml:"versioning"`
}

// Parse reads a maven-metadata.xml document for the given channel. The
// channel always comes from the caller; it is never sniffed from content.
//
// Anything structurally off (bad XML, a root other than <metadata>, missing
// <versioning> or <versions>) yields an empty, non-nil slice. Callers treat
// an empty result as "try the fallback", not as a crash.
func Parse(data []byte, ch Channel) []Entry {
	out := []Entry{}

	var doc metadataDoc
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return out
	}
	if doc.XMLName.Local != "metadata" || doc.Versioning == nil || doc.Versioning.Versions == nil {
		return out
	}

	seen := make(map[string]bool)
	for _, v := range doc.Versioning.Versions.Version {
		id := strings.TrimSpace(v)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Entry{ID: id, Channel: ch})
	}

	SortDescending(out)
	return out
}

// SortDescending orders entries by plain string comparison, largest first.
func SortDescending(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
}
