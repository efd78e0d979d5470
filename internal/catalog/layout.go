package catalog

import (
	"fmt"
	"strings"
)

// Defaults for the public MeldMC repository.
const (
	DefaultBaseURL  = "https://repo.coosanta.net"
	DefaultGroup    = "net/coosanta"
	DefaultArtifact = "meldmc"
)

// Layout locates MeldMC artifacts in a Maven repository:
//
//	<BaseURL>/<releases|snapshots>/<Group>/<Artifact>/...
type Layout struct {
	BaseURL  string
	Group    string // slash separated, e.g. "net/coosanta"
	Artifact string
}

// DefaultLayout points at the public repository.
func DefaultLayout() Layout {
	return Layout{BaseURL: DefaultBaseURL, Group: DefaultGroup, Artifact: DefaultArtifact}
}

// ArtifactBaseURL is the directory holding every version of the artifact
// in the channel's repository.
func (l Layout) ArtifactBaseURL(ch Channel) string {
	artifact := l.Artifact
	if artifact == "" {
		artifact = DefaultArtifact
	}
	return fmt.Sprintf("%s/%s/%s/%s",
		strings.TrimRight(l.BaseURL, "/"),
		ch.RepositoryPath(),
		strings.Trim(strings.ReplaceAll(l.Group, ".", "/"), "/"),
		artifact,
	)
}

// MetadataURL is the channel's version index.
func (l Layout) MetadataURL(ch Channel) string {
	return l.ArtifactBaseURL(ch) + "/maven-metadata.xml"
}
