package installer

import (
	"path/filepath"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/platform"
	"github.com/coosanta/meldmc-installer/internal/profile"
)

// Plan is every path and URL one install attempt touches. It is derived
// without I/O, so the same inputs always give the same Plan.
type Plan struct {
	MinecraftDir string
	Version      catalog.Entry
	Platform     platform.Tag

	VersionID    string // launcher version id, "meldmc-<id>"
	VersionDir   string // <dir>/versions/meldmc-<id>
	ManifestPath string // <VersionDir>/meldmc-<id>.json
	ManifestURL  string // <channel base>/<id>/meldmc-<id>-client-<tag>.json
	ProfilesPath string // <dir>/launcher_profiles.json
	ProfileKey   string // "MeldMC <id>"
}

// NewPlan derives the install plan. The manifest URL follows the version's
// own channel, so snapshots are fetched from the snapshots repository.
func NewPlan(layout catalog.Layout, minecraftDir string, v catalog.Entry, tag platform.Tag) Plan {
	versionID := "meldmc-" + v.ID
	versionDir := filepath.Join(minecraftDir, "versions", versionID)
	return Plan{
		MinecraftDir: minecraftDir,
		Version:      v,
		Platform:     tag,
		VersionID:    versionID,
		VersionDir:   versionDir,
		ManifestPath: filepath.Join(versionDir, versionID+".json"),
		ManifestURL:  layout.ArtifactBaseURL(v.Channel) + "/" + v.ID + "/" + versionID + "-client-" + string(tag) + ".json",
		ProfilesPath: filepath.Join(minecraftDir, profile.FileName),
		ProfileKey:   profile.Key(v.ID),
	}
}
