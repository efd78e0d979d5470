package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coosanta/meldmc-installer/internal/manifest"
	"github.com/coosanta/meldmc-installer/internal/profile"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installed MeldMC versions",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// installedVersion is one versions/meldmc-* directory.
type installedVersion struct {
	id       string
	manifest string // id inside the manifest, "" if missing or unreadable
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := resolveMinecraftDir(cmd)
	if err != nil {
		return err
	}

	versions, err := scanVersions(dir)
	if err != nil {
		return err
	}
	profiles, profErr := profile.Read(filepath.Join(dir, profile.FileName))

	fmt.Println()
	fmt.Printf("  %s %s\n\n", labelStyle.Render("Minecraft:"), valStyle.Render(dir))

	fmt.Printf("  %s\n", labelStyle.Render("Versions:"))
	if len(versions) == 0 {
		fmt.Printf("    %s\n", dimStr("none installed"))
	}
	for _, v := range versions {
		switch {
		case v.manifest == v.id:
			fmt.Printf("    %s %s\n", okStyle.Render("●"), v.id)
		case v.manifest == "":
			fmt.Printf("    %s %-24s %s\n", badStyle.Render("●"), v.id, dimStr("manifest missing or invalid"))
		default:
			fmt.Printf("    %s %-24s %s\n", warnStyle.Render("●"), v.id, dimStr("manifest id "+v.manifest))
		}
	}

	fmt.Printf("\n  %s\n", labelStyle.Render("Launcher profiles:"))
	switch {
	case profErr != nil:
		fmt.Printf("    %s %s\n", badStyle.Render("✗"), dimStr(profErr.Error()))
	case len(profiles) == 0:
		fmt.Printf("    %s\n", dimStr("none"))
	}
	for _, p := range profiles {
		mark := okStyle.Render("●")
		if !hasVersion(versions, p.Entry.LastVersionID) {
			mark = warnStyle.Render("●")
		}
		fmt.Printf("    %s %-24s %s\n", mark, p.Key, dimStr("→ "+p.Entry.LastVersionID))
	}

	fmt.Println()
	return nil
}

// scanVersions lists <dir>/versions/meldmc-* and reads each manifest's id.
func scanVersions(dir string) ([]installedVersion, error) {
	entries, err := os.ReadDir(filepath.Join(dir, "versions"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read versions: %w", err)
	}

	var out []installedVersion
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "meldmc-") {
			continue
		}
		v := installedVersion{id: e.Name()}
		if data, err := os.ReadFile(filepath.Join(dir, "versions", e.Name(), e.Name()+".json")); err == nil {
			v.manifest = manifest.ID(data)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id > out[j].id })
	return out, nil
}

func hasVersion(vs []installedVersion, id string) bool {
	for _, v := range vs {
		if v.id == id {
			return true
		}
	}
	return false
}
