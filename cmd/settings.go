package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coosanta/meldmc-installer/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or save installer settings",
	Long: `Shows the effective settings: the settings file overlaid with the
MELDMC_REPOSITORY environment variable and any flags given here.
With --save the result is written back to the settings file.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	f := settingsCmd.Flags()
	f.String("repository", "", "repository base URL")
	f.Int("timeout", 0, "per-request timeout in seconds")
	f.Bool("fallback", true, "allow a minimal manifest when the download fails")
	f.String("icon", "", "launcher icon for new profiles")
	f.Bool("save", false, "write the effective settings to the settings file")
}

func runSettings(cmd *cobra.Command, args []string) error {
	dir, err := settingsDir(cmd)
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("repository") {
		s.RepositoryURL, _ = f.GetString("repository")
	}
	if f.Changed("timeout") {
		s.TimeoutSeconds, _ = f.GetInt("timeout")
	}
	if f.Changed("fallback") {
		s.AllowFallbackManifest, _ = f.GetBool("fallback")
	}
	if f.Changed("icon") {
		s.Icon, _ = f.GetString("icon")
	}

	fmt.Println()
	fmt.Printf("  %s %s\n\n", labelStyle.Render("File:      "), valStyle.Render(config.ConfigPath(dir)))
	fmt.Printf("  %s %s\n", labelStyle.Render("Repository:"), s.RepositoryURL)
	fmt.Printf("  %s %s:%s\n", labelStyle.Render("Artifact:  "), s.Group, s.Artifact)
	fmt.Printf("  %s %s\n", labelStyle.Render("Timeout:   "), s.Timeout())
	fmt.Printf("  %s %t\n", labelStyle.Render("Fallback:  "), s.AllowFallbackManifest)
	fmt.Printf("  %s %s\n", labelStyle.Render("Icon:      "), s.Icon)
	fmt.Println()

	if save, _ := f.GetBool("save"); save {
		if err := config.Write(dir, s); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("  ✓ Saved"))
		fmt.Println()
	}
	return nil
}
