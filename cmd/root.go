// Package cmd implements the meldmc-installer CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/repo"
	"github.com/coosanta/meldmc-installer/internal/wizard"
)

// SetVersionInfo is called from main.go with values injected at build time via -ldflags.
// It must be called before Execute().
func SetVersionInfo(version, commit, date string) {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"meldmc-installer %s (commit %s, built %s)\n", version, commit, date,
	))
	rootCmd.Version = version
	repo.UserAgent = "meldmc-installer/" + version
}

var rootCmd = &cobra.Command{
	Use:   "meldmc-installer",
	Short: "MeldMC installer",
	Long: `meldmc-installer installs MeldMC into a Minecraft launcher directory.

Examples:
  meldmc-installer                                 interactive wizard
  meldmc-installer install --yes                   install the latest release
  meldmc-installer install --channel snapshot --index 0
  meldmc-installer versions                        list available versions
  meldmc-installer status                          show installed versions
  meldmc-installer logs                            show install log`,
	RunE:         runWizard,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", "", "Minecraft directory (default: the launcher's data directory)")
	rootCmd.PersistentFlags().String("platform", "", "client platform: win, mac, mac-aarch64 or linux (default: detected)")
	rootCmd.PersistentFlags().String("config", "", "settings directory (default: user config dir)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "also write log output to stderr")
}

func runWizard(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	dir, _ := cmd.Flags().GetString("dir")
	sel, err := wizard.Run(cmd.Context(), sess.svc, wizard.Options{
		Channel:             catalog.Release,
		DefaultMinecraftDir: dir,
	})
	if errors.Is(err, wizard.ErrCancelled) {
		fmt.Println("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	return runInstall(cmd.Context(), sess, sel.Channel, sel.Index, sel.MinecraftDir)
}
