package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/installer"
	"github.com/coosanta/meldmc-installer/internal/manifest"
	"github.com/coosanta/meldmc-installer/internal/wizard"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a MeldMC version without the wizard",
	Long: `Installs one MeldMC version into a Minecraft directory.

The version is picked by --index (position in the listing shown by
"versions", 0 is the latest), by --version, or with --yes the latest
version of the channel.`,
	Args: cobra.NoArgs,
	RunE: runInstallCmd,
}

var (
	flagChannel      string
	flagIndex        int
	flagVersion      string
	flagYes          bool
	flagNoFallback   bool
	flagManifestFile string
)

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().StringVar(&flagChannel, "channel", "release", "release or snapshot")
	installCmd.Flags().IntVar(&flagIndex, "index", 0, "version index within the channel (0 is the latest)")
	installCmd.Flags().StringVar(&flagVersion, "version", "", "exact version to install, e.g. 1.0.0")
	installCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "install the latest version of the channel")
	installCmd.Flags().BoolVar(&flagNoFallback, "no-fallback", false, "fail instead of installing a minimal manifest when the download fails")
	installCmd.Flags().StringVar(&flagManifestFile, "manifest-file", "", "local client manifest to use when the download fails")
	installCmd.MarkFlagsMutuallyExclusive("index", "version", "yes")
}

func runInstallCmd(cmd *cobra.Command, args []string) error {
	ch, err := catalog.ParseChannel(flagChannel)
	if err != nil {
		return err
	}
	dir, err := resolveMinecraftDir(cmd)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd, flagManifestFile)
	if err != nil {
		return err
	}
	defer sess.Close()
	if flagNoFallback {
		sess.svc.Installer.AllowFallback = false
	}

	if flagYes {
		sel, err := wizard.Run(cmd.Context(), sess.svc, wizard.Options{
			Channel:             ch,
			DefaultMinecraftDir: dir,
			Yes:                 true,
		})
		if err != nil {
			return fmt.Errorf("load versions: %w", err)
		}
		return runInstall(cmd.Context(), sess, sel.Channel, sel.Index, sel.MinecraftDir)
	}

	if _, err := sess.svc.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("load versions: %w", err)
	}

	var index int
	switch {
	case flagVersion != "":
		index = sess.svc.Catalog().Find(ch, flagVersion)
		if index < 0 {
			return fmt.Errorf("version %s not found in the %s channel", flagVersion, ch)
		}
	case cmd.Flags().Changed("index"):
		index = flagIndex
	default:
		return fmt.Errorf("choose a version with --index, --version or --yes (see \"meldmc-installer versions\")")
	}

	return runInstall(cmd.Context(), sess, ch, index, dir)
}

// runInstall installs (ch, index) with a spinner and prints the outcome.
func runInstall(ctx context.Context, sess *session, ch catalog.Channel, index int, dir string) error {
	fmt.Println()
	sp := newSpinner()

	ins := sess.svc.Installer
	ins.OnStep = func(step, total int, label string) {
		sp.setLabel(fmt.Sprintf("[%d/%d] %s", step, total, label))
	}
	ins.OnMilestone = func(m installer.Milestone) {
		sp.setDetail(string(m))
	}

	sp.start()
	result, err := sess.svc.Install(ctx, ch, index, dir, sess.tag)
	sp.stop(err)

	if err != nil {
		sess.log.Printf("Install failed: %v", err)
		var se *installer.StepError
		if errors.As(err, &se) {
			err = fmt.Errorf("%s: %w", se.Summary(), err)
		}
		if p := sess.log.LogPath(); p != "" {
			fmt.Println(dimStr("  log: " + p))
		}
		return err
	}

	printSuccess(result, sess.log.LogPath())
	return nil
}

// ── spinner ───────────────────────────────────────────────────────────────────

// spinner renders a rotating indicator with a label and a detail line
// that updates in-place while the install is running.
type spinner struct {
	mu     sync.Mutex
	label  string
	detail string
	done   chan struct{}
}

func newSpinner() *spinner { return &spinner{done: make(chan struct{}), label: "Starting"} }

func (s *spinner) setLabel(l string) {
	s.mu.Lock()
	s.label = l
	s.mu.Unlock()
}

func (s *spinner) setDetail(d string) {
	s.mu.Lock()
	if len(d) > 72 {
		d = d[:69] + "..."
	}
	s.detail = d
	s.mu.Unlock()
}

// start launches the render loop in a goroutine.
func (s *spinner) start() {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	go func() {
		i := 0
		for {
			select {
			case <-s.done:
				return
			case <-time.After(80 * time.Millisecond):
				s.mu.Lock()
				label := s.label
				detail := s.detail
				s.mu.Unlock()

				frame := frames[i%len(frames)]
				i++

				// \r returns to column 0; \033[K clears to end of line.
				fmt.Printf("\r\033[K  %s %s\n\r\033[K    %s", frame, label, dim.Render(detail))
				fmt.Print("\033[1A")
			}
		}
	}()
}

// stop halts the spinner and prints a final status line.
func (s *spinner) stop(err error) {
	close(s.done)
	time.Sleep(90 * time.Millisecond)

	s.mu.Lock()
	label := s.label
	s.mu.Unlock()

	fmt.Print("\r\033[K\033[1B\r\033[K\033[1A")

	if err == nil {
		fmt.Printf("  %s %s\n", okStyle.Render("✓"), label)
	} else {
		fmt.Printf("  %s %s\n", badStyle.Render("✗"), label)
	}
}

// ── success banner ────────────────────────────────────────────────────────────

func printSuccess(r *installer.Result, logPath string) {
	ok := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

	fmt.Println()
	fmt.Println(ok.Render("✓ Installation complete") + dimStr(fmt.Sprintf("  (%s)", r.Duration.Round(time.Millisecond))))
	fmt.Println()
	fmt.Printf("  Version:   %s\n", valStyle.Render(r.Plan.Version.ID))
	fmt.Printf("  Directory: %s\n", valStyle.Render(r.Plan.MinecraftDir))
	fmt.Printf("  Manifest:  %s %s\n", valStyle.Render(r.Plan.ManifestPath), dimStr("("+string(r.ManifestSource)+")"))
	fmt.Printf("  Profile:   %s\n", valStyle.Render(r.Profile.Key))

	if r.Degraded() {
		fmt.Println()
		msg := "The client configuration could not be downloaded"
		if r.ManifestSource == manifest.SourceFallback {
			msg += "; a minimal one was installed and the game may not start."
		} else {
			msg += "; the local manifest file was installed instead."
		}
		fmt.Printf("  %s %s\n", warnStyle.Render("!"), msg)
		if r.ManifestErr != nil {
			fmt.Printf("    %s\n", dimStr(r.ManifestErr.Error()))
		}
	}
	if r.ProfileRecovered() {
		fmt.Println()
		fmt.Printf("  %s %s\n", warnStyle.Render("!"), "launcher_profiles.json was unreadable and has been replaced; other profiles were lost.")
	}

	fmt.Println()
	fmt.Printf("  %s\n", dimStr("Next steps:"))
	fmt.Printf("    Open the Minecraft Launcher and select the %q profile.\n", r.Profile.Key)
	if logPath != "" {
		fmt.Printf("    %s\n", dimStr("log: "+logPath))
	}
	fmt.Println()
}
