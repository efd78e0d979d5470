package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coosanta/meldmc-installer/internal/catalog"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List installable MeldMC versions",
	Long: `Lists the versions published in each channel, in the order the
installer offers them. The number in front of each version is the value
to pass to "install --index".`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().String("channel", "", "only list this channel (release or snapshot)")
}

func runVersions(cmd *cobra.Command, args []string) error {
	channels := catalog.Channels
	if c, _ := cmd.Flags().GetString("channel"); c != "" {
		ch, err := catalog.ParseChannel(c)
		if err != nil {
			return err
		}
		channels = []catalog.Channel{ch}
	}

	sess, err := openSession(cmd, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := sess.svc.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("load versions: %w", err)
	}

	fmt.Println()
	for _, ch := range channels {
		fmt.Printf("  %s\n", labelStyle.Render(ch.Title()+"s"))
		printChannelError(report, ch)

		entries := sess.svc.ListVersions(ch)
		if len(entries) == 0 {
			fmt.Printf("    %s\n\n", dimStr("none"))
			continue
		}
		for i, e := range entries {
			note := ""
			if i == 0 {
				note = dimStr("latest")
			}
			fmt.Printf("    %s %-24s %s\n", dimStr(fmt.Sprintf("%3d", i)), valStyle.Render(e.ID), note)
		}

		for _, a := range catalog.OrderAnomalies(entries) {
			sess.log.Warnf("%s listing puts %s before newer %s", ch, a.Listed, a.Newer)
			fmt.Printf("    %s %s\n", warnStyle.Render("!"),
				dimStr(fmt.Sprintf("%s is listed before %s, which is newer", a.Listed, a.Newer)))
		}
		fmt.Println()
	}
	return nil
}

func printChannelError(report *catalog.LoadReport, ch catalog.Channel) {
	for _, c := range report.Channels {
		if c.Channel == ch && c.Err != nil {
			fmt.Printf("    %s %s\n", badStyle.Render("✗"), dimStr(c.Err.Error()))
		}
	}
}
