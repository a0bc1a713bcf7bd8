package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"criollotv/internal/ui"
)

var channelsCmd = &cobra.Command{
	Use:     "channels [filter]",
	Aliases: []string{"ls"},
	Short:   "List configured channels",
	RunE:    channelsRun,
}

func channelsRun(cmd *cobra.Command, args []string) error {
	sections, err := cfg.MediaSections()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	sections = ui.Filter(sections, query)
	if len(sections) == 0 {
		fmt.Fprintf(os.Stderr, "No channels match %q.\n", query)
		return nil
	}

	ui.PrintSections(cmd.OutOrStdout(), sections, ui.Styled(os.Stdout))
	return nil
}
