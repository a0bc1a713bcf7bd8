package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"criollotv/internal/media"
	"criollotv/internal/ui"
)

var (
	flagJSON        bool
	flagNoQualities bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <channel>",
	Short: "Print the current live stream of a channel",
	Args:  cobra.MinimumNArgs(1),
	RunE:  resolveRun,
}

func init() {
	resolveCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output the resolved stream as JSON")
	resolveCmd.Flags().BoolVar(&flagNoQualities, "no-qualities", false, "Skip quality probing")
}

type resolveOutput struct {
	Channel string `json:"channel"`
	Section string `json:"section"`
	Live    bool   `json:"live"`
	*media.ResolvedStream
}

func resolveRun(cmd *cobra.Command, args []string) error {
	st, err := newStack(!flagNoQualities)
	if err != nil {
		return err
	}

	entry, stream, err := resolveLive(cmd.Context(), st, strings.Join(args, " "))
	if flagJSON && errors.Is(err, errNotLive) {
		// Still print the document so scripts can read live=false.
		_ = writeResolveJSON(cmd, resolveOutput{Channel: entry.Channel.Name, Section: entry.Section})
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return writeResolveJSON(cmd, resolveOutput{
			Channel:        entry.Channel.Name,
			Section:        entry.Section,
			Live:           true,
			ResolvedStream: stream,
		})
	}

	ui.PrintStream(cmd.OutOrStdout(), entry.Channel.Name, stream, ui.Styled(os.Stdout))
	return nil
}

func writeResolveJSON(cmd *cobra.Command, out resolveOutput) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
