package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"criollotv/internal/download"
	"criollotv/internal/media"
)

var (
	flagOutput   string
	flagDuration time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record <channel>",
	Short: "Record a live channel to disk with ffmpeg",
	Args:  cobra.MinimumNArgs(1),
	RunE:  recordRun,
}

func init() {
	recordCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory (default: record_dir)")
	recordCmd.Flags().DurationVar(&flagDuration, "duration", 0, "Stop after this long (e.g. 30m)")
}

func recordRun(cmd *cobra.Command, args []string) error {
	st, err := newStack(true)
	if err != nil {
		return err
	}

	entry, stream, err := resolveLive(cmd.Context(), st, strings.Join(args, " "))
	if err != nil {
		return err
	}

	streamURL, label, err := recordURL(stream, cfg.PreferredHeight())
	if err != nil {
		return fmt.Errorf("%s: %w", entry.Channel.Name, err)
	}

	dir := flagOutput
	if dir == "" {
		dir, err = cfg.ExpandRecordDir()
		if err != nil {
			return fmt.Errorf("resolving record dir: %w", err)
		}
	}

	debugf("recording %s at %s: %s", entry.Channel.Name, label, streamURL)
	outputPath, err := download.Record(cmd.Context(), streamURL, entry.Channel.Name, dir, download.Options{Duration: flagDuration})
	if outputPath != "" {
		fmt.Fprintf(os.Stderr, "Recorded: %s\n", outputPath)
	}
	return err
}

// recordURL picks the media URL ffmpeg reads. Watch pages are not media, so
// a stream without qualities cannot be recorded.
func recordURL(stream *media.ResolvedStream, preferred int) (string, string, error) {
	label, ok := stream.Qualities.Pick(preferred)
	if !ok {
		return "", "", fmt.Errorf("no recordable quality found")
	}
	return stream.Qualities[label], label, nil
}
