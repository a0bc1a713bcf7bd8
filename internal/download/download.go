// Package download records live streams to disk with ffmpeg.
// ffmpeg is run with an explicit argument slice and output paths are
// validated against directory traversal.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"criollotv/internal/httputil"
)

// Options controls a recording.
type Options struct {
	// Duration stops the recording after the given time; zero records until
	// the stream ends or ctx is cancelled.
	Duration time.Duration
	// Now stamps the output filename; time.Now when nil.
	Now func() time.Time
}

// OutputPath returns the file a recording of title started at t is written to.
func OutputPath(outputDir, title string, t time.Time) (string, error) {
	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	filename := httputil.SanitizeFilename(title) + "_" + t.Format("20060102-150405") + ".ts"
	return httputil.SafeDownloadPath(absDir, filename)
}

// Record captures streamURL into outputDir and returns the written path.
// Cancelling ctx stops ffmpeg; whatever was captured so far is kept.
func Record(ctx context.Context, streamURL, title, outputDir string, opts Options) (string, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	outputPath, err := OutputPath(outputDir, title, now())
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, ffmpegArgs(streamURL, title, outputPath, opts.Duration)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// Ask ffmpeg to finish the file instead of killing it.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 10 * time.Second

	fmt.Fprintf(os.Stderr, "Recording to: %s\n", outputPath)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil && fileHasData(outputPath) {
			return outputPath, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && fileHasData(outputPath) {
			// Live streams commonly end with a non-zero exit.
			return outputPath, nil
		}
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg recording failed: %w", err)
	}

	return outputPath, nil
}

func ffmpegArgs(streamURL, title, outputPath string, duration time.Duration) []string {
	args := []string{
		"-y",
		"-loglevel", "warning",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", streamURL,
	}
	if duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.0f", duration.Seconds()))
	}
	args = append(args,
		"-c", "copy",
		"-metadata", "title="+title,
		outputPath,
	)
	return args
}

func fileHasData(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
