package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

// Play launches VLC. VLC has no IPC position tracking, so the watched
// duration is wall-clock time.
func (v *VLC) Play(ctx context.Context, req Request) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "vlc", vlcArgs(req)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	start := time.Now()
	err := cmd.Run()
	watched := time.Since(start)

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return watched, fmt.Errorf("running vlc: %w", err)
	}
	return watched, nil
}

func vlcArgs(req Request) []string {
	return []string{
		req.URL,
		"--meta-title", req.Title,
		"--play-and-exit",
	}
}
