package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool {
	_, err := exec.LookPath(g.name)
	return err == nil
}

// Play launches the generic player and reports wall-clock watch time.
func (g *Generic) Play(ctx context.Context, req Request) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, g.name, genericArgs(req)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	start := time.Now()
	err := cmd.Run()
	watched := time.Since(start)

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return watched, fmt.Errorf("running %s: %w", g.name, err)
	}
	return watched, nil
}

func genericArgs(req Request) []string {
	return mpvArgs(req, "")
}
