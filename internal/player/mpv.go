package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// MPV implements the Player interface for mpv.
// Playback time is tracked through mpv's IPC socket, created at a randomized
// temp path.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// Play launches mpv and returns the watched duration. mpv's own playback
// time is preferred; wall-clock time is used when IPC is unavailable.
func (m *MPV) Play(ctx context.Context, req Request) (time.Duration, error) {
	socketDir, err := os.MkdirTemp("", "criollotv-mpv-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	defer os.RemoveAll(socketDir)

	socketPath := filepath.Join(socketDir, "socket")

	cmd := exec.CommandContext(ctx, "mpv", mpvArgs(req, socketPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting mpv: %w", err)
	}

	posCh := make(chan float64, 1)
	go func() {
		posCh <- m.trackPosition(socketPath)
	}()

	waitErr := cmd.Wait()
	wall := time.Since(start)

	var pos float64
	select {
	case pos = <-posCh:
	case <-time.After(time.Second):
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return wall, fmt.Errorf("running mpv: %w", waitErr)
	}
	// mpv exits non-zero on user quit and on stream errors; both end playback.

	if pos > 0 {
		return time.Duration(pos * float64(time.Second)), nil
	}
	return wall, nil
}

func mpvArgs(req Request, socketPath string) []string {
	args := []string{
		req.URL,
		"--force-media-title=" + req.Title,
		"--really-quiet",
	}
	if socketPath != "" {
		args = append(args, "--input-ipc-server="+socketPath)
	}
	if req.YTDL {
		args = append(args, "--ytdl-format="+ytdlFormat(req.MaxHeight))
	} else {
		args = append(args, "--no-ytdl")
	}
	return args
}

// trackPosition observes mpv's playback-time property until the socket closes.
func (m *MPV) trackPosition(socketPath string) float64 {
	var lastPos float64

	for i := 0; i < 50; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return 0
	}
	defer conn.Close()

	cmd := map[string]any{
		"command":    []any{"observe_property", 1, "playback-time"},
		"request_id": 100,
	}
	data, _ := json.Marshal(cmd)
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return 0
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var event struct {
			Event string  `json:"event"`
			Name  string  `json:"name"`
			Data  float64 `json:"data"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		if event.Name == "playback-time" && event.Data > 0 {
			lastPos = event.Data
		}
	}

	return lastPos
}
