// Package player launches external media players on a resolved stream.
// Players are started with exec.Command and explicit argument slices; no
// shell is involved.
package player

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Request describes what to play.
type Request struct {
	URL   string
	Title string
	// YTDL lets the player resolve URL itself (a YouTube watch page) instead
	// of receiving a direct media URL.
	YTDL bool
	// MaxHeight caps the format picked by the player when YTDL is set.
	MaxHeight int
}

// Player is the interface for media player implementations.
type Player interface {
	// Play blocks until the player exits and returns how long the stream
	// was watched.
	Play(ctx context.Context, req Request) (time.Duration, error)

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch strings.ToLower(name) {
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: strings.ToLower(name)}
	default:
		return &MPV{}
	}
}

// ytdlFormat builds an mpv/yt-dlp format selector capped at maxHeight.
func ytdlFormat(maxHeight int) string {
	if maxHeight <= 0 {
		return "best"
	}
	return fmt.Sprintf("best[height<=%d]/best", maxHeight)
}
