package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"criollotv/internal/media"
)

// YtdlpProber shells out to yt-dlp for metadata.
type YtdlpProber struct {
	path string
}

// NewYtdlpProber creates a prober running the given yt-dlp binary
// ("yt-dlp" from PATH when empty).
func NewYtdlpProber(path string) *YtdlpProber {
	if path == "" {
		path = "yt-dlp"
	}
	return &YtdlpProber{path: path}
}

func (p *YtdlpProber) Probe(ctx context.Context, videoID string) ([]media.Rendition, error) {
	cmd := exec.CommandContext(ctx, p.path, "-j", "--no-warnings", "--no-playlist", media.WatchURL(videoID))
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata for %s: %w", videoID, err)
	}
	return parseYtdlpInfo(out)
}

type ytdlpFormat struct {
	Height   *int   `json:"height"`
	Protocol string `json:"protocol"`
	URL      string `json:"url"`
}

type ytdlpInfo struct {
	Formats []ytdlpFormat `json:"formats"`
}

func parseYtdlpInfo(out []byte) ([]media.Rendition, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("decoding yt-dlp output: %w", err)
	}
	if len(info.Formats) == 0 {
		return nil, fmt.Errorf("yt-dlp returned no formats")
	}

	renditions := make([]media.Rendition, 0, len(info.Formats))
	for _, f := range info.Formats {
		if f.Height == nil {
			continue
		}
		renditions = append(renditions, media.Rendition{Height: *f.Height, Protocol: f.Protocol, URL: f.URL})
	}
	return renditions, nil
}
