package quality

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kkdai/youtube/v2"

	"criollotv/internal/httputil"
	"criollotv/internal/media"
)

// ProberOptions carries the dependencies a prober backend may need.
type ProberOptions struct {
	HTTPClient *http.Client
	Fetcher    httputil.Fetcher // used to load HLS master playlists
	YtdlpPath  string
}

// LibraryProber probes videos in-process with github.com/kkdai/youtube.
// Live broadcasts expose an HLS master playlist; its variants come first,
// followed by the progressive and adaptive formats.
type LibraryProber struct {
	client  *youtube.Client
	fetcher httputil.Fetcher
}

// NewLibraryProber creates a LibraryProber. A nil fetcher skips HLS expansion.
func NewLibraryProber(client *http.Client, fetcher httputil.Fetcher) *LibraryProber {
	yt := &youtube.Client{}
	if client != nil {
		yt.HTTPClient = client
	}
	return &LibraryProber{client: yt, fetcher: fetcher}
}

func (p *LibraryProber) Probe(ctx context.Context, videoID string) ([]media.Rendition, error) {
	video, err := p.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("loading video %s: %w", videoID, err)
	}

	var (
		renditions []media.Rendition
		hlsErr     error
	)

	if video.HLSManifestURL != "" && p.fetcher != nil {
		variants, err := p.hlsVariants(ctx, video.HLSManifestURL)
		if err != nil {
			hlsErr = err
		}
		renditions = append(renditions, variants...)
	}

	renditions = append(renditions, formatRenditions(video.Formats, func(f *youtube.Format) (string, error) {
		return p.client.GetStreamURLContext(ctx, video, f)
	})...)

	if len(renditions) == 0 {
		if hlsErr != nil {
			return nil, hlsErr
		}
		return nil, fmt.Errorf("video %s has no playable formats", videoID)
	}
	return renditions, nil
}

func (p *LibraryProber) hlsVariants(ctx context.Context, manifestURL string) ([]media.Rendition, error) {
	body, err := p.fetcher.Fetch(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetching HLS manifest: %w", err)
	}
	return ParseMaster(manifestURL, body)
}

// formatRenditions maps library formats to renditions. Formats whose URL is
// ciphered are resolved through streamURL; failures drop the format.
func formatRenditions(formats youtube.FormatList, streamURL func(*youtube.Format) (string, error)) []media.Rendition {
	var out []media.Rendition
	for i := range formats {
		f := &formats[i]
		if f.Height == 0 {
			continue
		}
		u := f.URL
		if u == "" && streamURL != nil {
			resolved, err := streamURL(f)
			if err != nil {
				continue
			}
			u = resolved
		}
		out = append(out, media.Rendition{Height: f.Height, Protocol: "https", URL: u})
	}
	return out
}
