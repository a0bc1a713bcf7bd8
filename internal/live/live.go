// Package live finds the video a YouTube channel is currently broadcasting.
package live

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"criollotv/internal/httputil"
	"criollotv/internal/match"
)

const youtubeBase = "https://www.youtube.com"

// Resolver fetches a channel's /live page and extracts the broadcasting video.
type Resolver struct {
	fetcher httputil.Fetcher
	log     zerolog.Logger
}

// New creates a Resolver. The fetcher carries the per-fetch timeout.
func New(fetcher httputil.Fetcher, log zerolog.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, log: log}
}

// LiveURL builds the canonical live URL for a channel ID or handle.
// Values carrying the channel-ID prefix use /channel/<id>/live; anything
// else is treated as a handle.
func LiveURL(ref string) string {
	ref = strings.TrimPrefix(ref, "@")
	if strings.HasPrefix(ref, match.ChannelPrefix) {
		return httputil.BuildURL(youtubeBase, "channel", ref, "live")
	}
	return httputil.BuildURL(youtubeBase, "@"+ref, "live")
}

// Resolve returns the video ID the channel is live with. A channel that is
// not live, an unreachable page, or an invalid reference all yield ok == false.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "@")
	if err := httputil.ValidateChannelRef(ref); err != nil {
		r.log.Debug().Err(err).Str("ref", ref).Msg("live: rejected channel reference")
		return "", false
	}

	liveURL := LiveURL(ref)
	body, err := r.fetcher.Fetch(ctx, liveURL)
	if err != nil {
		r.log.Debug().Err(err).Str("url", liveURL).Msg("live: fetch failed")
		return "", false
	}

	videoID, ok := match.ScanLive(string(body))
	if !ok {
		r.log.Debug().Str("url", liveURL).Msg("live: no active broadcast")
		return "", false
	}

	r.log.Debug().Str("url", liveURL).Str("video_id", videoID).Msg("live: found broadcast")
	return videoID, true
}
