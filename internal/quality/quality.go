// Package quality turns a resolved video ID into one playable URL per
// resolution tier.
package quality

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"criollotv/internal/media"
)

// Prober lists the renditions available for a video.
type Prober interface {
	Probe(ctx context.Context, videoID string) ([]media.Rendition, error)
}

// Resolver reduces a probe result to a quality map.
type Resolver struct {
	prober Prober
	log    zerolog.Logger
}

// New creates a Resolver over a Prober.
func New(prober Prober, log zerolog.Logger) *Resolver {
	return &Resolver{prober: prober, log: log}
}

// Resolve probes videoID and returns its qualities. A failed probe yields an
// empty map; a video that is offline or unavailable is not an error here.
func (r *Resolver) Resolve(ctx context.Context, videoID string) media.Qualities {
	renditions, err := r.prober.Probe(ctx, videoID)
	if err != nil {
		r.log.Debug().Err(err).Str("video_id", videoID).Msg("quality: probe failed")
		return media.Qualities{}
	}
	q := Reduce(renditions)
	r.log.Debug().Str("video_id", videoID).Strs("labels", q.Labels()).Msg("quality: resolved")
	return q
}

// Reduce keeps streaming-capable renditions at or above media.MinHeight and
// retains the first URL seen for each height. Input order is the priority
// order; nothing is re-sorted.
func Reduce(renditions []media.Rendition) media.Qualities {
	q := make(media.Qualities)
	for _, r := range renditions {
		if r.Height < media.MinHeight || r.URL == "" || !streamable(r.Protocol) {
			continue
		}
		label := media.Label(r.Height)
		if _, seen := q[label]; !seen {
			q[label] = r.URL
		}
	}
	return q
}

func streamable(protocol string) bool {
	return strings.Contains(protocol, "m3u8") || strings.Contains(protocol, "https")
}

// Backend names accepted by NewProber.
const (
	BackendLibrary = "kkdai"
	BackendYtdlp   = "ytdlp"
)

// NewProber returns the prober for a configured backend name.
func NewProber(backend string, opts ProberOptions) (Prober, error) {
	switch backend {
	case "", BackendLibrary:
		return NewLibraryProber(opts.HTTPClient, opts.Fetcher), nil
	case BackendYtdlp:
		return NewYtdlpProber(opts.YtdlpPath), nil
	default:
		return nil, fmt.Errorf("unknown prober %q (valid: %s, %s)", backend, BackendLibrary, BackendYtdlp)
	}
}
