// Package resolver routes a channel configuration to the right resolution
// path and returns a uniform ResolvedStream.
package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"criollotv/internal/match"
	"criollotv/internal/media"
)

// PageResolver finds the live video referenced by a web page.
type PageResolver interface {
	Resolve(ctx context.Context, pageURL string) (string, bool)
}

// LiveResolver finds the live video of a channel ID or handle.
type LiveResolver interface {
	Resolve(ctx context.Context, ref string) (string, bool)
}

// QualityResolver lists the playable qualities of a video.
type QualityResolver interface {
	Resolve(ctx context.Context, videoID string) media.Qualities
}

// DefaultTimeout bounds one whole resolution.
const DefaultTimeout = 45 * time.Second

// Resolver dispatches on a channel's resolution method. It keeps no state
// between calls and is safe for concurrent use.
type Resolver struct {
	pages     PageResolver
	live      LiveResolver
	qualities QualityResolver
	timeout   time.Duration
	log       zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithQualities enables quality resolution after a video is found.
func WithQualities(q QualityResolver) Option {
	return func(r *Resolver) { r.qualities = q }
}

// WithTimeout sets the overall deadline for one resolution; zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a Resolver.
func New(pages PageResolver, live LiveResolver, opts ...Option) *Resolver {
	r := &Resolver{
		pages:   pages,
		live:    live,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveChannel resolves cfg to a playable stream. It returns (nil, nil)
// when the channel is not live or every source failed. The only error it
// returns is the caller's context error.
func (r *Resolver) ResolveChannel(ctx context.Context, cfg media.ChannelConfig) (*media.ResolvedStream, error) {
	log := r.log.With().Str("channel", cfg.Name).Stringer("method", cfg.Method).Logger()

	if cfg.Method == media.DirectURL {
		if cfg.DirectStreamURL == "" {
			log.Debug().Msg("direct channel has no stream URL")
			return nil, nil
		}
		return &media.ResolvedStream{
			Qualities: media.Qualities{media.SourceLabel: cfg.DirectStreamURL},
		}, nil
	}

	rctx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	videoID, ok := r.videoID(rctx, cfg, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		log.Debug().Msg("channel not live")
		return nil, nil
	}

	stream := &media.ResolvedStream{
		VideoID:        videoID,
		Qualities:      media.Qualities{},
		SourceWatchURL: media.WatchURL(videoID),
	}
	if r.qualities != nil {
		stream.Qualities = r.qualities.Resolve(rctx, videoID)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	log.Debug().Str("video_id", videoID).Int("qualities", len(stream.Qualities)).Msg("channel resolved")
	return stream, nil
}

func (r *Resolver) videoID(ctx context.Context, cfg media.ChannelConfig, log zerolog.Logger) (string, bool) {
	switch cfg.Method {
	case media.YouTubeChannel:
		ref := cfg.ExplicitChannelID
		if strings.TrimSpace(ref) == "" {
			ref = cfg.SourceURL
		}
		ref, ok := match.ChannelRef(ref)
		if !ok {
			log.Debug().Str("ref", cfg.ExplicitChannelID).Msg("unusable channel reference")
			return "", false
		}
		return r.live.Resolve(ctx, ref)
	default:
		if cfg.SourceURL == "" {
			return "", false
		}
		return r.pages.Resolve(ctx, cfg.SourceURL)
	}
}

// Resolve looks name up in the catalog and resolves it. Unknown and
// disabled channels return ErrChannelNotFound and ErrChannelDisabled.
func (r *Resolver) Resolve(ctx context.Context, catalog *Catalog, name string) (Entry, *media.ResolvedStream, error) {
	e, err := catalog.Lookup(name)
	if err != nil {
		return e, nil, err
	}
	stream, err := r.ResolveChannel(ctx, e.Channel)
	return e, stream, err
}
