// Package directory resolves channels through third-party JSON channel
// directories when scraping the channel's own page found nothing.
package directory

import (
	"context"
	"net/url"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"criollotv/internal/httputil"
	"criollotv/internal/match"
)

// Default directory sources, in priority order.
const (
	PrimarySource   = "https://www.tdtchannels.com/lists/tv.json"
	SecondarySource = "https://raw.githubusercontent.com/LaQuay/TDTChannels/master/TELEVISION.json"
)

// DefaultSources returns the built-in source list.
func DefaultSources() []string {
	return []string{PrimarySource, SecondarySource}
}

// LiveResolver turns a channel ID or handle into its live video.
type LiveResolver interface {
	Resolve(ctx context.Context, ref string) (string, bool)
}

// Resolver matches a page's channel name against directory listings.
type Resolver struct {
	fetcher httputil.Fetcher
	live    LiveResolver
	sources []string
	known   map[string]string
	log     zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSources replaces the default source list.
func WithSources(sources ...string) Option {
	return func(r *Resolver) { r.sources = sources }
}

// WithKnownChannels registers aliases from a directory channel name to a
// YouTube channel ID or handle. Aliases are consulted before any source.
func WithKnownChannels(known map[string]string) Option {
	return func(r *Resolver) {
		for name, ref := range known {
			r.known[Normalize(name)] = ref
		}
	}
}

// WithLogger sets the logger used for recovered failures.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a Resolver. The fetcher should carry the directory timeout.
func New(fetcher httputil.Fetcher, live LiveResolver, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		live:    live,
		sources: DefaultSources(),
		known:   make(map[string]string),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize folds a channel name for comparison: trimmed, lower-cased and
// with all whitespace removed.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// ChannelName derives the normalized channel name from the last path
// segment of a directory page URL.
func ChannelName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	path := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return Normalize(path)
}

// Resolve returns the live video for the channel the page names. Sources are
// fetched concurrently but matched in priority order, so the result does not
// depend on which source answers first.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (string, bool) {
	name := ChannelName(pageURL)
	if name == "" {
		return "", false
	}
	log := r.log.With().Str("channel", name).Logger()

	if ref, ok := r.known[name]; ok {
		if videoID, ok := r.live.Resolve(ctx, ref); ok {
			log.Debug().Str("ref", ref).Str("video_id", videoID).Msg("directory: known channel is live")
			return videoID, true
		}
		log.Debug().Str("ref", ref).Msg("directory: known channel not live")
	}

	listings := r.fetchAll(ctx)
	for i, entries := range listings {
		if entries == nil {
			continue
		}
		if videoID, ok := r.matchEntries(ctx, name, entries); ok {
			log.Debug().Str("source", r.sources[i]).Str("video_id", videoID).Msg("directory: matched")
			return videoID, true
		}
		log.Debug().Str("source", r.sources[i]).Msg("directory: no match in source")
	}
	return "", false
}

// fetchAll loads every source concurrently. A failed source leaves a nil
// slot and never cancels its siblings.
func (r *Resolver) fetchAll(ctx context.Context) [][]Entry {
	listings := make([][]Entry, len(r.sources))

	var g errgroup.Group
	for i, src := range r.sources {
		g.Go(func() error {
			body, err := r.fetcher.Fetch(ctx, src)
			if err != nil {
				r.log.Debug().Err(err).Str("source", src).Msg("directory: fetch failed")
				return nil
			}
			entries, err := Parse(body)
			if err != nil {
				r.log.Debug().Err(err).Str("source", src).Msg("directory: malformed listing")
				return nil
			}
			listings[i] = entries
			return nil
		})
	}
	_ = g.Wait()

	return listings
}

func (r *Resolver) matchEntries(ctx context.Context, name string, entries []Entry) (string, bool) {
	for _, e := range entries {
		if Normalize(e.Name) != name {
			continue
		}
		for _, option := range e.Options {
			id, ok := match.Match(option)
			if !ok {
				continue
			}
			if id.IsVideo() {
				return id.Value, true
			}
			if videoID, ok := r.live.Resolve(ctx, id.Value); ok {
				return videoID, true
			}
		}
	}
	return "", false
}
