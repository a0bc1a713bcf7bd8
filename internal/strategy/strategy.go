// Package strategy runs an ordered list of extraction heuristics over a
// channel's web page until one of them yields a playable video ID.
package strategy

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"criollotv/internal/httputil"
	"criollotv/internal/match"
)

// ErrNoMatch is returned by a strategy that read its source successfully but
// found nothing in it. Transport and parse failures are returned wrapped
// instead, so the two remain distinguishable.
var ErrNoMatch = errors.New("no match")

// Strategy extracts an identifier from a page.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, pageURL string) (match.Identifier, error)
}

// LiveResolver turns a channel ID or handle into the video it is broadcasting.
type LiveResolver interface {
	Resolve(ctx context.Context, ref string) (string, bool)
}

// Chain tries strategies in priority order and stops at the first one that
// produces a video.
type Chain struct {
	strategies []Strategy
	live       LiveResolver
	log        zerolog.Logger
}

// NewChain creates a Chain over the given strategies.
func NewChain(live LiveResolver, log zerolog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, live: live, log: log}
}

// Default builds the standard page chain: meta tags, embedded frames, raw
// text, then any extra fallbacks such as the directory strategy.
func Default(fetcher httputil.Fetcher, live LiveResolver, log zerolog.Logger, fallbacks ...Strategy) *Chain {
	strategies := []Strategy{
		NewMetaTag(fetcher),
		NewFrame(fetcher),
		NewRawText(fetcher),
	}
	return NewChain(live, log, append(strategies, fallbacks...)...)
}

// Resolve returns the first video ID any strategy produces. A channel or
// handle result is handed to the live resolver; if that channel is not live
// the chain moves on to the next strategy. Resolve stops early when ctx is done.
func (c *Chain) Resolve(ctx context.Context, pageURL string) (string, bool) {
	for _, s := range c.strategies {
		if ctx.Err() != nil {
			return "", false
		}

		log := c.log.With().Str("strategy", s.Name()).Str("url", pageURL).Logger()

		id, err := s.Extract(ctx, pageURL)
		if err != nil {
			if !errors.Is(err, ErrNoMatch) {
				log.Debug().Err(err).Msg("strategy failed")
			}
			continue
		}

		if id.IsVideo() {
			log.Debug().Str("video_id", id.Value).Msg("strategy matched")
			return id.Value, true
		}

		if c.live == nil {
			continue
		}
		if videoID, ok := c.live.Resolve(ctx, id.Value); ok {
			log.Debug().Str(id.Kind.String(), id.Value).Str("video_id", videoID).Msg("strategy matched channel")
			return videoID, true
		}
		log.Debug().Str(id.Kind.String(), id.Value).Msg("channel found but not live")
	}
	return "", false
}

func fetchDocument(ctx context.Context, fetcher httputil.Fetcher, pageURL string) (*goquery.Document, error) {
	body, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return doc, nil
}
