package cmd

import (
	"errors"
	"fmt"
	"strings"

	"criollotv/internal/directory"
	"criollotv/internal/httputil"
	"criollotv/internal/live"
	"criollotv/internal/quality"
	"criollotv/internal/resolver"
	"criollotv/internal/strategy"
)

// stack is the wired resolution pipeline for one command invocation.
type stack struct {
	catalog  *resolver.Catalog
	resolver *resolver.Resolver
}

// newStack builds the resolver from cfg. Quality probing is skipped when
// withQualities is false.
func newStack(withQualities bool) (*stack, error) {
	sections, err := cfg.MediaSections()
	if err != nil {
		return nil, err
	}

	client, err := httputil.NewClient(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}
	fetcher := httputil.NewFetcher(client, cfg.UserAgent, cfg.FetchTimeout)

	lr := live.New(fetcher, logger)

	dirOpts := []directory.Option{
		directory.WithKnownChannels(cfg.Directory.KnownChannels),
		directory.WithLogger(logger),
	}
	if len(cfg.Directory.Sources) > 0 {
		dirOpts = append(dirOpts, directory.WithSources(cfg.Directory.Sources...))
	}
	dir := directory.New(fetcher.WithTimeout(cfg.DirectoryTimeout), lr, dirOpts...)

	chain := strategy.Default(fetcher, lr, logger, strategy.NewDirectory(dir, cfg.Directory.Domains))

	opts := []resolver.Option{
		resolver.WithTimeout(cfg.ResolveTimeout),
		resolver.WithLogger(logger),
	}
	if withQualities {
		prober, err := quality.NewProber(strings.ToLower(cfg.Prober), quality.ProberOptions{
			HTTPClient: client,
			Fetcher:    fetcher,
			YtdlpPath:  cfg.YtdlpPath,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, resolver.WithQualities(quality.New(prober, logger)))
	}

	return &stack{
		catalog:  resolver.NewCatalog(sections),
		resolver: resolver.New(chain, lr, opts...),
	}, nil
}

// exitCode separates unknown channels and channels that are off air from
// other failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, resolver.ErrChannelNotFound), errors.Is(err, resolver.ErrChannelDisabled):
		return 3
	case errors.Is(err, errNotLive):
		return 2
	default:
		return 1
	}
}
