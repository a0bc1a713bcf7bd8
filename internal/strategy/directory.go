package strategy

import (
	"context"
	"net/url"
	"strings"

	"criollotv/internal/match"
)

// DirectoryResolver looks a page up in third-party channel directories.
type DirectoryResolver interface {
	Resolve(ctx context.Context, pageURL string) (string, bool)
}

// Directory is the last-resort strategy. It only applies to pages hosted on
// one of the configured directory domains; other pages are a no match
// without any network traffic.
type Directory struct {
	dir     DirectoryResolver
	domains []string
}

func NewDirectory(dir DirectoryResolver, domains []string) *Directory {
	return &Directory{dir: dir, domains: domains}
}

func (s *Directory) Name() string { return "directory" }

func (s *Directory) Extract(ctx context.Context, pageURL string) (match.Identifier, error) {
	if !s.applies(pageURL) {
		return match.Identifier{}, ErrNoMatch
	}
	videoID, ok := s.dir.Resolve(ctx, pageURL)
	if !ok {
		return match.Identifier{}, ErrNoMatch
	}
	return match.Identifier{Kind: match.Video, Value: videoID}, nil
}

func (s *Directory) applies(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range s.domains {
		if d != "" && strings.Contains(host, strings.ToLower(d)) {
			return true
		}
	}
	return false
}
