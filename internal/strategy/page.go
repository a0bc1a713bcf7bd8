package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"criollotv/internal/httputil"
	"criollotv/internal/match"
)

// metaProperties are checked in order; the first present element decides.
var metaProperties = []string{"og:video", "og:video:url", "og:video:secure_url"}

// MetaTag reads the og:video family of meta elements.
type MetaTag struct {
	fetcher httputil.Fetcher
}

func NewMetaTag(fetcher httputil.Fetcher) *MetaTag { return &MetaTag{fetcher: fetcher} }

func (s *MetaTag) Name() string { return "meta" }

func (s *MetaTag) Extract(ctx context.Context, pageURL string) (match.Identifier, error) {
	doc, err := fetchDocument(ctx, s.fetcher, pageURL)
	if err != nil {
		return match.Identifier{}, err
	}
	return parseMetaTags(doc)
}

func parseMetaTags(doc *goquery.Document) (match.Identifier, error) {
	for _, prop := range metaProperties {
		sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, prop)).First()
		if sel.Length() == 0 {
			continue
		}
		content, _ := sel.Attr("content")
		if id, ok := match.Match(strings.TrimSpace(content)); ok {
			return id, nil
		}
		return match.Identifier{}, ErrNoMatch
	}
	return match.Identifier{}, ErrNoMatch
}

// Frame inspects embedded iframes pointing at YouTube.
type Frame struct {
	fetcher httputil.Fetcher
}

func NewFrame(fetcher httputil.Fetcher) *Frame { return &Frame{fetcher: fetcher} }

func (s *Frame) Name() string { return "iframe" }

func (s *Frame) Extract(ctx context.Context, pageURL string) (match.Identifier, error) {
	doc, err := fetchDocument(ctx, s.fetcher, pageURL)
	if err != nil {
		return match.Identifier{}, err
	}
	return parseFrames(doc)
}

func parseFrames(doc *goquery.Document) (match.Identifier, error) {
	var (
		found match.Identifier
		ok    bool
	)
	doc.Find("iframe[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		if !strings.Contains(src, "youtube.com") && !strings.Contains(src, "youtu.be") {
			return true
		}
		found, ok = match.Match(src)
		return !ok
	})
	if !ok {
		return match.Identifier{}, ErrNoMatch
	}
	return found, nil
}

// RawText runs the text patterns over the whole body, catching identifiers in
// inline scripts and plain links.
type RawText struct {
	fetcher httputil.Fetcher
}

func NewRawText(fetcher httputil.Fetcher) *RawText { return &RawText{fetcher: fetcher} }

func (s *RawText) Name() string { return "text" }

func (s *RawText) Extract(ctx context.Context, pageURL string) (match.Identifier, error) {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return match.Identifier{}, fmt.Errorf("fetching page: %w", err)
	}
	id, ok := match.ScanText(string(body))
	if !ok {
		return match.Identifier{}, ErrNoMatch
	}
	return id, nil
}
