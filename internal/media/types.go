// Package media defines shared types for the criollotv application.
package media

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ResolutionMethod selects how a channel's live video is located.
type ResolutionMethod int

const (
	PageScrape ResolutionMethod = iota
	YouTubeChannel
	DirectURL
)

func (m ResolutionMethod) String() string {
	switch m {
	case PageScrape:
		return "page_scrape"
	case YouTubeChannel:
		return "youtube_channel"
	case DirectURL:
		return "direct_url"
	default:
		return "unknown"
	}
}

// ParseResolutionMethod maps a configuration value to a ResolutionMethod.
// An empty value means PageScrape.
func ParseResolutionMethod(s string) (ResolutionMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "page_scrape", "scrape", "page":
		return PageScrape, nil
	case "youtube_channel", "channel":
		return YouTubeChannel, nil
	case "direct_url", "direct":
		return DirectURL, nil
	default:
		return PageScrape, fmt.Errorf("unknown resolution method %q (valid: page_scrape, youtube_channel, direct_url)", s)
	}
}

// ChannelConfig describes one configured channel. Names are unique within a section.
type ChannelConfig struct {
	Name              string
	SourceURL         string // Page to scrape, or the channel URL for YouTubeChannel
	Logo              string
	Method            ResolutionMethod
	ExplicitChannelID string // Channel ID, handle, or channel URL (YouTubeChannel only)
	DirectStreamURL   string // Playable URL (DirectURL only)
	Enabled           bool
}

// Section is a named group of channels, e.g. "Noticias en Vivo".
type Section struct {
	Name     string
	Channels []ChannelConfig
}

// SourceLabel is the quality label used for direct-URL streams.
const SourceLabel = "source"

// MinHeight is the lowest rendition height kept by quality resolution.
const MinHeight = 360

// Rendition is one encoded/delivered version of a video.
type Rendition struct {
	Height   int
	Protocol string // e.g. "https", "m3u8_native"
	URL      string
}

// Qualities maps a quality label ("720p") to a media URL.
type Qualities map[string]string

// Label formats a height as a quality label.
func Label(height int) string {
	return strconv.Itoa(height) + "p"
}

// LabelHeight returns the numeric height of a label, or 0 for labels
// such as "source" or "auto".
func LabelHeight(label string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(label), "p"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Labels returns the labels ordered by height, highest first.
func (q Qualities) Labels() []string {
	labels := lo.Keys(q)
	sort.Slice(labels, func(i, j int) bool {
		hi, hj := LabelHeight(labels[i]), LabelHeight(labels[j])
		if hi != hj {
			return hi > hj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Pick chooses the label to play for a preferred height: the highest
// available label not above it, otherwise the lowest available one.
// A preferred height of 0 or less picks the highest.
func (q Qualities) Pick(preferred int) (string, bool) {
	labels := q.Labels()
	if len(labels) == 0 {
		return "", false
	}
	if preferred <= 0 {
		return labels[0], true
	}
	for _, l := range labels {
		if h := LabelHeight(l); h > 0 && h <= preferred {
			return l, true
		}
	}
	return labels[len(labels)-1], true
}

// ResolvedStream is the outcome of resolving one channel. It is built per
// request and never cached.
type ResolvedStream struct {
	VideoID        string    `json:"video_id,omitempty"`
	Qualities      Qualities `json:"qualities"`
	SourceWatchURL string    `json:"source_watch_url,omitempty"`
}

// WatchURL returns the canonical watch page for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// HistoryEntry represents a single channel playback in the watch history.
type HistoryEntry struct {
	Channel   string // Channel name as configured
	Section   string
	VideoID   string // Empty for direct-URL channels
	Quality   string
	Watched   time.Duration
	WatchedAt time.Time
}
