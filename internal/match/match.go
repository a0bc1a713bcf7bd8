// Package match recognizes YouTube video IDs, channel IDs and handles
// embedded in arbitrary text. Every function here is pure: no I/O, and a
// failed match is reported as ok == false, never as an error.
package match

import (
	"regexp"
	"strings"
)

// Kind tells what an Identifier refers to.
type Kind int

const (
	Video Kind = iota
	Channel
	Handle
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Channel:
		return "channel"
	case Handle:
		return "handle"
	default:
		return "unknown"
	}
}

// Identifier is a classified value pulled out of a URL or page.
type Identifier struct {
	Kind  Kind
	Value string
}

// IsVideo reports whether the identifier can be played directly.
func (id Identifier) IsVideo() bool { return id.Kind == Video }

// VideoIDLength is the length of every YouTube video ID.
const VideoIDLength = 11

// ChannelPrefix starts every canonical YouTube channel ID.
const ChannelPrefix = "UC"

type pattern struct {
	re   *regexp.Regexp
	kind Kind
}

// urlPatterns are tried in order against a single URL or attribute value.
var urlPatterns = []pattern{
	{regexp.MustCompile(`youtube\.com/embed/live_stream\?channel=([a-zA-Z0-9_-]+)`), Channel},
	{regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`/live_stream/([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`videoId["']?\s*[:=]\s*["']([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtube\.com/channel/([a-zA-Z0-9_-]+)/live`), Channel},
	{regexp.MustCompile(`youtube\.com/channel/([a-zA-Z0-9_-]+)/?$`), Channel},
	{regexp.MustCompile(`youtube\.com/@([^/?]+)/live`), Handle},
	{regexp.MustCompile(`youtube\.com/@([^/?]+)/?$`), Handle},
	{regexp.MustCompile(`youtube\.com/c/([^/?]+)/live`), Handle},
	{regexp.MustCompile(`youtube\.com/c/([^/?]+)/?$`), Handle},
}

// textPatterns are tried in order against a whole page body. Channel shapes
// are unanchored here and come last so that any direct video reference wins.
var textPatterns = []pattern{
	{regexp.MustCompile(`youtube\.com/embed/live_stream\?channel=([a-zA-Z0-9_-]+)`), Channel},
	{regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`videoId["']?\s*[:=]\s*["']([a-zA-Z0-9_-]{11})`), Video},
	{regexp.MustCompile(`youtube\.com/channel/(UC[a-zA-Z0-9_-]{22})`), Channel},
	// A handle never ends in a dot, so sentence punctuation is left out.
	{regexp.MustCompile(`youtube\.com/@([a-zA-Z0-9_.-]*[a-zA-Z0-9_-])`), Handle},
}

// livePatterns are tuned for a channel's /live page.
var livePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`),
	regexp.MustCompile(`watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`/live/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`embed/([a-zA-Z0-9_-]{11})`),
}

var (
	refChannelPattern = regexp.MustCompile(`channel/([a-zA-Z0-9_-]+)`)
	refHandlePattern  = regexp.MustCompile(`@([a-zA-Z0-9_.-]*[a-zA-Z0-9_-])`)
)

// Classify applies the channel heuristic to a value captured by a
// video-shaped pattern: anything longer than a video ID, or carrying the
// channel prefix, is a channel. The heuristic can misfire on a real video ID
// that happens to start with "UC".
func Classify(value string, kind Kind) Identifier {
	if kind == Video && (len(value) > VideoIDLength || strings.HasPrefix(value, ChannelPrefix)) {
		kind = Channel
	}
	return Identifier{Kind: kind, Value: value}
}

// Match finds the first known URL shape in text.
func Match(text string) (Identifier, bool) {
	return first(urlPatterns, text)
}

// ScanText searches a full page body for an identifier.
func ScanText(text string) (Identifier, bool) {
	return first(textPatterns, text)
}

// ScanLive extracts the broadcasting video ID from a channel's live page.
func ScanLive(text string) (string, bool) {
	for _, re := range livePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ChannelRef reduces a channel ID, handle, or channel/handle URL to the bare
// reference accepted by the live resolver.
func ChannelRef(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.Contains(s, "youtube.com") {
		if m := refChannelPattern.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
		if m := refHandlePattern.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
		return "", false
	}
	s = strings.TrimPrefix(s, "@")
	return s, s != ""
}

func first(patterns []pattern, text string) (Identifier, bool) {
	if text == "" {
		return Identifier{}, false
	}
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return Classify(m[1], p.kind), true
		}
	}
	return Identifier{}, false
}
