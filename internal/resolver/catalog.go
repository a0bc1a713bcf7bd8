package resolver

import (
	"errors"
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"

	"criollotv/internal/media"
)

var (
	// ErrChannelNotFound means no configured channel has the requested name.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrChannelDisabled means the channel exists but is switched off.
	ErrChannelDisabled = errors.New("channel disabled")
)

// NotFoundError reports an unknown channel name and the closest configured
// one. It matches ErrChannelNotFound with errors.Is.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("channel %q not found", e.Name)
	}
	return fmt.Sprintf("channel %q not found, did you mean %q?", e.Name, e.Suggestion)
}

func (e *NotFoundError) Unwrap() error { return ErrChannelNotFound }

// Entry is a channel together with the section it was found in.
type Entry struct {
	Section string
	Channel media.ChannelConfig
}

// Catalog looks channels up by name across sections, in section order.
type Catalog struct {
	sections []media.Section
}

func NewCatalog(sections []media.Section) *Catalog {
	return &Catalog{sections: sections}
}

// Sections returns the configured sections.
func (c *Catalog) Sections() []media.Section { return c.sections }

// Entries lists every channel, optionally only the enabled ones.
func (c *Catalog) Entries(enabledOnly bool) []Entry {
	var out []Entry
	for _, s := range c.sections {
		for _, ch := range s.Channels {
			if enabledOnly && !ch.Enabled {
				continue
			}
			out = append(out, Entry{Section: s.Name, Channel: ch})
		}
	}
	return out
}

// Lookup finds a channel by name. An exact match wins; otherwise the first
// case-insensitive match is used. Disabled channels are returned together
// with ErrChannelDisabled.
func (c *Catalog) Lookup(name string) (Entry, error) {
	name = strings.TrimSpace(name)
	all := c.Entries(false)

	e, ok := lo.Find(all, func(e Entry) bool { return e.Channel.Name == name })
	if !ok {
		e, ok = lo.Find(all, func(e Entry) bool { return strings.EqualFold(e.Channel.Name, name) })
	}
	if !ok {
		return Entry{}, &NotFoundError{Name: name, Suggestion: closest(name, all)}
	}
	if !e.Channel.Enabled {
		return e, fmt.Errorf("%q: %w", e.Channel.Name, ErrChannelDisabled)
	}
	return e, nil
}

func closest(name string, entries []Entry) string {
	if len(entries) == 0 || name == "" {
		return ""
	}
	key := strings.ToLower(name)
	best := lo.MinBy(entries, func(a, b Entry) bool {
		return levenshtein.Distance(key, strings.ToLower(a.Channel.Name)) <
			levenshtein.Distance(key, strings.ToLower(b.Channel.Name))
	})
	return best.Channel.Name
}
