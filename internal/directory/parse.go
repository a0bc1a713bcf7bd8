package directory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Entry is one directory channel flattened to its name and stream URLs.
type Entry struct {
	Name    string
	Options []string
}

// rawChannel fields are left raw: listings carry options and web either as
// lists or as a single value.
type rawChannel struct {
	Name    string          `json:"name"`
	Options json.RawMessage `json:"options"`
	Web     json.RawMessage `json:"web"`
}

type rawAmbit struct {
	Channels []json.RawMessage `json:"channels"`
}

type rawCountry struct {
	Ambits []rawAmbit `json:"ambits"`
}

type rawListing struct {
	Countries []rawCountry      `json:"countries"`
	Channels  []json.RawMessage `json:"channels"`
}

var errNoJSON = errors.New("no JSON document in body")

// Parse flattens a directory body into entries. It accepts a nested
// countries/ambits/channels document, an object with a top-level channels
// list, or a bare list of channels. Bytes before the first '{' or '[' are
// ignored. A channel that does not decode is skipped; only a document that
// does not decode fails.
func Parse(body []byte) ([]Entry, error) {
	start := bytes.IndexAny(body, "{[")
	if start < 0 {
		return nil, errNoJSON
	}
	body = body[start:]

	var channels []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &channels); err != nil {
			return nil, fmt.Errorf("decoding channel list: %w", err)
		}
	} else {
		var listing rawListing
		if err := json.Unmarshal(body, &listing); err != nil {
			return nil, fmt.Errorf("decoding listing: %w", err)
		}
		if len(listing.Countries) > 0 {
			for _, c := range listing.Countries {
				for _, a := range c.Ambits {
					channels = append(channels, a.Channels...)
				}
			}
		} else {
			channels = listing.Channels
		}
	}

	entries := make([]Entry, 0, len(channels))
	for _, raw := range channels {
		var ch rawChannel
		if err := json.Unmarshal(raw, &ch); err != nil || ch.Name == "" {
			continue
		}
		urls := urlList(ch.Options)
		if len(urls) == 0 {
			urls = urlList(ch.Web)
		}
		entries = append(entries, Entry{Name: ch.Name, Options: urls})
	}
	return entries, nil
}

// urlList reads a list of options or a single option.
func urlList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return optionURLs(list)
	}
	return optionURLs([]json.RawMessage{raw})
}

// optionURLs accepts options as {"url": "..."} objects or bare strings and
// drops anything else.
func optionURLs(raw []json.RawMessage) []string {
	var urls []string
	for _, r := range raw {
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(r, &obj); err == nil {
			if obj.URL != "" {
				urls = append(urls, obj.URL)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil && s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}
