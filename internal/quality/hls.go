package quality

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"

	"criollotv/internal/media"
)

const hlsProtocol = "m3u8_native"

// ParseMaster expands an HLS master playlist into one rendition per variant,
// in playlist order. Relative variant URIs are resolved against manifestURL.
func ParseMaster(manifestURL string, body []byte) ([]media.Rendition, error) {
	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, fmt.Errorf("decoding HLS playlist: %w", err)
	}
	if listType != m3u8.MASTER {
		return nil, fmt.Errorf("HLS playlist is not a master playlist")
	}
	master := playlist.(*m3u8.MasterPlaylist)

	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL: %w", err)
	}

	var out []media.Rendition
	for _, v := range master.Variants {
		if v == nil || v.URI == "" {
			continue
		}
		height := resolutionHeight(v.Resolution)
		if height == 0 {
			continue
		}
		ref, err := url.Parse(v.URI)
		if err != nil {
			continue
		}
		out = append(out, media.Rendition{
			Height:   height,
			Protocol: hlsProtocol,
			URL:      base.ResolveReference(ref).String(),
		})
	}
	return out, nil
}

// resolutionHeight reads the height from a "WIDTHxHEIGHT" attribute.
func resolutionHeight(res string) int {
	_, h, ok := strings.Cut(res, "x")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return n
}
