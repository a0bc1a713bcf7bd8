package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"criollotv/internal/history"
	"criollotv/internal/media"
	"criollotv/internal/player"
	"criollotv/internal/resolver"
	"criollotv/internal/ui"
)

// playRun is the default command: criollotv <channel>
func playRun(cmd *cobra.Command, args []string) error {
	st, err := newStack(true)
	if err != nil {
		return err
	}

	name := strings.Join(args, " ")
	if name == "" {
		name, err = pickChannel(st.catalog)
		if err != nil {
			return err
		}
	}

	return playChannel(cmd.Context(), st, name)
}

// pickChannel lets the user choose an enabled channel via fzf.
func pickChannel(catalog *resolver.Catalog) (string, error) {
	entries := catalog.Entries(true)
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = e.Section + " / " + e.Channel.Name
	}
	idx, err := ui.Select("Canal", items)
	if err != nil {
		return "", err
	}
	return entries[idx].Channel.Name, nil
}

// resolveLive resolves name and turns "not live" into errNotLive.
func resolveLive(ctx context.Context, st *stack, name string) (resolver.Entry, *media.ResolvedStream, error) {
	entry, stream, err := st.resolver.Resolve(ctx, st.catalog, name)
	if err != nil {
		return entry, nil, err
	}
	if stream == nil {
		return entry, nil, fmt.Errorf("%s: %w", entry.Channel.Name, errNotLive)
	}
	return entry, stream, nil
}

// playChannel resolves, plays and records the channel in history.
func playChannel(ctx context.Context, st *stack, name string) error {
	entry, stream, err := resolveLive(ctx, st, name)
	if err != nil {
		return err
	}

	req, label := playRequest(entry.Channel.Name, stream, cfg.PreferredHeight())
	if flagPick && len(stream.Qualities) > 1 {
		labels := stream.Qualities.Labels()
		idx, err := ui.Select("Calidad", labels)
		if err != nil {
			return err
		}
		label = labels[idx]
		req = player.Request{URL: stream.Qualities[label], Title: entry.Channel.Name}
	}
	debugf("playing %s at %s: %s", entry.Channel.Name, label, req.URL)

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	watched, err := p.Play(ctx, req)
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	if cfg.History {
		store, err := history.OpenDefault()
		if err != nil {
			debugf("opening history failed: %v", err)
			return nil
		}
		defer store.Close()

		if err := store.Save(context.WithoutCancel(ctx), media.HistoryEntry{
			Channel: entry.Channel.Name,
			Section: entry.Section,
			VideoID: stream.VideoID,
			Quality: label,
			Watched: watched,
		}); err != nil {
			debugf("saving history failed: %v", err)
		}
	}

	return nil
}

// playRequest picks the quality closest to preferred. With no quality list
// the player is pointed at the watch page and left to pick a format itself.
func playRequest(title string, stream *media.ResolvedStream, preferred int) (player.Request, string) {
	if label, ok := stream.Qualities.Pick(preferred); ok {
		return player.Request{URL: stream.Qualities[label], Title: title}, label
	}
	return player.Request{
		URL:       stream.SourceWatchURL,
		Title:     title,
		YTDL:      true,
		MaxHeight: preferred,
	}, "auto"
}
