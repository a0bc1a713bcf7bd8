package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"criollotv/internal/history"
	"criollotv/internal/resolver"
	"criollotv/internal/ui"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Replay a channel from watch history",
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 50, "Number of entries to show (0 for all)")
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.OpenDefault()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	entries, err := store.Load(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	// Show history in fzf
	items := history.FormatForDisplay(entries)
	idx, err := ui.Select("Historial", items)
	if err != nil {
		return err
	}

	selected := entries[idx]
	debugf("replaying: %s (%s)", selected.Channel, selected.Section)

	st, err := newStack(true)
	if err != nil {
		return err
	}

	err = playChannel(cmd.Context(), st, selected.Channel)
	if errors.Is(err, resolver.ErrChannelNotFound) {
		// The channel was removed from the config since it was watched.
		if rmErr := store.Remove(cmd.Context(), selected.Channel); rmErr != nil {
			debugf("removing stale history entry failed: %v", rmErr)
		}
	}
	return err
}
