// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"criollotv/internal/config"
	"criollotv/internal/ui"
)

// Global flags
var (
	flagQuality string
	flagPlayer  string
	flagProxy   string
	flagDebug   bool
	flagPick    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// logger writes diagnostics to stderr; warn level unless debugging.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "criollotv [channel]",
	Short: "Watch Argentine live TV channels from the terminal",
	Long: `CriolloTV finds the current live broadcast of configured channels and
plays it with mpv/vlc, records it with ffmpeg, or serves it over HTTP.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(ui.Styled(os.Stderr), "Error: "+err.Error()))
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagQuality, "quality", "q", "", "Preferred quality: 360 | 480 | 720 | 1080")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().StringVar(&flagProxy, "proxy", "", "HTTP or SOCKS5 proxy URL")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.Flags().BoolVarP(&flagPick, "select-quality", "s", false, "Choose the quality via fzf")

	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration, then sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file and environment values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagQuality != "" {
		cfg.Quality = flagQuality
	}
	if flagProxy != "" {
		cfg.Proxy = flagProxy
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := zerolog.WarnLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...any) {
	logger.Debug().Msgf(format, args...)
}

// errNotLive marks a configured channel with no broadcast right now.
var errNotLive = errors.New("not live right now")
