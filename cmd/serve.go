package cmd

import (
	"math"

	"github.com/spf13/cobra"

	"criollotv/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the channel API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default: listen from config)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	st, err := newStack(true)
	if err != nil {
		return err
	}

	addr := cfg.Listen
	if flagListen != "" {
		addr = flagListen
	}

	srv := server.New(st.catalog, st.resolver,
		server.WithRateLimit(cfg.RateLimit, int(math.Ceil(cfg.RateLimit))),
		server.WithLogger(logger),
	)
	return srv.ListenAndServe(cmd.Context(), addr)
}
