// Package server exposes channel listing and live stream resolution over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"criollotv/internal/media"
	"criollotv/internal/resolver"
)

// ChannelResolver resolves a configured channel by name.
type ChannelResolver interface {
	Resolve(ctx context.Context, catalog *resolver.Catalog, name string) (resolver.Entry, *media.ResolvedStream, error)
}

// Server serves the channel API. Every stream request triggers a fresh
// resolution; nothing is cached.
type Server struct {
	catalog  *resolver.Catalog
	resolver ChannelResolver
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps stream resolutions per second. Zero or less means unlimited.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

func New(catalog *resolver.Catalog, res ChannelResolver, opts ...Option) *Server {
	s := &Server{
		catalog:  catalog,
		resolver: res,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/api/channels", s.handleChannels)
	r.Get("/api/channels/{name}/stream", s.handleStream)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

type channelJSON struct {
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Method string `json:"method"`
}

type sectionJSON struct {
	Name     string        `json:"name"`
	Channels []channelJSON `json:"channels"`
}

type streamJSON struct {
	Channel string `json:"channel"`
	Section string `json:"section"`
	Live    bool   `json:"live"`
	*media.ResolvedStream
}

type errorJSON struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	out := []sectionJSON{}
	for _, sec := range s.catalog.Sections() {
		item := sectionJSON{Name: sec.Name, Channels: []channelJSON{}}
		for _, ch := range sec.Channels {
			if !ch.Enabled {
				continue
			}
			item.Channels = append(item.Channels, channelJSON{Name: ch.Name, Logo: ch.Logo, Method: ch.Method.String()})
		}
		if len(item.Channels) > 0 {
			out = append(out, item)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid channel name"})
		return
	}

	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, errorJSON{Error: "too many requests"})
		return
	}

	entry, stream, err := s.resolver.Resolve(r.Context(), s.catalog, name)
	var nf *resolver.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: nf.Error(), Suggestion: nf.Suggestion})
		return
	case errors.Is(err, resolver.ErrChannelDisabled):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error()})
		return
	case err != nil:
		// Client went away.
		s.log.Debug().Err(err).Str("channel", name).Msg("resolution aborted")
		return
	}

	resp := streamJSON{Channel: entry.Channel.Name, Section: entry.Section}
	if stream != nil {
		resp.Live = true
		resp.ResolvedStream = stream
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
