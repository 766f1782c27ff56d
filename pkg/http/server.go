package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

const (
	timeout         = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type httpServer struct {
	httpPort    int   // To initialize the HTTP server.
	maxBodySize int64 // Per inbound request.

	events http.Handler // Slack Events API.
}

func newHTTPServer(cmd *cli.Command, events http.Handler) *httpServer {
	return &httpServer{
		httpPort:    cmd.Int("webhook-port"),
		maxBodySize: int64(cmd.Int("max-body-size")),
		events:      events,
	}
}

func (s *httpServer) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/", s.livenessHandler)
	r.With(s.limitBody).Post("/api/event", s.events.ServeHTTP)

	return r
}

// run starts an HTTP server to expose the webhook. This is blocking,
// to keep the server running, until the given context is canceled.
func (s *httpServer) run(ctx context.Context) error {
	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.httpPort)),
		Handler:      s.routes(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("HTTP server listening on port %d", s.httpPort)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		log.Err(err).Send()
		return err

	case <-ctx.Done():
		log.Info().Msg("HTTP server shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("HTTP server shutdown error")
			return err
		}
		return nil
	}
}

// livenessHandler always returns 200 OK with an empty body.
func (s *httpServer) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *httpServer) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.maxBodySize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger attaches a request-scoped logger to the request's
// context, and logs every request after it's been handled.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		l := log.With().Str("http_method", r.Method).Str("url_path", r.URL.EscapedPath()).
			Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		lvl := zerolog.InfoLevel
		if ww.Status() >= http.StatusInternalServerError {
			lvl = zerolog.ErrorLevel
		}
		l.WithLevel(lvl).Int("status", ww.Status()).Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).Msg("handled HTTP request")
	})
}
