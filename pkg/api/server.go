// Package api serves the heightmap operations over HTTP.
//
// Routes:
//
//	GET  /hello                 diagnostic check, always {"hello":42}
//	GET  /healthz               liveness
//	GET  /presets               built-in preset names
//	POST /generate?format=png   run the pipeline; JSON options body (optional)
//	POST /image                 raw heights in, RGBA mask bytes out
//	POST /blur?radius=8         raw heights in, blurred heights out
//	GET  /stream                websocket; JSON options in, metadata + heights out
//
// Every pipeline response carries an X-Run-ID header. Errors are returned
// as {"error": CODE, "message": "..."} with a matching status.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

// MaxBodyBytes bounds request bodies (a 4096×4096 heightmap).
const MaxBodyBytes = pipeline.MaxSize * pipeline.MaxSize

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server routes HTTP requests to the pipeline.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// NewServer creates a server backed by runner.
// A nil runner uses pipeline.NewRunner(nil, logger).
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, logger)
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Get("/hello", s.handleHello)
	r.Get("/presets", s.handlePresets)
	r.Get("/stream", s.handleStream)

	r.Group(func(r chi.Router) {
		r.Use(limitBody(MaxBodyBytes))
		r.Post("/generate", s.handleGenerate)
		r.Post("/image", s.handleImage)
		r.Post("/blur", s.handleBlur)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound(r.URL.Path))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
