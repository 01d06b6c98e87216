package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/notify"
	"github.com/playperu/bingo/internal/processor"
	"github.com/playperu/bingo/internal/store"
)

// Submitter processes a submitted action. *processor.Processor implements it.
type Submitter interface {
	Process(ctx context.Context, a bingo.Action) (processor.Result, error)
}

// Reader serves the read endpoints. *store.SQLite implements it.
type Reader interface {
	ActiveEvents(ctx context.Context, now time.Time) ([]bingo.Event, error)
	Event(ctx context.Context, id string) (bingo.Event, error)
	Team(ctx context.Context, id string) (bingo.Team, error)
	Leaderboard(ctx context.Context, eventID string) ([]store.Standing, error)
	BoardState(ctx context.Context, eventID, teamID string) ([]store.TileState, error)
	Proofs(ctx context.Context, teamID string) ([]store.Proof, error)
}

type Deps struct {
	Submitter Submitter
	Reader    Reader
	Broker    *notify.Broker
	// SubmitKeyHash is the bcrypt hash of the key required on submissions.
	// Submissions are open when it is empty.
	SubmitKeyHash string
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New builds the HTTP server. mount, when not nil, adds routes served by
// other packages.
func New(addr string, logger *slog.Logger, deps Deps, mount func(chi.Router)) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           newRouter(logger, deps, mount),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func newRouter(logger *slog.Logger, deps Deps, mount func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, logger, deps)
	if mount != nil {
		mount(r)
	}
	return r
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
