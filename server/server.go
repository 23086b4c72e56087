// Package server exposes the chatbot skill endpoints over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	"github.com/zntus/jbfc-kakao-chatbot/metrics"
)

// Service answers the chatbot's questions. *kleague.Service implements it.
type Service interface {
	TodayMatch(ctx context.Context) (kleague.Match, error)
	NextMatch(ctx context.Context) (kleague.Match, error)
	LastMatch(ctx context.Context) (kleague.Match, error)
	Lineup(ctx context.Context, gameID string) ([]kleague.Player, error)
	Referees(ctx context.Context, gameID string) (string, error)
	Ranking(ctx context.Context, league int) ([]kleague.RankingRow, error)
	Highlights(ctx context.Context, gameID string) ([]kleague.Highlight, error)
}

var _ Service = (*kleague.Service)(nil)

// Pinger reports whether a dependency is reachable. cache.Store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures New.
type Options struct {
	Service Service
	// Health is pinged by /healthz. Optional.
	Health Pinger
	// Metrics enables /metrics and request instrumentation. Optional.
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// Server routes skill requests to a Service.
type Server struct {
	service Service
	health  Pinger
	metrics *metrics.Metrics
	logger  logger.Logger
	router  *mux.Router
	handler http.Handler
}

var _ http.Handler = (*Server)(nil)

// New builds the router and middleware chain.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewConsoleLogger(logger.LevelNone)
	}
	s := &Server{
		service: opts.Service,
		health:  opts.Health,
		metrics: opts.Metrics,
		logger:  log.WithPrefix("[server]"),
		router:  mux.NewRouter(),
	}
	s.routes()
	s.handler = s.recoverer(requestID(cors(s.router)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "server: listen")
	}
	return s.Serve(ctx, ln, readTimeout, writeTimeout)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests. Requests keep ctx's values but not its cancellation.
func (s *Server) Serve(ctx context.Context, ln net.Listener, readTimeout, writeTimeout time.Duration) error {
	base := context.WithoutCancel(ctx)
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		return errors.Wrap(err, "server: serve")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server: shutdown")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server: serve")
	}
	return nil
}
