// Package api serves the console's HTTP interface: task triggering and the
// live task stream, the agent roster, the asset library, campaigns, publish
// jobs, connected accounts, and Prometheus metrics.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/task"
)

const shutdownTimeout = 10 * time.Second

// TaskRunner triggers agent tasks. task.Engine implements it.
type TaskRunner interface {
	Run(ctx context.Context, req task.Request, onUpdate task.UpdateFunc) string
	Scenarios() []string
}

// TaskFeed is the observed task collection. observer.Bus implements it.
type TaskFeed interface {
	Publish(snapshot *domain.AgentTask)
	Tasks() []*domain.AgentTask
	Task(id string) (*domain.AgentTask, bool)
	Subscribe() (current []*domain.AgentTask, updates <-chan *domain.AgentTask, cancel func())
	Subscribers() int
}

// AgentLister exposes the roster. agent.Registry implements it.
type AgentLister interface {
	List() []domain.Agent
}

// ContentStore is the persistence the console needs. store.Repository
// implements it.
type ContentStore interface {
	Assets(ctx context.Context) ([]domain.MediaAsset, error)
	SaveAsset(ctx context.Context, asset domain.MediaAsset) error
	DeleteAsset(ctx context.Context, id string) error
	Campaigns(ctx context.Context) ([]domain.Campaign, error)
	CreateCampaign(ctx context.Context, name string, scheduledAt *time.Time) (domain.Campaign, error)
	Posts(ctx context.Context) ([]domain.SocialPost, error)
	AccountList(ctx context.Context) ([]domain.Account, error)
	ConnectAccount(ctx context.Context, platform constants.Platform) (string, error)
	DisconnectAccount(ctx context.Context, platform constants.Platform) error
}

// PostPublisher hands posts to the automation backend. publish.Publisher
// implements it.
type PostPublisher interface {
	Publish(ctx context.Context, req domain.PostRequest) (string, error)
}

// Config contains HTTP server settings.
type Config struct {
	Host         string
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Deps are the components the server exposes. Gatherer may be nil, in
// which case /metrics serves the default registry.
type Deps struct {
	Tasks     TaskRunner
	Feed      TaskFeed
	Agents    AgentLister
	Store     ContentStore
	Publisher PostPublisher
	Gatherer  prometheus.Gatherer
}

// Server is the console API.
type Server struct {
	cfg       Config
	deps      Deps
	engine    *gin.Engine
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
	startTime time.Time

	// taskCtx bounds tasks triggered through the API; they outlive the
	// request that started them.
	taskCtx context.Context //nolint:containedctx // lifetime of triggered tasks
}

// New builds the server and its routes. ctx bounds every task triggered
// through the API.
func New(ctx context.Context, cfg Config, deps Deps, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:       cfg,
		deps:      deps,
		engine:    gin.New(),
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		taskCtx:   ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if deps.Gatherer == nil {
		s.deps.Gatherer = prometheus.DefaultGatherer
	}

	s.engine.Use(gin.Recovery(), requestLogger(s.logger))
	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		corsConfig.AllowWebSockets = true
		s.engine.Use(cors.New(corsConfig))
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")

	api.GET("/health", s.handleHealth)
	api.GET("/agents", s.handleListAgents)

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.GET("/tasks/:id", s.handleGetTask)
	api.GET("/stream", s.handleStream)

	api.GET("/assets", s.handleListAssets)
	api.POST("/assets", s.handleSaveAsset)
	api.DELETE("/assets/:id", s.handleDeleteAsset)

	api.GET("/campaigns", s.handleListCampaigns)
	api.POST("/campaigns", s.handleCreateCampaign)

	api.GET("/posts", s.handleListPosts)
	api.POST("/posts", s.handlePublish)

	api.GET("/accounts", s.handleListAccounts)
	api.PUT("/accounts/:platform", s.handleSetAccount)

	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.engine,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api: %w", err)
	}
	s.logger.Info().Msg("api stopped")
	return nil
}
