package api

import (
	"context"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/aggregate"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/geo"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/recommend"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/search"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP surface of the job search service: search sessions,
// category taxonomy, course recommendations and locale lookup.
type Server struct {
	echo        *echo.Echo
	logger      *zap.Logger
	config      *config.Config
	aggregator  *aggregate.Aggregator
	recommender *recommend.Recommender
	locator     *geo.Locator
	sessions    *sessionStore
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	aggregator *aggregate.Aggregator,
	recommender *recommend.Recommender,
	locator *geo.Locator,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:        e,
		logger:      logger,
		config:      cfg,
		aggregator:  aggregator,
		recommender: recommender,
		locator:     locator,
		sessions: newSessionStore(func() *search.Session {
			return search.NewSession(aggregator, cfg.PageSize, logger)
		}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/search/sessions", s.handleCreateSession)
	v1.GET("/search/sessions/:id", s.handleGetSession)
	v1.PUT("/search/sessions/:id/filters", s.handleSetFilters)
	v1.PUT("/search/sessions/:id/page", s.handleSetPage)
	v1.GET("/jobs/categories", s.handleCategories)
	v1.POST("/recommendations", s.handleRecommendations)
	v1.GET("/locale", s.handleLocale)
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.config.HTTPAddr))
	return s.echo.Start(s.config.HTTPAddr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
