package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/halsokollen/ingredicheck/backend/config"
	"github.com/halsokollen/ingredicheck/backend/internal/api"
	"github.com/halsokollen/ingredicheck/backend/internal/database"
	"github.com/halsokollen/ingredicheck/backend/internal/middleware"
	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/service"
)

// Server wires the reference library, stores and collaborators into the
// HTTP API.
type Server struct {
	router *gin.Engine
	http   *http.Server

	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	lib   *reference.Library
}

// New builds a fully wired server. A failed dataset load is not fatal:
// the server starts degraded and the analysis endpoints answer 503 until
// the datasets are fixed and the process restarted.
func New(cfg *config.Config) (*Server, error) {
	lib, err := reference.Load(cfg.SubstanceGuidePath, cfg.NovelFoodPath, cfg.KnownSafePath)
	if err != nil {
		log.Printf("reference data unavailable, starting degraded: %v", err)
		lib = nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("redis unavailable, continuing without cache: %v", err)
		redisClient = nil
	}

	s := &Server{
		cfg:   cfg,
		db:    db,
		redis: redisClient,
		lib:   lib,
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.health)

	// Stores
	matchStore := service.NewUserMatchService(s.db)
	labelStore := service.NewLabelService(s.db)
	historyStore := service.NewHistoryService(s.db)
	authService := service.NewAuthService(s.db, s.cfg.JWTSecret)

	// Optional collaborators. Only assign the interface when the URL is
	// configured so the resolver's nil checks stay meaningful.
	var translator service.ITranslator
	if s.cfg.TranslationURL != "" {
		translator = service.NewTranslationService(s.cfg.TranslationURL, 10*time.Second, s.redis)
	}
	var semantic service.ISemanticSearcher
	if s.cfg.SemanticSearchURL != "" {
		semantic = service.NewSemanticService(s.cfg.SemanticSearchURL, 10*time.Second)
	}

	var analyzer *service.AnalysisService
	if s.lib != nil {
		fuzzy := service.NewFuzzySearcher(s.lib)
		resolver := service.NewResolver(s.lib, fuzzy, translator, semantic, matchStore)
		analyzer = service.NewAnalysisService(resolver, labelStore, historyStore, service.AnalyzerConfig{
			EnableTranslation:       s.cfg.EnableTranslation,
			FuzzyConfidenceFloor:    s.cfg.FuzzyConfidenceFloor,
			AutoAcceptThreshold:     s.cfg.AutoAcceptThreshold,
			SessionCacheSize:        s.cfg.SessionCacheSize,
			SemanticTopK:            s.cfg.SemanticTopK,
			MaxConcurrent:           s.cfg.MaxConcurrent,
			NovelOnlyAuthorisedSafe: s.cfg.NovelOnlyAuthorisedSafe,
		})
	}

	v1 := router.Group("/api/v1")

	analysisGroup := v1.Group("")
	if s.redis != nil {
		analysisGroup.Use(middleware.NewAnalysisRateLimiter(s.redis).RateLimitMiddleware())
	}
	api.NewAnalysisHandler(analyzer, func() bool { return s.lib != nil }).RegisterRoutes(analysisGroup)

	api.NewLabelHandler(labelStore, authService).RegisterRoutes(v1)
	api.NewMatchHandler(matchStore).RegisterRoutes(v1)
	api.NewHistoryHandler(historyStore).RegisterRoutes(v1)
	api.NewAuthHandler(authService).RegisterRoutes(v1)

	return router
}

func (s *Server) health(c *gin.Context) {
	status := gin.H{
		"status":   "ok",
		"datasets": s.lib != nil,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := database.HealthCheck(ctx, s.db); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
	}
	if s.lib == nil {
		status["status"] = "degraded"
	}

	if status["status"] == "ok" {
		c.JSON(http.StatusOK, status)
		return
	}
	c.JSON(http.StatusServiceUnavailable, status)
}

// Router exposes the configured engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	addr := s.cfg.ServerHost + ":" + s.cfg.ServerPort
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	log.Printf("Listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
