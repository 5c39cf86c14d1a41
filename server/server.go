package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seo_auditor/audit"
	"seo_auditor/storage"
)

// Server exposes the audit REST API.
type Server struct {
	store        storage.Store
	engine       *audit.Engine
	orchestrator *audit.Orchestrator
	router       *gin.Engine
	httpSrv      *http.Server
}

func New(store storage.Store, engine *audit.Engine, orchestrator *audit.Orchestrator) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:        store,
		engine:       engine,
		orchestrator: orchestrator,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	s.router = router
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	projects := s.router.Group("/projects")
	{
		projects.POST("", s.handleCreateProject)
		projects.GET("", s.handleListProjects)
		projects.GET("/:id", s.handleGetProject)
		projects.POST("/:id/crawl", s.handleRunCrawl)
		projects.GET("/:id/crawls", s.handleListCrawls)
		projects.GET("/:id/crawls/latest/summary", s.handleLatestCrawlSummary)
	}

	crawls := s.router.Group("/crawls")
	{
		crawls.GET("/:id/issues/by-type", s.handleIssuesByType)
		crawls.GET("/:id/issues/:code", s.handleIssuesForCode)
	}

	s.router.GET("/urls/:id", s.handleGetURL)
	s.router.PATCH("/issues/:id", s.handleUpdateIssue)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("server: listening on %s", addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("http: %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
