package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pbaille/skincare/internal/classifier"
	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/fetcher"
	"github.com/pbaille/skincare/internal/locale"
	"github.com/pbaille/skincare/internal/recommend"
	"github.com/pbaille/skincare/internal/store"
)

// maxBodySize caps request bodies (1MB).
const maxBodySize = 1 << 20

// Options wires the server's collaborators.
type Options struct {
	Store       *store.Store
	Catalog     *store.Catalog
	Keywords    classifier.KeywordTable
	Labels      *locale.Table
	Fetcher     *fetcher.Fetcher
	Recommender *recommend.Recommender
	Limit       int
	// Profile fills fields a request leaves out.
	Profile domain.Profile
	Lang    string

	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	Logger       *zap.Logger
}

// Server handles HTTP requests for the skincare API
type Server struct {
	opts   Options
	log    *zap.Logger
	engine *gin.Engine
}

// New creates a new API server
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Labels == nil {
		opts.Labels = locale.Default()
	}
	if opts.Recommender == nil {
		opts.Recommender = recommend.New()
	}
	if opts.Limit <= 0 {
		opts.Limit = recommend.DefaultLimit
	}
	if opts.Keywords.Categories == nil {
		opts.Keywords = classifier.DefaultKeywordTable()
	}

	s := &Server{opts: opts, log: opts.Logger.Named("api")}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	if !s.opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(requestid.New())
	r.Use(s.recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		c.Next()
	})

	r.GET("/health", s.health)

	r.POST("/ingredients/check", s.checkIngredients)
	r.POST("/routine", s.generateRoutine)
	r.POST("/recommendations", s.recommendProducts)
	r.GET("/products", s.listProducts)

	r.GET("/diary", s.listDiary)
	r.POST("/diary", s.addDiary)
	r.GET("/diary/:id", s.getDiary)
	r.DELETE("/diary/:id", s.deleteDiary)

	r.GET("/trends", s.trends)
	r.GET("/templates", s.listTemplates)
	r.GET("/templates/:symptom", s.template)

	return r
}

// Run starts the HTTP server and shuts it down when ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request, at a level chosen by status.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.Get(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= 500:
			s.log.Error("request failed", fields...)
		case status >= 400:
			s.log.Warn("request rejected", fields...)
		default:
			s.log.Info("request completed", fields...)
		}
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// fail maps domain errors to HTTP statuses and writes a JSON error body.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	_ = c.Error(err)

	body := gin.H{"error": err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Errors
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
