// Package rest exposes the B-Pay HTTP API on top of gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bpay/bpay/internal/common"
	"github.com/bpay/bpay/internal/logging"
	"github.com/bpay/bpay/internal/server/auth"
	"github.com/bpay/bpay/internal/server/config"
	"github.com/bpay/bpay/internal/server/models"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// UserService is the business logic behind the handlers.
type UserService interface {
	Register(ctx context.Context, name, email, pin, role string) (*models.User, error)
	Login(ctx context.Context, email, pin string) (string, error)
	IssueToken(ctx context.Context, payload map[string]any) (string, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// TokenValidator checks bearer tokens on protected routes.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type HTTPServer struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger

	users     UserService
	tokens    TokenValidator
	metrics   *Metrics
	adminRole string

	enableTokenEndpoint bool
	unifyLoginErrors    bool
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService, tv TokenValidator, m *Metrics) *HTTPServer {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if m == nil {
		m = NewMetrics()
	}

	s := &HTTPServer{
		address:             cfg.EndpointAddrHTTP,
		logger:              l.With("module", "http_server"),
		users:               us,
		tokens:              tv,
		metrics:             m,
		adminRole:           cfg.AdminRole,
		enableTokenEndpoint: cfg.EnableTokenEndpoint,
		unifyLoginErrors:    cfg.UnifyLoginErrors,
	}
	s.engine = s.newEngine(cfg.CORSAllowedOrigins)
	return s
}

// Handler returns the configured router.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) newEngine(allowedOrigins string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.middleware())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	if s.enableTokenEndpoint {
		r.POST("/jwt", s.handleIssueToken)
	}
	r.POST("/users", s.handleRegister)
	r.POST("/login", s.handleLogin)
	r.GET("/users", s.bearerAuth(), s.requireRole(s.adminRole), s.handleListUsers)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	return r
}

func corsConfig(allowedOrigins string) cors.Config {
	cc := cors.DefaultConfig()
	origins := splitOrigins(allowedOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeaderName}
	return cc
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
