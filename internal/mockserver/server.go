// Package mockserver provides a local stand-in for the registration endpoint.
// Every request is validated with the shared schema and answered the way the
// public endpoint answers. By default it keeps no state; with RememberFor set
// it holds accepted usernames for that long and rejects repeats.
package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/tracing"
)

// RegistrationPath is the route registrations are posted to.
const RegistrationPath = "/registration"

// Config configures the mock endpoint.
type Config struct {
	// Addr is the listen address, e.g. ":9009".
	Addr string

	// TakenUsernames are rejected with 409 Conflict.
	TakenUsernames []string

	// RememberFor keeps accepted usernames reserved for this long so a second
	// registration with the same name gets 409. Zero disables it.
	RememberFor time.Duration

	// Latency delays every registration response.
	Latency time.Duration

	// AllowedOrigins lists origin prefixes accepted by CORS. Defaults to
	// http://localhost: and http://127.0.0.1:.
	AllowedOrigins []string

	// Tracer records one span per registration. Defaults to a no-op tracer.
	Tracer trace.Tracer
}

// MessageResponse is the body of every registration answer.
type MessageResponse struct {
	Message string `json:"message"`
}

// registrationRequest mirrors registration.Values. Agreement is a pointer so
// a missing key can be told apart from false.
type registrationRequest struct {
	Username    string `json:"username"`
	FavLanguage string `json:"favLanguage"`
	FavFood     string `json:"favFood"`
	Agreement   *bool  `json:"agreement"`
}

// Server serves the mock registration endpoint.
type Server struct {
	cfg      Config
	engine   *gin.Engine
	tracer   trace.Tracer
	accounts *accounts
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Tracer == nil {
		cfg.Tracer = tracing.Noop().Tracer()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:", "http://127.0.0.1:"}
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{cfg: cfg, tracer: cfg.Tracer, accounts: newAccounts(cfg.RememberFor)}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(), s.corsMiddleware())
	r.POST(RegistrationPath, s.Register)
	r.GET("/health", s.Health)
	s.engine = r
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatServer, "mock endpoint listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		log.Info(log.CatServer, "mock endpoint stopped")
		return nil
	}
}

// Register handles POST /registration.
func (s *Server) Register(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), tracing.SpanServe, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrRequestID, c.GetString(requestIDKey)))

	if s.cfg.Latency > 0 {
		select {
		case <-time.After(s.cfg.Latency):
		case <-ctx.Done():
			c.AbortWithStatus(http.StatusRequestTimeout)
			return
		}
	}

	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.reply(c, span, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Agreement == nil {
		s.reply(c, span, http.StatusUnprocessableEntity, registration.AgreementRequired)
		return
	}
	values := registration.Values{
		Username:    req.Username,
		FavLanguage: req.FavLanguage,
		FavFood:     req.FavFood,
		Agreement:   *req.Agreement,
	}
	span.SetAttributes(attribute.String(tracing.AttrUsername, values.Username))

	if _, msg, failed := registration.Validate(values).First(); failed {
		s.reply(c, span, http.StatusUnprocessableEntity, msg)
		return
	}

	taken := slices.ContainsFunc(s.cfg.TakenUsernames, func(u string) bool { return strings.EqualFold(u, values.Username) })
	if taken || !s.accounts.Reserve(values) {
		s.reply(c, span, http.StatusConflict, fmt.Sprintf("username %s is already taken", values.Username))
		return
	}

	s.reply(c, span, http.StatusCreated, WelcomeMessage(values))
}

// Health handles GET /health.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) reply(c *gin.Context, span trace.Span, status int, msg string) {
	span.SetAttributes(attribute.Int(tracing.AttrStatusCode, status))
	if status >= 400 {
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.String(tracing.AttrOutcome, tracing.OutcomeRejected))
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.String(tracing.AttrOutcome, tracing.OutcomeSuccess))
	}
	c.JSON(status, MessageResponse{Message: msg})
}

// WelcomeMessage is the success message for v.
func WelcomeMessage(v registration.Values) string {
	return fmt.Sprintf("Success! Welcome, %s. Your favorite language is %s, and your favorite food is %s.",
		v.Username, v.FavLanguage, v.FavFood)
}

const requestIDKey = "request_id"

// requestID echoes the caller's X-Request-ID or generates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(client.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(client.RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(log.CatServer, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, prefix := range s.cfg.AllowedOrigins {
				if strings.HasPrefix(origin, prefix) {
					return true
				}
			}
			return false
		},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", client.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", client.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}
