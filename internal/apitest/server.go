// Package apitest runs an in-memory catalog backend for tests. It speaks the same
// REST surface and response envelope as the real backend.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/branchd-dev/storefront/internal/auth"
	"github.com/branchd-dev/storefront/internal/models"
)

// DefaultCode is the verification and reset code the fake backend emails
const DefaultCode = "123456"

type account struct {
	user         models.User
	passwordHash string
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend listening on a local port
type Server struct {
	*httptest.Server

	router *gin.Engine
	logger zerolog.Logger
	issuer *auth.Issuer

	mu         sync.Mutex
	code       string
	accounts   map[string]*account // by id
	resetCodes map[string]string   // email -> code
	tempTokens map[string]string   // temporary token -> email
	brands     []models.Brand
	types      []models.ProductType
	products   []models.Product
	uploads    map[string][]byte
	failures   map[string]failure
	hits       map[string]int
	delay      time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithLogger logs every request to logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.issuer = auth.NewIssuer(uuid.NewString(), ttl) }
}

// NewServer builds a fake backend without listening. Serve it with Handler.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:     zerolog.Nop(),
		issuer:     auth.NewIssuer(uuid.NewString(), 24*time.Hour),
		code:       DefaultCode,
		accounts:   map[string]*account{},
		resetCodes: map[string]string{},
		tempTokens: map[string]string{},
		uploads:    map[string][]byte{},
		failures:   map[string]failure{},
		hits:       map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRouter()
	return s
}

// New starts a fake backend and stops it when the test ends
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := NewServer(opts...)
	s.Server = httptest.NewServer(s.router)
	t.Cleanup(s.Close)
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.faultMiddleware())

	// The web storefront runs on the React dev server origin
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRoutes := s.router.Group("/api/auth")
	{
		authRoutes.POST("/register", s.register)
		authRoutes.POST("/verify-email", s.verifyEmail)
		authRoutes.POST("/login", s.login)
		authRoutes.POST("/forget-password", s.forgetPassword)
		authRoutes.POST("/reset-code-check", s.resetCodeCheck)
		authRoutes.POST("/reset-password", s.resetPassword)
	}

	userRoutes := s.router.Group("/api/user")
	userRoutes.Use(s.jwtAuthMiddleware())
	{
		userRoutes.GET("/me", s.me)
		userRoutes.GET("/list", s.adminOnly(), s.listUsers)
		userRoutes.PUT("/update-role/:id", s.adminOnly(), s.updateRole)
	}

	s.registerCatalog("brand", brandStore{s})
	s.registerCatalog("product-type", typeStore{s})

	products := s.router.Group("/api/product")
	{
		products.GET("/all", s.listProducts)
		products.GET("/:id", s.getProduct)
		products.POST("/add", s.jwtAuthMiddleware(), s.adminOnly(), s.addProduct)
		products.PUT("/update/:id", s.jwtAuthMiddleware(), s.adminOnly(), s.updateProduct)
		products.DELETE("/delete/:id", s.jwtAuthMiddleware(), s.adminOnly(), s.deleteProduct)
	}

	s.router.GET("/uploads/:name", s.serveUpload)
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("request_id", c.GetHeader("X-Request-ID")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

// faultMiddleware counts hits and replays injected failures
func (s *Server) faultMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		s.mu.Lock()
		s.hits[path]++
		f, failing := s.failures[path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}

		if failing {
			fail(c, f.status, f.message)
			return
		}
		c.Next()
	}
}

// Fail makes every request to path answer with status and message
func (s *Server) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, message: message}
}

// Recover removes an injected failure
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Delay holds every request for d before handling it
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Hits returns how many requests reached path
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func ok(c *gin.Context, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
