package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/showup-events/showup/internal/api"
	"github.com/showup-events/showup/internal/connection"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

const sessionMaxAge = 7 * 24 * 60 * 60

const shutdownTimeout = 5 * time.Second

// SeedUser is a user created at start-up.
type SeedUser struct {
	Username string
	Password string
	Email    string
	Role     string
}

// DefaultUsers are seeded when Options.Users is empty.
var DefaultUsers = []SeedUser{
	{Username: "demo", Password: "demo", Email: "demo@showup.local", Role: "admin"},
}

// Options configures a Server.
type Options struct {
	Users  []SeedUser
	Clock  clock.Clock
	Logger logr.Logger
}

type userRecord struct {
	user      api.User
	password  string
	accountID string
}

// Server holds all backend state in memory. It is safe for concurrent use.
type Server struct {
	clock    clock.Clock
	log      logr.Logger
	validate *validator.Validate
	engine   *gin.Engine

	mu          sync.Mutex
	users       map[string]*userRecord
	byName      map[string]string
	accounts    map[string]api.Account
	sessions    map[string]string
	connections map[string]connection.Connection
}

// New creates a Server with its users seeded.
func New(opts Options) *Server {
	s := &Server{
		clock:       opts.Clock,
		log:         opts.Logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		users:       make(map[string]*userRecord),
		byName:      make(map[string]string),
		accounts:    make(map[string]api.Account),
		sessions:    make(map[string]string),
		connections: make(map[string]connection.Connection),
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.log.GetSink() == nil {
		s.log = logr.Discard()
	}

	seeds := opts.Users
	if len(seeds) == 0 {
		seeds = DefaultUsers
	}
	for _, u := range seeds {
		s.AddUser(u)
	}

	s.engine = s.routes()
	return s
}

// AddUser creates a user and a personal account for it.
func (s *Server) AddUser(seed SeedUser) (api.User, api.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	user := api.User{
		ID:        uuid.NewString(),
		Username:  seed.Username,
		Email:     seed.Email,
		Role:      seed.Role,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	account := api.Account{ID: uuid.NewString(), Name: seed.Username + "'s account"}

	s.users[user.ID] = &userRecord{user: user, password: seed.Password, accountID: account.ID}
	s.byName[seed.Username] = user.ID
	s.accounts[account.ID] = account
	return user, account
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("Dev backend listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev backend: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev backend shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST(api.LoginPath, s.login)
	r.POST(api.LogoutPath, s.logout)
	r.POST(api.RefreshPath, s.refresh)

	authed := r.Group("/api", s.requireSession())
	authed.GET("/users/:id", s.getUser)
	authed.PUT("/users/:id", s.updateUser)
	authed.GET("/accounts/:id", s.getAccount)

	conns := authed.Group("/db/aws-connections")
	conns.GET("", s.listConnections)
	conns.POST("", s.createConnection)
	conns.PUT("/:id", s.updateConnection)
	conns.DELETE("/:id", s.deleteConnection)

	authed.POST("/cloud/validate", s.validateCredentials)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.clock.Now()
		c.Next()
		s.log.V(1).Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"requestID", c.GetHeader(api.RequestIDHeader),
			"duration", s.clock.Now().Sub(start).String())
	}
}

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"message": msg})
}
