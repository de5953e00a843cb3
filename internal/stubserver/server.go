// Package stubserver implements a self-contained stand-in for the
// transaction-risk dashboard backend: cookie sessions over the auth
// endpoints plus the notification CRUD surface. It exists for local
// development of the client and for integration tests; it keeps everything
// in memory on purpose.
package stubserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

const sessionCookie = "riskdash_session"

// Options configures the stub server.
type Options struct {
	JWTSecret  string
	SessionTTL time.Duration
	Env        string
	Logger     *zap.Logger
	// Seed populates a demo account with a few notifications.
	Seed bool
}

// Server is the stub backend.
type Server struct {
	store  *memoryStore
	tokens *tokenManager
	logger *zap.Logger
	engine *gin.Engine
}

// New constructs a stub server and registers its routes.
func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev-only-secret"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		store:  newMemoryStore(),
		tokens: newTokenManager(opts.JWTSecret, "riskdash-stub", opts.SessionTTL),
		logger: opts.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", s.handleLogin)
		api.POST("/auth/register", s.handleRegister)
		api.DELETE("/auth/logout", s.handleLogout)
		api.GET("/auth/me", s.requireSession(), s.handleMe)

		notifications := api.Group("/notifications", s.requireSession())
		{
			notifications.GET("", s.handleListNotifications)
			notifications.PATCH("/:id/mark_read", s.handleMarkRead)
			notifications.POST("/mark_all_read", s.handleMarkAllRead)
			notifications.DELETE("/destroy_all", s.handleDeleteAll)
			notifications.DELETE("/:id", s.handleDelete)

			// Injection endpoint so demos and tests can simulate the
			// risk engine emitting notifications.
			notifications.POST("", s.handleInject)
		}
	}

	s.engine = r

	if opts.Seed {
		s.seed()
	}

	return s
}

// Handler exposes the underlying HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("stub backend listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

// Seeded demo credentials.
const (
	SeedEmail    = "demo@riskdash.dev"
	SeedPassword = "riskdash-demo"
)

func (s *Server) seed() {
	identity, err := s.store.createUser(domain.Registration{
		Email:     SeedEmail,
		Password:  SeedPassword,
		FirstName: "Demo",
		LastName:  "Analyst",
	}, domain.RoleManager)
	if err != nil {
		s.logger.Warn("seed user failed", zap.Error(err))
		return
	}

	s.store.addNotification(identity.ID, domain.Notification{
		Type:     domain.NotificationTypeTransaction,
		Title:    "High risk transaction flagged",
		Message:  "Transaction txn_9f2 scored 0.93 and was blocked.",
		Priority: domain.NotificationPriorityHigh,
		Data:     map[string]any{"transaction_id": "txn_9f2", "risk_score": 0.93},
	})
	s.store.addNotification(identity.ID, domain.Notification{
		Type:     domain.NotificationTypeSecurity,
		Title:    "New device login",
		Message:  "Your account was accessed from a new device.",
		Priority: domain.NotificationPriorityMedium,
	})
	s.store.addNotification(identity.ID, domain.Notification{
		Type:     domain.NotificationTypeInfo,
		Title:    "Weekly summary ready",
		Message:  "Your transaction summary for last week is available.",
		Priority: domain.NotificationPriorityLow,
		Read:     true,
	})
}

func respondSuccess(c *gin.Context, status int, data any) {
	body := gin.H{"status": "success"}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// requireSession resolves the session cookie into a user and aborts with 401
// when it cannot.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(sessionCookie)
		if err != nil || raw == "" {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		userID, err := s.tokens.verify(raw)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "session expired or invalid")
			c.Abort()
			return
		}

		if _, err := s.store.getUser(userID); err != nil {
			respondError(c, http.StatusUnauthorized, "unknown session subject")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func (s *Server) issueCookie(c *gin.Context, userID string) error {
	token, err := s.tokens.generate(userID)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookie, token, int(s.tokens.ttl/time.Second), "/", "", false, true)
	return nil
}

func (s *Server) handleLogin(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondError(c, http.StatusBadRequest, "malformed login payload")
		return
	}

	identity, err := s.store.authenticate(creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, errBadPassword) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	if err := s.issueCookie(c, identity.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "issue session failed")
		return
	}

	if device := c.GetHeader("X-Device-Id"); device != "" {
		s.logger.Debug("login device", zap.String("device_id", device))
	}

	respondSuccess(c, http.StatusOK, identity)
}

func (s *Server) handleRegister(c *gin.Context) {
	var payload struct {
		User domain.Registration `json:"user"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "malformed registration payload")
		return
	}

	identity, err := s.store.createUser(payload.User, domain.RoleCustomer)
	if err != nil {
		if errors.Is(err, errDuplicateUser) {
			respondError(c, http.StatusConflict, "email already registered")
			return
		}
		respondError(c, http.StatusBadRequest, "registration rejected")
		return
	}

	if err := s.issueCookie(c, identity.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "issue session failed")
		return
	}

	respondSuccess(c, http.StatusCreated, identity)
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	respondSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleMe(c *gin.Context) {
	identity, err := s.store.getUser(c.GetString("user_id"))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unknown session subject")
		return
	}
	respondSuccess(c, http.StatusOK, identity)
}

func (s *Server) handleListNotifications(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.store.listNotifications(c.GetString("user_id")))
}

func (s *Server) handleMarkRead(c *gin.Context) {
	updated, ok := s.store.markRead(c.GetString("user_id"), c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "notification not found")
		return
	}
	respondSuccess(c, http.StatusOK, updated)
}

func (s *Server) handleMarkAllRead(c *gin.Context) {
	s.store.markAllRead(c.GetString("user_id"))
	respondSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleDelete(c *gin.Context) {
	if !s.store.deleteNotification(c.GetString("user_id"), c.Param("id")) {
		respondError(c, http.StatusNotFound, "notification not found")
		return
	}
	respondSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleDeleteAll(c *gin.Context) {
	s.store.deleteAllNotifications(c.GetString("user_id"))
	respondSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleInject(c *gin.Context) {
	var n domain.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		respondError(c, http.StatusBadRequest, "malformed notification payload")
		return
	}
	if n.Priority == "" {
		n.Priority = domain.NotificationPriorityLow
	}
	if n.Type == "" {
		n.Type = domain.NotificationTypeInfo
	}

	created := s.store.addNotification(c.GetString("user_id"), n)
	respondSuccess(c, http.StatusCreated, created)
}
