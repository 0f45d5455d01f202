// Package gateway is the screen layer: it maps the portal's user flows onto
// HTTP routes and translates service errors into response statuses. Handlers
// stay thin; all behavior lives in the feature packages.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trainingportal/internal/api"
	"trainingportal/internal/attendance"
	"trainingportal/internal/auth"
	"trainingportal/internal/config"
	"trainingportal/internal/courses"
	"trainingportal/internal/httpmiddleware"
	"trainingportal/internal/requests"
	"trainingportal/internal/schedule"
	"trainingportal/internal/session"
)

// Gateway bundles the services behind the route table.
type Gateway struct {
	cfg      config.App
	content  config.Content
	store    *session.Store
	client   *api.Client
	auth     *auth.Service
	schedule *schedule.Service
	courses  *courses.Service
	requests *requests.Service

	// stateProbe is the session backend, kept for the health check.
	stateProbe session.Backend

	mu       sync.Mutex
	scanners map[string]*attendance.Scanner
}

// New wires a gateway from its dependencies.
func New(cfg config.App, content config.Content, store *session.Store, backend session.Backend, client *api.Client) *Gateway {
	return &Gateway{
		cfg:        cfg,
		content:    content,
		store:      store,
		client:     client,
		stateProbe: backend,
		auth:       auth.NewService(client, store),
		schedule:   schedule.NewService(client, content.DefaultAddress),
		courses:    courses.NewService(client, store, content.DefaultCourseImage),
		requests:   requests.NewService(client),
		scanners:   make(map[string]*attendance.Scanner),
	}
}

// Router builds the route table.
func (g *Gateway) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(g.cfg.RateLimitPerMin, g.cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", g.handleHealthz)

	r.POST("/login", g.handleLogin)
	r.GET("/about", g.handleAbout)
	r.GET("/contact", g.handleContact)

	app := r.Group("/", g.requireLogin())
	{
		app.POST("/logout", g.handleLogout)
		app.GET("/me", g.handleMe)
		app.PUT("/me", g.handleUpdateMe)
		app.PUT("/settings/server", g.handleSetServer)

		app.GET("/home", g.handleHome)
		app.GET("/schedule", g.handleSchedule)

		app.GET("/courses", g.handleCourses)
		app.GET("/courses/:id", g.handleCourse)

		app.GET("/sessions/:id", g.handleSession)
		app.GET("/sessions/:id/statistics", g.handleStatistics)

		student := app.Group("/", g.requireRole(session.RoleStudent))
		{
			student.POST("/sessions/:id/check-in", g.handleCheckIn)
			student.GET("/requests", g.handleRequests)
			student.GET("/requests/:id", g.handleRequest)
			student.POST("/requests", g.handleCreateRequest)
		}

		teacher := app.Group("/", g.requireRole(session.RoleTeacher))
		{
			teacher.POST("/sessions/:id/start", g.handleStartSession)
			teacher.POST("/sessions/:id/finish", g.handleFinishSession)
			teacher.POST("/sessions/:id/attendance/open", g.handleOpenAttendance)
			teacher.POST("/sessions/:id/attendance/close", g.handleCloseAttendance)
			teacher.GET("/sessions/:id/records", g.handleRecords)
			teacher.PUT("/sessions/:id/records/:studentID", g.handleUpdateRecord)
		}
	}

	return r
}

func (g *Gateway) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.store.LoggedIn() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		c.Next()
	}
}

func (g *Gateway) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := g.store.User()
		if !ok || !user.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "action not allowed for this role"})
			return
		}
		c.Next()
	}
}

// respondErr maps the error taxonomy onto response statuses. Nothing here is
// fatal; every failure degrades to a message the screen can show.
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var valErr *api.ValidationError
	var authErr *api.AuthError
	var httpErr *api.HTTPError
	var netErr *api.NetworkError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &httpErr):
		status = httpErr.Status
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": api.UserMessage(err)})
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// scannerFor returns the per-session QR scanner, creating it on first use so
// the check-in cooldown survives across requests.
func (g *Gateway) scannerFor(sessionID string) *attendance.Scanner {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.scanners[sessionID]
	if !ok {
		s = attendance.NewScanner(attendance.DefaultScanCooldown)
		g.scanners[sessionID] = s
	}
	return s
}

func (g *Gateway) handleHealthz(c *gin.Context) {
	stateHealthy := true
	// Only the Redis state backend exposes a probe; the file backend is
	// always considered healthy.
	if probe, ok := g.stateProbe.(interface {
		Healthy(ctx context.Context) bool
	}); ok {
		stateHealthy = probe.Healthy(c.Request.Context())
	}
	status := http.StatusOK
	if !stateHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "state": stateHealthy})
}
