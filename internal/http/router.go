package http

import (
	"log/slog"
	"time"

	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/anylearn/anylearn/internal/http/handlers"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/anylearn/anylearn/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires together. Tests swap the
// stores for in-memory implementations.
type Deps struct {
	Log *slog.Logger
	Cfg config.Config

	Prom        *observability.Prom
	PromHandler *prometheus.Registry

	Authn    handlers.Authenticator
	Accounts handlers.AccountReader
	Sessions session.Store

	Courses     handlers.CourseStore
	Enrollments handlers.EnrollmentStore
	Profiles    handlers.ProfileStore

	Ping func() error
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(otelgin.Middleware("anylearn"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// health + metrics

	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.PromHandler != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.PromHandler, promhttp.HandlerOpts{})))
	}

	sessionMW := middlewares.NewSessionMiddleware(d.Sessions)

	// handlers

	authHandler := handlers.NewAuthHandler(d.Authn, d.Accounts, d.Prom, d.Cfg)
	coursesHandler := handlers.NewCoursesHandler(d.Courses)
	enrollmentsHandler := handlers.NewEnrollmentsHandler(d.Enrollments)
	profilesHandler := handlers.NewProfilesHandler(d.Profiles)

	// credential endpoints are rate limited per IP; both are bcrypt-bound

	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RequireJSON())
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	// public catalogue

	r.GET("/courses", coursesHandler.ListCourses)
	r.GET("/courses/:id", coursesHandler.GetCourse)

	// session-authenticated surface

	authed := r.Group("")
	authed.Use(sessionMW.RequireSession())

	authed.GET("/me", authHandler.Me)
	authed.GET("/me/profile", profilesHandler.GetMyProfile)
	authed.PUT("/me/profile", profilesHandler.UpdateMyProfile)
	authed.GET("/me/courses", enrollmentsHandler.MyCourses)

	teaching := authed.Group("")
	teaching.Use(sessionMW.RequireRole(account.RoleTeacher))

	teaching.POST("/courses", coursesHandler.CreateCourse)
	teaching.POST("/courses/:id/topics", coursesHandler.AddTopic)
	teaching.POST("/courses/:id/topics/:topicId/contents", coursesHandler.AddContent)

	learning := authed.Group("")
	learning.Use(sessionMW.RequireRole(account.RoleLearner))

	learning.POST("/courses/:id/enroll", enrollmentsHandler.Enroll)
	learning.DELETE("/courses/:id/enroll", enrollmentsHandler.Unenroll)

	return r
}
