// Package api wires together all HTTP routes for the student-tracking backend.
//
// Route grouping:
//   - /health, /ready and /version are unauthenticated probes.
//   - /api/v1/auth/login is public but rate limited with the stricter auth limiter.
//   - Everything else under /api/v1/ requires a JWT. Reads are open to any
//     authenticated role; writes and the activity log require admin or coordinador.
//
// Every tracked entity is served by the same generic handlers over a
// TrackedRepository, which reports committed mutations to the audit interceptor.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/api/admin"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/repositories"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/middleware"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/storage"

	// Import storage backends to register them
	_ "github.com/Pvngu/tecnm-monorepo-sub000/internal/storage/azure"
	_ "github.com/Pvngu/tecnm-monorepo-sub000/internal/storage/gcs"
	_ "github.com/Pvngu/tecnm-monorepo-sub000/internal/storage/local"
	_ "github.com/Pvngu/tecnm-monorepo-sub000/internal/storage/s3"
)

// Version is reported by /version. It is overridden at build time with
// -ldflags "-X github.com/Pvngu/tecnm-monorepo-sub000/internal/api.Version=...".
var Version = "dev"

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	interceptor  *audit.Interceptor
	rateLimiters []middleware.Limiter
	redis        *redis.Client
}

// Interceptor returns the audit interceptor, or nil when auditing is disabled.
func (bg *BackgroundServices) Interceptor() *audit.Interceptor {
	return bg.interceptor
}

// Shutdown stops the rate limiters, drains pending audit shipments until ctx
// is done and closes the redis client. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown(ctx context.Context) {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.interceptor != nil {
		if err := bg.interceptor.Close(ctx); err != nil {
			slog.Warn("audit interceptor did not close cleanly", "error", err)
		}
	}
	if bg.redis != nil {
		if err := bg.redis.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// needsRedis reports whether any configured component talks to redis.
func needsRedis(cfg *config.Config) bool {
	if cfg.Security.RateLimiting.Enabled && cfg.Security.RateLimiting.Backend == "redis" {
		return true
	}
	for _, s := range cfg.Audit.Shippers {
		if s.Enabled && s.Type == "redis" {
			return true
		}
	}
	return false
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, sqlDB *sql.DB) (*gin.Engine, *BackgroundServices, error) {
	bg := &BackgroundServices{}

	storageBackend, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	slog.Info("initialized storage backend", "backend", cfg.Storage.Backend)

	if needsRedis(cfg) {
		bg.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	// Initialize repositories
	sqlxDB := db.Wrap(sqlDB)
	userRepo := repositories.NewUserRepository(sqlxDB)
	activityLogRepo := repositories.NewActivityLogRepository(sqlDB)

	// A nil observer leaves tracked repositories unaudited.
	var observer audit.Observer
	if cfg.Audit.Enabled {
		interceptor, err := newAuditInterceptor(cfg, sqlxDB, activityLogRepo, audit.ShipperDeps{
			Redis:   redisStreams(bg.redis),
			Storage: storageBackend,
		})
		if err != nil {
			bg.Shutdown(context.Background())
			return nil, nil, err
		}
		bg.interceptor = interceptor
		observer = interceptor
	} else {
		slog.Warn("audit trail disabled; entity mutations will not be recorded")
	}

	// Rate limiters. When rate limiting is disabled both slots pass through.
	var generalLimit, authLimit gin.HandlerFunc = passThrough, passThrough
	if cfg.Security.RateLimiting.Enabled {
		backend := cfg.Security.RateLimiting.Backend
		generalLimiter, err := middleware.NewLimiter(backend, middleware.RateLimitConfigFrom(cfg.Security.RateLimiting), bg.redis)
		if err != nil {
			bg.Shutdown(context.Background())
			return nil, nil, err
		}
		bg.rateLimiters = append(bg.rateLimiters, generalLimiter)
		authLimiter, err := middleware.NewLimiter(backend, middleware.AuthRateLimitConfig(), bg.redis)
		if err != nil {
			bg.Shutdown(context.Background())
			return nil, nil, err
		}
		bg.rateLimiters = append(bg.rateLimiters, authLimiter)
		generalLimit = middleware.RateLimitMiddleware(generalLimiter)
		authLimit = middleware.RateLimitMiddleware(authLimiter)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware(entityRoots()...))
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))

	// Liveness probe
	router.GET("/health", healthCheckHandler(sqlDB))

	// Readiness probe, checks the database and the archive storage backend
	router.GET("/ready", readinessHandler(sqlDB, storageBackend))

	// API version
	router.GET("/version", versionHandler())

	authHandlers := admin.NewAuthHandlers(userRepo, cfg.Auth.JWTExpiry)
	activityLogHandlers := admin.NewActivityLogHandlers(activityLogRepo)

	apiV1 := router.Group("/api/v1")
	{
		// Public authentication endpoint (no auth required, but rate limited)
		apiV1.POST("/auth/login", authLimit, authHandlers.LoginHandler())

		authenticated := apiV1.Group("")
		authenticated.Use(middleware.AuthMiddleware(userRepo))
		authenticated.Use(generalLimit)
		authenticated.Use(middleware.ActorMiddleware())
		{
			authenticated.GET("/auth/me", authHandlers.MeHandler())

			// Activity log is read-only; records are only written by the interceptor.
			readers := middleware.RequireRole(auth.AuditReaders...)
			authenticated.GET("/activity-logs", readers, activityLogHandlers.ListActivityLogsHandler())
			authenticated.GET("/activity-logs/:id", readers, activityLogHandlers.GetActivityLogHandler())
			authenticated.GET("/stats/activity-logs", readers, activityLogHandlers.ActivityStatsHandler())

			registerEntities(authenticated, sqlxDB, observer, middleware.RequireRole(auth.Writers...))
		}
	}

	return router, bg, nil
}

func passThrough(c *gin.Context) { c.Next() }

// redisStreams avoids handing a typed nil client to the shipper factory.
func redisStreams(client *redis.Client) audit.StreamAdder {
	if client == nil {
		return nil
	}
	return client
}

// entityCollections lists the URL collections mounted by registerEntities.
var entityCollections = []string{
	"carreras", "alumnos", "profesores", "materias", "periodos", "grupos", "inscripciones",
	"calificaciones", "asistencias", "factores-riesgo", "alumno-factores-riesgo", "pagos", "users",
}

// entityRoots returns the full route roots of entityCollections for per-entity metrics.
func entityRoots() []string {
	roots := make([]string, len(entityCollections))
	for i, name := range entityCollections {
		roots[i] = "/api/v1/" + name
	}
	return roots
}

// registerEntities mounts /<plural> CRUD routes for every tracked entity.
func registerEntities(group *gin.RouterGroup, sqlxDB *sqlx.DB, observer audit.Observer, write gin.HandlerFunc) {
	admin.NewEntityHandlers[models.Carrera](repositories.NewTrackedRepository[models.Carrera](sqlxDB, observer),
		"carreras", admin.EntityHooks[models.Carrera]{}).Register(group.Group("/carreras"), write)
	admin.NewEntityHandlers[models.Alumno](repositories.NewTrackedRepository[models.Alumno](sqlxDB, observer),
		"alumnos", admin.EntityHooks[models.Alumno]{}).Register(group.Group("/alumnos"), write)
	admin.NewEntityHandlers[models.Profesor](repositories.NewTrackedRepository[models.Profesor](sqlxDB, observer),
		"profesores", admin.EntityHooks[models.Profesor]{}).Register(group.Group("/profesores"), write)
	admin.NewEntityHandlers[models.Materia](repositories.NewTrackedRepository[models.Materia](sqlxDB, observer),
		"materias", admin.EntityHooks[models.Materia]{}).Register(group.Group("/materias"), write)
	admin.NewEntityHandlers[models.Periodo](repositories.NewTrackedRepository[models.Periodo](sqlxDB, observer),
		"periodos", admin.EntityHooks[models.Periodo]{}).Register(group.Group("/periodos"), write)
	admin.NewEntityHandlers[models.Grupo](repositories.NewTrackedRepository[models.Grupo](sqlxDB, observer),
		"grupos", admin.EntityHooks[models.Grupo]{}).Register(group.Group("/grupos"), write)
	admin.NewEntityHandlers[models.Inscripcion](repositories.NewTrackedRepository[models.Inscripcion](sqlxDB, observer),
		"inscripciones", admin.EntityHooks[models.Inscripcion]{}).Register(group.Group("/inscripciones"), write)
	admin.NewEntityHandlers[models.Calificacion](repositories.NewTrackedRepository[models.Calificacion](sqlxDB, observer),
		"calificaciones", admin.EntityHooks[models.Calificacion]{}).Register(group.Group("/calificaciones"), write)
	admin.NewEntityHandlers[models.Asistencia](repositories.NewTrackedRepository[models.Asistencia](sqlxDB, observer),
		"asistencias", admin.EntityHooks[models.Asistencia]{}).Register(group.Group("/asistencias"), write)
	admin.NewEntityHandlers[models.FactorRiesgo](repositories.NewTrackedRepository[models.FactorRiesgo](sqlxDB, observer),
		"factores_riesgo", admin.EntityHooks[models.FactorRiesgo]{}).Register(group.Group("/factores-riesgo"), write)
	admin.NewEntityHandlers[models.AlumnoFactorRiesgo](repositories.NewTrackedRepository[models.AlumnoFactorRiesgo](sqlxDB, observer),
		"alumno_factores_riesgo", admin.EntityHooks[models.AlumnoFactorRiesgo]{}).Register(group.Group("/alumno-factores-riesgo"), write)
	admin.NewEntityHandlers[models.Pago](repositories.NewTrackedRepository[models.Pago](sqlxDB, observer),
		"pagos", admin.EntityHooks[models.Pago]{}).Register(group.Group("/pagos"), write)

	// Only admins manage staff accounts.
	admin.NewEntityHandlers[models.User](repositories.NewTrackedRepository[models.User](sqlxDB, observer),
		"users", admin.UserHooks()).Register(group.Group("/users", middleware.RequireRole(auth.RoleAdmin)))
}

// healthCheckHandler returns the health status of the service
// GET /health
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler returns the readiness status of the service.
// Unlike the liveness probe (/health), this also checks the storage backend so
// that a readiness gate fails when archive shipping would error.
// GET /ready
func readinessHandler(db *sql.DB, storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.PingContext(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		// Probe with a known-absent sentinel path. Exists() exercises
		// authentication and network connectivity without creating any state.
		if _, err := storageBackend.Exists(c.Request.Context(), ".readiness-probe"); err != nil {
			checks["storage"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "storage backend not ready",
			})
			return
		}
		checks["storage"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler reports the build version
// GET /version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware logs every request as a structured slog record. The global
// handler configured by telemetry.SetupLogger decides between JSON and text.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.LogAttrs(
			c.Request.Context(),
			level,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", c.GetString(middleware.RequestIDKey)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	methods := "GET, POST, PUT, DELETE, OPTIONS"
	if len(cfg.Security.CORS.AllowedMethods) > 0 {
		methods = strings.Join(cfg.Security.CORS.AllowedMethods, ", ")
	}
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
