// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"tably/internal/analytics"
	"tably/internal/assignment"
	"tably/internal/availability"
	"tably/internal/cancellation"
	"tably/internal/reservations"
	"tably/internal/shared/config"
	"tably/internal/shared/database"
	"tably/internal/shared/middleware"
	"tably/internal/tables"
	"tably/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher reservations.EventPublisher // nil when Kafka is disabled

	reservationService reservations.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher reservations.EventPublisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// ReservationService exposes the orchestrator after SetupRoutes, so the
// platform sync consumer can feed inbound bookings through it.
func (r *Router) ReservationService() reservations.Service {
	return r.reservationService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	api.Use(middleware.Identity(r.config))
	{
		r.setupBookingRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "tably",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "tably",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupBookingRoutes wires the whole booking domain: table registry,
// availability, assignment, cancellation policies, reservations and reports.
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	pg := r.db.GetPostgreSQL()

	var cacheService cache.Service
	if r.db.Redis != nil {
		cacheService = cache.NewService(r.db.Redis)
	}

	// Table registry; the reservation ledger doubles as its occupancy source
	// so merges cannot be split under an active booking.
	reservationRepo := reservations.NewRepository(pg)
	tableRepo := tables.NewRepository(pg)
	tableService := tables.NewService(tableRepo, reservationRepo)
	tables.SetupTableRoutes(rg, tables.NewController(tableService))

	// Services layered on the ledger
	availabilityService := availability.NewService(tableService, reservationRepo)
	assignmentService := assignment.NewService(availabilityService)

	policyRepo := cancellation.NewRepository(pg)
	policyService := cancellation.NewService(policyRepo)
	cancellation.SetupPolicyRoutes(rg, cancellation.NewController(policyService))

	// Table-day locking: distributed when Redis is up, in-process otherwise.
	var locker reservations.TableLocker
	if r.db.Redis != nil {
		locker = reservations.NewRedisTableLocker(r.db.Redis, r.config.Redis.TableLockTTL)
	} else {
		locker = reservations.NewLocalTableLocker()
	}

	reservationService := reservations.NewService(reservations.Deps{
		Repo:      reservationRepo,
		Registry:  tableService,
		Checker:   availabilityService,
		Optimizer: assignmentService,
		Policies:  policyService,
		Locker:    locker,
		Idem:      reservations.NewIdempotencyStore(pg),
		Publisher: r.publisher,
		Cache:     cacheService,
		Config:    r.config.Reservations,
		CacheTTL:  r.config.Redis.AvailabilityTTL,
	})
	r.reservationService = reservationService
	reservations.SetupReservationRoutes(rg, reservations.NewController(reservationService))

	// Operational reports
	analyticsRepo := analytics.NewRepository(pg)
	analyticsService := analytics.NewService(analyticsRepo, cacheService, r.config.Redis.AnalyticsTTL, r.config.Reservations)
	analytics.SetupAnalyticsRoutes(rg, analytics.NewController(analyticsService))
}
