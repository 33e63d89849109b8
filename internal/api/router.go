package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/barbershop-backend/internal/availability/http"
	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	barberHttp "github.com/nekogravitycat/barbershop-backend/internal/barber/http"
	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/barbershop-backend/internal/booking/http"
	"github.com/nekogravitycat/barbershop-backend/internal/file"
	fileHttp "github.com/nekogravitycat/barbershop-backend/internal/file/http"
	"github.com/nekogravitycat/barbershop-backend/internal/metrics"
	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	offeringHttp "github.com/nekogravitycat/barbershop-backend/internal/offering/http"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/logger"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
	scheduleHttp "github.com/nekogravitycat/barbershop-backend/internal/schedule/http"
	"github.com/nekogravitycat/barbershop-backend/internal/user"
	userHttp "github.com/nekogravitycat/barbershop-backend/internal/user/http"
)

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

// Config carries everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger
	ReadyChecks  map[string]ReadyCheck

	UserService         user.Service
	BarberService       barber.Service
	OfferingService     offering.Service
	ScheduleService     schedule.Service
	BookingService      booking.Service
	AvailabilityService availability.Service
	FileService         file.Service
	JWTManager          *auth.JWTManager
}

// NewRouter assembles middleware (logging, metrics, CORS, auth) and registers every module's routes.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(logger.GinMiddleware(cfg.Logger), metrics.GinMiddleware(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", readyHandler(cfg.ReadyChecks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	authOptional := auth.AuthOptional(cfg.JWTManager)
	staffMiddleware := RequireSystemAdmin(cfg.UserService)

	fileHandler := fileHttp.NewHandler(cfg.FileService)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	barberHandler := barberHttp.NewHandler(cfg.BarberService, fileHandler)
	offeringHandler := offeringHttp.NewHandler(cfg.OfferingService)
	windowHandler := scheduleHttp.NewHandler(cfg.ScheduleService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.UserService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, staffMiddleware)
		barberHttp.RegisterRoutes(v1, barberHandler, authMiddleware, staffMiddleware)
		scheduleHttp.RegisterRoutes(v1, windowHandler, authMiddleware, staffMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler)
		offeringHttp.RegisterRoutes(v1, offeringHandler, authMiddleware, staffMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authOptional, authMiddleware, staffMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)
	}

	return r
}

func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000", // web UI
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader}
	config.ExposeHeaders = []string{logger.RequestIDHeader}
	config.MaxAge = 12 * time.Hour
	return config
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// readyHandler runs every check and reports 503 when any of them fails.
func readyHandler(checks map[string]ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"checks": results})
	}
}
