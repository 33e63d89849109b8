package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/api"
	"github.com/nekogravitycat/barbershop-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-backend/internal/availability"
	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-backend/internal/db"
	"github.com/nekogravitycat/barbershop-backend/internal/events"
	"github.com/nekogravitycat/barbershop-backend/internal/file"
	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/storage"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
	"github.com/nekogravitycat/barbershop-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger

	DBPool  *pgxpool.Pool
	Storage storage.Storage
	// Redis is optional. When nil the availability cache and the redis event channel are off.
	Redis              redis.UniversalClient
	EventsRedisChannel string
	// KafkaBrokers is optional. When empty no Kafka publisher is started.
	KafkaBrokers        []string
	EventPublishTimeout time.Duration
	AvailabilityTTL     time.Duration

	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	ShopLocation *time.Location
	// Now overrides the booking clock in tests.
	Now func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	Dispatcher     *events.Dispatcher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Events
	publishers := []events.Publisher{events.NewLogPublisher(cfg.Logger)}
	if cfg.Redis != nil {
		publishers = append(publishers, events.NewRedisPublisher(cfg.Redis, cfg.EventsRedisChannel))
	}
	if len(cfg.KafkaBrokers) > 0 {
		publishers = append(publishers, events.NewKafkaPublisher(cfg.KafkaBrokers))
	}
	dispatcher := events.NewDispatcher(cfg.Logger, cfg.EventPublishTimeout, publishers...)

	// Availability cache
	var (
		slotCache        availability.SlotCache
		dayInvalidator   booking.CacheInvalidator
		barberInvalidate schedule.CacheInvalidator
	)
	if cfg.Redis != nil {
		c := availability.NewCache(cfg.Redis, cfg.AvailabilityTTL)
		slotCache, dayInvalidator, barberInvalidate = c, c, c
	}

	// User Module
	userService := user.NewService(user.NewPgxRepository(cfg.DBPool), passwordHasher)

	// File Module
	fileService := file.NewService(file.NewPgxRepository(cfg.DBPool), cfg.Storage)

	// Barber Module
	barberService := barber.NewService(barber.NewPgxRepository(cfg.DBPool))

	// Service Catalog Module
	offeringService := offering.NewService(offering.NewPgxRepository(cfg.DBPool))

	// Schedule Module
	scheduleService := schedule.NewService(
		schedule.NewPgxRepository(cfg.DBPool), barberService, barberInvalidate, cfg.ShopLocation)

	// Booking Module
	bookingService := booking.NewService(
		booking.NewPgxRepository(cfg.DBPool), barberService, offeringService, passwordHasher,
		booking.Options{
			Events:   dispatcher,
			Cache:    dayInvalidator,
			Location: cfg.ShopLocation,
			Now:      cfg.Now,
		})

	// Availability Module
	availabilityService := availability.NewService(
		barberService, offeringService, scheduleService, bookingService, slotCache, cfg.ShopLocation)

	readyChecks := map[string]api.ReadyCheck{
		"database": db.ReadyCheck(cfg.DBPool),
	}
	if cfg.Redis != nil {
		readyChecks["redis"] = func(ctx context.Context) error {
			return cfg.Redis.Ping(ctx).Err()
		}
	}

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              cfg.Logger,
		ReadyChecks:         readyChecks,
		UserService:         userService,
		BarberService:       barberService,
		OfferingService:     offeringService,
		ScheduleService:     scheduleService,
		BookingService:      bookingService,
		AvailabilityService: availabilityService,
		FileService:         fileService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		Dispatcher:     dispatcher,
	}
}
