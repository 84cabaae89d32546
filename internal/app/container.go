package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/resource-share-backend/internal/api"
	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/availability"
	"github.com/nekogravitycat/resource-share-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/resource-share-backend/internal/booking/http"
	"github.com/nekogravitycat/resource-share-backend/internal/config"
	"github.com/nekogravitycat/resource-share-backend/internal/file"
	fileHttp "github.com/nekogravitycat/resource-share-backend/internal/file/http"
	"github.com/nekogravitycat/resource-share-backend/internal/notify"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/cache"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/storage"
	"github.com/nekogravitycat/resource-share-backend/internal/reservation"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	resHttp "github.com/nekogravitycat/resource-share-backend/internal/resource/http"
	"github.com/nekogravitycat/resource-share-backend/internal/user"
	userHttp "github.com/nekogravitycat/resource-share-backend/internal/user/http"
	"github.com/nekogravitycat/resource-share-backend/internal/view"
	viewHttp "github.com/nekogravitycat/resource-share-backend/internal/view/http"
)

// Config holds the dependencies and settings required to start the application.
// A nil DBPool selects the in-memory repositories.
type Config struct {
	IsProduction  bool
	ProdOrigins   string
	PublicBaseURL string
	DBPool        *pgxpool.Pool
	JWTSecret     string
	JWTTTL        time.Duration
	BcryptCost    int

	OperatingDayOffset       time.Duration
	RejectOverlappingBooking bool

	Notifier    notify.Notifier // nil logs confirmations
	SearchCache cache.Cache     // nil disables caching
	CacheTTL    time.Duration
	Storage     storage.Storage
	Logger      *slog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router       *gin.Engine
	JWTManager   *auth.JWTManager
	Users        user.Service
	Resources    resource.Service
	Reservations reservation.Service
	Workflow     booking.Workflow
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	offset := cfg.OperatingDayOffset
	if offset == 0 {
		offset = availability.DefaultOffset
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	filter := availability.New(offset)
	filter.RejectOverlap = cfg.RejectOverlappingBooking

	// Repositories
	var (
		userRepo        user.Repository
		resourceRepo    resource.Repository
		reservationRepo reservation.Repository
		fileRepo        file.Repository
	)
	if cfg.DBPool != nil {
		userRepo = user.NewPgxRepository(cfg.DBPool)
		resourceRepo = resource.NewPgxRepository(cfg.DBPool)
		reservationRepo = reservation.NewPgxRepository(cfg.DBPool)
		fileRepo = file.NewPgxRepository(cfg.DBPool)
	} else {
		memResources := resource.NewMemoryRepository()
		userRepo = user.NewMemoryRepository()
		resourceRepo = memResources
		reservationRepo = reservation.NewMemoryRepository(memResources)
		fileRepo = file.NewMemoryRepository()
	}

	// Services
	userService := user.NewService(userRepo, passwordHasher, log)

	resourceOpts := []resource.ServiceOption{resource.WithLogger(log)}
	if cfg.SearchCache != nil {
		resourceOpts = append(resourceOpts, resource.WithSearchCache(cfg.SearchCache, cfg.CacheTTL))
	}
	resourceService := resource.NewService(resourceRepo, resourceOpts...)
	reservationService := reservation.NewService(reservationRepo, filter, log)
	workflow := booking.NewWorkflow(resourceService, reservationService, cfg.Notifier, log)
	views := view.NewService(resourceService, reservationService, filter)
	fileService := file.NewService(fileRepo, cfg.Storage, log)

	// Handlers
	fileHandler := fileHttp.NewHandler(fileService)
	routerConfig := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Logger:             log,
		JWTManager:         jwtManager,
		UserHandler:        userHttp.NewHandler(userService, jwtManager),
		ResourceHandler:    resHttp.NewHandler(resourceService, workflow, fileHandler),
		ReservationHandler: bookingHttp.NewHandler(workflow, reservationService, views),
		ViewHandler:        viewHttp.NewHandler(views, cfg.PublicBaseURL),
		FileHandler:        fileHandler,
	}
	if cfg.DBPool != nil {
		routerConfig.Health = cfg.DBPool.Ping
	}

	return &Container{
		Router:       api.NewRouter(routerConfig),
		JWTManager:   jwtManager,
		Users:        userService,
		Resources:    resourceService,
		Reservations: reservationService,
		Workflow:     workflow,
	}
}

// NewNotifier builds the notifier selected by cfg.NotifierDriver. The returned
// close function releases broker connections.
func NewNotifier(cfg *config.Config, log *slog.Logger) (notify.Notifier, func() error, error) {
	switch cfg.NotifierDriver {
	case config.NotifierAMQP:
		n := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.NotifyQueue)
		return n, n.Close, nil
	case config.NotifierKafka:
		n := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		return n, n.Close, nil
	case config.NotifierLog, "":
		return notify.NewLogNotifier(log), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier driver %q", cfg.NotifierDriver)
	}
}

// NewSearchCache connects to Redis when an address is configured. Without one
// it returns a nil cache and searches always hit the store.
func NewSearchCache(ctx context.Context, cfg *config.Config) (cache.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		return nil, func() error { return nil }, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedis(client, "resource-share"), client.Close, nil
}
