package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	bookingHttp "github.com/nekogravitycat/resource-share-backend/internal/booking/http"
	fileHttp "github.com/nekogravitycat/resource-share-backend/internal/file/http"
	resHttp "github.com/nekogravitycat/resource-share-backend/internal/resource/http"
	userHttp "github.com/nekogravitycat/resource-share-backend/internal/user/http"
	viewHttp "github.com/nekogravitycat/resource-share-backend/internal/view/http"
)

// Config carries the handlers and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger
	JWTManager   *auth.JWTManager

	UserHandler        *userHttp.UserHandler
	ResourceHandler    *resHttp.Handler
	ReservationHandler *bookingHttp.Handler
	ViewHandler        *viewHttp.Handler
	FileHandler        *fileHttp.Handler

	// Health reports readiness of the backing store. Nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter assembles middleware (recovery, request logging, CORS) and
// registers every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.Logger))

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	optionalAuth := auth.AuthOptional(cfg.JWTManager)

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, cfg.UserHandler, authMiddleware)
		resHttp.RegisterRoutes(v1, cfg.ResourceHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, cfg.ReservationHandler, authMiddleware, optionalAuth)
		viewHttp.RegisterRoutes(v1, cfg.ViewHandler, optionalAuth)
		fileHttp.RegisterRoutes(v1, cfg.FileHandler)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
