package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"proximity-service/internal/handler"
	"proximity-service/internal/middleware"
	"proximity-service/internal/service"
	"proximity-service/pkg/logger"
)

type Dependencies struct {
	Log           *logger.Logger
	Redis         *redis.Client
	JWTSecret     string
	UserService   *service.UserService
	Relationships *service.RelationshipService
	Proximity     *service.ProximityService
	Presence      *service.PresenceService
}

// New assembles the gin engine: global middleware, the public auth
// routes, and the authenticated API group.
func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.LogAPI(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMw := middleware.NewAuthMiddleware(deps.JWTSecret)
	rateMw := middleware.NewRateLimitMiddleware(deps.Redis)

	api := r.Group("/api/v1")

	authHandler := handler.NewAuthHandler(deps.UserService)
	authHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authMw.RequireAuth())

	userHandler := handler.NewUserHandler(deps.UserService, deps.Relationships)
	userHandler.RegisterRoutes(protected)

	friendHandler := handler.NewFriendHandler(deps.Relationships)
	friendHandler.RegisterRoutes(protected)

	presenceHandler := handler.NewPresenceHandler(deps.Presence)
	presenceHandler.RegisterRoutes(protected)

	// Location updates arrive on a timer from every device, so they get
	// their own rate limit.
	proximityGroup := protected.Group("")
	proximityGroup.Use(rateMw.RateLimit(60, time.Minute))
	proximityHandler := handler.NewProximityHandler(deps.Proximity)
	proximityHandler.RegisterRoutes(proximityGroup)

	return r
}
