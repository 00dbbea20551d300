// router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/controller"
	"github.com/ucook/accessflow/db"
	"github.com/ucook/accessflow/metrics"
	"github.com/ucook/accessflow/middleware"
	"github.com/ucook/accessflow/model"
)

// Options wires the cross-cutting middleware. A nil RateStore disables
// rate limiting and a nil Metrics skips the /metrics endpoint.
type Options struct {
	Users             middleware.UserResolver
	Auth              middleware.AuthOptions
	RateStore         *db.Redis
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Metrics           *metrics.Registry
}

func SetupRouter(controllers *controller.Controllers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.Authenticate(opts.Users, opts.Auth))
	api.Use(middleware.RateLimiter(opts.RateStore, opts.RateLimitRequests, opts.RateLimitWindow))

	controllers.RegisterRoutes(api, middleware.RequireRole(model.RoleAdmin))

	return router
}
