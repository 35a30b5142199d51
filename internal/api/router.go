package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/social-feed/docs"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	ServiceName string
	Tracing     bool
	Sentry      bool
	RateLimiter *middleware.RateLimiter
	Health      Pinger
	Swagger     bool
}

// NewRouter 组装中间件与路由
func NewRouter(h *handler.Handler, accounts service.AccountService, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(gin.Recovery())
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health.Ping(c.Request.Context()); err != nil {
				response.Error(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		response.Success(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}

	// 账号相关接口不需要登录
	api.PUT("/users/user/create", h.Register)
	api.POST("/users/user/activation", h.Activate)
	api.POST("/users/login", h.Login)

	authed := api.Group("", middleware.Auth(accounts, handler.WriteError))
	{
		authed.GET("/users/me", h.Me)
		authed.GET("/users/:id", h.GetUser)
		authed.GET("/users/:id/following", h.ListFollowing)
		authed.GET("/users/:id/followers", h.ListFollowers)
		authed.POST("/users/:id/follow", h.Follow)
		authed.DELETE("/users/:id/follow", h.Unfollow)

		authed.GET("/tweets", h.Feed)
		authed.POST("/tweets", h.CreateMessage)
		authed.DELETE("/tweets/:id", h.DeleteMessage)
		authed.POST("/tweets/:id/likes", h.Like)
		authed.DELETE("/tweets/:id/likes", h.Unlike)
	}
	return r
}
