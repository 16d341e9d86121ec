package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/core/auth"
	"github.com/takezo-code/kanban-auth/internal/transport/http/handler"
	mdw "github.com/takezo-code/kanban-auth/internal/transport/http/middleware"
)

type Handlers struct {
	Auth *handler.AuthHandler
	Task *handler.TaskHandler
	User *handler.UserHandler
}

func NewAPIEngine(l *zap.Logger, tok *auth.TokenService, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 公共：注册 / 登录 / 刷新 / 登出。登录注册单独再上一层每 IP 限速。
	authGroup := api.Group("/auth")
	authGroup.Use(mdw.RateLimitPerIP(5, 10))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	// 鉴权路由：角色判定在 service 的 policy 里，这儿只认 token
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(tok, ""))
	{
		authed.GET("/me", h.User.Me)

		authed.POST("/tasks", h.Task.Create)
		authed.GET("/tasks", h.Task.List)
		authed.GET("/tasks/:id", h.Task.Get)
		authed.PUT("/tasks/:id", h.Task.Update)
		authed.PATCH("/tasks/:id/move", h.Task.Move)
		authed.DELETE("/tasks/:id", h.Task.Delete)
		authed.GET("/tasks/:id/history", h.Task.History)

		authed.GET("/users", h.User.List)
		authed.GET("/users/:id", h.User.Get)
		authed.PUT("/users/:id", h.User.Update)
		authed.DELETE("/users/:id", h.User.Delete)
	}

	return r
}
