package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"beanpulse/internal/core/auth"
	"beanpulse/internal/service"
	mdw "beanpulse/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer,
	sigSvc *service.SignalService, tasteSvc *service.TasteService) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 前缀
	api := r.Group("/api/v1")

	// 统一注册器（自动发现的模块）
	MountAllAPI(api)

	// 鉴权分组（需要 userId 的接口都挂这里）
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""))

	mountAuthActions(api, authed, db, jwter)
	mountSignalActions(authed, db, sigSvc)
	mountTasteActions(authed, db, tasteSvc)

	return r
}
