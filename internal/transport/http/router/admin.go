package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"beanpulse/internal/core/auth"
	"beanpulse/internal/core/server"
	"beanpulse/internal/service"
	mdw "beanpulse/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer,
	userSvc *service.UserService, sigSvc *service.SignalService) *gin.Engine {
	// 管理端流量小，基础引擎（ginzap + recovery + cors）就够
	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))

	MountAllAdmin(admin)
	mountAdminActions(admin, db, userSvc, sigSvc)

	return r
}
