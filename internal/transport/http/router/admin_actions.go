package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"beanpulse/internal/domain"
	"beanpulse/internal/service"
	"beanpulse/internal/signal"
	httpez "beanpulse/internal/transport/http/ez"
)

// 管理端接口集中在这里注册。

func mountAdminActions(admin *gin.RouterGroup, db *gorm.DB,
	userSvc *service.UserService, sigSvc *service.SignalService) {
	ez := httpez.New(admin)

	// --- GET /admin/v1/users  用户列表 ---
	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 按 email/name 模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含软删
	}
	type row struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	httpez.RegisterAction[listQ, listOut](ez, db, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			q := tx.WithContext(c).Model(&domain.User{})
			if in.WithDeleted {
				q = q.Unscoped()
			}
			if s := strings.TrimSpace(in.Q); s != "" {
				like := "%" + s + "%"
				q = q.Where("email LIKE ? OR name LIKE ?", like, like)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				return listOut{}, httpez.Internal("count users failed", err)
			}

			var us []domain.User
			if err := q.Order("created_at DESC").Limit(in.Limit).Offset(in.Offset).Find(&us).Error; err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}

			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.EmailString(), Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- POST /admin/v1/users/:id/ban  封禁（软删） ---
	httpez.RegisterAction[struct{}, gin.H](ez, db, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			if u, err := userSvc.Get(id); err != nil {
				return nil, httpez.Internal("load user failed", err)
			} else if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			if err := userSvc.Ban(id); err != nil {
				return nil, httpez.Internal("ban user failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})

	// --- GET /admin/v1/coffees/top  跨用户热门咖啡 ---
	type topQ struct {
		Limit int `form:"limit,default=20"`
	}
	type topOut struct {
		Items []signal.View `json:"items"`
	}
	httpez.RegisterAction[topQ, topOut](ez, db, httpez.Action[topQ, topOut]{
		Method: http.MethodGet,
		Path:   "/coffees/top",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *topQ) (topOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			views, err := sigSvc.TopScanned(c.Request.Context(), in.Limit)
			if err != nil {
				return topOut{}, httpez.Internal("top coffees failed", err)
			}
			return topOut{Items: views}, nil
		},
	})
}
