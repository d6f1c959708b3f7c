package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"beanpulse/internal/core/auth"
	"beanpulse/internal/domain"
	"beanpulse/internal/provision"
	httpez "beanpulse/internal/transport/http/ez"
	"beanpulse/pkg/utils"
)

// /auth/login + /me
// 登录查不到就自动注册：影子记录（users + user_statistics）一次补齐再发 JWT。

func mountAuthActions(api, authed *gin.RouterGroup, db *gorm.DB, jwter *auth.JWTer) {
	ezPublic := httpez.New(api)

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"     binding:"omitempty,max=64"` // 首次注册可用
	}
	type loginOut struct {
		Token string      `json:"token"`
		IsNew bool        `json:"isNew"`
		User  interface{} `json:"user"`
	}
	httpez.RegisterAction[loginIn, loginOut](ezPublic, db, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *loginIn) (loginOut, error) {
			email := strings.TrimSpace(in.Email)

			var u domain.User
			err := tx.Where("email = ?", email).First(&u).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// 自动注册：建 users + user_statistics 两行
				id := utils.NewID()
				e := provision.EnsureUser(c.Request.Context(), tx, id, email, provision.Opts{
					Name:         strings.TrimSpace(in.Name),
					PasswordHash: utils.HashPassword(in.Password),
					Role:         "user",
				})
				if e != nil {
					// 并发兜底：撞了 email 唯一键 → 对方先注册了，再查一次
					if !provision.IsDupKey(e) && !errors.Is(e, provision.ErrEmailTaken) {
						return loginOut{}, httpez.Internal("register failed", e)
					}
				}
				if e2 := tx.Where("email = ?", email).First(&u).Error; e2 != nil {
					return loginOut{}, httpez.Internal("login failed", e2)
				}
				tok, e := jwter.Issue(u.ID, u.Role)
				if e != nil || tok == "" {
					return loginOut{}, httpez.Internal("issue token failed", e)
				}
				return loginOut{
					Token: tok, IsNew: true,
					User: gin.H{"id": u.ID, "email": u.EmailString(), "name": u.Name, "role": u.Role},
				}, nil

			case err != nil:
				return loginOut{}, httpez.Internal("db error", err)

			default:
				// 已存在 → 校验密码
				if !utils.CheckPassword(in.Password, u.PasswordHash) {
					return loginOut{}, httpez.Unauthorized("invalid credentials")
				}
				tok, e := jwter.Issue(u.ID, u.Role)
				if e != nil || tok == "" {
					return loginOut{}, httpez.Internal("issue token failed", e)
				}
				return loginOut{
					Token: tok, IsNew: false,
					User: gin.H{"id": u.ID, "email": u.EmailString(), "name": u.Name, "role": u.Role},
				}, nil
			}
		},
	})

	ezAuth := httpez.New(authed)

	type meOut struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	httpez.RegisterAction[struct{}, meOut](ezAuth, db, httpez.Action[struct{}, meOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (meOut, error) {
			uid := c.GetString("userId")
			var u domain.User
			if err := tx.Where("id = ?", uid).First(&u).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return meOut{}, httpez.NotFound("user not found")
				}
				return meOut{}, httpez.Internal("db error", err)
			}
			return meOut{ID: u.ID, Email: u.EmailString(), Name: u.Name, Role: u.Role}, nil
		},
	})
}
