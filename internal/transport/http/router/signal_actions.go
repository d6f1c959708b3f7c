package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"beanpulse/internal/repo"
	"beanpulse/internal/service"
	"beanpulse/internal/signal"
	httpez "beanpulse/internal/transport/http/ez"
	mdw "beanpulse/internal/transport/http/middleware"
)

// 咖啡信号：事件上报 + 聚合行查询。

func mountSignalActions(authed *gin.RouterGroup, db *gorm.DB, svc *service.SignalService) {
	ez := httpez.New(authed)

	// --- POST /coffees/:id/events  事件上报 ---
	type eventIn struct {
		Event          string `json:"event" binding:"required"`
		CoffeeName     string `json:"coffeeName" binding:"omitempty,max=191"`
		Timestamp      string `json:"timestamp" binding:"omitempty"` // ISO-8601
		IsFavorite     bool   `json:"isFavorite"`
		Feedback       string `json:"feedback" binding:"omitempty,max=255"`
		FeedbackReason string `json:"feedbackReason" binding:"omitempty,max=255"`
	}
	httpez.RegisterAction[eventIn, signal.View](ez, db, httpez.Action[eventIn, signal.View]{
		Method: http.MethodPost,
		Path:   "/coffees/:id/events",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *eventIn) (signal.View, error) {
			uid := c.GetString("userId")
			coffeeID := c.Param("id")
			if coffeeID == "" {
				return signal.View{}, httpez.BadRequest("missing coffee id")
			}
			if !signal.KnownKind(in.Event) {
				return signal.View{}, httpez.BadRequest("unknown event kind: " + in.Event)
			}

			ev := signal.Event{
				Kind:           in.Event,
				CoffeeName:     in.CoffeeName,
				IsFavorite:     in.IsFavorite,
				Feedback:       in.Feedback,
				FeedbackReason: in.FeedbackReason,
			}
			if in.Timestamp != "" {
				ts, err := time.Parse(time.RFC3339, in.Timestamp)
				if err != nil {
					return signal.View{}, httpez.BadRequest("invalid timestamp: " + in.Timestamp)
				}
				ev.Timestamp = ts.UTC()
			}

			mdw.CountSignalEvent(in.Event)
			v, err := svc.Ingest(c.Request.Context(), uid, coffeeID, ev)
			if err != nil {
				if errors.Is(err, repo.ErrVersionConflict) {
					return signal.View{}, httpez.Conflict("concurrent update, retry")
				}
				return signal.View{}, httpez.Internal("ingest failed", err)
			}
			return v, nil
		},
	})

	// --- GET /coffees  我的信号列表 ---
	type listQ struct {
		Page int `form:"page,default=1"`
		Size int `form:"size,default=20"`
	}
	type listOut struct {
		Total int64         `json:"total"`
		Items []signal.View `json:"items"`
		Page  int           `json:"page"`
		Size  int           `json:"size"`
	}
	httpez.RegisterAction[listQ, listOut](ez, db, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/coffees",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) (listOut, error) {
			uid := c.GetString("userId")
			if in.Size <= 0 || in.Size > 100 {
				in.Size = 20
			}
			if in.Page <= 0 {
				in.Page = 1
			}
			offset := (in.Page - 1) * in.Size

			views, total, err := svc.CachedList(c.Request.Context(), uid, offset, in.Size)
			if err != nil {
				return listOut{}, httpez.Internal("list signals failed", err)
			}
			if views == nil {
				views = []signal.View{}
			}
			return listOut{Total: total, Items: views, Page: in.Page, Size: in.Size}, nil
		},
	})

	// --- GET /coffees/:id  单行 ---
	httpez.RegisterAction[struct{}, signal.View](ez, db, httpez.Action[struct{}, signal.View]{
		Method: http.MethodGet,
		Path:   "/coffees/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (signal.View, error) {
			uid := c.GetString("userId")
			v, err := svc.Get(c.Request.Context(), uid, c.Param("id"))
			if err != nil {
				return signal.View{}, httpez.Internal("get signal failed", err)
			}
			if v == nil {
				return signal.View{}, httpez.NotFound("not found")
			}
			return *v, nil
		},
	})
}
