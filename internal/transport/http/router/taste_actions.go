package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"beanpulse/internal/service"
	"beanpulse/internal/taste"
	httpez "beanpulse/internal/transport/http/ez"
)

// 口味画像：表单值是 string 还是 number 都收，归一化失败 400 并带字段名。

func mountTasteActions(authed *gin.RouterGroup, db *gorm.DB, svc *service.TasteService) {
	ez := httpez.New(authed)

	type tasteIn struct {
		Acidity    any `json:"acidity"`
		Bitterness any `json:"bitterness"`
		Sweetness  any `json:"sweetness"`
		Body       any `json:"body"`
		Roast      any `json:"roast"`
		Fallback   any `json:"fallback"` // 可选：统一兜底值
	}
	type profileOut struct {
		Acidity    float64 `json:"acidity"`
		Bitterness float64 `json:"bitterness"`
		Sweetness  float64 `json:"sweetness"`
		Body       float64 `json:"body"`
		Roast      float64 `json:"roast"`
	}

	httpez.RegisterAction[tasteIn, profileOut](ez, db, httpez.Action[tasteIn, profileOut]{
		Method: http.MethodPut,
		Path:   "/taste",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *tasteIn) (profileOut, error) {
			uid := c.GetString("userId")

			raw := map[string]any{}
			for f, v := range map[string]any{
				"acidity":    in.Acidity,
				"bitterness": in.Bitterness,
				"sweetness":  in.Sweetness,
				"body":       in.Body,
				"roast":      in.Roast,
			} {
				if v != nil {
					raw[f] = v
				}
			}
			if len(raw) == 0 {
				return profileOut{}, httpez.BadRequest("no taste fields supplied")
			}

			st, err := svc.UpdateProfile(c.Request.Context(), uid, raw, in.Fallback)
			if err != nil {
				var fe *taste.FieldError
				if errors.As(err, &fe) {
					return profileOut{}, httpez.BadRequest(fe.Error())
				}
				return profileOut{}, httpez.Internal("update taste failed", err)
			}
			if st == nil {
				return profileOut{}, httpez.NotFound("statistics not provisioned")
			}
			return profileOut{
				Acidity:    st.Acidity,
				Bitterness: st.Bitterness,
				Sweetness:  st.Sweetness,
				Body:       st.Body,
				Roast:      st.Roast,
			}, nil
		},
	})

	httpez.RegisterAction[struct{}, profileOut](ez, db, httpez.Action[struct{}, profileOut]{
		Method: http.MethodGet,
		Path:   "/taste",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (profileOut, error) {
			uid := c.GetString("userId")
			st, err := svc.Profile(c.Request.Context(), uid)
			if err != nil {
				return profileOut{}, httpez.Internal("load taste failed", err)
			}
			if st == nil {
				return profileOut{}, httpez.NotFound("statistics not provisioned")
			}
			return profileOut{
				Acidity:    st.Acidity,
				Bitterness: st.Bitterness,
				Sweetness:  st.Sweetness,
				Body:       st.Body,
				Roast:      st.Roast,
			}, nil
		},
	})
}
