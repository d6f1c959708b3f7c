package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"beanpulse/internal/core/cache"
	"beanpulse/internal/domain"
	"beanpulse/internal/provision"
	"beanpulse/internal/repo"
	"beanpulse/internal/signal"
)

// 信号进站管线：保障影子记录 → 读当前行 → 纯函数聚合 → 带版本条件写回。
// 写回撞了版本就重读重算，最多三次；聚合函数本身不感知这些。

const ingestRetries = 3

type SignalService struct {
	db      *gorm.DB
	signals *repo.SignalRepo
	cache   *cache.Cache // 可为 nil（测试 / 没配 redis）
	log     *zap.Logger
	now     func() time.Time
}

func NewSignalService(db *gorm.DB, c *cache.Cache, log *zap.Logger) *SignalService {
	return &SignalService{
		db:      db,
		signals: repo.NewSignalRepo(db),
		cache:   c,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 测试用：替换时钟。
func (s *SignalService) WithClock(now func() time.Time) *SignalService {
	s.now = now
	return s
}

// Ingest 处理一条 (userID, coffeeID) 上的行为事件，返回更新后的视图。
func (s *SignalService) Ingest(ctx context.Context, userID, coffeeID string, ev signal.Event) (signal.View, error) {
	// 外键兜底：首写用户先把影子记录补齐
	if err := provision.EnsureUser(ctx, s.db, userID, ""); err != nil && !provision.IsDupKey(err) {
		return signal.View{}, fmt.Errorf("provision user: %w", err)
	}

	var lastErr error
	for i := 0; i < ingestRetries; i++ {
		cur, err := s.signals.Find(userID, coffeeID)
		if err != nil {
			return signal.View{}, err
		}

		created := cur == nil
		if created {
			cur = &domain.CoffeeSignal{UserID: userID, CoffeeID: coffeeID}
		}

		next := signal.Apply(*cur, ev, s.now())

		if created {
			err = s.signals.Insert(&next)
			if err != nil {
				if provision.IsDupKey(err) {
					// 并发首写：对方先插了，重读再来
					lastErr = repo.ErrVersionConflict
					continue
				}
				return signal.View{}, err
			}
		} else {
			ok, uerr := s.signals.UpdateVersioned(&next, cur.Version)
			if uerr != nil {
				return signal.View{}, uerr
			}
			if !ok {
				lastErr = repo.ErrVersionConflict
				continue
			}
		}

		s.invalidateList(ctx, userID)
		return signal.ToView(next), nil
	}

	s.log.Warn("signal ingest gave up after retries",
		zap.String("user_id", userID),
		zap.String("coffee_id", coffeeID),
		zap.String("kind", ev.Kind),
	)
	return signal.View{}, lastErr
}

// Get 单行视图。
func (s *SignalService) Get(ctx context.Context, userID, coffeeID string) (*signal.View, error) {
	row, err := s.signals.Find(userID, coffeeID)
	if err != nil || row == nil {
		return nil, err
	}
	v := signal.ToView(*row)
	return &v, nil
}

// List 用户全部信号行的视图，走 redis 读穿缓存（有就用）。
func (s *SignalService) List(ctx context.Context, userID string, offset, limit int) ([]signal.View, int64, error) {
	rows, total, err := s.signals.ListByUser(userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	views := make([]signal.View, 0, len(rows))
	for _, r := range rows {
		views = append(views, signal.ToView(r))
	}
	return views, total, nil
}

// TopScanned 管理端：跨用户聚合的热门咖啡。
func (s *SignalService) TopScanned(ctx context.Context, limit int) ([]signal.View, error) {
	rows, err := s.signals.TopScanned(limit)
	if err != nil {
		return nil, err
	}
	views := make([]signal.View, 0, len(rows))
	for _, r := range rows {
		views = append(views, signal.ViewFromRow(r))
	}
	return views, nil
}

func listCacheKey(userID string) string { return "signals:list:" + userID }

func (s *SignalService) invalidateList(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, listCacheKey(userID)); err != nil {
		s.log.Warn("invalidate signal cache", zap.String("user_id", userID), zap.Error(err))
	}
}

// CachedList List 的缓存版本，给读多写少的首页列表用。
func (s *SignalService) CachedList(ctx context.Context, userID string, offset, limit int) ([]signal.View, int64, error) {
	if s.cache == nil || offset != 0 {
		return s.List(ctx, userID, offset, limit)
	}
	type page struct {
		Views []signal.View `json:"views"`
		Total int64         `json:"total"`
	}
	p, err := cache.GetOrLoadJSON[page](s.cache, ctx, listCacheKey(userID), 30*time.Second,
		func(ctx context.Context) (*page, error) {
			views, total, e := s.List(ctx, userID, 0, limit)
			if e != nil {
				return nil, e
			}
			return &page{Views: views, Total: total}, nil
		})
	if err != nil {
		// 缓存路径出问题直接回源
		return s.List(ctx, userID, offset, limit)
	}
	if p == nil {
		return nil, 0, nil
	}
	return p.Views, p.Total, nil
}
