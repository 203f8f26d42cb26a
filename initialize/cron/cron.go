package cron

import (
	"context"
	"time"

	"leave/dao/session"
	"leave/global"
	"leave/initialize/jwt"
	"leave/initialize/viper"
	"leave/logic"
	"leave/model/store"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func InitCorn() {
	var Gcontab = cron.New(cron.WithSeconds()) //精确到秒
	global.GLOAB_CORN = Gcontab
	global.GLOAB_CORN.Start()
}

// SweepSessions 清掉持有过期JWT的客户端凭证，并释放长时间没访问的客户端状态
func SweepSessions(ctx context.Context, storage session.Storage, registry *store.Registry, now time.Time, idle time.Duration) (cleared, evicted int, err error) {
	sids, err := storage.Clients(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "list clients")
	}
	for _, sid := range sids {
		creds := session.For(storage, sid)
		token := creds.Token(ctx)
		if token == "" || !jwt.Expired(token, now) {
			continue
		}
		if err := creds.ClearCredentials(ctx); err != nil {
			zap.L().Error("清理过期凭证失败", zap.String("sid", sid), zap.Error(err))
			continue
		}
		cleared++
	}
	if registry != nil {
		evicted = registry.Evict(now, idle)
	}
	return cleared, evicted, nil
}

// Start 注册假日刷新和会话清理两个定时任务
func Start(cfg *viper.CronConfig, holidays *logic.HolidayCalendar, storage session.Storage, registry *store.Registry, idle time.Duration) (err error) {
	if global.GLOAB_CORN == nil {
		InitCorn()
	}
	holidays.Refresh(time.Now())
	_, err = global.GLOAB_CORN.AddFunc(cfg.HolidayRefresh, func() {
		holidays.Refresh(time.Now())
		zap.L().Info("假日列表已刷新")
	})
	if err != nil {
		zap.L().Error("添加假日刷新任务失败", zap.String("schedule", cfg.HolidayRefresh), zap.Error(err))
		return errors.Wrap(err, "holiday refresh schedule")
	}
	_, err = global.GLOAB_CORN.AddFunc(cfg.SessionSweep, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		cleared, evicted, err := SweepSessions(ctx, storage, registry, time.Now(), idle)
		if err != nil {
			zap.L().Error("会话清理失败", zap.Error(err))
			return
		}
		zap.L().Info("会话清理完成", zap.Int("cleared", cleared), zap.Int("evicted", evicted))
	})
	if err != nil {
		zap.L().Error("添加会话清理任务失败", zap.String("schedule", cfg.SessionSweep), zap.Error(err))
		return errors.Wrap(err, "session sweep schedule")
	}
	return nil
}

func Stop() {
	if global.GLOAB_CORN != nil {
		<-global.GLOAB_CORN.Stop().Done()
	}
}
