package enter

import (
	"fmt"
	"time"

	"leave/controllers/portal"
	"leave/dao/mysql"
	"leave/dao/session"
	"leave/global"
	"leave/initialize/cron"
	"leave/initialize/logger"
	"leave/initialize/redis"
	"leave/initialize/validator"
	"leave/initialize/viper"
	"leave/logic"
	"leave/model/store"
	"leave/notify"
	"leave/routers"
	"leave/services"
	"leave/utils"

	"go.uber.org/zap"
)

// idleClient 多久没访问的客户端状态会被定时任务回收
const idleClient = 24 * time.Hour

// Init 按顺序初始化配置、日志、校验器、存储和定时任务，返回组装好的路由依赖
func Init() (deps routers.Deps, err error) {
	// 初始化viper
	if err = viper.Init(); err != nil {
		fmt.Printf("init viper failed, err:%v\n", err)
		return deps, err
	}
	// 初始化Zap
	if err = logger.Init(viper.Conf.LogConfig, viper.Conf.Mode); err != nil {
		fmt.Printf("init logger failed, err:%v\n", err)
		return deps, err
	}
	zap.L().Debug("zap init success...")
	if err = validator.Init(); err != nil {
		zap.L().Error("init validator failed", zap.Error(err))
		return deps, err
	}
	zap.L().Debug("validator init success...")
	if err = utils.InitNode(viper.Conf.App.MachineID); err != nil {
		zap.L().Error("init snowflake failed", zap.Error(err))
		return deps, err
	}
	// 只有会话存在 redis 里时才需要连接
	if viper.Conf.StorageConfig.Driver == "redis" {
		if err = redis.Init(viper.Conf.RedisConfig); err != nil {
			zap.L().Error("init redis failed", zap.Error(err))
			return deps, err
		}
		zap.L().Debug("redis init success...")
	}
	storage, err := session.New(viper.Conf.StorageConfig)
	if err != nil {
		zap.L().Error("init session storage failed", zap.Error(err))
		return deps, err
	}
	zap.L().Debug("session storage init success...", zap.String("driver", viper.Conf.StorageConfig.Driver))

	h := &portal.Handler{
		Backend:      services.NewBackend(viper.Conf.BackendConfig),
		Storage:      storage,
		Holidays:     logic.NewHolidayCalendar(viper.Conf.HolidayConfig.Country),
		AuthorizeURL: viper.Conf.BackendConfig.OAuth2AuthorizeURL,
	}
	// 数据库打不开时不记录报表归档
	if err = mysql.Init(viper.Conf.DBConfig); err != nil {
		zap.L().Error("init database failed, report archive disabled", zap.Error(err))
	} else {
		h.Archive = mysql.NewReportArchive(global.GLOAB_DB)
		zap.L().Debug("database init success...", zap.String("driver", viper.Conf.DBConfig.Driver))
	}
	if n := notify.New(viper.Conf.NotifyConfig); n.Len() > 0 {
		h.Notify = n
		zap.L().Info("notifications enabled", zap.Int("channels", n.Len()))
	}

	registry := store.NewRegistry()
	ttl := time.Duration(viper.Conf.StorageConfig.TTLHours) * time.Hour
	//初始化corn定时器
	if err = cron.Start(viper.Conf.CronConfig, h.Holidays, storage, registry, idleClient); err != nil {
		zap.L().Error("init cron failed", zap.Error(err))
		return deps, err
	}
	zap.L().Debug("cron init success...")
	return routers.Deps{
		App:      viper.Conf.App,
		Storage:  storage,
		Registry: registry,
		TTL:      ttl,
		Handler:  h,
	}, nil
}

// Close 释放定时任务和连接
func Close() {
	cron.Stop()
	redis.Close()
	if db := global.GLOAB_DB; db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
