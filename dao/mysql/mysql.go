package mysql

import (
	"fmt"
	"time"

	"leave/global"
	"leave/initialize/viper"
	"leave/model/entity"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open 按 database.driver 打开 mysql 或 sqlite，并迁移报表归档表
func Open(cfg *viper.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		DSN := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		)
		dialector = mysql.New(mysql.Config{
			DSN: DSN, // 1. 连接信息
		})
	case "sqlite", "":
		dialector = sqlite.Open(cfg.SqlitePath)
	default:
		return nil, errors.Wrap(ErrorUnknownDriver, cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{ // 2. 选项
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true, //不用物理外键，使用逻辑外键
	})
	if err != nil {
		zap.L().Debug("数据库链接失败", zap.String("driver", cfg.Driver))
		return nil, errors.WithStack(err)
	}
	if cfg.Driver == "mysql" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err = db.AutoMigrate(&entity.ReportRun{}); err != nil {
		zap.L().Error("register table failed", zap.Error(err))
		return nil, errors.WithStack(err)
	}
	return db, nil
}

// Init 打开数据库并放进 global.GLOAB_DB
func Init(cfg *viper.DBConfig) (err error) {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	global.GLOAB_DB = db
	return nil
}
