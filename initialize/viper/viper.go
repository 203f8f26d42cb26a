package viper

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf 全局配置，Init 之后可用
var Conf = new(Config)

type Config struct {
	Mode           string `mapstructure:"mode"`
	*App           `mapstructure:"app"`
	*BackendConfig `mapstructure:"backend"`
	*StorageConfig `mapstructure:"storage"`
	*LogConfig     `mapstructure:"log"`
	*RedisConfig   `mapstructure:"redis"`
	*DBConfig      `mapstructure:"database"`
	*HolidayConfig `mapstructure:"holiday"`
	*CronConfig    `mapstructure:"cron"`
	*NotifyConfig  `mapstructure:"notify"`
}

type App struct {
	Name         string   `mapstructure:"name"`
	Port         int      `mapstructure:"port"`
	CookieName   string   `mapstructure:"cookie_name"`
	CookieSecure bool     `mapstructure:"cookie_secure"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	MachineID    int64    `mapstructure:"machine_id"`
}

// BackendConfig 两个后端服务的地址
type BackendConfig struct {
	AuthAPIURL         string `mapstructure:"auth_api_url"`
	LeaveAPIURL        string `mapstructure:"leave_api_url"`
	OAuth2AuthorizeURL string `mapstructure:"oauth2_authorize_url"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	FilePath string `mapstructure:"file_path"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SqlitePath string `mapstructure:"sqlite_path"`
}

type HolidayConfig struct {
	Country string `mapstructure:"country"`
}

type CronConfig struct {
	HolidayRefresh string `mapstructure:"holiday_refresh"`
	SessionSweep   string `mapstructure:"session_sweep"`
}

type NotifyConfig struct {
	DingTalk DingTalkConfig `mapstructure:"dingtalk"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type DingTalkConfig struct {
	RobotToken string `mapstructure:"robot_token"`
	Secret     string `mapstructure:"secret"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	ChatID      int64  `mapstructure:"chat_id"`
	APIEndpoint string `mapstructure:"api_endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "dev")
	v.SetDefault("app.name", "leave-portal")
	v.SetDefault("app.port", 8090)
	v.SetDefault("app.cookie_name", "leave_sid")
	v.SetDefault("app.cookie_secure", false)
	v.SetDefault("app.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("app.machine_id", 1)
	v.SetDefault("backend.auth_api_url", "http://localhost:8080/api")
	v.SetDefault("backend.leave_api_url", "http://localhost:3002/api")
	v.SetDefault("backend.oauth2_authorize_url", "http://localhost:8080/oauth2/authorization/google")
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.file_path", "leave_sessions.json")
	v.SetDefault("storage.ttl_hours", 168)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.filename", "leave-portal.log")
	v.SetDefault("log.max_size", 200)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 100)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "leave_portal.db")
	v.SetDefault("database.port", 3306)
	v.SetDefault("holiday.country", "RW")
	v.SetDefault("cron.holiday_refresh", "0 0 0 * * *")
	v.SetDefault("cron.session_sweep", "0 */30 * * * *")
	v.SetDefault("notify.dingtalk.robot_token", "")
	v.SetDefault("notify.dingtalk.secret", "")
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", 0)
	v.SetDefault("notify.telegram.api_endpoint", "https://api.telegram.org/bot%s/%s")
}

// Default 不读取任何文件，只返回默认配置，测试里用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	c := new(Config)
	_ = v.Unmarshal(c)
	return c
}

// Init 读取 .env、配置文件和 LEAVE_ 前缀的环境变量
func Init() (err error) {
	if err = godotenv.Load(); err != nil {
		// 没有 .env 文件就直接用系统环境变量
		fmt.Println("no .env file found, using system environment variables")
	}
	v := viper.GetViper()
	setDefaults(v)
	configFile := os.Getenv("LEAVE_CONFIG")
	if configFile == "" {
		configFile = "./config.yaml"
	}
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("LEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	found := true
	if err = v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configFile); !os.IsNotExist(statErr) {
			return fmt.Errorf("viper.ReadInConfig failed, err:%v", err)
		}
		fmt.Printf("config file %s not found, using defaults\n", configFile)
		found = false
	}
	if err = v.Unmarshal(Conf); err != nil {
		return fmt.Errorf("viper.Unmarshal failed, err:%v", err)
	}
	if !found {
		return nil
	}
	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		zap.L().Info("配置文件修改了", zap.String("file", in.Name))
		if err := v.Unmarshal(Conf); err != nil {
			zap.L().Error("viper.Unmarshal failed", zap.Error(err))
		}
	})
	return nil
}
