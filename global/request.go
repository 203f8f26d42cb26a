package global

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var (
	GLOBAL_GIN_Engine *gin.Engine
	GLOBAL_REDIS      *redis.Client
	GLOAB_DB          *gorm.DB
	GLOAB_CORN        *cron.Cron
	GLOAB_VALIDATOR   *validator.Validate
	GLOAB_TRANS       ut.Translator
	GLOAB_NODE        *snowflake.Node
)

var ErrorNotManager = errors.New("You do not have permission to approve/reject leave requests")

const CtxSessionIDKey = "sid"
const CtxStoreKey = "store"
const CtxUserIDKey = "user_id"
const CtxUserRoleKey = "role"

// GetSessionID 获取当前浏览器客户端的会话ID
func GetSessionID(c *gin.Context) string {
	sid, ok := c.Get(CtxSessionIDKey)
	if !ok {
		return ""
	}
	return sid.(string)
}
