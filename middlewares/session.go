package middlewares

import (
	"net/http"
	"time"

	"leave/dao/session"
	"leave/global"
	"leave/model/store"
	"leave/utils"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const ctxCookieKey = "session_cookie"

// sessionCookie 会话 cookie 的配置，轮换会话ID时要用
type sessionCookie struct {
	registry *store.Registry
	storage  session.Storage
	name     string
	ttl      time.Duration
	secure   bool
}

func (sc *sessionCookie) write(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.name, sid, int(sc.ttl/time.Second), "/", "", sc.secure, true)
	c.Set(global.CtxSessionIDKey, sid)
}

// issued 只认本服务发出去的会话ID：格式正确，并且内存或存储里有它
func (sc *sessionCookie) issued(c *gin.Context, sid string) bool {
	if !utils.ValidSessionID(sid) {
		return false
	}
	return sc.registry.Has(sid) || session.For(sc.storage, sid).Known(c.Request.Context())
}

// Session 用 cookie 识别浏览器客户端，不认识的 cookie 一律换成新ID，并挂上该客户端的 Store
func Session(registry *store.Registry, storage session.Storage, cookieName string, ttl time.Duration, secure bool) func(c *gin.Context) {
	sc := &sessionCookie{registry: registry, storage: storage, name: cookieName, ttl: ttl, secure: secure}
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || !sc.issued(c, sid) {
			if err == nil {
				zap.L().Debug("unknown session cookie replaced", zap.String("path", c.Request.URL.Path))
			}
			sid = utils.GenSessionID()
		}
		// 每次请求都续期
		sc.write(c, sid)
		c.Set(ctxCookieKey, sc)
		c.Set(global.CtxStoreKey, registry.Get(sid))
		c.Next()
	}
}

// RotateSession 登录成功后换一个新的会话ID，凭证和页面状态跟着搬过去
func RotateSession(c *gin.Context) error {
	v, ok := c.Get(ctxCookieKey)
	if !ok {
		return nil
	}
	sc := v.(*sessionCookie)
	old := global.GetSessionID(c)
	sid := utils.GenSessionID()
	if _, err := session.For(sc.storage, old).MoveTo(c.Request.Context(), sid); err != nil {
		return errors.Wrap(err, "rotate session")
	}
	c.Set(global.CtxStoreKey, sc.registry.Rename(old, sid))
	sc.write(c, sid)
	return nil
}

// GetStore 当前客户端的 Store，没经过 Session 中间件时返回一个临时的
func GetStore(c *gin.Context) *store.Store {
	if v, ok := c.Get(global.CtxStoreKey); ok {
		if st, ok := v.(*store.Store); ok {
			return st
		}
	}
	return store.New()
}
