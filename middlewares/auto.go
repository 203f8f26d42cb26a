package middlewares

import (
	"net/http"
	"time"

	"leave/dao/session"
	"leave/global"
	"leave/initialize/jwt"
	"leave/logic"
	"leave/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthMiddleware 需要登录的接口，token 按 session、authResponse 的顺序解析，过期的JWT视为未登录
func JWTAuthMiddleware(storage session.Storage) func(c *gin.Context) {
	return func(c *gin.Context) {
		creds := session.For(storage, global.GetSessionID(c))
		token := creds.Token(c.Request.Context())
		code := response.CodeSuccess
		switch {
		case token == "":
			code = response.CodeNeedLogin
		case jwt.Expired(token, time.Now()):
			code = response.CodeInvalidToken
		}
		if code != response.CodeSuccess {
			zap.L().Debug("未登录或token已过期", zap.String("path", c.Request.URL.Path), zap.Int64("code", int64(code)))
			response.ResultWithStatus(http.StatusUnauthorized, code, gin.H{"next": logic.PathLogin}, code.Msg(), c)
			c.Abort()
			return
		}
		if mc, err := jwt.ParseUnverified(token); err == nil {
			c.Set(global.CtxUserIDKey, mc.UserId)
			c.Set(global.CtxUserRoleKey, mc.Role)
		}
		c.Next()
	}
}

// ManagerOnly 审批接口只对经理开放，角色取自存储的用户信息
func ManagerOnly(storage session.Storage) func(c *gin.Context) {
	return func(c *gin.Context) {
		u := session.For(storage, global.GetSessionID(c)).User(c.Request.Context())
		if !logic.CanApprove(u) {
			response.ResultWithStatus(http.StatusForbidden, response.CodeNoPermission, nil, global.ErrorNotManager.Error(), c)
			c.Abort()
			return
		}
		c.Next()
	}
}
