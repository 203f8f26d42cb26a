package portal

import (
	"net/http"

	"leave/logic"
	"leave/middlewares"
	"leave/model/params"
	"leave/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// rotate 凭证写入后换发会话ID，失败时已经写好响应
func rotate(c *gin.Context) bool {
	if err := middlewares.RotateSession(c); err != nil {
		fail(c, err, logic.PathLogin)
		return false
	}
	return true
}

// Login 邮箱密码登录，成功后去设置 2FA
func (h *Handler) Login(c *gin.Context) {
	var p params.ParamLogin
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("Login with invalid param", zap.Error(err))
		response.FailWithMessage("Email and password are required", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	res, err := logic.Login(c.Request.Context(), h.session(c), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	if !rotate(c) {
		return
	}
	response.OkWithDetailed(res, "Login successful!", c)
}

func (h *Handler) Register(c *gin.Context) {
	var p params.ParamRegister
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("Register with invalid param", zap.Error(err))
		response.FailWithMessage("Please fill in all fields", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	res, err := logic.Register(c.Request.Context(), h.session(c), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(res, "Registration successful! Please log in.", c)
}

// Setup2FA 二维码和密钥
func (h *Handler) Setup2FA(c *gin.Context) {
	res, err := logic.Setup2FA(c.Request.Context(), h.session(c), h.now())
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(res, "2FA setup ready", c)
}

func (h *Handler) Verify2FA(c *gin.Context) {
	var p params.ParamVerify2FA
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("Verify2FA with invalid param", zap.Error(err))
		response.FailWithMessage("Verification code is required", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	res, err := logic.Verify2FA(c.Request.Context(), h.session(c), p.Code)
	if err != nil {
		fail(c, err, "")
		return
	}
	if res.Next != "" && !rotate(c) {
		return
	}
	response.OkWithDetailed(res, "2FA verification successful!", c)
}

// OAuth2Authorize 跳去第三方登录
func (h *Handler) OAuth2Authorize(c *gin.Context) {
	c.Redirect(http.StatusFound, h.AuthorizeURL)
}

// OAuth2Callback 第三方登录回调 ?token=xxx，失败时 next 是登录页
func (h *Handler) OAuth2Callback(c *gin.Context) {
	var p params.ParamOAuth2Callback
	_ = c.ShouldBindQuery(&p)
	res, err := logic.OAuth2Callback(c.Request.Context(), h.session(c), p.Token)
	if err != nil {
		fail(c, err, res.Next)
		return
	}
	if !rotate(c) {
		return
	}
	response.OkWithDetailed(res, "Login successful!", c)
}

func (h *Handler) Logout(c *gin.Context) {
	res, err := logic.Logout(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(res, "Logged out", c)
}

// Me 当前登录用户
func (h *Handler) Me(c *gin.Context) {
	u, err := logic.CurrentUser(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithData(u, c)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	if err := logic.RefreshToken(c.Request.Context(), h.session(c)); err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithMessage("Token refreshed", c)
}
