package portal

import (
	"leave/logic"
	"leave/model/params"
	"leave/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) UpdateProfile(c *gin.Context) {
	var p params.ParamUpdateProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("UpdateProfile with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	u, err := logic.UpdateProfile(c.Request.Context(), h.session(c), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(u, "Profile updated successfully", c)
}

// ChangePassword 新密码至少 8 位，包含大小写字母和数字
func (h *Handler) ChangePassword(c *gin.Context) {
	var p params.ParamChangePassword
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("ChangePassword with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	if err := logic.ChangePassword(c.Request.Context(), h.session(c), &p); err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithMessage("Password changed successfully", c)
}
