package portal

import (
	"leave/logic"
	"leave/model/entity"
	"leave/model/params"
	"leave/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Approvals 待审批列表和部门汇总
func (h *Handler) Approvals(c *gin.Context) {
	a, err := logic.LoadApprovals(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(a, "获取待审批列表成功", c)
}

func (h *Handler) Approve(c *gin.Context) {
	var p params.ParamApprove
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&p); err != nil {
			zap.L().Error("Approve with invalid param", zap.Error(err))
			response.FailWithMessage("参数有误", c)
			return
		}
	}
	out, err := logic.Approve(c.Request.Context(), h.session(c), entity.ID(c.Param("id")), p.Comment)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(out, "Leave request approved successfully", c)
}

// Reject 理由至少 10 个字符
func (h *Handler) Reject(c *gin.Context) {
	var p params.ParamReject
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("Reject with invalid param", zap.Error(err))
		response.FailWithMessage("Rejection reason must be at least 10 characters long", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	out, err := logic.Reject(c.Request.Context(), h.session(c), entity.ID(c.Param("id")), p.Comment)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(out, "Leave request rejected successfully", c)
}
