package portal

import (
	"leave/logic"
	"leave/model/entity"
	"leave/model/params"
	"leave/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Users 用户管理，支持搜索和按部门、角色、职位筛选
func (h *Handler) Users(c *gin.Context) {
	var f params.ParamSearchUser
	if err := c.ShouldBindQuery(&f); err != nil {
		response.FailWithMessage("筛选参数有误", c)
		return
	}
	res, err := logic.LoadUsers(c.Request.Context(), h.session(c), f)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(res, "查询所有用户成功", c)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var p params.ParamUpdateUser
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("UpdateUser with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	u, err := logic.UpdateUser(c.Request.Context(), h.session(c), entity.ID(c.Param("id")), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(u, "User updated successfully", c)
}

func (h *Handler) Departments(c *gin.Context) {
	list, err := logic.FetchDepartments(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(list, "获取部门成功", c)
}

func (h *Handler) AddDepartment(c *gin.Context) {
	var p params.ParamDepartment
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("AddDepartment with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	d, err := logic.AddDepartment(c.Request.Context(), h.session(c), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(d, "Department added successfully", c)
}

func (h *Handler) UpdateDepartment(c *gin.Context) {
	var p params.ParamDepartment
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("UpdateDepartment with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	d, err := logic.UpdateDepartment(c.Request.Context(), h.session(c), entity.ID(c.Param("id")), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(d, "Department updated successfully", c)
}

func (h *Handler) DeleteDepartment(c *gin.Context) {
	if err := logic.DeleteDepartment(c.Request.Context(), h.session(c), entity.ID(c.Param("id"))); err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithMessage("Department deleted successfully", c)
}

func (h *Handler) LeaveTypes(c *gin.Context) {
	list, err := logic.FetchLeaveTypes(c.Request.Context(), h.session(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(list, "获取假期类型成功", c)
}

func (h *Handler) AddLeaveType(c *gin.Context) {
	var p params.ParamLeaveType
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("AddLeaveType with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	t, err := logic.AddLeaveType(c.Request.Context(), h.session(c), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(t, "Leave type added successfully", c)
}

func (h *Handler) UpdateLeaveType(c *gin.Context) {
	var p params.ParamLeaveType
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("UpdateLeaveType with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	t, err := logic.UpdateLeaveType(c.Request.Context(), h.session(c), entity.ID(c.Param("id")), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(t, "Leave type updated successfully", c)
}

func (h *Handler) DeleteLeaveType(c *gin.Context) {
	if err := logic.DeleteLeaveType(c.Request.Context(), h.session(c), entity.ID(c.Param("id"))); err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithMessage("Leave type deleted successfully", c)
}
