package portal

import (
	"mime/multipart"

	"leave/logic"
	"leave/model/entity"
	"leave/model/params"
	"leave/response"
	"leave/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const supportingDocuments = "supportingDocuments"

// Dashboard 首页的统计、最近的申请、休假中的同事和节假日
func (h *Handler) Dashboard(c *gin.Context) {
	d := logic.LoadDashboard(c.Request.Context(), h.session(c), h.Holidays, h.now())
	response.OkWithDetailed(d, "获取首页数据成功", c)
}

// documents 取出上传的附件，调用方负责关闭
func documents(c *gin.Context) ([]services.Document, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil, nil
	}
	var (
		docs   []services.Document
		opened []multipart.File
	)
	for _, fh := range form.File[supportingDocuments] {
		f, err := fh.Open()
		if err != nil {
			for _, o := range opened {
				o.Close()
			}
			return nil, nil, err
		}
		opened = append(opened, f)
		docs = append(docs, services.Document{Filename: fh.Filename, Content: f})
	}
	return docs, opened, nil
}

// ApplyLeave 支持 json 和 multipart 两种提交方式
func (h *Handler) ApplyLeave(c *gin.Context) {
	var p params.ParamApplyLeave
	if err := c.ShouldBind(&p); err != nil {
		zap.L().Error("ApplyLeave with invalid param", zap.Error(err))
		response.FailWithMessage("Please fill in all required fields", c)
		return
	}
	if !valid(c, &p) {
		return
	}
	docs, opened, err := documents(c)
	if err != nil {
		zap.L().Error("ApplyLeave read supporting documents failed", zap.Error(err))
		response.FailWithMessage("Failed to read supporting documents", c)
		return
	}
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	res, err := logic.ApplyLeave(c.Request.Context(), h.session(c), &p, docs)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(res, "Leave request submitted successfully!", c)
}

func (h *Handler) History(c *gin.Context) {
	var f params.ParamLeaveFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.FailWithMessage("筛选参数有误", c)
		return
	}
	list, err := logic.History(c.Request.Context(), h.session(c), f)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(list, "获取请假记录成功", c)
}

func (h *Handler) GetLeave(c *gin.Context) {
	got, err := logic.GetLeave(c.Request.Context(), h.session(c), entity.ID(c.Param("id")))
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithData(got, c)
}

func (h *Handler) UpdateLeave(c *gin.Context) {
	var p params.ParamUpdateLeave
	if err := c.ShouldBindJSON(&p); err != nil {
		zap.L().Error("UpdateLeave with invalid param", zap.Error(err))
		response.FailWithMessage("参数有误", c)
		return
	}
	updated, err := logic.UpdateLeave(c.Request.Context(), h.session(c), entity.ID(c.Param("id")), &p)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(updated, "Leave request updated successfully", c)
}

func (h *Handler) CancelLeave(c *gin.Context) {
	if err := logic.CancelLeave(c.Request.Context(), h.session(c), entity.ID(c.Param("id"))); err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithMessage("Leave request cancelled", c)
}

// Calendar 团队日历，?department=all 或部门名
func (h *Handler) Calendar(c *gin.Context) {
	var p params.ParamCalendar
	_ = c.ShouldBindQuery(&p)
	cal, err := logic.TeamCalendar(c.Request.Context(), h.session(c), p.Department, h.now())
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(cal, "获取团队日历成功", c)
}

func (h *Handler) Balance(c *gin.Context) {
	s := h.session(c)
	b, err := logic.FetchBalance(c.Request.Context(), s)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithData(b, c)
}
