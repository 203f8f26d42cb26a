package portal

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"leave/dao/mysql"
	"leave/logic"
	"leave/model/entity"
	"leave/model/params"
	"leave/response"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// reportRuns 归档支持查询历史时才开放 runs 接口
type reportRuns interface {
	Last(ctx context.Context, reportID string) (*entity.ReportRun, error)
	Recent(ctx context.Context, n int) ([]entity.ReportRun, error)
}

// Reports 报表目录，带上最近一次生成时间
func (h *Handler) Reports(c *gin.Context) {
	var f params.ParamReport
	if err := c.ShouldBindQuery(&f); err != nil {
		response.FailWithMessage("筛选参数有误", c)
		return
	}
	list, err := logic.ListReports(c.Request.Context(), h.Archive, f)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithDetailed(list, "获取报表目录成功", c)
}

// DownloadReport 生成并下载报表文件
func (h *Handler) DownloadReport(c *gin.Context) {
	var f params.ParamReport
	if err := c.ShouldBindQuery(&f); err != nil {
		response.FailWithMessage("筛选参数有误", c)
		return
	}
	file, err := logic.GenerateReport(c.Request.Context(), h.session(c), h.Archive, c.Param("id"), f, h.now())
	if err != nil {
		fail(c, err, "")
		return
	}
	zap.L().Info("report generated", zap.String("report", file.ReportID), zap.Int("rows", file.Rows))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// ReportRuns 最近的生成记录，?limit= 默认 10
func (h *Handler) ReportRuns(c *gin.Context) {
	runs, ok := h.Archive.(reportRuns)
	if !ok {
		response.OkWithData([]entity.ReportRun{}, c)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		response.FailWithMessage("limit 参数有误", c)
		return
	}
	list, err := runs.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithData(list, c)
}

// LastReportRun 某个报表最近一次生成记录
func (h *Handler) LastReportRun(c *gin.Context) {
	runs, ok := h.Archive.(reportRuns)
	if !ok {
		response.ResponseError(c, response.CodeNotFound)
		return
	}
	run, err := runs.Last(c.Request.Context(), c.Param("id"))
	if errors.Is(err, mysql.ErrorReportNotExist) {
		response.Result(response.CodeNotFound, nil, err.Error(), c)
		return
	}
	if err != nil {
		fail(c, err, "")
		return
	}
	response.OkWithData(run, c)
}
