package portal

import (
	"net/http"
	"time"

	"leave/dao/session"
	"leave/global"
	"leave/initialize/validator"
	"leave/logic"
	"leave/middlewares"
	"leave/response"
	"leave/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler 门户所有页面接口共用的依赖
type Handler struct {
	Backend      *services.Backend
	Storage      session.Storage
	Holidays     *logic.HolidayCalendar
	Archive      logic.Archive
	Notify       logic.Notifier
	AuthorizeURL string
	Now          func() time.Time
}

func (h *Handler) session(c *gin.Context) *logic.Session {
	return logic.NewSession(h.Backend, h.Storage, middlewares.GetStore(c), global.GetSessionID(c), h.Notify)
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// valid 参数校验不通过时直接返回第一条提示
func valid(c *gin.Context, p interface{}) bool {
	if global.GLOAB_VALIDATOR == nil {
		return true
	}
	if err := global.GLOAB_VALIDATOR.Struct(p); err != nil {
		zap.L().Debug("param validate failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.FailWithMessage(validator.First(err), c)
		return false
	}
	return true
}

func codeOf(err error) response.ResCode {
	switch {
	case errors.Is(err, global.ErrorNotManager):
		return response.CodeNoPermission
	case errors.Is(err, logic.ErrNoAuthData), errors.Is(err, logic.ErrUserIDRequired), errors.Is(err, logic.ErrTokenRequired):
		return response.CodeNoAuthData
	case errors.Is(err, logic.ErrUnknownReport):
		return response.CodeReportUnknown
	case errors.Is(err, logic.ErrNoTokenFound), errors.Is(err, services.ErrTokenNotFound):
		return response.CodeNeedLogin
	case errors.Is(err, logic.ErrCodeRequired), errors.Is(err, logic.ErrInvalidReportDate),
		errors.Is(err, logic.ErrUserIDMissing), errors.Is(err, services.ErrRejectionReason):
		return response.CodeInvalidParam
	}
	switch st := services.StatusOf(err); {
	case st == 401:
		return response.CodeNeedLogin
	case st == 403:
		return response.CodeNoPermission
	case st == 404:
		return response.CodeNotFound
	case st >= 400 && st < 500:
		return response.CodeInvalidParam
	}
	return response.CodeBackendError
}

// fail 业务失败，http 状态码仍然是 200，data 里带上页面要跳转的地址
func fail(c *gin.Context, err error, next string) {
	zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	var data interface{} = map[string]interface{}{}
	if next != "" {
		data = gin.H{"next": next}
	}
	response.Result(codeOf(err), data, services.Message(err), c)
}

// Index 首页直接去 dashboard
func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, logic.PathDashboard)
}
