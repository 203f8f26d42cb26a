package response

type ResCode int64

const (
	CodeSuccess      ResCode = 200
	CodeInvalidParam ResCode = 400
	CodeNeedLogin    ResCode = 401
	CodeNoPermission ResCode = 403
	CodeNotFound     ResCode = 404
	CodeBackendError ResCode = 502
	CodeServerBusy   ResCode = 500
)

const (
	CodeInvalidToken ResCode = 1001 + iota
	CodeNoAuthData
	CodeReportUnknown
)

var codeMsgMap = map[ResCode]string{
	CodeSuccess:       "success",
	CodeInvalidParam:  "请求参数错误",
	CodeNeedLogin:     "需要登录",
	CodeNoPermission:  "没有权限",
	CodeNotFound:      "资源不存在",
	CodeBackendError:  "后端服务请求失败",
	CodeServerBusy:    "系统繁忙",
	CodeInvalidToken:  "无效的token",
	CodeNoAuthData:    "No authentication data found",
	CodeReportUnknown: "报表不存在",
}

func (c ResCode) Msg() string {
	msg, ok := codeMsgMap[c]
	if !ok {
		msg = codeMsgMap[CodeServerBusy]
	}
	return msg
}
