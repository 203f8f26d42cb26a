package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code ResCode     `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

// Result 所有接口统一使用 200 的 http 状态码，业务状态看 code
func Result(code ResCode, data interface{}, msg string, c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: code,
		Data: data,
		Msg:  msg,
	})
}

// ResultWithStatus 需要 http 状态码也能表达结果时使用，比如 401
func ResultWithStatus(status int, code ResCode, data interface{}, msg string, c *gin.Context) {
	c.JSON(status, Response{
		Code: code,
		Data: data,
		Msg:  msg,
	})
}

func Ok(c *gin.Context) {
	Result(CodeSuccess, map[string]interface{}{}, "操作成功", c)
}

func OkWithMessage(message string, c *gin.Context) {
	Result(CodeSuccess, map[string]interface{}{}, message, c)
}

func OkWithData(data interface{}, c *gin.Context) {
	Result(CodeSuccess, data, "成功", c)
}

func OkWithDetailed(data interface{}, message string, c *gin.Context) {
	Result(CodeSuccess, data, message, c)
}

func Fail(c *gin.Context) {
	Result(CodeServerBusy, map[string]interface{}{}, "操作失败", c)
}

func FailWithMessage(message string, c *gin.Context) {
	Result(CodeInvalidParam, map[string]interface{}{}, message, c)
}

func FailWithDetailed(data interface{}, message string, c *gin.Context) {
	Result(CodeInvalidParam, data, message, c)
}

func ResponseSuccess(c *gin.Context, data interface{}) {
	Result(CodeSuccess, data, CodeSuccess.Msg(), c)
}

func ResponseError(c *gin.Context, code ResCode) {
	Result(code, nil, code.Msg(), c)
}

func ResponseErrorWithMsg(c *gin.Context, code ResCode, msg interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": code,
		"data": nil,
		"msg":  msg,
	})
}
