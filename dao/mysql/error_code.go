package mysql

import "github.com/pkg/errors"

var (
	ErrorReportNotExist = errors.New("报表还没有生成过")
	ErrorUnknownDriver  = errors.New("不支持的数据库驱动")
)
