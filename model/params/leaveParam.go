package params

// ParamApplyLeave 提交请假申请，supportingDocuments 通过 multipart 上传
type ParamApplyLeave struct {
	StartDate string `json:"startDate" form:"startDate" validate:"required"`
	EndDate   string `json:"endDate" form:"endDate" validate:"required"`
	LeaveType string `json:"leaveType" form:"leaveType" validate:"required"`
	Reason    string `json:"reason" form:"reason"`
}

type ParamUpdateLeave struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	LeaveType string `json:"leaveType,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ParamLeaveFilter 请假历史筛选，status/type 为 all 表示不过滤
type ParamLeaveFilter struct {
	Status  string `form:"status"`
	Type    string `form:"type"`
	Search  string `form:"q"`
	Refresh bool   `form:"refresh"`
	// Server status/type 交给后端的 /leave/history 过滤
	Server bool `form:"server"`
}

type ParamApprove struct {
	Comment string `json:"comment"`
}

type ParamReject struct {
	Comment string `json:"comment" validate:"required,min=10"`
}

type ParamCalendar struct {
	Department string `form:"department"`
}

type ParamDepartment struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type ParamLeaveType struct {
	Name         string  `json:"name" validate:"required"`
	AccrualRate  float64 `json:"accrualRate" validate:"gte=0"`
	MaxCarryover float64 `json:"maxCarryover" validate:"gte=0"`
	Description  string  `json:"description"`
}

// ParamReport 报表筛选，from/to 为 2006-01-02，type 为 excel/csv
type ParamReport struct {
	Department string `form:"department"`
	Type       string `form:"type"`
	From       string `form:"from"`
	To         string `form:"to"`
}
