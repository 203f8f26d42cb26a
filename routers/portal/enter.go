package portal

import (
	portal2 "leave/controllers/portal"

	"github.com/gin-gonic/gin"
)

// SetupPublic 登录相关页面和 ui 切片，不需要 token
func SetupPublic(Public *gin.RouterGroup, h *portal2.Handler) {
	Public.POST("login", h.Login)
	Public.POST("register", h.Register)
	Public.GET("setup-2fa", h.Setup2FA) // 依赖 local authResponse，而不是 session token
	Public.POST("verify-2fa", h.Verify2FA)
	Public.POST("logout", h.Logout)
	OAuth2 := Public.Group("oauth2")
	{
		OAuth2.GET("authorize", h.OAuth2Authorize)
		OAuth2.GET("callback", h.OAuth2Callback)
	}
	UI := Public.Group("ui")
	{
		UI.GET("", h.UIState)
		UI.GET("state", h.State)
		UI.GET("toasts", h.Toasts)
		UI.POST("theme", h.ToggleTheme)
		UI.POST("sidebar", h.ToggleSidebar)
	}
}

// SetupPages 需要登录的页面
func SetupPages(Pages *gin.RouterGroup, h *portal2.Handler, managerOnly gin.HandlerFunc) {
	Pages.GET("me", h.Me)
	Pages.POST("auth/refresh", h.RefreshToken)
	Pages.GET("dashboard", h.Dashboard)
	Pages.GET("calendar", h.Calendar)
	Leaves := Pages.Group("leaves")
	{
		Leaves.POST("apply", h.ApplyLeave)
		Leaves.GET("history", h.History)
		Leaves.GET("balance", h.Balance)
		Leaves.GET(":id", h.GetLeave)
		Leaves.PUT(":id", h.UpdateLeave)
		Leaves.DELETE(":id", h.CancelLeave)
	}
	Approvals := Pages.Group("approvals")
	{
		Approvals.GET("", h.Approvals)
		Approvals.POST(":id/approve", managerOnly, h.Approve)
		Approvals.POST(":id/reject", managerOnly, h.Reject)
	}
	Settings := Pages.Group("settings")
	{
		Settings.PUT("profile", h.UpdateProfile)
		Settings.PUT("password", h.ChangePassword)
	}
	SetupAdmin(Pages.Group("admin"), h)
}

func SetupAdmin(Admin *gin.RouterGroup, h *portal2.Handler) {
	Users := Admin.Group("users")
	{
		Users.GET("", h.Users)
		Users.PATCH(":id", h.UpdateUser)
	}
	Departments := Admin.Group("departments")
	{
		Departments.GET("", h.Departments)
		Departments.POST("", h.AddDepartment)
		Departments.PUT(":id", h.UpdateDepartment)
		Departments.DELETE(":id", h.DeleteDepartment)
	}
	LeaveTypes := Admin.Group("leave-types")
	{
		LeaveTypes.GET("", h.LeaveTypes)
		LeaveTypes.POST("", h.AddLeaveType)
		LeaveTypes.PUT(":id", h.UpdateLeaveType)
		LeaveTypes.DELETE(":id", h.DeleteLeaveType)
	}
	Reports := Admin.Group("reports")
	{
		Reports.GET("", h.Reports)
		Reports.GET("runs", h.ReportRuns)
		Reports.GET(":id/download", h.DownloadReport)
		Reports.GET(":id/last", h.LastReportRun)
	}
}
