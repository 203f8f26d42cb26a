package portal

import (
	"leave/middlewares"
	"leave/model/store"
	"leave/response"

	"github.com/gin-gonic/gin"
)

// UIState 不带 toast 队列的 ui 切片，toast 用 Toasts 取
func (h *Handler) UIState(c *gin.Context) {
	var ui store.UISlice
	middlewares.GetStore(c).View(func(st *store.State) {
		ui = st.UI
		ui.Toasts = nil
	})
	response.OkWithData(ui, c)
}

// Toasts 取出并清空待展示的提示
func (h *Handler) Toasts(c *gin.Context) {
	response.OkWithData(middlewares.GetStore(c).DrainToasts(), c)
}

func (h *Handler) ToggleTheme(c *gin.Context) {
	response.OkWithData(gin.H{"theme": middlewares.GetStore(c).ToggleTheme()}, c)
}

func (h *Handler) ToggleSidebar(c *gin.Context) {
	response.OkWithData(gin.H{"sidebarOpen": middlewares.GetStore(c).ToggleSidebar()}, c)
}

// State 整个客户端状态，调试用
func (h *Handler) State(c *gin.Context) {
	response.OkWithData(middlewares.GetStore(c).Snapshot(), c)
}
