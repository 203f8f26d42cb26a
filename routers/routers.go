package routers

import (
	"net/http"
	"time"

	"leave/controllers/portal"
	"leave/dao/session"
	"leave/global"
	"leave/initialize/logger"
	"leave/initialize/viper"
	"leave/middlewares"
	"leave/model/store"
	routerPortal "leave/routers/portal"

	"github.com/gin-gonic/gin"
)

// Deps 组装路由需要的东西
type Deps struct {
	App      *viper.App
	Storage  session.Storage
	Registry *store.Registry
	TTL      time.Duration
	Handler  *portal.Handler
}

func Setup(mode string, d Deps) *gin.Engine {
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode) //设置为发布模式
	}
	r := gin.New()
	global.GLOBAL_GIN_Engine = r
	r.Use(middlewares.Cors(d.App.AllowOrigins), logger.GinLogger(), logger.GinRecovery(true))
	r.Use(middlewares.Session(d.Registry, d.Storage, d.App.CookieName, d.TTL, d.App.CookieSecure))

	r.GET("/", d.Handler.Index)
	/*=========无需token验证路由==========*/
	Public := r.Group("")
	routerPortal.SetupPublic(Public, d.Handler)
	/*=========具体业务路由==========*/
	Pages := r.Group("")
	Pages.Use(middlewares.JWTAuthMiddleware(d.Storage))
	routerPortal.SetupPages(Pages, d.Handler, middlewares.ManagerOnly(d.Storage))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"msg": "404",
		})
	})
	return r
}
