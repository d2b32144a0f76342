package handler

import "github.com/gin-gonic/gin"

// Groups 三个鉴权级别的路由分组
type Groups struct {
	Public  *gin.RouterGroup
	Authed  *gin.RouterGroup // 需要 access token
	Manager *gin.RouterGroup // 需要 access token + manager 角色
}

// Module 业务模块实现 Mount 即可被 router 挂载
type Module interface{ Mount(Groups) }
