package routes

import (
	"brista-coffee/controllers"

	"github.com/gin-gonic/gin"
)

func MenuRoutes(incomingRoutes *gin.Engine, ctl *controllers.Controller, g Guards) {
	incomingRoutes.GET("/menu", ctl.GetMenus())
	incomingRoutes.GET("/menu/:menu_id", ctl.GetMenu())

	editor := incomingRoutes.Group("/menu", g.Admin...)
	editor.POST("", ctl.CreateMenu())
	editor.PATCH("/:menu_id", ctl.UpdateMenu())
	editor.DELETE("/:menu_id", ctl.DeleteMenu())
}
