package routes

import (
	"brista-coffee/controllers"

	"github.com/gin-gonic/gin"
)

func InventoryRoutes(incomingRoutes *gin.Engine, ctl *controllers.Controller, g Guards) {
	staff := incomingRoutes.Group("/inventory", g.Staff...)
	staff.GET("", ctl.GetInventory())
	staff.PATCH("/:item_id/availability", ctl.SetAvailability())

	admin := incomingRoutes.Group("/inventory", g.Admin...)
	admin.PATCH("/:item_id/quantity", ctl.SetQuantity())
	admin.POST("/seed", ctl.SeedInventory())
}
