package routes

import (
	"brista-coffee/controllers"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes *gin.Engine, ctl *controllers.Controller, g Guards) {
	incomingRoutes.POST("/orders", g.Checkout, ctl.CreateOrder())
	incomingRoutes.GET("/orders", g.Identify, ctl.GetOrders())
	incomingRoutes.GET("/orders/:order_id", ctl.GetOrder())
	incomingRoutes.POST("/orders/:order_id/rating", ctl.RateOrder())
	incomingRoutes.PATCH("/orders/:order_id/status", append(g.Staff, ctl.UpdateOrderStatus())...)
}
