package routes

import (
	"brista-coffee/kitchen"

	"github.com/gin-gonic/gin"
)

func KitchenRoutes(incomingRoutes *gin.Engine, hub *kitchen.Hub, g Guards) {
	incomingRoutes.GET("/kitchen/ws", append(g.Staff, kitchen.ServeWS(hub))...)
}
