package routes

import (
	"brista-coffee/controllers"

	"github.com/gin-gonic/gin"
)

func AnalyticsRoutes(incomingRoutes *gin.Engine, ctl *controllers.Controller, g Guards) {
	admin := incomingRoutes.Group("/analytics", g.Admin...)
	admin.GET("/revenue", ctl.GetRevenue())
	admin.GET("/popular", ctl.GetPopularItems())
	admin.GET("/customers", ctl.GetCustomers())
	admin.GET("/customers/:customer_id", ctl.GetCustomerInsight())

	incomingRoutes.GET("/notifications/quota", append(g.Staff, ctl.GetQuota())...)
}
