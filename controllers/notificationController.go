package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetQuota reports how many notification sends are left today.
func (ctl *Controller) GetQuota() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		c.JSON(http.StatusOK, ctl.Quota.Status(ctx))
	}
}
