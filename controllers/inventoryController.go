package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (ctl *Controller) GetInventory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := ctl.Ledger.List(ctx)
		if err != nil {
			ctl.abort(c, err, "error occurred while listing inventory")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (ctl *Controller) SetAvailability() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req availabilityRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		itemID := c.Param("item_id")
		if err := ctl.Ledger.SetAvailability(ctx, itemID, *req.Available); err != nil {
			ctl.abort(c, err, "availability was not updated")
			return
		}
		c.JSON(http.StatusOK, gin.H{"item_id": itemID, "available": *req.Available})
	}
}

func (ctl *Controller) SetQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req quantityRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		itemID := c.Param("item_id")
		if err := ctl.Ledger.SetQuantity(ctx, itemID, *req.Quantity); err != nil {
			ctl.abort(c, err, "quantity was not updated")
			return
		}
		c.JSON(http.StatusOK, gin.H{"item_id": itemID, "quantity": *req.Quantity})
	}
}

func (ctl *Controller) SeedInventory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		seeded, err := ctl.Ledger.SeedIfEmpty(ctx)
		if err != nil {
			ctl.abort(c, err, "inventory was not seeded")
			return
		}
		c.JSON(http.StatusOK, gin.H{"seeded": seeded})
	}
}
