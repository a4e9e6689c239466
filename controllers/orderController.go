package controllers

import (
	"fmt"
	"net/http"
	"time"

	"brista-coffee/helpers"
	"brista-coffee/models"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ratingRequest struct {
	Token  string  `json:"token" validate:"required"`
	Rating int     `json:"rating" validate:"required"`
	Review *string `json:"review"`
}

func (ctl *Controller) CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req models.NewOrder
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := ctl.Orders.CreateOrder(ctx, req)
		if err != nil {
			ctl.abort(c, err, "order was not created")
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GetOrders lists orders. Staff may list everything; anyone else must scope
// the query to a customer id.
func (ctl *Controller) GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		filter := models.OrderFilter{
			Customer_id: c.Query("customer_id"),
			Status:      c.Query("status"),
			Ascending:   c.Query("sort") == "asc",
		}
		if filter.Customer_id == "" && c.GetString("user_role") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "customer_id is required"})
			return
		}
		var err error
		if filter.From, err = ctl.parseDate(c.Query("from"), false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if filter.To, err = ctl.parseDate(c.Query("to"), true); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		allOrders, err := ctl.Orders.List(ctx, filter)
		if err != nil {
			ctl.abort(c, err, "error occurred while listing orders")
			return
		}
		c.JSON(http.StatusOK, allOrders)
	}
}

// parseDate accepts RFC 3339 or a YYYY-MM-DD day in the shop's zone. A bare
// day used as an upper bound includes that whole day.
func (ctl *Controller) parseDate(value string, upper bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(helpers.DayLayout, value, ctl.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC 3339", value)
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

func (ctl *Controller) GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := ctl.Orders.Get(ctx, c.Param("order_id"))
		if err != nil {
			ctl.abort(c, err, "error occurred while fetching the order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func (ctl *Controller) UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req statusRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := ctl.Orders.UpdateStatus(ctx, c.Param("order_id"), req.Status)
		if err != nil {
			ctl.abort(c, err, "order status was not updated")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func (ctl *Controller) RateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req ratingRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, alreadyRated, err := ctl.Orders.RateWithToken(ctx, c.Param("order_id"), req.Token, req.Rating, req.Review)
		if err != nil {
			ctl.abort(c, err, "rating was not saved")
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order, "already_rated": alreadyRated})
	}
}
