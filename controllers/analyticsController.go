package controllers

import (
	"net/http"
	"strconv"

	"brista-coffee/analytics"

	"github.com/gin-gonic/gin"
)

const defaultWindowDays = 7

func windowDays(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("days", strconv.Itoa(defaultWindowDays))
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, analytics.ErrInvalidWindow
	}
	return days, nil
}

func (ctl *Controller) GetRevenue() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		days, err := windowDays(c)
		if err != nil {
			ctl.abort(c, err, "")
			return
		}
		report, err := ctl.Analytics.RevenueSeries(ctx, days)
		if err != nil {
			ctl.abort(c, err, "error occurred while computing revenue")
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (ctl *Controller) GetPopularItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		days, err := windowDays(c)
		if err != nil {
			ctl.abort(c, err, "")
			return
		}
		items, err := ctl.Analytics.PopularItems(ctx, days)
		if err != nil {
			ctl.abort(c, err, "error occurred while ranking items")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (ctl *Controller) GetCustomerInsight() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		insight, err := ctl.Analytics.CustomerInsight(ctx, c.Param("customer_id"))
		if err != nil {
			ctl.abort(c, err, "error occurred while building the customer insight")
			return
		}
		c.JSON(http.StatusOK, insight)
	}
}

func (ctl *Controller) GetCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		customers, err := ctl.Analytics.Customers(ctx)
		if err != nil {
			ctl.abort(c, err, "error occurred while listing customers")
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}
