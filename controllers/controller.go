package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"brista-coffee/analytics"
	"brista-coffee/catalog"
	"brista-coffee/database"
	"brista-coffee/inventory"
	"brista-coffee/orders"
	"brista-coffee/quota"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
)

const requestTimeout = 15 * time.Second

var validate = validator.New()

// Controller holds the services the HTTP handlers call into.
type Controller struct {
	Orders    *orders.Engine
	Catalog   *catalog.Catalog
	Ledger    *inventory.Ledger
	Analytics *analytics.Aggregator
	Quota     *quota.Gate
	Location  *time.Location
	Log       *slog.Logger
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, analytics.ErrNoOrders):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, database.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, orders.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrInvalidRating),
		errors.Is(err, inventory.ErrNegativeQuantity),
		errors.Is(err, catalog.ErrInvalidMenuItem),
		errors.Is(err, analytics.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abort writes the error body. Store failures are logged and hidden from the
// caller.
func (ctl *Controller) abort(c *gin.Context, err error, msg string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		ctl.Log.Error(msg, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
