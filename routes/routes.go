package routes

import (
	"context"
	"time"

	"brista-coffee/helpers"
	"brista-coffee/middleware"

	"github.com/gin-gonic/gin"
)

// Guards are the middleware chains routes pick from.
type Guards struct {
	Staff    []gin.HandlerFunc
	Admin    []gin.HandlerFunc
	Identify gin.HandlerFunc
	Checkout gin.HandlerFunc
}

// NewGuards builds the chains. The checkout limiter forgets idle clients in
// the background until ctx ends.
func NewGuards(ctx context.Context, secret string, ordersPerMinute int) Guards {
	auth := middleware.Authentication(secret)
	limiter := middleware.NewRateLimiter(ordersPerMinute)
	go limiter.Cleanup(ctx, time.Minute)
	return Guards{
		Staff:    []gin.HandlerFunc{auth},
		Admin:    []gin.HandlerFunc{auth, middleware.RequireRole(helpers.RoleAdmin)},
		Identify: middleware.Identify(secret),
		Checkout: limiter.Limit(),
	}
}
