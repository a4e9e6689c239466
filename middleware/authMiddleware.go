package middleware

import (
	"net/http"

	"brista-coffee/helpers"

	"github.com/gin-gonic/gin"
)

// Authentication admits console users carrying a valid staff token in the
// "token" header. Browsers cannot set headers on a websocket handshake, so
// the query parameter of the same name is accepted too.
func Authentication(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := c.Request.Header.Get("token")
		if clientToken == "" {
			clientToken = c.Query("token")
		}
		if clientToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no authorization header provided"})
			c.Abort()
			return
		}
		claims, msg := helpers.ValidateToken(secret, clientToken)
		if msg != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}
		if claims.User_role != helpers.RoleAdmin && claims.User_role != helpers.RoleKitchen {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff role required"})
			c.Abort()
			return
		}
		c.Set("uid", claims.Uid)
		c.Set("name", claims.Name)
		c.Set("user_role", claims.User_role)
		c.Next()
	}
}

// RequireRole narrows a staff route to the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed for role " + role})
		c.Abort()
	}
}

// Identify records staff claims when a valid token is present and lets
// anonymous requests through.
func Identify(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if clientToken := c.Request.Header.Get("token"); clientToken != "" {
			if claims, msg := helpers.ValidateToken(secret, clientToken); msg == "" {
				c.Set("uid", claims.Uid)
				c.Set("name", claims.Name)
				c.Set("user_role", claims.User_role)
			}
		}
		c.Next()
	}
}
