package controllers

import (
	"github.com/gin-gonic/gin"
)

const anonymousUserID = "anonymous"

// resolveUserID picks the effective caller identity: an authenticated
// token wins, then an explicit userId from the request, then the
// anonymous default.
func resolveUserID(c *gin.Context, explicit string) string {
	if id := c.GetString("user_id"); id != "" {
		return id
	}
	if explicit != "" {
		return explicit
	}
	if id := c.Query("userId"); id != "" {
		return id
	}
	return anonymousUserID
}
