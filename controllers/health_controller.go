package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
