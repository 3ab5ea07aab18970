package controllers

import (
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/health
func Health(c *gin.Context) {
	utils.Success(c, gin.H{"status": "ok", "service": utils.AppName})
}
