package routes

import (
	"github.com/Govind-619/CareFund/controllers"
	"github.com/Govind-619/CareFund/middleware"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup, ctl *controllers.Controller, auth gin.HandlerFunc) {
	admin := router.Group("/admin", auth, middleware.RequireRole(utils.RoleAdmin))
	{
		// Package management
		admin.POST("/packages", ctl.CreatePackage)

		// Escrow lifecycle
		admin.POST("/transactions/:id/vendor", ctl.AssignVendor)
		admin.POST("/transactions/:id/fail", ctl.FailTransaction)
		admin.POST("/donations/:id/confirm-delivery", ctl.ConfirmDelivery)
		admin.POST("/donations/:id/release", ctl.ReleasePayment)

		// Invariant audit
		admin.GET("/audit/releases", ctl.ReleaseViolations)
	}
}
