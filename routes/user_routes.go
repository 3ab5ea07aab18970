package routes

import (
	"github.com/Govind-619/CareFund/controllers"
	"github.com/Govind-619/CareFund/middleware"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes the donor and vendor routes
func initUserRoutes(router *gin.RouterGroup, ctl *controllers.Controller, auth gin.HandlerFunc) {
	donations := router.Group("/donations", auth)
	{
		donations.POST("", middleware.RequireRole(utils.RoleDonor), ctl.CreateDonation)
		donations.GET("/:id", middleware.RequireRole(utils.RoleDonor, utils.RoleAdmin), ctl.GetDonation)
		donations.GET("/:id/invoice", middleware.RequireRole(utils.RoleDonor, utils.RoleAdmin), ctl.DownloadInvoice)
	}

	payments := router.Group("/payments", auth, middleware.RequireRole(utils.RoleDonor, utils.RoleAdmin))
	{
		payments.POST("/order", ctl.CreateOrder)
		payments.POST("/verify", ctl.VerifyPayment)
	}

	vendor := router.Group("/vendor", auth, middleware.RequireRole(utils.RoleVendor))
	{
		vendor.POST("/donations/:id/delivery", ctl.SubmitDelivery)
	}
}
