package routes

import (
	"github.com/Govind-619/CareFund/controllers"
	"github.com/Govind-619/CareFund/middleware"
	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(ctl *controllers.Controller, jwtSecret string, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	// API version group
	api := router.Group("/" + utils.APIVersion)
	{
		api.GET("/health", controllers.Health)
		api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
		api.GET("/packages", ctl.ListPackages)

		auth := middleware.AuthMiddleware(jwtSecret)

		// Initialize donor and vendor routes
		initUserRoutes(api, ctl, auth)

		// Initialize admin routes
		initAdminRoutes(api, ctl, auth)
	}

	return router
}
