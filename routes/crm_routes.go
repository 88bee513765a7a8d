package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/controllers"
	"github.com/proplayhub/backend/middleware"
)

// initCRMRoutes initializes the staff-only CRM routes
func initCRMRoutes(router *gin.RouterGroup) {
	crm := router.Group("/crm")
	crm.Use(middleware.AuthMiddleware(), middleware.StaffMiddleware())
	{
		crm.GET("/dashboard", controllers.GetDashboardOverview)

		// Package management
		crm.GET("/packages", controllers.ListPackagesAdmin)
		crm.POST("/packages", controllers.CreatePackage)
		crm.PUT("/packages/:id", controllers.UpdatePackage)
		crm.PATCH("/packages/:id/toggle", controllers.TogglePackage)
		crm.DELETE("/packages/:id", controllers.DeletePackage)

		// Discount codes
		crm.GET("/discounts", controllers.ListDiscountCodes)
		crm.POST("/discounts", controllers.CreateDiscountCode)
		crm.PUT("/discounts/:id", controllers.UpdateDiscountCode)
		crm.PATCH("/discounts/:id/toggle", controllers.ToggleDiscountCode)
		crm.DELETE("/discounts/:id", controllers.DeleteDiscountCode)

		// Customers
		crm.GET("/customers", controllers.ListCustomers)
		crm.GET("/customers/:id", controllers.GetCustomer)
		crm.PATCH("/customers/:id/block", controllers.ToggleCustomerBlock)

		// Reports
		crm.GET("/reports/sales/excel", controllers.DownloadSalesReportExcel)
		crm.GET("/reports/sales/pdf", controllers.DownloadSalesReportPDF)
	}
}
