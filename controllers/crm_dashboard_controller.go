package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// GetDashboardOverview returns the headline numbers for the CRM landing page
func GetDashboardOverview(c *gin.Context) {
	var totalCustomers, totalActiveSubs, totalCancelled int64
	config.DB.Model(&models.User{}).Where("is_staff = ?", false).Count(&totalCustomers)
	config.DB.Model(&models.Subscription{}).Where("status = ?", models.SubscriptionStatusActive).Count(&totalActiveSubs)
	config.DB.Model(&models.Subscription{}).Where("status = ?", models.SubscriptionStatusCancelled).Count(&totalCancelled)

	var revenue struct {
		Total float64
		MRR   float64
	}
	config.DB.Model(&models.Subscription{}).
		Select("COALESCE(SUM(price_per_period), 0) AS total").
		Scan(&revenue.Total)
	config.DB.Model(&models.Subscription{}).
		Where("status = ?", models.SubscriptionStatusActive).
		Select("COALESCE(SUM(price_per_period), 0) AS mrr").
		Scan(&revenue.MRR)

	monthStart := time.Now().AddDate(0, 0, -30)
	var newThisMonth, salesThisMonth int64
	config.DB.Model(&models.User{}).Where("created_at >= ? AND is_staff = ?", monthStart, false).Count(&newThisMonth)
	config.DB.Model(&models.Subscription{}).Where("created_at >= ?", monthStart).Count(&salesThisMonth)

	type topPackage struct {
		Name       string  `json:"name"`
		Slug       string  `json:"slug"`
		SalesCount int     `json:"sales_count"`
		BasePrice  float64 `json:"base_price"`
	}
	var topPackages []topPackage
	config.DB.Model(&models.SubscriptionPackage{}).
		Select("name, slug, sales_count, base_price").
		Order("sales_count DESC").
		Limit(5).
		Scan(&topPackages)

	type topCode struct {
		Code      string `json:"code"`
		UsedCount int    `json:"used_count"`
	}
	var topCodes []topCode
	config.DB.Model(&models.DiscountCode{}).
		Select("code, used_count").
		Where("used_count > 0").
		Order("used_count DESC").
		Limit(5).
		Scan(&topCodes)

	utils.Success(c, "Dashboard retrieved successfully", gin.H{
		"customers": gin.H{
			"total":          totalCustomers,
			"new_this_month": newThisMonth,
		},
		"subscriptions": gin.H{
			"active":           totalActiveSubs,
			"cancelled":        totalCancelled,
			"sales_this_month": salesThisMonth,
		},
		"revenue": gin.H{
			"lifetime":          revenue.Total,
			"monthly_recurring": revenue.MRR,
		},
		"top_packages":       topPackages,
		"top_discount_codes": topCodes,
	})
}
