package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/queue"
	"github.com/proplayhub/backend/utils"
)

// CreateSubscriptionRequest represents the checkout request body
type CreateSubscriptionRequest struct {
	PackageSlug  string   `json:"package_slug" binding:"required"`
	Addons       []string `json:"addons"`
	DiscountCode string   `json:"discount_code"`
}

// CreateSubscription runs the checkout: resolves the package, prices it in
// integer cents (package discount, addons, then the optional code on top),
// and persists the subscription, the code-usage increment and the package
// sales counter in a single transaction.
func CreateSubscription(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.PackageSlug))
	utils.LogInfo("Checkout started for user %d, package %s", user.ID, slug)

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	// Pre-purchase tiers; the worker compares against these after commit.
	var prevTiers map[string]string
	if stats, err := utils.GetUserStats(config.DB, user.ID); err == nil {
		prevTiers = utils.EvaluateAchievements(stats)
	} else {
		utils.LogError("Failed to compute pre-purchase stats for user %d: %v", user.ID, err)
		prevTiers = map[string]string{}
	}

	subscription, err := createSubscriptionTx(config.DB, &user, &pkg, req.Addons, req.DiscountCode, "")
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	enqueueCheckoutTasks(&user, subscription, prevTiers)

	utils.LogInfo("Checkout complete for user %d: subscription %d at %.2f/%s",
		user.ID, subscription.ID, subscription.PricePerPeriod, subscription.Period)
	utils.Created(c, "Subscription created successfully", gin.H{"subscription": subscription})
}

// createSubscriptionTx prices and persists the purchase atomically
func createSubscriptionTx(db *gorm.DB, user *models.User, pkg *models.SubscriptionPackage, addonKeys []string, discountCode, razorpayOrderID string) (*models.Subscription, error) {
	var subscription *models.Subscription

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND package_slug = ? AND status = ?", user.ID, pkg.Slug, models.SubscriptionStatusActive).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return utils.ConflictError("You already have an active subscription for this package", nil)
		}

		packagePercent := utils.PackageDiscountPercent(pkg)
		totalCents, _ := utils.ApplyPercent(utils.Cents(pkg.BasePrice), packagePercent)

		addons, addonCents, appErr := utils.ResolveAddons(pkg, addonKeys)
		if appErr != nil {
			return appErr
		}
		totalCents += addonCents

		var appliedCode *models.DiscountCode
		var codePercent int
		var codeAmount int64
		if discountCode != "" {
			code, appErr := utils.ValidateDiscountCode(tx, discountCode, pkg)
			if appErr != nil {
				return appErr
			}
			appliedCode = code
			codePercent = code.DiscountPercent
			totalCents, codeAmount = utils.ApplyPercent(totalCents, codePercent)
		}

		now := time.Now()
		sub := models.Subscription{
			UserID:          user.ID,
			PackageID:       pkg.ID,
			PackageSlug:     pkg.Slug,
			PackageName:     pkg.Name,
			Period:          pkg.Period,
			PricePerPeriod:  utils.Amount(totalCents),
			Status:          models.SubscriptionStatusActive,
			StartedAt:       now,
			NextBillingDate: now.AddDate(0, 1, 0),
			PurchasedAddons: addons,
			RazorpayOrderID: razorpayOrderID,
		}
		if appliedCode != nil {
			sub.DiscountCode = appliedCode.Code
			sub.DiscountPercent = codePercent
			sub.DiscountAmount = utils.Amount(codeAmount)
		}

		if err := tx.Create(&sub).Error; err != nil {
			// the partial unique index catches the loser of two concurrent
			// checkouts that both passed the pre-check
			if errors.Is(err, gorm.ErrDuplicatedKey) ||
				strings.Contains(err.Error(), "duplicate key") ||
				strings.Contains(err.Error(), "UNIQUE constraint") {
				return utils.ConflictError("You already have an active subscription for this package", err)
			}
			return err
		}

		if appliedCode != nil {
			if err := appliedCode.IncrementUsage(tx); err != nil {
				return err
			}
		}

		if err := tx.Model(pkg).UpdateColumn("sales_count", gorm.Expr("sales_count + 1")).Error; err != nil {
			return err
		}

		subscription = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// enqueueCheckoutTasks puts the receipt email and the achievement check on
// the outbox. Failures are logged only; they never affect the response.
func enqueueCheckoutTasks(user *models.User, sub *models.Subscription, prevTiers map[string]string) {
	if queue.Tasks == nil {
		utils.LogDebug("Outbox not configured, skipping checkout side effects")
		return
	}
	ctx := context.Background()

	if err := queue.Tasks.EnqueueEmailReceipt(ctx, queue.EmailReceiptPayload{
		To:          user.Email,
		PackageName: sub.PackageName,
		Period:      sub.Period,
		Price:       sub.PricePerPeriod,
	}); err != nil {
		utils.LogError("Failed to enqueue receipt email for user %d: %v", user.ID, err)
	}

	if err := queue.Tasks.EnqueueAchievementCheck(ctx, queue.AchievementCheckPayload{
		UserID:    user.ID,
		PrevTiers: prevTiers,
	}); err != nil {
		utils.LogError("Failed to enqueue achievement check for user %d: %v", user.ID, err)
	}
}

// ListMySubscriptions returns the caller's subscriptions, newest first
func ListMySubscriptions(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var subscriptions []models.Subscription
	if err := config.DB.Preload("PurchasedAddons").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&subscriptions).Error; err != nil {
		utils.LogError("Failed to fetch subscriptions for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch subscriptions", nil)
		return
	}

	utils.Success(c, "Subscriptions retrieved successfully", gin.H{"subscriptions": subscriptions})
}

// CancelSubscription soft-cancels an active subscription. Cancelled is
// terminal: the only way back is a brand-new subscription.
func CancelSubscription(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid subscription ID", nil)
		return
	}

	var subscription models.Subscription
	if err := config.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&subscription).Error; err != nil {
		utils.NotFound(c, "Subscription not found")
		return
	}

	if subscription.Status == models.SubscriptionStatusCancelled {
		utils.BadRequest(c, "Subscription is already cancelled", nil)
		return
	}

	now := time.Now()
	if err := config.DB.Model(&subscription).Updates(map[string]interface{}{
		"status":       models.SubscriptionStatusCancelled,
		"cancelled_at": now,
	}).Error; err != nil {
		utils.LogError("Failed to cancel subscription %d: %v", subscription.ID, err)
		utils.InternalServerError(c, "Failed to cancel subscription", nil)
		return
	}
	subscription.Status = models.SubscriptionStatusCancelled
	subscription.CancelledAt = &now

	utils.LogInfo("Subscription %d cancelled by user %d", subscription.ID, user.ID)
	utils.Success(c, "Subscription cancelled", gin.H{"subscription": subscription})
}

// UpgradeAddonsRequest represents the addon upgrade request body
type UpgradeAddonsRequest struct {
	SubscriptionID uint     `json:"subscription_id" binding:"required"`
	Addons         []string `json:"addons" binding:"required"`
}

// UpgradeAddons appends addons to an active subscription, charging only the
// incremental cost. Keys already purchased are skipped, never re-charged.
func UpgradeAddons(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req UpgradeAddonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var subscription models.Subscription
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("PurchasedAddons").
			Where("id = ? AND user_id = ?", req.SubscriptionID, user.ID).
			First(&subscription).Error; err != nil {
			return utils.NotFoundError("Subscription not found", err)
		}
		if subscription.Status != models.SubscriptionStatusActive {
			return utils.BadRequestError("Only active subscriptions can be upgraded", nil)
		}

		var pkg models.SubscriptionPackage
		if err := tx.Preload("Addons").Where("slug = ?", subscription.PackageSlug).First(&pkg).Error; err != nil {
			return utils.NotFoundError("Package no longer exists", err)
		}

		var newKeys []string
		for _, key := range req.Addons {
			if !subscription.HasAddon(key) {
				newKeys = append(newKeys, key)
			}
		}
		if len(newKeys) == 0 {
			return utils.BadRequestError("All requested add-ons are already purchased", nil)
		}

		addons, addonCents, appErr := utils.ResolveAddons(&pkg, newKeys)
		if appErr != nil {
			return appErr
		}

		for i := range addons {
			addons[i].SubscriptionID = subscription.ID
			if err := tx.Create(&addons[i]).Error; err != nil {
				return err
			}
		}

		newPrice := utils.Amount(utils.Cents(subscription.PricePerPeriod) + addonCents)
		if err := tx.Model(&subscription).UpdateColumn("price_per_period", newPrice).Error; err != nil {
			return err
		}

		subscription.PricePerPeriod = newPrice
		subscription.PurchasedAddons = append(subscription.PurchasedAddons, addons...)
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.LogInfo("Subscription %d upgraded with addons by user %d", subscription.ID, user.ID)
	utils.Success(c, "Add-ons added successfully", gin.H{"subscription": subscription})
}
