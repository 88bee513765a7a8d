package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// InitiatePaymentRequest represents the payment initiation body. It carries
// the same checkout selection the verify step will replay.
type InitiatePaymentRequest struct {
	PackageSlug  string   `json:"package_slug" binding:"required"`
	Addons       []string `json:"addons"`
	DiscountCode string   `json:"discount_code"`
}

// InitiateSubscriptionPayment prices the selection and opens a Razorpay
// order for it. The subscription itself is only created after the gateway
// signature verifies.
func InitiateSubscriptionPayment(c *gin.Context) {
	utils.LogInfo("InitiateSubscriptionPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.PackageSlug))

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	var active int64
	config.DB.Model(&models.Subscription{}).
		Where("user_id = ? AND package_slug = ? AND status = ?", user.ID, pkg.Slug, models.SubscriptionStatusActive).
		Count(&active)
	if active > 0 {
		utils.Conflict(c, "You already have an active subscription for this package", nil)
		return
	}

	totalCents, appErr := priceSelection(&pkg, req.Addons, req.DiscountCode)
	if appErr != nil {
		utils.RespondWithError(c, appErr)
		return
	}

	client := razorpay.NewClient(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))
	orderData := map[string]interface{}{
		"amount":          totalCents,
		"currency":        "INR",
		"receipt":         fmt.Sprintf("sub_rcptid_%d_%s", user.ID, pkg.Slug),
		"payment_capture": 1,
	}
	rzOrder, err := client.Order.Create(orderData, nil)
	if err != nil {
		utils.LogError("Failed to create Razorpay order for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create payment order", err.Error())
		return
	}
	utils.LogInfo("Razorpay order created for user %d, package %s", user.ID, pkg.Slug)

	utils.Success(c, "Payment initiated successfully", gin.H{
		"razorpay_order_id": rzOrder["id"],
		"amount":            utils.Amount(totalCents),
		"currency":          "INR",
		"key":               os.Getenv("RAZORPAY_KEY"),
		"user": gin.H{
			"name":  user.Username,
			"email": user.Email,
		},
	})
}

// VerifyPaymentRequest represents the payment verification body
type VerifyPaymentRequest struct {
	RazorpayOrderID   string   `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string   `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string   `json:"razorpay_signature" binding:"required"`
	PackageSlug       string   `json:"package_slug" binding:"required"`
	Addons            []string `json:"addons"`
	DiscountCode      string   `json:"discount_code"`
}

// VerifySubscriptionPayment checks the gateway signature and, when valid,
// runs the same transactional checkout as the direct flow with the gateway
// order attached.
func VerifySubscriptionPayment(c *gin.Context) {
	utils.LogInfo("VerifySubscriptionPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	keySecret := os.Getenv("RAZORPAY_SECRET")
	data := req.RazorpayOrderID + "|" + req.RazorpayPaymentID
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(data))
	if hex.EncodeToString(h.Sum(nil)) != req.RazorpaySignature {
		utils.LogError("Payment verification failed for user %d", user.ID)
		utils.BadRequest(c, "Payment verification failed", gin.H{"retry": true})
		return
	}
	utils.LogInfo("Payment signature verified for user %d", user.ID)

	slug := strings.ToLower(strings.TrimSpace(req.PackageSlug))
	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	var prevTiers map[string]string
	if stats, err := utils.GetUserStats(config.DB, user.ID); err == nil {
		prevTiers = utils.EvaluateAchievements(stats)
	} else {
		prevTiers = map[string]string{}
	}

	subscription, err := createSubscriptionTx(config.DB, &user, &pkg, req.Addons, req.DiscountCode, req.RazorpayOrderID)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	enqueueCheckoutTasks(&user, subscription, prevTiers)

	utils.LogInfo("Paid checkout complete for user %d: subscription %d", user.ID, subscription.ID)
	utils.Created(c, "Payment verified, subscription created", gin.H{"subscription": subscription})
}

// priceSelection prices a package plus addons plus optional code without
// persisting anything. Shared by payment initiation and verification.
func priceSelection(pkg *models.SubscriptionPackage, addonKeys []string, discountCode string) (int64, *utils.AppError) {
	totalCents, _ := utils.ApplyPercent(utils.Cents(pkg.BasePrice), utils.PackageDiscountPercent(pkg))

	_, addonCents, appErr := utils.ResolveAddons(pkg, addonKeys)
	if appErr != nil {
		return 0, appErr
	}
	totalCents += addonCents

	if discountCode != "" {
		code, appErr := utils.ValidateDiscountCode(config.DB, discountCode, pkg)
		if appErr != nil {
			return 0, appErr
		}
		totalCents, _ = utils.ApplyPercent(totalCents, code.DiscountPercent)
	}
	return totalCents, nil
}
