package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// DownloadSubscriptionInvoice renders a PDF invoice for one of the caller's
// subscriptions from the persisted price snapshot.
func DownloadSubscriptionInvoice(c *gin.Context) {
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

	var sub models.Subscription
	if err := config.DB.Preload("PurchasedAddons").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&sub).Error; err != nil {
		utils.NotFound(c, "Subscription not found")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "PROPLAYHUB")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Gaming Subscription Store")
	pdf.Ln(5)
	pdf.Cell(0, 7, "Email: support@proplayhub.gg")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Invoice #%d", sub.ID))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Billed to: "+user.Username+" <"+user.Email+">")
	pdf.Ln(5)
	pdf.Cell(0, 7, "Date: "+sub.CreatedAt.Format("2006-01-02"))
	pdf.Ln(5)
	if sub.RazorpayOrderID != "" {
		pdf.Cell(0, 7, "Payment reference: "+sub.RazorpayOrderID)
		pdf.Ln(5)
	}
	pdf.Ln(5)

	colWidths := []float64{110, 40, 40}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(colWidths[0], 9, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colWidths[1], 9, "Period", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colWidths[2], 9, "Price", "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	var addonCents int64
	for _, addon := range sub.PurchasedAddons {
		addonCents += utils.Cents(addon.Price)
	}
	packageLine := utils.Amount(utils.Cents(sub.PricePerPeriod) - addonCents)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(colWidths[0], 8, sub.PackageName, "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], 8, sub.Period, "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", packageLine), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	for _, addon := range sub.PurchasedAddons {
		pdf.CellFormat(colWidths[0], 8, "  + "+addon.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, "included", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", addon.Price), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 11)
	if sub.DiscountCode != "" {
		pdf.CellFormat(150, 8, fmt.Sprintf("Discount (%s, %d%%)", sub.DiscountCode, sub.DiscountPercent), "0", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("-%.2f", sub.DiscountAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 9, "Total per "+sub.Period, "0", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, fmt.Sprintf("%.2f", sub.PricePerPeriod), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 7, "Thank you for playing with ProPlayHub!")

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%d.pdf", sub.ID))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write invoice PDF for subscription %d: %v", sub.ID, err)
		utils.InternalServerError(c, "Failed to generate invoice", err.Error())
		return
	}
	utils.LogInfo("Invoice generated for subscription %d", sub.ID)
}
