package controllers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// reportWindow resolves a period query param into a date range
func reportWindow(period string) (time.Time, time.Time, bool) {
	now := time.Now()
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		return start, end, true
	case "week":
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return start, end, true
	case "month":
		start := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		end := now.Add(24 * time.Hour)
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

// salesSummary aggregates subscription sales for the report window
type salesSummary struct {
	TotalSales      int
	TotalRevenue    float64
	TotalAddons     int
	TotalCustomers  int
	TotalDiscounts  float64
	AverageSaleVal  float64
	CancelledInWin  int
}

func summarizeSales(subs []models.Subscription) salesSummary {
	var s salesSummary
	customerSet := make(map[uint]bool)
	for _, sub := range subs {
		s.TotalSales++
		s.TotalRevenue += sub.PricePerPeriod
		s.TotalDiscounts += sub.DiscountAmount
		s.TotalAddons += len(sub.PurchasedAddons)
		customerSet[sub.UserID] = true
		if sub.Status == models.SubscriptionStatusCancelled {
			s.CancelledInWin++
		}
	}
	s.TotalCustomers = len(customerSet)
	if s.TotalSales > 0 {
		s.AverageSaleVal = math.Round((s.TotalRevenue/float64(s.TotalSales))*100) / 100
	}
	s.TotalRevenue = math.Round(s.TotalRevenue*100) / 100
	s.TotalDiscounts = math.Round(s.TotalDiscounts*100) / 100
	return s
}

func fetchReportSubscriptions(start, end time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := config.DB.Where("created_at >= ? AND created_at <= ?", start, end).
		Preload("PurchasedAddons").
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// DownloadSalesReportExcel exports subscription sales for a period as xlsx.
// Query param period: day|week|month.
func DownloadSalesReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportExcel called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(period)
	if !ok {
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	subs, err := fetchReportSubscriptions(startDate, endDate)
	if err != nil {
		utils.LogError("Failed to fetch subscriptions: %v", err)
		utils.InternalServerError(c, "Failed to fetch subscriptions", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d subscriptions for Excel report", len(subs))

	summary := summarizeSales(subs)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	companyRow := sheet.AddRow()
	companyRow.AddCell().SetString("PROPLAYHUB - Sales Report")
	companyRow = sheet.AddRow()
	companyRow.AddCell().SetString("Email: support@proplayhub.gg")
	companyRow = sheet.AddRow()
	companyRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow()

	headers := []string{"Sub ID", "User ID", "Package", "Date", "Add-ons", "Price", "Code", "Discount", "Status"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, sub := range subs {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(sub.ID))
		row.AddCell().SetInt(int(sub.UserID))
		row.AddCell().SetString(sub.PackageName)
		row.AddCell().SetString(sub.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetInt(len(sub.PurchasedAddons))
		row.AddCell().SetFloat(sub.PricePerPeriod)
		row.AddCell().SetString(sub.DiscountCode)
		row.AddCell().SetFloat(sub.DiscountAmount)
		row.AddCell().SetString(sub.Status)
	}

	sheet.AddRow()

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Sales", fmt.Sprintf("%d", summary.TotalSales)},
		{"Total Revenue", fmt.Sprintf("%.2f", summary.TotalRevenue)},
		{"Total Add-ons", fmt.Sprintf("%d", summary.TotalAddons)},
		{"Total Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
		{"Total Discounts", fmt.Sprintf("%.2f", summary.TotalDiscounts)},
		{"Cancelled", fmt.Sprintf("%d", summary.CancelledInWin)},
		{"Avg. Sale Value", fmt.Sprintf("%.2f", summary.AverageSaleVal)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sales_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated Excel report for period %s", period)
}

// DownloadSalesReportPDF exports subscription sales for a period as PDF
func DownloadSalesReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadSalesReportPDF called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(period)
	if !ok {
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	subs, err := fetchReportSubscriptions(startDate, endDate)
	if err != nil {
		utils.LogError("Failed to fetch subscriptions: %v", err)
		utils.InternalServerError(c, "Failed to fetch subscriptions", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d subscriptions for PDF report", len(subs))

	summary := summarizeSales(subs)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "PROPLAYHUB - Sales Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Gaming Subscription Store")
	pdf.Ln(6)
	pdf.Cell(0, 8, "Period: "+strings.ToUpper(period)+" | "+startDate.Format("2006-01-02")+" to "+endDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"Sub ID", "User ID", "Package", "Date", "Add-ons", "Price", "Code", "Discount", "Status"}
	colWidths := []float64{20, 20, 55, 32, 20, 25, 35, 25, 30}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	fill := false
	for _, sub := range subs {
		pdf.SetFillColor(245, 245, 245)
		if fill {
			pdf.SetFillColor(230, 240, 255)
		}
		fill = !fill
		pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("%d", sub.ID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", sub.UserID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[2], 8, sub.PackageName, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[3], 8, sub.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[4], 8, fmt.Sprintf("%d", len(sub.PurchasedAddons)), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[5], 8, fmt.Sprintf("%.2f", sub.PricePerPeriod), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[6], 8, sub.DiscountCode, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[7], 8, fmt.Sprintf("%.2f", sub.DiscountAmount), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[8], 8, sub.Status, "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(70, 10, "Summary", "1", 0, "C", true, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	pdf.SetFillColor(255, 255, 255)
	summaryData := [][]string{
		{"Total Sales", fmt.Sprintf("%d", summary.TotalSales)},
		{"Total Revenue", fmt.Sprintf("%.2f", summary.TotalRevenue)},
		{"Total Add-ons", fmt.Sprintf("%d", summary.TotalAddons)},
		{"Total Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
		{"Total Discounts", fmt.Sprintf("%.2f", summary.TotalDiscounts)},
		{"Cancelled", fmt.Sprintf("%d", summary.CancelledInWin)},
		{"Avg. Sale Value", fmt.Sprintf("%.2f", summary.AverageSaleVal)},
	}
	for _, data := range summaryData {
		pdf.CellFormat(50, 8, data[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, data[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sales_report_%s.pdf", period))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated PDF report for period %s", period)
}
