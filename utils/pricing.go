package utils

import (
	"fmt"
	"math"
	"regexp"

	"github.com/proplayhub/backend/models"
)

// All checkout arithmetic runs in integer cents and basis points so the
// preview and the persisted charge can never drift apart.

var discountLabelPattern = regexp.MustCompile(`(\d+)\s*%`)

// Cents converts a decimal currency amount to integer cents, rounding half
// away from zero.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Amount converts integer cents back to a decimal currency amount.
func Amount(cents int64) float64 {
	return float64(cents) / 100
}

// ClampPercent forces a percentage into [0,100]. A malformed label like
// "150% OFF" must not produce a negative final price.
func ClampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ParseDiscountLabel extracts the first "<digits>%" match from a display
// label such as "50% OFF". Returns 0 when no percentage is embedded.
func ParseDiscountLabel(label string) int {
	m := discountLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	var percent int
	fmt.Sscanf(m[1], "%d", &percent)
	return ClampPercent(percent)
}

// PackageDiscountPercent returns the package's own discount: the numeric
// field when set, otherwise whatever the display label embeds.
func PackageDiscountPercent(pkg *models.SubscriptionPackage) int {
	if pkg.DiscountPercent > 0 {
		return ClampPercent(pkg.DiscountPercent)
	}
	return ParseDiscountLabel(pkg.DiscountLabel)
}

// ApplyPercent applies a percentage to a cent amount in basis points,
// rounding the discount half away from zero. Returns (final, discount).
func ApplyPercent(cents int64, percent int) (int64, int64) {
	bp := int64(ClampPercent(percent)) * 100
	discount := (cents*bp + 5000) / 10000
	return cents - discount, discount
}

// PricePreview is the computed price breakdown for a package, shared by the
// catalog detail view, the cart summary and checkout.
type PricePreview struct {
	BasePrice       float64 `json:"base_price"`
	DiscountPercent int     `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalPrice      float64 `json:"final_price"`
}

// PreviewPackagePrice computes the package price after its own discount
func PreviewPackagePrice(pkg *models.SubscriptionPackage) PricePreview {
	percent := PackageDiscountPercent(pkg)
	final, discount := ApplyPercent(Cents(pkg.BasePrice), percent)
	return PricePreview{
		BasePrice:       pkg.BasePrice,
		DiscountPercent: percent,
		DiscountAmount:  Amount(discount),
		FinalPrice:      Amount(final),
	}
}

// ResolveAddons resolves requested addon keys against the package's own
// addon catalog. Only catalog-registered addons are chargeable; an unknown
// key is rejected rather than priced from client input. Duplicate keys in
// the request are collapsed. Returns the snapshots and their total in cents.
func ResolveAddons(pkg *models.SubscriptionPackage, keys []string) ([]models.SubscriptionAddon, int64, *AppError) {
	var snapshots []models.SubscriptionAddon
	var total int64
	seen := make(map[string]bool)
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		addon, ok := pkg.FindAddon(key)
		if !ok {
			return nil, 0, BadRequestError(fmt.Sprintf("Add-on %q is not available for this package", key), nil)
		}
		snapshots = append(snapshots, models.SubscriptionAddon{
			Key:   addon.Key,
			Name:  addon.Name,
			Price: addon.Price,
		})
		total += Cents(addon.Price)
	}
	return snapshots, total, nil
}
