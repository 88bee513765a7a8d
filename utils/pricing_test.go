package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proplayhub/backend/models"
)

func TestCentsAndAmount(t *testing.T) {
	assert.Equal(t, int64(2999), Cents(29.99))
	assert.Equal(t, int64(0), Cents(0))
	assert.Equal(t, int64(1000), Cents(9.995)) // rounds half away from zero
	assert.Equal(t, 29.99, Amount(2999))
}

func TestApplyPercent(t *testing.T) {
	// 29.99 at 15% -> discount 4.50, final 25.49
	final, discount := ApplyPercent(2999, 15)
	assert.Equal(t, int64(450), discount)
	assert.Equal(t, int64(2549), final)

	// stacking a 10% code on the discounted total: 25.49 -> 22.94
	final, discount = ApplyPercent(2549, 10)
	assert.Equal(t, int64(255), discount)
	assert.Equal(t, int64(2294), final)

	final, discount = ApplyPercent(2999, 0)
	assert.Equal(t, int64(0), discount)
	assert.Equal(t, int64(2999), final)

	final, discount = ApplyPercent(2999, 100)
	assert.Equal(t, int64(2999), discount)
	assert.Equal(t, int64(0), final)
}

func TestApplyPercentIdentity(t *testing.T) {
	// final + discount always reassembles the original amount
	for _, cents := range []int64{1, 99, 2999, 123456} {
		for percent := 0; percent <= 100; percent += 7 {
			final, discount := ApplyPercent(cents, percent)
			assert.Equal(t, cents, final+discount, "cents=%d percent=%d", cents, percent)
			assert.GreaterOrEqual(t, final, int64(0))
		}
	}
}

func TestParseDiscountLabel(t *testing.T) {
	assert.Equal(t, 50, ParseDiscountLabel("50% OFF"))
	assert.Equal(t, 15, ParseDiscountLabel("Save 15 % today"))
	assert.Equal(t, 0, ParseDiscountLabel("HOT DEAL"))
	assert.Equal(t, 0, ParseDiscountLabel(""))
	assert.Equal(t, 100, ParseDiscountLabel("150% OFF")) // clamped
}

func TestPackageDiscountPercent(t *testing.T) {
	pkg := &models.SubscriptionPackage{DiscountPercent: 20, DiscountLabel: "50% OFF"}
	assert.Equal(t, 20, PackageDiscountPercent(pkg), "numeric field wins over label")

	pkg = &models.SubscriptionPackage{DiscountLabel: "50% OFF"}
	assert.Equal(t, 50, PackageDiscountPercent(pkg))

	pkg = &models.SubscriptionPackage{}
	assert.Equal(t, 0, PackageDiscountPercent(pkg))
}

func TestPreviewPackagePrice(t *testing.T) {
	pkg := &models.SubscriptionPackage{BasePrice: 29.99, DiscountPercent: 15}
	preview := PreviewPackagePrice(pkg)
	assert.Equal(t, 29.99, preview.BasePrice)
	assert.Equal(t, 15, preview.DiscountPercent)
	assert.Equal(t, 4.50, preview.DiscountAmount)
	assert.Equal(t, 25.49, preview.FinalPrice)
}

func TestResolveAddons(t *testing.T) {
	pkg := &models.SubscriptionPackage{
		Addons: []models.PackageAddon{
			{Key: "cloud_saves", Name: "Cloud Saves", Price: 2.99},
			{Key: "coaching", Name: "Pro Coaching", Price: 9.99},
		},
	}

	snapshots, total, appErr := ResolveAddons(pkg, []string{"cloud_saves", "coaching"})
	require.Nil(t, appErr)
	require.Len(t, snapshots, 2)
	assert.Equal(t, int64(1298), total)
	assert.Equal(t, "Cloud Saves", snapshots[0].Name)

	// duplicates collapse instead of double-charging
	snapshots, total, appErr = ResolveAddons(pkg, []string{"coaching", "coaching"})
	require.Nil(t, appErr)
	assert.Len(t, snapshots, 1)
	assert.Equal(t, int64(999), total)

	// unknown keys are rejected, never priced from client input
	_, _, appErr = ResolveAddons(pkg, []string{"vip_skin"})
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)

	snapshots, total, appErr = ResolveAddons(pkg, nil)
	require.Nil(t, appErr)
	assert.Empty(t, snapshots)
	assert.Equal(t, int64(0), total)
}
