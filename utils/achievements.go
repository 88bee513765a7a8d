package utils

import (
	"time"

	"github.com/proplayhub/backend/models"
	"gorm.io/gorm"
)

// UserStats are the purchase counters achievements are graded on
type UserStats struct {
	TotalPackages  int64    `json:"total_packages"`
	TotalSpent     float64  `json:"total_spent"`
	DaysOnApp      int      `json:"days_on_app"`
	PurchasedSlugs []string `json:"purchased_slugs"`
}

// AchievementTier is one threshold step of an achievement
type AchievementTier struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
}

// Achievement is a static achievement definition with ascending tiers
type Achievement struct {
	Key   string            `json:"key"`
	Title string            `json:"title"`
	Tiers []AchievementTier `json:"tiers"`
}

// Achievements holds the static tier definitions. The highest tier whose
// threshold is <= the current value wins.
var Achievements = []Achievement{
	{
		Key:   "loyal_customer",
		Title: "Loyal Customer",
		Tiers: []AchievementTier{
			{Name: "bronze", Threshold: 1},
			{Name: "silver", Threshold: 5},
			{Name: "gold", Threshold: 10},
		},
	},
	{
		Key:   "big_spender",
		Title: "Big Spender",
		Tiers: []AchievementTier{
			{Name: "bronze", Threshold: 50},
			{Name: "silver", Threshold: 250},
			{Name: "gold", Threshold: 1000},
		},
	},
}

// GetUserStats computes purchase counters in a single aggregation over the
// subscriptions table joined with the user's signup date.
func GetUserStats(db *gorm.DB, userID uint) (*UserStats, error) {
	var row struct {
		TotalPackages int64
		TotalSpent    float64
	}
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Select("COUNT(*) AS total_packages, COALESCE(SUM(price_per_period), 0) AS total_spent").
		Scan(&row).Error; err != nil {
		return nil, err
	}

	var slugs []string
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("package_slug", &slugs).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	return &UserStats{
		TotalPackages:  row.TotalPackages,
		TotalSpent:     row.TotalSpent,
		DaysOnApp:      int(time.Since(user.CreatedAt).Hours() / 24),
		PurchasedSlugs: slugs,
	}, nil
}

// TierFor returns the highest tier name whose threshold is <= value, or ""
func TierFor(a Achievement, value float64) string {
	tier := ""
	for _, t := range a.Tiers {
		if value >= t.Threshold {
			tier = t.Name
		}
	}
	return tier
}

// AchievementValue maps an achievement to the stat it is graded on
func AchievementValue(a Achievement, stats *UserStats) float64 {
	switch a.Key {
	case "loyal_customer":
		return float64(stats.TotalPackages)
	case "big_spender":
		return stats.TotalSpent
	}
	return 0
}

// EvaluateAchievements grades every achievement against the stats
func EvaluateAchievements(stats *UserStats) map[string]string {
	tiers := make(map[string]string, len(Achievements))
	for _, a := range Achievements {
		tiers[a.Key] = TierFor(a, AchievementValue(a, stats))
	}
	return tiers
}
