package queue

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/models"
)

func newWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Subscription{}, &models.Notification{}))
	return db
}

// unreachableQueue returns a queue whose Redis calls fail fast; push enqueue
// failures inside the achievement check are logged, not fatal.
func unreachableQueue() *Queue {
	return NewQueue(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
}

func TestCheckAchievementsTierUp(t *testing.T) {
	db := newWorkerTestDB(t)
	w := NewWorker(unreachableQueue(), db, nil, nil)

	user := models.User{Username: "gamer42", Email: "gamer42@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Subscription{
		UserID: user.ID, PackageSlug: "game-pass", PricePerPeriod: 25.49,
		Status: models.SubscriptionStatusActive,
	}).Error)

	// first purchase: "" -> bronze on loyal_customer
	err := w.checkAchievements(context.Background(), AchievementCheckPayload{
		UserID:    user.ID,
		PrevTiers: map[string]string{},
	})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeAchievement, notifications[0].Type)
	assert.Contains(t, notifications[0].Title, "Loyal Customer")
	assert.Contains(t, notifications[0].Body, "bronze")
}

func TestCheckAchievementsNoChange(t *testing.T) {
	db := newWorkerTestDB(t)
	w := NewWorker(unreachableQueue(), db, nil, nil)

	user := models.User{Username: "gamer42", Email: "gamer42@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Subscription{
		UserID: user.ID, PackageSlug: "game-pass", PricePerPeriod: 25.49,
		Status: models.SubscriptionStatusActive,
	}).Error)

	// tiers already recorded before this purchase: nothing new to announce
	err := w.checkAchievements(context.Background(), AchievementCheckPayload{
		UserID:    user.ID,
		PrevTiers: map[string]string{"loyal_customer": "bronze"},
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCheckAchievementsBigSpender(t *testing.T) {
	db := newWorkerTestDB(t)
	w := NewWorker(unreachableQueue(), db, nil, nil)

	user := models.User{Username: "whale", Email: "whale@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Subscription{
			UserID: user.ID, PackageSlug: "premium", PricePerPeriod: 30,
			Status: models.SubscriptionStatusActive,
		}).Error)
	}

	// 60 spent crosses the 50 bronze threshold
	err := w.checkAchievements(context.Background(), AchievementCheckPayload{
		UserID:    user.ID,
		PrevTiers: map[string]string{"loyal_customer": "bronze"},
	})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Title, "Big Spender")
}
