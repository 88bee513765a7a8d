package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// GetMyAchievements returns every achievement with the caller's current tier
// and raw progress numbers, computed live from purchase history.
func GetMyAchievements(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	stats, err := utils.GetUserStats(config.DB, user.ID)
	if err != nil {
		utils.LogError("Failed to compute stats for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch achievements", nil)
		return
	}

	tiers := utils.EvaluateAchievements(stats)
	achievements := make([]gin.H, 0, len(utils.Achievements))
	for _, a := range utils.Achievements {
		achievements = append(achievements, gin.H{
			"key":      a.Key,
			"title":    a.Title,
			"tier":     tiers[a.Key],
			"progress": utils.AchievementValue(a, stats),
			"tiers":    a.Tiers,
		})
	}

	utils.Success(c, "Achievements retrieved successfully", gin.H{
		"achievements": achievements,
		"stats":        stats,
	})
}
