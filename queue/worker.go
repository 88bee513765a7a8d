package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// Worker drains the outbox and performs the side effects: receipt and OTP
// emails, push delivery and post-purchase achievement checks. Every failure
// stays inside the worker's error boundary.
type Worker struct {
	queue  *Queue
	db     *gorm.DB
	mailer *utils.Mailer
	push   *utils.PushClient
}

// NewWorker wires a worker to its collaborators.
func NewWorker(queue *Queue, db *gorm.DB, mailer *utils.Mailer, push *utils.PushClient) *Worker {
	return &Worker{queue: queue, db: db, mailer: mailer, push: push}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	utils.LogInfo("Outbox worker started")
	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("Outbox worker stopped")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				utils.LogInfo("Outbox worker stopped")
				return
			}
			utils.LogError("Dequeue failed: %v", err)
			time.Sleep(RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := w.process(ctx, job); err != nil {
			utils.LogError("Job %s (%s) failed: %v", job.ID, job.Type, err)
			if err := w.queue.Retry(ctx, job); err != nil {
				utils.LogError("Retry of job %s failed: %v", job.ID, err)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeEmailReceipt:
		var payload EmailReceiptPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return w.mailer.SendReceipt(payload.To, payload.PackageName, payload.Period, payload.Price)

	case JobTypeEmailOTP:
		var payload EmailOTPPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return w.mailer.SendOTP(payload.To, payload.OTP)

	case JobTypePush:
		var payload PushPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return w.deliverPush(payload)

	case JobTypeAchievementCheck:
		var payload AchievementCheckPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return w.checkAchievements(ctx, payload)
	}

	utils.LogError("Unknown job type %q for job %s, dropping", job.Type, job.ID)
	return nil
}

func (w *Worker) deliverPush(payload PushPayload) error {
	var user models.User
	if err := w.db.First(&user, payload.UserID).Error; err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if user.PushToken == "" {
		utils.LogDebug("User %d has no push token, skipping push", user.ID)
		return nil
	}
	return w.push.Send(utils.PushMessage{
		To:    user.PushToken,
		Title: payload.Title,
		Body:  payload.Body,
	})
}

// checkAchievements compares the pre-purchase tiers against the current ones
// and, on a tier-up, stores an in-app notification and enqueues a push.
func (w *Worker) checkAchievements(ctx context.Context, payload AchievementCheckPayload) error {
	stats, err := utils.GetUserStats(w.db, payload.UserID)
	if err != nil {
		return fmt.Errorf("stats aggregation: %w", err)
	}
	current := utils.EvaluateAchievements(stats)

	for _, a := range utils.Achievements {
		prev := payload.PrevTiers[a.Key]
		now := current[a.Key]
		if now == "" || now == prev {
			continue
		}
		utils.LogInfo("User %d reached %s tier %s", payload.UserID, a.Key, now)

		notification := models.Notification{
			UserID: payload.UserID,
			Type:   models.NotificationTypeAchievement,
			Title:  fmt.Sprintf("Achievement unlocked: %s", a.Title),
			Body:   fmt.Sprintf("You reached the %s tier of %s!", now, a.Title),
		}
		if err := w.db.Create(&notification).Error; err != nil {
			utils.LogError("Failed to store achievement notification for user %d: %v", payload.UserID, err)
		}

		if err := w.queue.EnqueuePush(ctx, PushPayload{
			UserID: payload.UserID,
			Title:  notification.Title,
			Body:   notification.Body,
		}); err != nil {
			utils.LogError("Failed to enqueue achievement push for user %d: %v", payload.UserID, err)
		}
	}
	return nil
}
