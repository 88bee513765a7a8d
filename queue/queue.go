package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/proplayhub/backend/utils"
)

const (
	// QueueTasks is the Redis list key for outbox tasks.
	QueueTasks = "outbox:tasks"
	// QueueDLQ is the dead-letter queue for tasks that exhausted retries.
	QueueDLQ = "outbox:dlq"
	// MaxRetries is the number of times to retry a task before dead-lettering.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the task kind.
type JobType string

const (
	JobTypeEmailReceipt     JobType = "email_receipt"
	JobTypeEmailOTP         JobType = "email_otp"
	JobTypePush             JobType = "push"
	JobTypeAchievementCheck JobType = "achievement_check"
)

// EmailReceiptPayload is the payload for purchase receipt emails.
type EmailReceiptPayload struct {
	To          string  `json:"to"`
	PackageName string  `json:"package_name"`
	Period      string  `json:"period"`
	Price       float64 `json:"price"`
}

// EmailOTPPayload is the payload for verification OTP emails.
type EmailOTPPayload struct {
	To  string `json:"to"`
	OTP string `json:"otp"`
}

// PushPayload is the payload for push notification delivery.
type PushPayload struct {
	UserID uint   `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// AchievementCheckPayload carries the pre-purchase tiers so the worker can
// detect tier-ups after the checkout response has already been sent.
type AchievementCheckPayload struct {
	UserID    uint              `json:"user_id"`
	PrevTiers map[string]string `json:"prev_tiers"`
}

// Job is the generic task envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue is the Redis-backed outbox. Side effects of a request (email, push,
// achievement checks) ride it so their failures never touch the request's
// control flow.
type Queue struct {
	client *redis.Client
}

// Tasks is the shared outbox, set at startup. A nil Tasks means side effects
// are skipped (tests, or Redis not configured) and only logged.
var Tasks *Queue

// NewQueue creates a Redis-backed outbox queue.
func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) enqueue(ctx context.Context, jobType JobType, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueTasks, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	utils.LogDebug("Enqueued %s job %s", jobType, job.ID)
	return nil
}

// EnqueueEmailReceipt enqueues a purchase receipt email.
func (q *Queue) EnqueueEmailReceipt(ctx context.Context, payload EmailReceiptPayload) error {
	return q.enqueue(ctx, JobTypeEmailReceipt, payload)
}

// EnqueueEmailOTP enqueues a verification OTP email.
func (q *Queue) EnqueueEmailOTP(ctx context.Context, payload EmailOTPPayload) error {
	return q.enqueue(ctx, JobTypeEmailOTP, payload)
}

// EnqueuePush enqueues a push notification.
func (q *Queue) EnqueuePush(ctx context.Context, payload PushPayload) error {
	return q.enqueue(ctx, JobTypePush, payload)
}

// EnqueueAchievementCheck enqueues a post-purchase achievement comparison.
func (q *Queue) EnqueueAchievementCheck(ctx context.Context, payload AchievementCheckPayload) error {
	return q.enqueue(ctx, JobTypeAchievementCheck, payload)
}

// Dequeue blocks until a task is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, 0, QueueTasks).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		utils.LogError("Invalid job payload: %s: %v", result[1], err)
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with an incremented attempt counter, or moves it
// to the DLQ once retries are exhausted.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			utils.LogError("DLQ push failed for job %s: %v", job.ID, err)
			return err
		}
		utils.LogError("Job %s moved to DLQ after %d attempts", job.ID, job.Attempt)
		return nil
	}
	if err := q.client.RPush(ctx, QueueTasks, raw).Err(); err != nil {
		return err
	}
	utils.LogInfo("Job %s retried, attempt %d", job.ID, job.Attempt)
	return nil
}
