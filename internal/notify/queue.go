package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"frontdesk/internal/logger"
	"frontdesk/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	QueueKey  = "frontdesk:notifications"
	FailedKey = "frontdesk:notifications:failed"

	maxTries = 3

	maxPollBackoff = 30 * time.Second
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Sender delivers a single job. SMTPSender is the production implementation.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// Queue is a Redis list of pending notifications drained by Start.
type Queue struct {
	redis       *redis.Client
	sender      Sender
	retryDelay  time.Duration
	pollTimeout time.Duration
	// pollBackoff is the first pause after a failed poll. It doubles on
	// each consecutive failure up to maxPollBackoff.
	pollBackoff time.Duration
	backoff     time.Duration
}

func NewQueue(rdb *redis.Client, sender Sender) *Queue {
	return &Queue{
		redis:       rdb,
		sender:      sender,
		retryDelay:  5 * time.Second,
		pollTimeout: 2 * time.Second,
		pollBackoff: time.Second,
	}
}

func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.Created.IsZero() {
		job.Created = time.Now()
	}
	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification: %v", err)
		return err
	}

	if err := q.redis.LPush(ctx, QueueKey, data).Err(); err != nil {
		metrics.RecordNotification(job.Type, "enqueue_failed")
		logger.Errorf("Failed to queue %s notification to %s: %v", job.Type, job.To, err)
		return err
	}

	metrics.RecordNotification(job.Type, "queued")
	logger.Infof("Notification queued: %s to %s", job.Subject, job.To)
	return nil
}

func (q *Queue) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			q.processNext(ctx)
		}
	}
}

// processNext handles at most one job and reports whether one was popped.
func (q *Queue) processNext(ctx context.Context) bool {
	result, err := q.redis.BRPop(ctx, q.pollTimeout, QueueKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
		q.waitAfterPollError(ctx, err)
		return false
	}
	q.backoff = 0
	if err != nil {
		return false
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return true
	}

	job.Tries++
	logger.Debugf("Sending %s notification to %s (attempt %d)", job.Type, job.To, job.Tries)
	if err := q.sender.Send(ctx, job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			q.retry(ctx, job)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			q.saveFailed(ctx, job, err)
		}
		return true
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent to %s", job.To)
	return true
}

func (q *Queue) waitAfterPollError(ctx context.Context, err error) {
	switch {
	case q.backoff == 0:
		q.backoff = q.pollBackoff
	case q.backoff < maxPollBackoff:
		q.backoff = min(2*q.backoff, maxPollBackoff)
	}
	logger.WithError(err).Warn("notification poll failed", "retry_in", q.backoff.String())

	timer := time.NewTimer(q.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (q *Queue) retry(ctx context.Context, job Job) {
	if q.retryDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(q.retryDelay):
		}
	}
	data, err := json.Marshal(job)
	if err != nil {
		metrics.RecordNotification(job.Type, "dropped")
		logger.Errorf("Failed to encode notification to %s for retry: %v", job.To, err)
		return
	}
	if err := q.redis.LPush(context.WithoutCancel(ctx), QueueKey, data).Err(); err != nil {
		metrics.RecordNotification(job.Type, "dropped")
		logger.Errorf("Failed to requeue notification to %s: %v", job.To, err)
		return
	}
	metrics.RecordNotification(job.Type, "retried")
}

func (q *Queue) saveFailed(ctx context.Context, job Job, err error) {
	failed := map[string]any{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, merr := json.Marshal(failed)
	if merr != nil {
		metrics.RecordNotification(job.Type, "dropped")
		logger.Errorf("Failed to encode failed notification to %s: %v", job.To, merr)
		return
	}
	if perr := q.redis.LPush(context.WithoutCancel(ctx), FailedKey, data).Err(); perr != nil {
		metrics.RecordNotification(job.Type, "dropped")
		logger.Errorf("Failed to store failed notification to %s: %v", job.To, perr)
		return
	}
	metrics.RecordNotification(job.Type, "failed")
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (q *Queue) QueueLength(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, QueueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (q *Queue) Close() error {
	return q.redis.Close()
}
