package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CompletedChannel is the Redis channel downstream evaluators subscribe to.
const CompletedChannel = "interview_completed"

// InterviewCompletedEvent is published when an interview reaches a terminal
// state, so evaluation can start without the conductor waiting on it.
type InterviewCompletedEvent struct {
	InterviewID    uint   `json:"interviewId"`
	Status         string `json:"status"`
	QuestionsAsked int    `json:"questionsAsked"`
	CompletedAt    string `json:"completedAt"`
}

// Publisher is a best-effort submit-only channel: failures are logged, never
// propagated into the conductor's result.
type Publisher interface {
	InterviewCompleted(ctx context.Context, event InterviewCompletedEvent)
}

type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) InterviewCompleted(ctx context.Context, event InterviewCompletedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode completion event", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, CompletedChannel, payload).Err(); err != nil {
		p.logger.Error("failed to publish completion event",
			zap.Uint("interview_id", event.InterviewID), zap.Error(err))
	}
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) InterviewCompleted(context.Context, InterviewCompletedEvent) {}
