package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digitalkookiehub/hireez/internal/llm"
)

// Question is the slice of an interview question the live session needs.
type Question struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// Session is the live working state of an in-progress interview. It exists
// iff the interview is IN_PROGRESS, is owned exclusively by the conductor,
// and is always written back as one whole value (last writer wins).
type Session struct {
	InterviewID          uint          `json:"interview_id"`
	Questions            []Question    `json:"questions"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	ConversationHistory  []llm.Message `json:"conversation_history"`
	StartedAt            time.Time     `json:"started_at"`
	SequenceCounter      int           `json:"sequence_counter"`
	CandidateResume      string        `json:"candidate_resume,omitempty"`
}

// Store keeps sessions in Redis under a bounded TTL so an abandoned
// interview's session is eventually reclaimed even if end is never called.
// The TTL is renewed on every Put.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func sessionKey(interviewID uint) string {
	return fmt.Sprintf("interview:session:%d", interviewID)
}

// Get returns the session for an interview, or nil when absent. Absence is
// not an error: an expired session means the candidate disappeared.
func (s *Store) Get(ctx context.Context, interviewID uint) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(interviewID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

func (s *Store) Put(ctx context.Context, interviewID uint, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(interviewID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, interviewID uint) error {
	if err := s.rdb.Del(ctx, sessionKey(interviewID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
