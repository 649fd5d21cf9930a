// Package session keeps per-conversation history so the orchestrator can
// see recent turns. History is advisory context only; cart totals always
// come from the durable store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message roles within a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Store persists conversation history per session ID.
type Store interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	History(ctx context.Context, sessionID string, limit int) ([]Message, error)
}

// RedisStore keeps each conversation in a capped redis list with a TTL, so
// idle conversations expire on their own.
type RedisStore struct {
	rdb        *redis.Client
	ttl        time.Duration
	maxHistory int64
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, maxHistory int) *RedisStore {
	if maxHistory <= 0 {
		maxHistory = 40
	}
	return &RedisStore{rdb: rdb, ttl: ttl, maxHistory: int64(maxHistory)}
}

func sessionKey(sessionID string) string { return "session:history:" + sessionID }

func (s *RedisStore) Append(ctx context.Context, sessionID string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal session message: %w", err)
	}

	key := sessionKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -s.maxHistory, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append session message: %w", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := s.rdb.LRange(ctx, sessionKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

var _ Store = (*RedisStore)(nil)
