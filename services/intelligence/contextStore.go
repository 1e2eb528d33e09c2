// File: services/intelligence/contextStore.go
package intelligence

import (
	"context"
	"encoding/json"
	"time"

	"vetflow/models"

	"github.com/go-redis/redis/v8"
)

const (
	chatHistoryPrefix = "chat:history:"

	RoleCustomer  = "customer"
	RoleAssistant = "assistant"

	// maxHistoryTurns bounds what is replayed into the prompt.
	maxHistoryTurns = 10
)

// HistoryStore keeps recent chat turns per conversation.
type HistoryStore interface {
	Get(ctx context.Context, conversationID string) ([]models.ChatTurn, error)
	Append(ctx context.Context, conversationID string, turns ...models.ChatTurn) error
}

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, conversationID string) ([]models.ChatTurn, error) {
	key := chatHistoryPrefix + conversationID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []models.ChatTurn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (s *RedisContextStore) Append(ctx context.Context, conversationID string, turns ...models.ChatTurn) error {
	history, err := s.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	history = trimHistory(append(history, turns...))

	b, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, chatHistoryPrefix+conversationID, b, s.ttl).Err()
}

func trimHistory(turns []models.ChatTurn) []models.ChatTurn {
	if len(turns) > maxHistoryTurns {
		return turns[len(turns)-maxHistoryTurns:]
	}
	return turns
}
