package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cashora/backend/internal/models"
	"github.com/go-redis/redis/v8"
)

// ChatStore keeps support conversations per user.
type ChatStore interface {
	Append(ctx context.Context, userID int, msg models.ChatMessage) error
	History(ctx context.Context, userID int) ([]models.ChatMessage, error)
	Reset(ctx context.Context, userID int) error
}

// MemoryChatStore holds at most maxSize messages per conversation.
type MemoryChatStore struct {
	mu      sync.Mutex
	history map[int][]models.ChatMessage
	maxSize int
}

func NewMemoryChatStore(maxSize int) *MemoryChatStore {
	return &MemoryChatStore{history: make(map[int][]models.ChatMessage), maxSize: maxSize}
}

func (m *MemoryChatStore) Append(ctx context.Context, userID int, msg models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := append(m.history[userID], msg)
	if m.maxSize > 0 && len(h) > m.maxSize {
		h = h[len(h)-m.maxSize:]
	}
	m.history[userID] = h
	return nil
}

func (m *MemoryChatStore) History(ctx context.Context, userID int) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.ChatMessage(nil), m.history[userID]...), nil
}

func (m *MemoryChatStore) Reset(ctx context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.history, userID)
	return nil
}

// RedisChatStore keeps each conversation as a JSON list under
// chat:history:<userID> with a sliding TTL.
type RedisChatStore struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int
}

func NewRedisChatStore(client *redis.Client, ttl time.Duration, maxSize int) *RedisChatStore {
	return &RedisChatStore{client: client, ttl: ttl, maxSize: maxSize}
}

func chatKey(userID int) string {
	return fmt.Sprintf("chat:history:%d", userID)
}

func (r *RedisChatStore) Append(ctx context.Context, userID int, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatKey(userID)
	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	if r.maxSize > 0 {
		if err := r.client.LTrim(ctx, key, int64(-r.maxSize), -1).Err(); err != nil {
			return fmt.Errorf("failed to trim chat history: %w", err)
		}
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("failed to refresh chat ttl: %w", err)
		}
	}
	return nil
}

func (r *RedisChatStore) History(ctx context.Context, userID int) ([]models.ChatMessage, error) {
	raw, err := r.client.LRange(ctx, chatKey(userID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("corrupt chat entry: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (r *RedisChatStore) Reset(ctx context.Context, userID int) error {
	return r.client.Del(ctx, chatKey(userID)).Err()
}
