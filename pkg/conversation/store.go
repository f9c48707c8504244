package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one turn in a conversation log.
type Message struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Store keeps an append-only per-conversation message log in a redis list.
// Conversations expire after the configured TTL; a nil client disables the
// store (every call becomes a no-op).
type Store struct {
	rdb       *redis.Client
	keyPrefix string
	ttl       time.Duration
	opTimeout time.Duration
}

func NewStore(rdb *redis.Client, keyPrefix string, ttl time.Duration) *Store {
	if keyPrefix == "" {
		keyPrefix = "nextmind:conversation:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		opTimeout: 3 * time.Second,
	}
}

func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

func (s *Store) key(conversationID string) string {
	return s.keyPrefix + conversationID + ":history"
}

// Append adds one message to the conversation log and refreshes its TTL.
func (s *Store) Append(ctx context.Context, conversationID, role, content string, metadata map[string]interface{}) {
	if !s.Enabled() || conversationID == "" || strings.TrimSpace(content) == "" {
		return
	}
	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339),
		Metadata:  metadata,
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	key := s.key(conversationID)
	if err := s.rdb.RPush(opCtx, key, raw).Err(); err != nil {
		return
	}
	s.rdb.Expire(opCtx, key, s.ttl)
}

// GetRecent returns up to limit messages, oldest first.
func (s *Store) GetRecent(ctx context.Context, conversationID string, limit int) []Message {
	if !s.Enabled() || conversationID == "" || limit <= 0 {
		return nil
	}
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	raws, err := s.rdb.LRange(opCtx, s.key(conversationID), int64(-limit), -1).Result()
	if err != nil {
		return nil
	}

	out := make([]Message, 0, len(raws))
	for _, raw := range raws {
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		if msg.Role == "" || msg.Content == "" {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// Clear drops the whole conversation log.
func (s *Store) Clear(ctx context.Context, conversationID string) {
	if !s.Enabled() || conversationID == "" {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	s.rdb.Del(opCtx, s.key(conversationID))
}
