package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"nextmind-agent-be/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Entry is a cached synthesized reply for a normalized question.
type Entry struct {
	Reply string                 `json:"reply"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// NormalizeQuestion builds the cache key: lowercased, accent-stripped,
// whitespace-collapsed question text.
func NormalizeQuestion(text string) string {
	return utils.NormalizeText(text)
}

// ChatCache stores synthesized replies keyed by normalized question text.
// Only stateless requests (no history, no structured payload, no files) are
// cached; a nil redis client disables the cache entirely.
type ChatCache struct {
	rdb        *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	opTimeout  time.Duration
}

func NewChatCache(rdb *redis.Client, keyPrefix string, defaultTTL time.Duration) *ChatCache {
	if keyPrefix == "" {
		keyPrefix = "nextmind:chat:"
	}
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &ChatCache{
		rdb:        rdb,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
		opTimeout:  3 * time.Second,
	}
}

func (c *ChatCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *ChatCache) key(normalizedQuestion string) string {
	return c.keyPrefix + normalizedQuestion
}

// Get returns the cached entry, or nil on miss or any redis/decode failure.
func (c *ChatCache) Get(ctx context.Context, normalizedQuestion string) *Entry {
	if !c.Enabled() || normalizedQuestion == "" {
		return nil
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := c.rdb.Get(opCtx, c.key(normalizedQuestion)).Result()
	if err != nil {
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil
	}
	if strings.TrimSpace(entry.Reply) == "" {
		return nil
	}
	return &entry
}

// Set writes the entry with the given TTL (zero uses the default). Failures
// are swallowed: a dead cache never fails a request.
func (c *ChatCache) Set(ctx context.Context, normalizedQuestion string, entry Entry, ttl time.Duration) bool {
	if !c.Enabled() || normalizedQuestion == "" || entry.Reply == "" {
		return false
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return false
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.rdb.Set(opCtx, c.key(normalizedQuestion), payload, ttl).Err(); err != nil {
		return false
	}
	return true
}

func (c *ChatCache) Delete(ctx context.Context, normalizedQuestion string) bool {
	if !c.Enabled() || normalizedQuestion == "" {
		return false
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.rdb.Del(opCtx, c.key(normalizedQuestion)).Err() == nil
}
