package memory

import (
	"time"

	"nextmind-agent-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// PayloadRepository keeps the last structured document payload seen per
// conversation, so follow-up turns can reuse it without re-extraction.
type PayloadRepository struct {
	cache *cache.Cache
}

func NewPayloadRepository() *PayloadRepository {
	// Payloads expire after 1 hour; expired entries are purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &PayloadRepository{
		cache: c,
	}
}

func (r *PayloadRepository) Save(conversationId string, payload *entity.StructuredPayload) {
	if conversationId == "" || payload == nil {
		return
	}
	r.cache.Set(conversationId, payload, cache.DefaultExpiration)
}

func (r *PayloadRepository) Get(conversationId string) (*entity.StructuredPayload, bool) {
	if x, found := r.cache.Get(conversationId); found {
		return x.(*entity.StructuredPayload), true
	}
	return nil, false
}

func (r *PayloadRepository) Delete(conversationId string) {
	r.cache.Delete(conversationId)
}
