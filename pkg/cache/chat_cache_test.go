package cache

import (
	"context"
	"testing"
)

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Combien coûte un Devis ?", "combien coute un devis ?"},
		{"  RÉNOVER   une  salle de bain ", "renover une salle de bain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeQuestion(tt.in); got != tt.want {
			t.Errorf("NormalizeQuestion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// A nil redis client disables the cache without panics: requests just skip it.
func TestChatCacheDisabled(t *testing.T) {
	c := NewChatCache(nil, "", 0)
	ctx := context.Background()

	if c.Enabled() {
		t.Error("nil client must report disabled")
	}
	if got := c.Get(ctx, "question"); got != nil {
		t.Errorf("Get on disabled cache = %v", got)
	}
	if c.Set(ctx, "question", Entry{Reply: "réponse"}, 0) {
		t.Error("Set on disabled cache must return false")
	}
	if c.Delete(ctx, "question") {
		t.Error("Delete on disabled cache must return false")
	}

	var nilCache *ChatCache
	if nilCache.Enabled() {
		t.Error("nil cache must report disabled")
	}
}
