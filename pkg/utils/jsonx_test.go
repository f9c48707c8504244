package utils

import "testing"

func TestMaybeParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantKey string
		wantVal string
		wantNil bool
	}{
		{"plain object", `{"intent": "chat"}`, "intent", "chat", false},
		{"fenced json", "```json\n{\"intent\": \"analyze\"}\n```", "intent", "analyze", false},
		{"fenced no language", "```\n{\"intent\": \"validate\"}\n```", "intent", "validate", false},
		{"prose around object", `Voici ma réponse : {"intent": "chat"} merci`, "intent", "chat", false},
		{"empty", "   ", "", "", true},
		{"no object at all", "je ne peux pas répondre", "", "", true},
		{"broken braces", "} intent {", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaybeParseJSON(tt.in)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("want nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("got nil")
			}
			if v := JSONString(got, tt.wantKey); v != tt.wantVal {
				t.Errorf("%s = %q, want %q", tt.wantKey, v, tt.wantVal)
			}
		})
	}
}

func TestJSONString(t *testing.T) {
	obj := map[string]interface{}{"name": "lookup_records", "limit": float64(5)}
	if got := JSONString(obj, "name"); got != "lookup_records" {
		t.Errorf("got %q", got)
	}
	if got := JSONString(obj, "limit"); got != "" {
		t.Errorf("non-string field should read as empty, got %q", got)
	}
	if got := JSONString(nil, "name"); got != "" {
		t.Errorf("nil object should read as empty, got %q", got)
	}
}

func TestJSONBool(t *testing.T) {
	obj := map[string]interface{}{"use_rag": true, "intent": "chat"}
	if v, ok := JSONBool(obj, "use_rag"); !ok || !v {
		t.Errorf("use_rag = %v %v", v, ok)
	}
	if _, ok := JSONBool(obj, "intent"); ok {
		t.Error("string field must not read as bool")
	}
	if _, ok := JSONBool(obj, "missing"); ok {
		t.Error("absent key must not read as bool")
	}
}

func TestCompactJSON(t *testing.T) {
	got := CompactJSON(map[string]interface{}{"a": 1}, 100)
	if got != `{"a":1}` {
		t.Errorf("got %q", got)
	}

	long := CompactJSON(map[string]interface{}{"text": "aaaaaaaaaaaaaaaaaaaa"}, 10)
	if len([]rune(long)) != 11 || long[len(long)-len("…"):] != "…" {
		t.Errorf("truncated form = %q", long)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("court", 10); got != "court" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("électricité", 4); got != "élec…" {
		t.Errorf("rune-safe cut failed: %q", got)
	}
	if got := Truncate("quoi que ce soit", 0); got != "quoi que ce soit" {
		t.Errorf("maxLen 0 disables truncation, got %q", got)
	}
}
