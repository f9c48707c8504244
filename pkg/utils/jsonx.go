package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
)

// MaybeParseJSON tries to decode an LLM response that should contain a JSON
// object. Fallback order: strict parse, then the brace-delimited substring.
// Markdown code fences are stripped first. Returns nil when nothing decodes.
func MaybeParseJSON(text string) map[string]interface{} {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}
	cleaned = fenceOpenRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		return out
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	out = nil
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &out); err == nil {
		return out
	}
	return nil
}

// JSONString reads a string field from a tolerant-decoded object.
func JSONString(obj map[string]interface{}, key string) string {
	if obj == nil {
		return ""
	}
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

// JSONBool reads a bool field; ok is false when the key is absent or not a bool.
func JSONBool(obj map[string]interface{}, key string) (value bool, ok bool) {
	if obj == nil {
		return false, false
	}
	v, ok := obj[key].(bool)
	return v, ok
}

// CompactJSON marshals v and truncates the result to maxLen runes, appending
// an ellipsis when cut. Used to keep tool results inside the prompt budget.
func CompactJSON(v interface{}, maxLen int) string {
	raw, err := json.Marshal(v)
	var s string
	if err != nil {
		s = strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(err.Error()), "\n", " "))
	} else {
		s = string(raw)
	}
	return Truncate(s, maxLen)
}

// Truncate cuts s to maxLen runes, appending "…" when something was removed.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
