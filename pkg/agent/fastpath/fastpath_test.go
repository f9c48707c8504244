package fastpath

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nextmind-agent-be/pkg/llm"
)

// fakeLLM returns a fixed content, or an error.
type fakeLLM struct {
	content string
	err     error
	calls   int
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (*llm.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Content: f.content}, nil
}

func (f *fakeLLM) Stream(_ context.Context, _ []llm.Message, _ ...llm.Option) (<-chan llm.StreamChunk, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	res, err := f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

func TestTryAnswerHeuristics(t *testing.T) {
	fake := &fakeLLM{content: "should not be called"}
	fp := NewFastPath(fake, nil)

	tests := []struct {
		name    string
		message string
		wantSub string
	}{
		{"empty", "   ", "Je peux t'aider"},
		{"greeting", "Bonjour !", "Bonjour !"},
		{"who", "t'es qui ?", "NEXTMIND"},
		{"thanks", "merci beaucoup", "Avec plaisir"},
		{"references", "vous avez des projets de référence ?", "références"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fp.TryAnswer(context.Background(), tt.message, "", nil, nil)
			if !strings.Contains(got, tt.wantSub) {
				t.Errorf("TryAnswer(%q) = %q, want containing %q", tt.message, got, tt.wantSub)
			}
		})
	}
	if fake.calls != 0 {
		t.Errorf("heuristic replies must not hit the model, calls = %d", fake.calls)
	}
}

func TestTryAnswerRoutesWorkToFullPipeline(t *testing.T) {
	fake := &fakeLLM{content: "nope"}
	fp := NewFastPath(fake, nil)

	tests := []struct {
		name     string
		message  string
		metadata map[string]interface{}
	}{
		{"price question", "combien coûte une fenêtre PVC ?", nil},
		{"diagnostic", "j'ai une fuite sous l'évier", nil},
		{"file hint", "analyse ce PDF", nil},
		{"trade question", "que fait un plaquiste ?", nil},
		{"structured metadata", "valide ça", map[string]interface{}{"line_items": []interface{}{}}},
		{"long free text", "raconte-moi l'histoire de la construction navale au XVIIIe siècle en détail", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fp.TryAnswer(context.Background(), tt.message, "", tt.metadata, nil); got != "" {
				t.Errorf("TryAnswer(%q) = %q, want empty (full pipeline)", tt.message, got)
			}
		})
	}
	if fake.calls != 0 {
		t.Errorf("gated messages must not hit the model, calls = %d", fake.calls)
	}
}

func TestTryAnswerDefinitionViaModel(t *testing.T) {
	fake := &fakeLLM{content: `{"answer": "Le CCTP décrit les travaux attendus lot par lot. Il complète le devis.", "question": null}`}
	fp := NewFastPath(fake, nil)

	got := fp.TryAnswer(context.Background(), "c'est quoi un CCTP", "particulier", nil, nil)

	if fake.calls != 1 {
		t.Fatalf("model calls = %d, want 1", fake.calls)
	}
	if !strings.Contains(got, "décrit les travaux") {
		t.Errorf("TryAnswer = %q", got)
	}
	if strings.Contains(got, "?") {
		t.Errorf("answer part should carry no question mark: %q", got)
	}
}

func TestTryAnswerAppendsFollowupQuestion(t *testing.T) {
	fake := &fakeLLM{content: `{"answer": "Un sigle du bâtiment.", "question": "Tu veux un exemple"}`}
	fp := NewFastPath(fake, nil)

	got := fp.TryAnswer(context.Background(), "ça veut dire quoi BTP", "", nil, nil)

	if !strings.HasSuffix(got, "Tu veux un exemple ?") {
		t.Errorf("follow-up not normalized: %q", got)
	}
}

func TestTryAnswerModelFailureFallsThrough(t *testing.T) {
	fake := &fakeLLM{err: errors.New("rate limited")}
	fp := NewFastPath(fake, nil)

	if got := fp.TryAnswer(context.Background(), "c'est quoi un CCTP", "", nil, nil); got != "" {
		t.Errorf("model failure should route to full pipeline, got %q", got)
	}
}

func TestCompactFreeText(t *testing.T) {
	in := "Ligne 1 ?\nLigne 2.\nBesoin d'autre chose ?\n"
	got := compactFreeText(in)

	if strings.Count(got, "?") != 1 {
		t.Errorf("want exactly one question kept, got %q", got)
	}
	if !strings.HasSuffix(got, "Besoin d'autre chose ?") {
		t.Errorf("last question not kept: %q", got)
	}
}
