package gate

import (
	"context"
	"errors"
	"testing"

	"nextmind-agent-be/pkg/llm"
)

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

func TestShouldUseRAGHeuristics(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		metadata map[string]interface{}
		want     bool
	}{
		{"empty message", "   ", nil, false},
		{"validate mode skips retrieval", "vérifie ce document", map[string]interface{}{"mode": "validate"}, false},
		{"validate_section skips retrieval", "regarde la partie client", map[string]interface{}{"validate_section": "client"}, false},
		{"explicit document reference", "selon le contrat, qui paie ?", nil, true},
		{"technical work question", "comment refaire une toiture ?", nil, true},
		{"price question", "quel est le prix du placo ?", nil, true},
		{"short smalltalk", "quelle heure est-il", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{content: "true"}
			g := NewGate(fake, nil)
			if got := g.ShouldUseRAG(context.Background(), tt.message, tt.metadata); got != tt.want {
				t.Errorf("ShouldUseRAG(%q) = %v, want %v", tt.message, got, tt.want)
			}
			if fake.calls != 0 {
				t.Errorf("heuristic case hit the model %d times", fake.calls)
			}
		})
	}
}

// Short message plus unrelated metadata is the inconclusive case that
// reaches the classifier.
func TestShouldUseRAGClassifier(t *testing.T) {
	metadata := map[string]interface{}{"source": "mobile"}

	tests := []struct {
		name    string
		content string
		err     error
		want    bool
	}{
		{"classifier says true", "TRUE", nil, true},
		{"classifier says false", "false", nil, false},
		{"classifier rambles", "je ne sais pas", nil, false},
		{"classifier failure degrades to no retrieval", "", errors.New("timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{content: tt.content, err: tt.err}
			g := NewGate(fake, nil)
			got := g.ShouldUseRAG(context.Background(), "une question ouverte", metadata)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if fake.calls != 1 {
				t.Errorf("model called %d times, want 1", fake.calls)
			}
		})
	}
}

func TestShouldUseRAGNilModel(t *testing.T) {
	g := NewGate(nil, nil)
	if g.ShouldUseRAG(context.Background(), "une question ouverte", map[string]interface{}{"source": "mobile"}) {
		t.Error("nil model must not enable retrieval")
	}
}
