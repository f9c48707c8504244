// Package retriever performs vector retrieval over the embedded corpus.
package retriever

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"nextmind-agent-be/internal/repository/contract"
	"nextmind-agent-be/pkg/embedding"
	"nextmind-agent-be/pkg/utils"
)

const (
	DefaultTopK      = 4
	DefaultThreshold = 0.75
	maxSnippetLen    = 900

	searchTimeout = 10 * time.Second
)

// TypeCorpsMetier filters retrieval to the trades reference document.
const TypeCorpsMetier = "corps_metier"

var corpsMetierRe = regexp.MustCompile(`(?i)\b(corps\s+de\s+m[eé]tier|m[eé]tier(s)?\b|artisan\b|quel\s+pro\b|quel\s+professionnel\b|qui\s+appeler|qui\s+fait|r[oô]le\b|missions?\b|tarif\b|taux\s+horaire\b|plombier|plomberie|[eé]lectricien|[eé]lectricit[eé]|ma[cç]on|ma[cç]onnerie|peintre|peinture|carreleur|carrelage|fa[iï]ence|plaquiste|placo|isolation|chauffagiste|chauffage|clim(atisation)?|ventilation|vmc|pac|chaudi[eè]re)\b`)

// IsCorpsMetierQuestion reports whether the message is about BTP trades,
// which routes retrieval to the corps_metier subset first.
func IsCorpsMetierQuestion(message string) bool {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return false
	}
	return corpsMetierRe.MatchString(msg)
}

// Chunk is one retrieved snippet handed to the synthesizer.
type Chunk struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

type Retriever struct {
	embedder  embedding.EmbeddingProvider
	repo      contract.DocumentEmbeddingRepository
	topK      int
	threshold float64
	logger    *log.Logger
}

func NewRetriever(embedder embedding.EmbeddingProvider, repo contract.DocumentEmbeddingRepository, topK int, threshold float64, logger *log.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Retriever{
		embedder:  embedder,
		repo:      repo,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

func (r *Retriever) IsReady() bool {
	return r != nil && r.embedder != nil && r.repo != nil
}

// Retrieve embeds the query and returns up to topK chunks above the
// similarity threshold, optionally filtered by document type. Retrieval
// is best-effort: any failure yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, docType string) []Chunk {
	if !r.IsReady() || strings.TrimSpace(query) == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("[RETRIEVER] embed failed: %v", err)
		}
		return nil
	}

	hits, err := r.repo.SearchSimilar(ctx, vector, r.topK, docType, r.threshold)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("[RETRIEVER] search failed: %v", err)
		}
		return nil
	}

	chunks := make([]Chunk, 0, len(hits))
	for _, hit := range hits {
		content := utils.Truncate(hit.Chunk.Content, maxSnippetLen)
		if content == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Content: content,
			Metadata: map[string]interface{}{
				"type":   hit.Chunk.Type,
				"source": hit.Chunk.Source,
			},
			Score: hit.Score,
		})
	}
	return chunks
}
