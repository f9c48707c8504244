package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nextmind-agent-be/internal/config"
	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/internal/repository/implementation"
	"nextmind-agent-be/pkg/database"
	"nextmind-agent-be/pkg/embedding"
	"nextmind-agent-be/pkg/utils"

	"github.com/google/uuid"
)

// Batch ingestion of the markdown knowledge base into pgvector. Each file
// becomes one source; re-running replaces its chunks.
func main() {
	dir := flag.String("dir", "", "directory of .md/.txt files (default: RAG_DOCS_DIR)")
	docType := flag.String("type", "", "metadata type stored on every chunk, e.g. corps_metier")
	flag.Parse()

	cfg := config.Load()
	if *dir == "" {
		*dir = cfg.Rag.DocsDir
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}
	repo := implementation.NewDocumentEmbeddingRepository(db)

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	} else {
		provider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Error: Failed to read docs dir %q: %v", *dir, err)
	}

	ctx := context.Background()
	files, totalChunks := 0, 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".md" && ext != ".txt" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(*dir, e.Name()))
		if err != nil {
			log.Printf("Warn: Skipping %s: %v", e.Name(), err)
			continue
		}

		source := e.Name()
		chunks := utils.SplitText(string(raw), cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
		log.Printf("Ingesting %s (%d chunks)", source, len(chunks))

		if err := repo.DeleteBySource(ctx, source); err != nil {
			log.Fatalf("Error: Failed to delete stale chunks for %s: %v", source, err)
		}

		for i, chunk := range chunks {
			values, err := provider.Embed(ctx, chunk)
			if err != nil {
				log.Fatalf("Error: Failed to embed chunk %d of %s: %v", i, source, err)
			}
			emb := &entity.DocumentEmbedding{
				Id:        uuid.New(),
				Content:   chunk,
				Type:      *docType,
				Source:    source,
				Embedding: values,
				CreatedAt: time.Now(),
			}
			if err := repo.Create(ctx, emb, i); err != nil {
				log.Fatalf("Error: Failed to store chunk %d of %s: %v", i, source, err)
			}
		}

		files++
		totalChunks += len(chunks)
	}

	log.Printf("✅ Success: Ingested %d files (%d chunks)", files, totalChunks)
}
