package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextmind-agent-be/internal/dto"
	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/internal/repository/contract"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 0, 1}, nil
}

type fakeEmbeddingRepo struct {
	mu      sync.Mutex
	chunks  []*entity.DocumentEmbedding
	deleted []string
}
func (f *fakeEmbeddingRepo) Create(_ context.Context, emb *entity.DocumentEmbedding, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, emb)
	return nil
}

func (f *fakeEmbeddingRepo) DeleteBySource(_ context.Context, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, source)
	kept := f.chunks[:0]
	for _, c := range f.chunks {
		if c.Source != source {
			kept = append(kept, c)
		}
	}
	f.chunks = kept
	return nil
}

func (f *fakeEmbeddingRepo) SearchSimilar(context.Context, []float32, int, string, float64) ([]contract.ScoredChunk, error) {
	return nil, nil
}

func (f *fakeEmbeddingRepo) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.chunks)), nil
}

func (f *fakeEmbeddingRepo) chunkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks)
}

func TestIngestToConsumerFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &fakeEmbeddingRepo{}

	consumer := NewConsumerService(pubSub, "ingest.document", repo, fakeEmbedder{}, 100, 20)
	require.NoError(t, consumer.Consume(ctx))

	ingest := NewIngestService(pubSub, "ingest.document", repo)
	resp, err := ingest.Queue(ctx, &dto.IngestRequest{
		Source:  " isolation.md ",
		Type:    "reference",
		Content: strings.Repeat("isolation des combles perdus. ", 12),
	})
	require.NoError(t, err)
	assert.True(t, resp.Queued)
	assert.Equal(t, "isolation.md", resp.Source)

	// 360 runes at chunk size 100 with overlap 20 gives 5 chunks.
	require.Eventually(t, func() bool {
		return repo.chunkCount() == 5
	}, 5*time.Second, 10*time.Millisecond, "chunks never stored")

	count, err := ingest.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Contains(t, repo.deleted, "isolation.md")
	for _, c := range repo.chunks {
		assert.Equal(t, "isolation.md", c.Source)
		assert.Equal(t, "reference", c.Type)
		assert.Len(t, c.Embedding, 3)
	}
}

// Malformed or incomplete messages are acked and dropped, never retried.
func TestConsumerSkipsInvalidMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &fakeEmbeddingRepo{}

	consumer := NewConsumerService(pubSub, "ingest.document", repo, fakeEmbedder{}, 100, 20)
	require.NoError(t, consumer.Consume(ctx))

	ingest := NewIngestService(pubSub, "ingest.document", repo)
	_, err := ingest.Queue(ctx, &dto.IngestRequest{Source: "empty.md", Content: ""})
	require.NoError(t, err)

	// Follow with a valid message: if the invalid one blocked the stream
	// this would never be stored.
	_, err = ingest.Queue(ctx, &dto.IngestRequest{Source: "ok.md", Content: "contenu court"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return repo.chunkCount() == 1
	}, 5*time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, "ok.md", repo.chunks[0].Source)
}
