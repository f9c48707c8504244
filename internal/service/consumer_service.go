package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"nextmind-agent-be/internal/dto"
	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/internal/repository/contract"
	"nextmind-agent-be/pkg/embedding"
	"nextmind-agent-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	repo              contract.DocumentEmbeddingRepository
	embeddingProvider embedding.EmbeddingProvider
	chunkSize         int
	chunkOverlap      int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	repo contract.DocumentEmbeddingRepository,
	embeddingProvider embedding.EmbeddingProvider,
	chunkSize int,
	chunkOverlap int,
) IConsumerService {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 200
	}
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		repo:              repo,
		embeddingProvider: embeddingProvider,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.Source == "" || payload.Content == "" {
		log.Printf("[ERROR] Ingest message missing source or content")
		msg.Ack()
		return
	}

	log.Printf("[INFO] Embedding document %q (type=%q, %d chars)", payload.Source, payload.Type, len(payload.Content))

	chunks := utils.SplitText(payload.Content, cs.chunkSize, cs.chunkOverlap)
	log.Printf("[INFO] Document %q split into %d chunks", payload.Source, len(chunks))

	var newEmbeddings []*entity.DocumentEmbedding
	for i, chunk := range chunks {
		values, err := cs.embeddingProvider.Embed(ctx, chunk)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of %q: %v", i, payload.Source, err)
			msg.Nack() // Retriable: provider outage or rate limit
			return
		}
		newEmbeddings = append(newEmbeddings, &entity.DocumentEmbedding{
			Id:        uuid.New(),
			Content:   chunk,
			Type:      payload.Type,
			Source:    payload.Source,
			Embedding: values,
			CreatedAt: time.Now(),
		})
	}

	// Re-ingesting a source replaces its chunks wholesale.
	if err := cs.repo.DeleteBySource(ctx, payload.Source); err != nil {
		log.Printf("[ERROR] Failed to delete stale chunks for %q: %v", payload.Source, err)
		msg.Nack()
		return
	}

	for i, emb := range newEmbeddings {
		if err := cs.repo.Create(ctx, emb, i); err != nil {
			log.Printf("[ERROR] Failed to store chunk %d of %q: %v", i, payload.Source, err)
			msg.Nack()
			return
		}
	}

	log.Printf("[INFO] Stored %d chunks for document %q", len(newEmbeddings), payload.Source)
	msg.Ack()
}
