package service

import (
	"context"
	"encoding/json"
	"strings"

	"nextmind-agent-be/internal/dto"
	"nextmind-agent-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IIngestService interface {
	Queue(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
	Count(ctx context.Context) (int64, error)
}

type ingestService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	repo      contract.DocumentEmbeddingRepository
}

func NewIngestService(pubSub *gochannel.GoChannel, topicName string, repo contract.DocumentEmbeddingRepository) IIngestService {
	return &ingestService{
		pubSub:    pubSub,
		topicName: topicName,
		repo:      repo,
	}
}

func (s *ingestService) Queue(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	payload := dto.PublishEmbedDocumentMessage{
		Source:  strings.TrimSpace(req.Source),
		Type:    strings.TrimSpace(req.Type),
		Content: req.Content,
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), msgJson)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		return nil, err
	}

	return &dto.IngestResponse{Source: payload.Source, Queued: true}, nil
}

func (s *ingestService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
