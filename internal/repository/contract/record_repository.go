package contract

import (
	"context"

	"nextmind-agent-be/internal/entity"
)

type RecordRepository interface {
	SearchClients(ctx context.Context, query string, limit int) ([]entity.Client, error)
	RecentMaterials(ctx context.Context, limit int) ([]entity.DevisItem, error)
	RecentHistory(ctx context.Context, limit int) ([]entity.DevisRecord, error)
}
