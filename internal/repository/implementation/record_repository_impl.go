package implementation

import (
	"context"
	"encoding/json"
	"strings"

	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/internal/model"
	"nextmind-agent-be/internal/repository/contract"

	"gorm.io/gorm"
)

type RecordRepositoryImpl struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) contract.RecordRepository {
	return &RecordRepositoryImpl{db: db}
}

func (r *RecordRepositoryImpl) SearchClients(ctx context.Context, query string, limit int) ([]entity.Client, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []model.Client
	q := r.db.WithContext(ctx).Model(&model.Client{})
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		q = q.Where("name ILIKE ?", "%"+trimmed+"%")
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	clients := make([]entity.Client, len(models))
	for i, m := range models {
		clients[i] = entity.Client{
			Id:        m.Id,
			Name:      m.Name,
			Address:   m.Address,
			Contact:   m.Contact,
			CreatedAt: m.CreatedAt,
		}
	}
	return clients, nil
}

func (r *RecordRepositoryImpl) RecentMaterials(ctx context.Context, limit int) ([]entity.DevisItem, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []model.DevisItem
	// Fetch extra rows so dedup by description still fills the limit.
	err := r.db.WithContext(ctx).
		Model(&model.DevisItem{}).
		Order("created_at DESC").
		Limit(limit * 3).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	items := make([]entity.DevisItem, 0, limit)
	for _, m := range models {
		key := strings.ToLower(strings.TrimSpace(m.Description))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, entity.DevisItem{
			Id:          m.Id,
			Description: m.Description,
			UnitPrice:   m.UnitPrice,
			Qty:         m.Qty,
		})
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (r *RecordRepositoryImpl) RecentHistory(ctx context.Context, limit int) ([]entity.DevisRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []model.Devis
	err := r.db.WithContext(ctx).
		Model(&model.Devis{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]entity.DevisRecord, len(models))
	for i, m := range models {
		var meta map[string]interface{}
		if len(m.Metadata) > 0 {
			_ = json.Unmarshal(m.Metadata, &meta)
		}
		records[i] = entity.DevisRecord{
			Id:        m.Id,
			ClientId:  m.ClientId,
			Total:     m.Total,
			Status:    m.Status,
			Metadata:  meta,
			CreatedAt: m.CreatedAt,
		}
	}
	return records, nil
}
