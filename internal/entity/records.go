package entity

import (
	"time"

	"github.com/google/uuid"
)

// Client is a persisted customer record used by the lookup tool and prefill.
type Client struct {
	Id        uuid.UUID
	Name      string
	Address   string
	Contact   string
	CreatedAt time.Time
}

// DevisRecord is a persisted quote/invoice header.
type DevisRecord struct {
	Id        uuid.UUID
	ClientId  *uuid.UUID
	Total     float64
	Status    string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// DevisItem is a historical material line used for materials lookup.
type DevisItem struct {
	Id          uuid.UUID
	Description string
	UnitPrice   float64
	Qty         float64
}

// DocumentEmbedding is one embedded chunk of the RAG corpus.
type DocumentEmbedding struct {
	Id        uuid.UUID
	Content   string
	Type      string // metadata filter, e.g. "corps_metier"
	Source    string // origin document name
	Embedding []float32
	CreatedAt time.Time
}
