package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Client struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string         `gorm:"type:varchar(255);not null;index"`
	Address   string         `gorm:"type:text"`
	Contact   string         `gorm:"type:varchar(255)"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Client) TableName() string {
	return "clients"
}

type Devis struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientId  *uuid.UUID     `gorm:"type:uuid;index"`
	Total     float64        `gorm:"type:numeric(12,2)"`
	Status    string         `gorm:"type:varchar(32);default:'draft'"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Devis) TableName() string {
	return "devis"
}

type DevisItem struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DevisId     uuid.UUID `gorm:"type:uuid;index"`
	Description string    `gorm:"type:text;not null"`
	UnitPrice   float64   `gorm:"type:numeric(12,2)"`
	Qty         float64   `gorm:"type:numeric(12,2)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (DevisItem) TableName() string {
	return "devis_items"
}
