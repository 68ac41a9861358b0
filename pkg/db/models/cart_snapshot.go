package models

import (
	"time"
)

// CartSnapshot persists one visitor's full cart (all store partitions) as a
// single JSON payload. The cart service owns the line-item semantics; this
// row is only the durable mirror written after every mutation.
type CartSnapshot struct {
	OwnerKey  string    `gorm:"column:owner_key;primaryKey"`
	Payload   []byte    `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table aligned with the goose migration.
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
