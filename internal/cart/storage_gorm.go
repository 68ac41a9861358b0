package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tiendazo/storefront-backend/pkg/db"
	"github.com/tiendazo/storefront-backend/pkg/db/models"
)

type gormStorage struct {
	client *db.Client
}

// NewGormStorage builds cart storage on the relational client. Each owner
// holds a single cart_snapshots row with the full cart as a JSON payload.
func NewGormStorage(client *db.Client) (Storage, error) {
	if client == nil {
		return nil, errors.New("cart: db client is required")
	}
	return &gormStorage{client: client}, nil
}

func (s *gormStorage) Load(ctx context.Context, ownerKey string) ([]LineItem, error) {
	var snapshot models.CartSnapshot
	err := s.client.DB().WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal(snapshot.Payload, &items); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return items, nil
}

func (s *gormStorage) Save(ctx context.Context, ownerKey string, items []LineItem) error {
	dbc := s.client.DB().WithContext(ctx)
	if len(items) == 0 {
		return dbc.Where("owner_key = ?", ownerKey).Delete(&models.CartSnapshot{}).Error
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	snapshot := models.CartSnapshot{OwnerKey: ownerKey, Payload: payload}
	return dbc.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
}
