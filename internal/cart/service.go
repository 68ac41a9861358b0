package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	apperrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/metrics"
)

// Service implements the multi-store cart. All operations are scoped by an
// owner key (the visitor id) and, except for the explicit whole-cart reads,
// by a store slug: mutating or clearing one store never touches lines that
// belong to another store.
type Service interface {
	AddItem(ctx context.Context, ownerKey string, item LineItem) ([]LineItem, error)
	Items(ctx context.Context, ownerKey, storeSlug string) ([]LineItem, error)
	UpdateQuantity(ctx context.Context, ownerKey, storeSlug string, productID int64, quantity int) ([]LineItem, error)
	RemoveItem(ctx context.Context, ownerKey, storeSlug string, productID int64) ([]LineItem, error)
	Clear(ctx context.Context, ownerKey, storeSlug string) error
	Total(ctx context.Context, ownerKey, storeSlug string) (decimal.Decimal, error)
	ItemCount(ctx context.Context, ownerKey, storeSlug string) (int, error)
}

type service struct {
	storage Storage
	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
}

// NewService wires the cart service. The metrics collector may be nil.
func NewService(storage Storage, m *metrics.StorefrontMetrics, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, errors.New("cart: storage is required")
	}
	if logg == nil {
		return nil, errors.New("cart: logger is required")
	}
	return &service{storage: storage, metrics: m, logg: logg}, nil
}

// AddItem appends a line or merges it into an existing one. Merging adds
// quantities only: the price, name and image captured on first add win.
func (s *service) AddItem(ctx context.Context, ownerKey string, item LineItem) ([]LineItem, error) {
	if ownerKey == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "owner key is required")
	}
	if item.StoreSlug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "store slug is required")
	}
	if item.ProductID <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	if item.UnitPrice.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "unit price cannot be negative")
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	return s.mutate(ctx, ownerKey, item.StoreSlug, "add", func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].sameLine(item.StoreSlug, item.ProductID) {
				items[i].Quantity += item.Quantity
				return items
			}
		}
		return append(items, item)
	})
}

// Items returns the lines scoped to storeSlug, or the whole cart when
// storeSlug is empty.
func (s *service) Items(ctx context.Context, ownerKey, storeSlug string) ([]LineItem, error) {
	items, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	return filterByStore(items, storeSlug), nil
}

// UpdateQuantity sets the quantity of one line. A quantity of zero or less
// removes the line; there are no zero-quantity lines in a cart.
func (s *service) UpdateQuantity(ctx context.Context, ownerKey, storeSlug string, productID int64, quantity int) ([]LineItem, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, ownerKey, storeSlug, productID)
	}
	return s.mutate(ctx, ownerKey, storeSlug, "update", func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].sameLine(storeSlug, productID) {
				items[i].Quantity = quantity
				break
			}
		}
		return items
	})
}

// RemoveItem drops a line. Removing a line that does not exist is a no-op.
func (s *service) RemoveItem(ctx context.Context, ownerKey, storeSlug string, productID int64) ([]LineItem, error) {
	return s.mutate(ctx, ownerKey, storeSlug, "remove", func(items []LineItem) []LineItem {
		kept := items[:0]
		for _, line := range items {
			if !line.sameLine(storeSlug, productID) {
				kept = append(kept, line)
			}
		}
		return kept
	})
}

// Clear drops every line scoped to storeSlug, or the whole cart when
// storeSlug is empty. Other stores' lines survive a scoped clear.
func (s *service) Clear(ctx context.Context, ownerKey, storeSlug string) error {
	_, err := s.mutate(ctx, ownerKey, storeSlug, "clear", func(items []LineItem) []LineItem {
		if storeSlug == "" {
			return nil
		}
		kept := items[:0]
		for _, line := range items {
			if line.StoreSlug != storeSlug {
				kept = append(kept, line)
			}
		}
		return kept
	})
	return err
}

// Total sums UnitPrice * Quantity over the scoped lines.
func (s *service) Total(ctx context.Context, ownerKey, storeSlug string) (decimal.Decimal, error) {
	items, err := s.Items(ctx, ownerKey, storeSlug)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.Subtotal())
	}
	return total, nil
}

// ItemCount sums quantities over the scoped lines, not distinct products.
func (s *service) ItemCount(ctx context.Context, ownerKey, storeSlug string) (int, error) {
	items, err := s.Items(ctx, ownerKey, storeSlug)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range items {
		count += line.Quantity
	}
	return count, nil
}

func (s *service) load(ctx context.Context, ownerKey string) ([]LineItem, error) {
	if ownerKey == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "owner key is required")
	}
	items, err := s.storage.Load(ctx, ownerKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load cart")
	}
	return items, nil
}

func (s *service) mutate(ctx context.Context, ownerKey, storeSlug, op string, fn func([]LineItem) []LineItem) ([]LineItem, error) {
	items, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	mutated := fn(items)
	if err := s.storage.Save(ctx, ownerKey, mutated); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to save cart")
	}
	s.metrics.IncCartMutation(op)
	return filterByStore(mutated, storeSlug), nil
}

func filterByStore(items []LineItem, storeSlug string) []LineItem {
	if storeSlug == "" {
		return items
	}
	scoped := make([]LineItem, 0, len(items))
	for _, line := range items {
		if line.StoreSlug == storeSlug {
			scoped = append(scoped, line)
		}
	}
	return scoped
}
