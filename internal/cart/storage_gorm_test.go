package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendazo/storefront-backend/pkg/db"
	"github.com/tiendazo/storefront-backend/pkg/db/models"
)

func newGormStorage(t *testing.T) Storage {
	t.Helper()
	client, err := db.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&models.CartSnapshot{}))

	storage, err := NewGormStorage(client)
	require.NoError(t, err)
	return storage
}

func TestGormStorageRoundTrip(t *testing.T) {
	storage := newGormStorage(t)
	ctx := context.Background()

	loaded, err := storage.Load(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)

	items := []LineItem{
		line("acme", 10, "10.00", 2),
		line("globex", 20, "4.50", 1),
	}
	require.NoError(t, storage.Save(ctx, "visitor-1", items))

	loaded, err = storage.Load(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "acme", loaded[0].StoreSlug)
	assert.True(t, loaded[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestGormStorageUpsertsExistingOwner(t *testing.T) {
	storage := newGormStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "visitor-1", []LineItem{line("acme", 10, "10.00", 2)}))
	require.NoError(t, storage.Save(ctx, "visitor-1", []LineItem{line("acme", 10, "10.00", 5)}))

	loaded, err := storage.Load(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 5, loaded[0].Quantity)
}

func TestGormStorageEmptySaveDeletesRow(t *testing.T) {
	storage := newGormStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "visitor-1", []LineItem{line("acme", 10, "10.00", 2)}))
	require.NoError(t, storage.Save(ctx, "visitor-1", nil))

	loaded, err := storage.Load(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestGormStorageIsolatesOwners(t *testing.T) {
	storage := newGormStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "visitor-1", []LineItem{line("acme", 10, "10.00", 2)}))

	loaded, err := storage.Load(ctx, "visitor-2")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
