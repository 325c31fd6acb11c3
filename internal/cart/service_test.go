package cart

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeyshop/internal/product"
)

func newTestService(t *testing.T) (*Service, *product.MemoryStore) {
	t.Helper()
	catalog := product.NewMemoryStore()
	store := NewMemoryStore()
	svc := NewService(store, store, catalog, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, catalog
}

func seedProduct(t *testing.T, catalog *product.MemoryStore, name string, price float64, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:   name,
		Price:  price,
		Stock:  stock,
		Images: []string{"https://example.com/" + name + ".jpg"},
	}
	require.NoError(t, catalog.Create(context.Background(), p))
	return p
}

func TestViewEmptyCart(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.View(context.Background(), Owner{UserID: 7})
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestAddForUser(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, catalog, "Wireless Headphones", 199.99, 50)

	c, err := svc.Add(ctx, Owner{UserID: 7}, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, p.ID, c.Items[0].ProductID)
	assert.Equal(t, "Wireless Headphones", c.Items[0].Name)
	assert.Equal(t, 199.99, c.Items[0].Price)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, "https://example.com/Wireless Headphones.jpg", c.Items[0].Image)

	// Adding the same product tops up the existing line.
	c, err = svc.Add(ctx, Owner{UserID: 7}, p.ID, 3)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddMintsGuestSession(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, catalog, "Bluetooth Speaker", 89.99, 40)

	c, err := svc.Add(ctx, Owner{}, p.ID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, c.SessionID)

	// The minted session resolves the same cart on the next call.
	again, err := svc.View(ctx, Owner{SessionID: c.SessionID})
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, p.ID, again.Items[0].ProductID)
}

func TestAddInvalidProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), Owner{}, 42, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddInsufficientStock(t *testing.T) {
	svc, catalog := newTestService(t)
	p := seedProduct(t, catalog, "Gaming Console", 499.99, 2)

	_, err := svc.Add(context.Background(), Owner{UserID: 7}, p.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAddZeroQuantityDefaultsToOne(t *testing.T) {
	svc, catalog := newTestService(t)
	p := seedProduct(t, catalog, "Smart Watch Series 5", 299.99, 30)

	c, err := svc.Add(context.Background(), Owner{UserID: 7}, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestRemove(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	p1 := seedProduct(t, catalog, "Smartphone X Pro", 899.99, 25)
	p2 := seedProduct(t, catalog, "Laptop Ultra Slim", 1299.99, 15)

	owner := Owner{UserID: 7}
	_, err := svc.Add(ctx, owner, p1.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, owner, p2.ID, 1)
	require.NoError(t, err)

	c, err := svc.Remove(ctx, owner, p1.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, p2.ID, c.Items[0].ProductID)

	// Removing an absent product leaves the cart as is.
	c, err = svc.Remove(ctx, owner, 9999)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestRemoveNoCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Remove(context.Background(), Owner{UserID: 7}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuantity(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, catalog, "Wireless Headphones", 199.99, 50)

	owner := Owner{UserID: 7}
	_, err := svc.Add(ctx, owner, p.ID, 1)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(ctx, owner, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
}

func TestUpdateQuantityErrors(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, catalog, "Gaming Console", 499.99, 10)
	other := seedProduct(t, catalog, "Bluetooth Speaker", 89.99, 40)

	owner := Owner{UserID: 7}
	_, err := svc.Add(ctx, owner, p.ID, 1)
	require.NoError(t, err)

	t.Run("zero quantity", func(t *testing.T) {
		_, err := svc.UpdateQuantity(ctx, owner, p.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
	t.Run("negative quantity", func(t *testing.T) {
		_, err := svc.UpdateQuantity(ctx, owner, p.ID, -3)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
	t.Run("no cart", func(t *testing.T) {
		_, err := svc.UpdateQuantity(ctx, Owner{UserID: 99}, p.ID, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.UpdateQuantity(ctx, owner, 9999, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
	t.Run("over stock", func(t *testing.T) {
		_, err := svc.UpdateQuantity(ctx, owner, p.ID, 11)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
	t.Run("item not in cart", func(t *testing.T) {
		_, err := svc.UpdateQuantity(ctx, owner, other.ID, 1)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestClearUser(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, catalog, "Smartphone X Pro", 899.99, 25)

	owner := Owner{UserID: 7}
	_, err := svc.Add(ctx, owner, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearUser(ctx, 7))

	c, err := svc.View(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}
