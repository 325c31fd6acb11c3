//go:build integration

package product

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeyshop/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	pg := containers.NewPostgresContainer(t)
	schema, err := os.ReadFile("../../migrations/0001_init.sql")
	require.NoError(t, err)
	pg.Apply(t, string(schema))

	return NewPostgresStore(pg.DB)
}

func TestPostgresStoreCRUD(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	p := &Product{
		Name:        "Wireless Headphones",
		Description: "Premium wireless headphones with noise cancellation",
		Price:       199.99,
		Category:    "Electronics",
		Brand:       "SoundMax",
		Stock:       50,
		Images:      []string{"https://example.com/headphones.jpg"},
		Specifications: map[string]string{
			"Battery Life": "30 hours",
			"Connectivity": "Bluetooth 5.0",
		},
		RatingAverage: 4.2,
		RatingCount:   89,
		IsFeatured:    true,
	}
	require.NoError(t, store.Create(ctx, p))
	require.NotZero(t, p.ID)

	found, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Headphones", found.Name)
	assert.Equal(t, 199.99, found.Price)
	assert.Equal(t, []string{"https://example.com/headphones.jpg"}, found.Images)
	assert.Equal(t, "30 hours", found.Specifications["Battery Life"])
	assert.True(t, found.IsFeatured)

	found.Stock = 45
	found.Price = 179.99
	require.NoError(t, store.Update(ctx, found))
	updated, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, updated.Stock)
	assert.Equal(t, 179.99, updated.Price)

	require.NoError(t, store.Delete(ctx, p.ID))
	_, err = store.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreNotFound(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	_, err := store.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Update(ctx, &Product{ID: 9999, Name: "X"}), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, 9999), ErrNotFound)
}

func TestPostgresStoreListKeywordAndPaging(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	names := []string{
		"Smartphone X Pro", "Wireless Headphones", "Laptop Ultra Slim",
		"Smart Watch Series 5", "Gaming Console", "Bluetooth Speaker",
	}
	for _, name := range names {
		require.NoError(t, store.Create(ctx, &Product{Name: name, Stock: 10}))
	}

	all, total, err := store.List(ctx, ListFilter{Page: 1, PageSize: 4})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 6, total)

	rest, _, err := store.List(ctx, ListFilter{Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	// Keyword matching is case-insensitive on the name.
	smart, total, err := store.List(ctx, ListFilter{Keyword: "smart", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range smart {
		assert.Contains(t, []string{"Smartphone X Pro", "Smart Watch Series 5"}, p.Name)
	}
}
