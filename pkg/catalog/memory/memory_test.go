package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcart/pkg/apperr"
	"quickcart/pkg/catalog"
	"quickcart/pkg/id"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New(id.New)

	s, err := repo.CreateStore(ctx, catalog.NewStore{Name: "FreshMart", DeliveryFee: decimal.RequireFromString("3.99")})
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, ok, err := repo.GetStore(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok, err = repo.GetStore(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	milk, err := repo.CreateProduct(ctx, catalog.NewProduct{StoreID: s.ID, Name: "Whole Milk", Price: decimal.RequireFromString("4.49"), Category: "dairy"})
	require.NoError(t, err)
	_, err = repo.CreateProduct(ctx, catalog.NewProduct{StoreID: "other", Name: "Instant Coffee", Price: decimal.RequireFromString("6.99"), Category: "pantry"})
	require.NoError(t, err, "memory backend does not check store references")

	byStore, err := repo.ProductsByStore(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Product{milk}, byStore)

	none, err := repo.ProductsByStore(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	found, err := repo.SearchProducts(ctx, "MILK")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Product{milk}, found)

	milk.Price = decimal.RequireFromString("5.00")
	replaced, ok, err := repo.ReplaceProduct(ctx, milk)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5", replaced.Price.String())

	_, ok, err = repo.ReplaceProduct(ctx, catalog.Product{ID: "ghost", StoreID: s.ID, Name: "Ghost"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.CreateProduct(ctx, catalog.NewProduct{StoreID: s.ID, Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListingsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := New(id.New)
	var want []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s, err := repo.CreateStore(ctx, catalog.NewStore{Name: name})
		require.NoError(t, err)
		want = append(want, s.ID)
	}

	for i := 0; i < 3; i++ {
		stores, err := repo.ListStores(ctx)
		require.NoError(t, err)
		var got []string
		for _, s := range stores {
			got = append(got, s.ID)
		}
		assert.Equal(t, want, got)
	}
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := New(id.New)
	stores := []catalog.Store{{ID: "store-1", Name: "FreshMart", IsOpen: true}}
	products := []catalog.Product{{ID: "product-1", StoreID: "store-1", Name: "Bananas", Price: decimal.RequireFromString("2.99")}}

	seeded, err := repo.Seed(ctx, stores, products)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = repo.Seed(ctx, stores, products)
	require.NoError(t, err)
	assert.False(t, seeded)

	all, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
