package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/user"
)

func testCart() cart.Cart {
	return cart.New(
		user.User{ID: 7, Name: "Ana", Email: "ana@example.com", Tier: user.TierPremium},
		cart.Item{Name: "Notebook", Price: decimal.NewFromInt(150)},
		cart.Item{Name: "Mouse", Price: decimal.NewFromInt(50)},
	)
}

func TestOrderRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	total := decimal.NewFromInt(180)

	saved, err := repo.Save(ctx, testCart(), total)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, order.StatusProcessed, saved.Status)
	assert.True(t, total.Equal(saved.TotalFinal))
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "ana@example.com", got.Cart.User.Email)
	assert.Len(t, got.Cart.Items, 2)
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	_, err := NewOrderRepository().Get(context.Background(), "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepository_StoredCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	saved, err := repo.Save(ctx, testCart(), decimal.NewFromInt(180))
	require.NoError(t, err)

	saved.Cart.Items[0].Name = "tampered"

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", got.Cart.Items[0].Name)
}

func TestOrderRepository_ConcurrentSaves(t *testing.T) {
	repo := NewOrderRepository()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Save(context.Background(), testCart(), decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, repo.Len())
}
