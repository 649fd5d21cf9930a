package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventia/ventia-backend/internal/entity"
)

const testPhone = "5215550001"

func TestAddAccumulates(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
	_, cart := newTestServices(products, newFakeCartRepo(), &fakePublisher{})

	res, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSuccess, res.Status)
	assert.True(t, res.LineQuantity.Equal(decimal.NewFromInt(2)))

	res, err = cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, res.LineQuantity.Equal(decimal.NewFromInt(5)))
	require.Len(t, res.Cart.Lines, 1)
	assert.True(t, res.Cart.GrandTotal.Equal(decimal.NewFromInt(125)))
}

func TestAddFractionalQuantity(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(confirmedProduct(1, "Jamón de Pavo", "SKU-1", 80))
	_, cart := newTestServices(products, newFakeCartRepo(), &fakePublisher{})

	half := decimal.RequireFromString("0.5")
	res, err := cart.Add(context.Background(), 1, testPhone, "jamon", half)
	require.NoError(t, err)
	assert.True(t, res.LineQuantity.Equal(half))
	assert.True(t, res.Cart.GrandTotal.Equal(decimal.NewFromInt(40)))
}

func TestAddRejectsNegative(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
	carts := newFakeCartRepo()
	_, cart := newTestServices(products, carts, &fakePublisher{})

	_, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	view, err := carts.View(context.Background(), 1, testPhone)
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestAddZeroIsNoOp(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
	_, cart := newTestServices(products, newFakeCartRepo(), &fakePublisher{})

	res, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSuccess, res.Status)
	assert.True(t, res.Cart.Empty())
}

func TestAddBlockedByAvailabilityGate(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(entity.Product{
		BusinessID: 1, SKU: "SKU-1", Name: "Tortillas",
		Status: entity.StatusUnconfirmed,
	})
	carts := newFakeCartRepo()
	_, cart := newTestServices(products, carts, &fakePublisher{})

	res, err := cart.Add(context.Background(), 1, testPhone, "tortillas", decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeUnconfirmed, res.Status)
	assert.Nil(t, res.Cart)

	view, err := carts.View(context.Background(), 1, testPhone)
	require.NoError(t, err)
	assert.True(t, view.Empty(), "gate rejection must not create a line")
}

func TestSetQuantity(t *testing.T) {
	setup := func() (*CartService, *fakeCartRepo) {
		products := &fakeProductRepo{}
		products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
		carts := newFakeCartRepo()
		_, cart := newTestServices(products, carts, &fakePublisher{})
		return cart, carts
	}

	t.Run("replaces instead of accumulating", func(t *testing.T) {
		cart, _ := setup()
		_, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(2))
		require.NoError(t, err)

		res, err := cart.SetQuantity(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(7))
		require.NoError(t, err)
		require.Len(t, res.Cart.Lines, 1)
		assert.True(t, res.Cart.Lines[0].Quantity.Equal(decimal.NewFromInt(7)))
	})

	t.Run("zero deletes the line, twice is still success", func(t *testing.T) {
		cart, carts := setup()
		_, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(2))
		require.NoError(t, err)

		res, err := cart.SetQuantity(context.Background(), 1, testPhone, "leche", decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeSuccess, res.Status)

		view, err := carts.View(context.Background(), 1, testPhone)
		require.NoError(t, err)
		assert.True(t, view.Empty())

		// Idempotent: the line is already gone.
		res, err = cart.SetQuantity(context.Background(), 1, testPhone, "leche", decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeSuccess, res.Status)
	})

	t.Run("negative is rejected", func(t *testing.T) {
		cart, _ := setup()
		_, err := cart.SetQuantity(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(-3))
		assert.ErrorIs(t, err, ErrNegativeQuantity)
	})
}

func TestRemove(t *testing.T) {
	t.Run("absent line is success", func(t *testing.T) {
		products := &fakeProductRepo{}
		products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
		_, cart := newTestServices(products, newFakeCartRepo(), &fakePublisher{})

		res, err := cart.Remove(context.Background(), 1, testPhone, "leche")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeSuccess, res.Status)
	})

	t.Run("unresolvable name is not_found", func(t *testing.T) {
		_, cart := newTestServices(&fakeProductRepo{}, newFakeCartRepo(), &fakePublisher{})

		res, err := cart.Remove(context.Background(), 1, testPhone, "algo inexistente")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeNotFound, res.Status)
	})

	t.Run("skips the availability gate and sends no notification", func(t *testing.T) {
		products := &fakeProductRepo{}
		products.add(entity.Product{
			BusinessID: 1, SKU: "SKU-1", Name: "Tortillas",
			Status: entity.StatusUnconfirmed,
		})
		pub := &fakePublisher{}
		_, cart := newTestServices(products, newFakeCartRepo(), pub)

		res, err := cart.Remove(context.Background(), 1, testPhone, "tortillas")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeSuccess, res.Status)
		assert.Empty(t, pub.published())
	})
}

func TestViewEmptyCart(t *testing.T) {
	_, cart := newTestServices(&fakeProductRepo{}, newFakeCartRepo(), &fakePublisher{})

	res, err := cart.View(context.Background(), 1, testPhone)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeEmpty, res.Status)
	assert.True(t, res.Cart.Empty())
}

func TestTenantIsolation(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
	products.add(confirmedProduct(2, "Leche Deslactosada", "SKU-1", 30))
	carts := newFakeCartRepo()
	_, cart := newTestServices(products, carts, &fakePublisher{})

	// The same phone number talks to two businesses; carts never mix.
	_, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(2))
	require.NoError(t, err)
	_, err = cart.Add(context.Background(), 2, testPhone, "leche", decimal.NewFromInt(1))
	require.NoError(t, err)

	res1, err := cart.View(context.Background(), 1, testPhone)
	require.NoError(t, err)
	res2, err := cart.View(context.Background(), 2, testPhone)
	require.NoError(t, err)

	require.Len(t, res1.Cart.Lines, 1)
	require.Len(t, res2.Cart.Lines, 1)
	assert.Equal(t, "Leche Entera", res1.Cart.Lines[0].Name)
	assert.Equal(t, "Leche Deslactosada", res2.Cart.Lines[0].Name)
	assert.True(t, res1.Cart.GrandTotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, res2.Cart.GrandTotal.Equal(decimal.NewFromInt(30)))
}

func TestConcurrentAddsLoseNothing(t *testing.T) {
	products := &fakeProductRepo{}
	products.add(confirmedProduct(1, "Leche Entera", "SKU-1", 25))
	carts := newFakeCartRepo()
	_, cart := newTestServices(products, carts, &fakePublisher{})

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cart.Add(context.Background(), 1, testPhone, "leche", decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	res, err := cart.View(context.Background(), 1, testPhone)
	require.NoError(t, err)
	require.Len(t, res.Cart.Lines, 1)
	assert.True(t, res.Cart.Lines[0].Quantity.Equal(decimal.NewFromInt(workers)))
}
