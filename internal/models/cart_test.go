package models_test

import (
	"testing"

	"github.com/iamtien-cmd/shopping-cart-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCartRecomputeTotals(t *testing.T) {
	t.Run("Sums Quantity Times Snapshot Price", func(t *testing.T) {
		cart := &models.Cart{
			Items: []models.CartItem{
				{ProductID: uuid.New(), Quantity: 2, Price: 10.0},
				{ProductID: uuid.New(), Quantity: 3, Price: 5.5},
			},
		}

		cart.RecomputeTotals()

		assert.InDelta(t, 36.5, cart.TotalAmount, 1e-9)
		assert.Equal(t, 5, cart.TotalItems)
	})

	t.Run("Empty Cart Zeroes Totals", func(t *testing.T) {
		cart := &models.Cart{
			Items:       []models.CartItem{},
			TotalAmount: 99.0,
			TotalItems:  9,
		}

		cart.RecomputeTotals()

		assert.Zero(t, cart.TotalAmount)
		assert.Zero(t, cart.TotalItems)
	})
}

func TestCartFindItem(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	cart := &models.Cart{
		Items: []models.CartItem{
			{ProductID: first, Quantity: 1, Price: 10.0},
			{ProductID: second, Quantity: 2, Price: 20.0},
		},
	}

	assert.Equal(t, 0, cart.FindItem(first))
	assert.Equal(t, 1, cart.FindItem(second))
	assert.Equal(t, -1, cart.FindItem(uuid.New()))
}

func TestCartRemoveItem(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	t.Run("Removes Line And Preserves Order", func(t *testing.T) {
		cart := &models.Cart{
			Items: []models.CartItem{
				{ProductID: first, Quantity: 1, Price: 1.0},
				{ProductID: second, Quantity: 2, Price: 2.0},
				{ProductID: third, Quantity: 3, Price: 3.0},
			},
		}

		cart.RemoveItem(second)

		assert.Len(t, cart.Items, 2)
		assert.Equal(t, first, cart.Items[0].ProductID)
		assert.Equal(t, third, cart.Items[1].ProductID)
	})

	t.Run("Absent Product Is A No-Op", func(t *testing.T) {
		cart := &models.Cart{
			Items: []models.CartItem{
				{ProductID: first, Quantity: 1, Price: 1.0},
			},
		}

		cart.RemoveItem(uuid.New())

		assert.Len(t, cart.Items, 1)
	})
}
