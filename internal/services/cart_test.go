package service_test

import (
	"context"
	"errors"
	"testing"

	appErrors "github.com/iamtien-cmd/shopping-cart-platform/internal/errors"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/models"
	service "github.com/iamtien-cmd/shopping-cart-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(name string, price float64, stock int) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    price,
		Category: "Electronics",
		Stock:    stock,
		IsActive: true,
	}
}

func setupCartService(products ...*models.Product) (service.CartService, *fakeCartRepo, *fakeProductRepo) {
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	svc := service.NewCartService(cartRepo, productRepo, newStubCache())

	return svc, cartRepo, productRepo
}

// assertTotals checks the derived fields against the line slice, the
// invariant every mutation must restore.
func assertTotals(t *testing.T, cart *models.Cart) {
	t.Helper()

	var amount float64

	var count int

	for _, item := range cart.Items {
		amount += item.Price * float64(item.Quantity)
		count += item.Quantity
	}

	assert.Equal(t, count, cart.TotalItems, "totalItems must match the line quantities")
	assert.InDelta(t, amount, cart.TotalAmount, 1e-9, "totalAmount must match the line sums")
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestGetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown User - Synthesized Empty Cart", func(t *testing.T) {
		svc, cartRepo, _ := setupCartService()

		cart, err := svc.GetCart(ctx, "user-1")

		require.NoError(t, err, "reading a missing cart must not fail")
		require.NotNil(t, cart)
		assert.Equal(t, "user-1", cart.UserID)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalItems)
		assert.Zero(t, cart.TotalAmount)
		assert.Zero(t, cartRepo.createCalls, "the synthesized cart must not be persisted")
	})

	t.Run("Existing Cart - Products Resolved", func(t *testing.T) {
		product := newTestProduct("iPhone 15 Pro", 999.99, 50)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)

		cart, err := svc.GetCart(ctx, "user-1")

		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		require.NotNil(t, cart.Items[0].Product, "line product must be resolved")
		assert.Equal(t, product.Name, cart.Items[0].Product.Name)
		assertTotals(t, cart)
	})

	t.Run("Empty User ID", func(t *testing.T) {
		svc, _, _ := setupCartService()

		_, err := svc.GetCart(ctx, "")

		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
	})

	t.Run("Database Error", func(t *testing.T) {
		svc, cartRepo, _ := setupCartService()
		cartRepo.getErr = errors.New("connection refused")

		_, err := svc.GetCart(ctx, "user-1")

		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("First Add Creates Cart", func(t *testing.T) {
		product := newTestProduct("iPhone 15 Pro", 999.99, 50)
		svc, cartRepo, _ := setupCartService(product)

		cart, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})

		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, product.Price, cart.Items[0].Price)
		assert.Equal(t, 2, cart.TotalItems)
		assert.InDelta(t, 1999.98, cart.TotalAmount, 1e-9)
		assert.Equal(t, 1, cartRepo.createCalls, "first add must create the cart lazily")
		assertTotals(t, cart)
	})

	t.Run("Repeat Adds Accumulate On One Line At First-Add Price", func(t *testing.T) {
		product := newTestProduct("AirPods Pro", 10.0, 100)
		svc, _, productRepo := setupCartService(product)

		for range 3 {
			_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 4})
			require.NoError(t, err)

			// a later price change must not touch the stored line
			productRepo.products[product.ID].Price = 25.0
		}

		cart, err := svc.GetCart(ctx, "user-1")

		require.NoError(t, err)
		require.Len(t, cart.Items, 1, "repeat adds of one product keep a single line")
		assert.Equal(t, 12, cart.Items[0].Quantity)
		assert.Equal(t, 10.0, cart.Items[0].Price, "line price stays at the first-add price")
		assert.Equal(t, 12, cart.TotalItems)
		assert.InDelta(t, 120.0, cart.TotalAmount, 1e-9)
	})

	t.Run("Lines Keep Insertion Order", func(t *testing.T) {
		first := newTestProduct("First", 1.0, 10)
		second := newTestProduct("Second", 2.0, 10)
		third := newTestProduct("Third", 3.0, 10)
		svc, _, _ := setupCartService(first, second, third)

		for _, p := range []*models.Product{first, second, third} {
			_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: p.ID, Quantity: 1})
			require.NoError(t, err)
		}

		// bumping an existing line must not reorder it
		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: first.ID, Quantity: 1})
		require.NoError(t, err)

		cart, err := svc.GetCart(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, cart.Items, 3)
		assert.Equal(t, first.ID, cart.Items[0].ProductID)
		assert.Equal(t, second.ID, cart.Items[1].ProductID)
		assert.Equal(t, third.ID, cart.Items[2].ProductID)
	})

	t.Run("Unknown Product", func(t *testing.T) {
		svc, _, _ := setupCartService()

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: uuid.New(), Quantity: 1})

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Inactive Product", func(t *testing.T) {
		product := newTestProduct("Discontinued", 10.0, 5)
		product.IsActive = false
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 1})

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Insufficient Stock Leaves Cart Unchanged", func(t *testing.T) {
		product := newTestProduct("Scarce", 10.0, 3)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 4})
		assertAppErrorCode(t, err, appErrors.ErrCodeInsufficientStock)

		cart, err := svc.GetCart(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity, "failed add must not change the cart")
		assertTotals(t, cart)
	})

	t.Run("Validation", func(t *testing.T) {
		product := newTestProduct("Any", 1.0, 10)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "", ProductID: product.ID, Quantity: 1})
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)

		_, err = svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: uuid.Nil, Quantity: 1})
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)

		_, err = svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 0})
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
	})

	t.Run("Persistence Failure", func(t *testing.T) {
		product := newTestProduct("Any", 1.0, 10)
		svc, cartRepo, _ := setupCartService(product)
		cartRepo.createErr = errors.New("disk full")

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 1})

		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces Quantity, Price Untouched", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 3})
		require.NoError(t, err)

		cart, err := svc.UpdateQuantity(ctx, &models.UpdateQuantityRequest{UserID: "user-1", ProductID: product.ID, Quantity: 1})

		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].Quantity)
		assert.Equal(t, 10.0, cart.Items[0].Price)
		assert.Equal(t, 1, cart.TotalItems)
		assert.InDelta(t, 10.0, cart.TotalAmount, 1e-9)
		assertTotals(t, cart)
	})

	t.Run("Zero Quantity Removes The Line", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 3})
		require.NoError(t, err)

		cart, err := svc.UpdateQuantity(ctx, &models.UpdateQuantityRequest{UserID: "user-1", ProductID: product.ID, Quantity: 0})

		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalItems)
		assert.Zero(t, cart.TotalAmount)
	})

	t.Run("Update Equals Remove", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		other := newTestProduct("Other", 5.0, 50)

		svcA, _, _ := setupCartService(product, other)
		svcB, _, _ := setupCartService(product, other)

		for _, svc := range []service.CartService{svcA, svcB} {
			_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 3})
			require.NoError(t, err)
			_, err = svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: other.ID, Quantity: 1})
			require.NoError(t, err)
		}

		viaUpdate, err := svcA.UpdateQuantity(ctx, &models.UpdateQuantityRequest{UserID: "user-1", ProductID: product.ID, Quantity: 0})
		require.NoError(t, err)

		viaRemove, err := svcB.RemoveItem(ctx, "user-1", product.ID)
		require.NoError(t, err)

		require.Len(t, viaUpdate.Items, 1)
		require.Len(t, viaRemove.Items, 1)
		assert.Equal(t, viaRemove.Items[0].ProductID, viaUpdate.Items[0].ProductID)
		assert.Equal(t, viaRemove.TotalItems, viaUpdate.TotalItems)
		assert.InDelta(t, viaRemove.TotalAmount, viaUpdate.TotalAmount, 1e-9)
	})

	t.Run("Item Not In Cart Leaves Cart Unchanged", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		absent := newTestProduct("Absent", 5.0, 50)
		svc, _, _ := setupCartService(product, absent)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)

		_, err = svc.UpdateQuantity(ctx, &models.UpdateQuantityRequest{UserID: "user-1", ProductID: absent.ID, Quantity: 5})
		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)

		cart, err := svc.GetCart(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
	})

	t.Run("No Cart", func(t *testing.T) {
		svc, _, _ := setupCartService()

		_, err := svc.UpdateQuantity(ctx, &models.UpdateQuantityRequest{UserID: "user-1", ProductID: uuid.New(), Quantity: 1})

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes Matching Line", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		keep := newTestProduct("Keep", 5.0, 50)
		svc, _, _ := setupCartService(product, keep)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: keep.ID, Quantity: 1})
		require.NoError(t, err)

		cart, err := svc.RemoveItem(ctx, "user-1", product.ID)

		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, keep.ID, cart.Items[0].ProductID)
		assertTotals(t, cart)
	})

	t.Run("Absent Product Is A No-Op", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)

		cart, err := svc.RemoveItem(ctx, "user-1", uuid.New())

		require.NoError(t, err, "removing a product not in the cart is not an error")
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
	})

	t.Run("No Cart", func(t *testing.T) {
		svc, _, _ := setupCartService()

		_, err := svc.RemoveItem(ctx, "user-1", uuid.New())

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Empties Lines And Zeroes Totals", func(t *testing.T) {
		product := newTestProduct("Any", 10.0, 50)
		svc, _, _ := setupCartService(product)

		_, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 3})
		require.NoError(t, err)

		cleared, err := svc.ClearCart(ctx, "user-1")

		require.NoError(t, err)
		assert.Empty(t, cleared.Items)
		assert.Zero(t, cleared.TotalItems)
		assert.Zero(t, cleared.TotalAmount)

		// the record survives: a following read returns the persisted empty cart
		cart, err := svc.GetCart(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, cleared.ID, cart.ID)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalItems)
		assert.Zero(t, cart.TotalAmount)
	})

	t.Run("No Cart", func(t *testing.T) {
		svc, _, _ := setupCartService()

		_, err := svc.ClearCart(ctx, "user-1")

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})
}

// TestCartLifecycle walks one cart through add, accumulate, update, remove.
func TestCartLifecycle(t *testing.T) {
	ctx := context.Background()
	product := newTestProduct("Any", 10.0, 100)
	svc, _, _ := setupCartService(product)

	cart, err := svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.TotalItems)
	assert.InDelta(t, 20.0, cart.TotalAmount, 1e-9)

	cart, err = svc.AddItem(ctx, &models.AddItemRequest{UserID: "user-1", ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, 3, cart.TotalItems)
	assert.InDelta(t, 30.0, cart.TotalAmount, 1e-9)

	cart, err = svc.UpdateQuantity(ctx, &models.UpdateQuantityRequest{UserID: "user-1", ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.TotalItems)
	assert.InDelta(t, 10.0, cart.TotalAmount, 1e-9)

	cart, err = svc.RemoveItem(ctx, "user-1", product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalAmount)
}
