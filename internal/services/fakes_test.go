package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iamtien-cmd/shopping-cart-platform/internal/models"
	"github.com/google/uuid"
)

// fakeCartRepo is an in-memory stand-in for the carts table. It stores deep
// copies with resolved products stripped, the same shape the real repository
// persists, so tests catch accidental reliance on in-memory aliasing.
type fakeCartRepo struct {
	carts map[string]*models.Cart

	getErr    error
	createErr error
	updateErr error

	createCalls int
	updateCalls int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*models.Cart)}
}

func (f *fakeCartRepo) CreateCart(_ context.Context, cart *models.Cart) error {
	f.createCalls++

	if f.createErr != nil {
		return f.createErr
	}

	cart.CreatedAt = time.Now()
	cart.UpdatedAt = time.Now()
	f.carts[cart.UserID] = copyCart(cart)

	return nil
}

func (f *fakeCartRepo) GetCartByUserID(_ context.Context, userID string) (*models.Cart, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	cart, ok := f.carts[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}

	return copyCart(cart), nil
}

func (f *fakeCartRepo) UpdateCart(_ context.Context, cart *models.Cart) error {
	f.updateCalls++

	if f.updateErr != nil {
		return f.updateErr
	}

	stored, ok := f.carts[cart.UserID]
	if !ok || stored.ID != cart.ID {
		return sql.ErrNoRows
	}

	f.carts[cart.UserID] = copyCart(cart)

	return nil
}

func copyCart(cart *models.Cart) *models.Cart {
	data, err := json.Marshal(cart)
	if err != nil {
		panic(err)
	}

	var clone models.Cart
	if err := json.Unmarshal(data, &clone); err != nil {
		panic(err)
	}

	for i := range clone.Items {
		clone.Items[i].Product = nil
	}

	return &clone
}

// fakeProductRepo serves a fixed catalog.
type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product

	err error
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}

	for _, p := range products {
		repo.products[p.ID] = p
	}

	return repo
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, product *models.Product) error {
	if f.err != nil {
		return f.err
	}

	f.products[product.ID] = product

	return nil
}

func (f *fakeProductRepo) GetProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}

	product, ok := f.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	return product, nil
}

func (f *fakeProductRepo) GetProductsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}

	found := make(map[uuid.UUID]*models.Product, len(ids))

	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			found[id] = product
		}
	}

	return found, nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, product *models.Product) error {
	if f.err != nil {
		return f.err
	}

	if _, ok := f.products[product.ID]; !ok {
		return sql.ErrNoRows
	}

	f.products[product.ID] = product

	return nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, page, size int) ([]*models.Product, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}

	active := make([]*models.Product, 0, len(f.products))

	for _, p := range f.products {
		if p.IsActive {
			active = append(active, p)
		}
	}

	return active, len(active), nil
}

// stubCache is an in-memory cache fake. TTLs are ignored.
type stubCache struct {
	stored map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{stored: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string, value any) (bool, error) {
	data, ok := c.stored[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}

	return true, nil
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.stored[key] = data

	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	delete(c.stored, key)
	return nil
}

func (c *stubCache) Close() error { return nil }
