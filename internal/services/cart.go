package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iamtien-cmd/shopping-cart-platform/internal/cache"
	appErrors "github.com/iamtien-cmd/shopping-cart-platform/internal/errors"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/models"
	repository "github.com/iamtien-cmd/shopping-cart-platform/internal/repositories"
	"github.com/google/uuid"
)

// CartService owns the canonical per-user cart. One cart per user, created
// lazily on the first add; clearing empties the record but never deletes it.
// Every mutation recomputes the derived totals before persisting and returns
// the full cart with each line's product reference resolved.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, req *models.UpdateQuantityRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID string) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       cache.Cache

	// userLocks serializes mutations per user so the read-modify-write on a
	// cart document cannot interleave within this process. Entries are kept
	// for the life of the process. Cross-process writes remain last-write-wins.
	userLocks sync.Map
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, productCache cache.Cache) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       productCache,
	}
}

func (s *cartService) lockUser(userID string) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

// GetCart never fails with "not found": a user without a cart gets a
// synthesized empty cart that is not persisted.
func (s *cartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {

	if userID == "" {
		return nil, appErrors.ValidationError("User ID is required")
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emptyCart(userID), nil
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if err := s.resolveProducts(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, req *models.AddItemRequest) (*models.Cart, error) {

	if err := validateItemRequest(req.UserID, req.ProductID); err != nil {
		return nil, err
	}

	if req.Quantity < 1 {
		return nil, appErrors.ValidationError("Quantity must be at least 1")
	}

	product, err := s.getProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if !product.IsActive {
		return nil, appErrors.NotFoundError("Product not found")
	}

	// Absolute stock check. Quantities already sitting in other carts are not
	// reserved against stock.
	if product.Stock < req.Quantity {
		return nil, appErrors.InsufficientStockError("Insufficient stock")
	}

	unlock := s.lockUser(req.UserID)
	defer unlock()

	created := false

	cart, err := s.cartRepo.GetCartByUserID(ctx, req.UserID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
		}

		cart = emptyCart(req.UserID)
		cart.ID = uuid.New()
		cart.CreatedAt = time.Now()
		created = true
	}

	if i := cart.FindItem(req.ProductID); i >= 0 {
		// The stored line keeps the price from its first add; a later price
		// change on the product is not applied retroactively.
		cart.Items[i].Quantity += req.Quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     product.Price,
		})
	}

	cart.RecomputeTotals()
	cart.UpdatedAt = time.Now()

	if created {
		err = s.cartRepo.CreateCart(ctx, cart)
	} else {
		err = s.cartRepo.UpdateCart(ctx, cart)
	}

	if err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	if err := s.resolveProducts(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// UpdateQuantity replaces a line's quantity. Zero removes the line; a
// positive quantity for a product not in the cart is an error, the operation
// never creates new lines.
func (s *cartService) UpdateQuantity(ctx context.Context, req *models.UpdateQuantityRequest) (*models.Cart, error) {

	if err := validateItemRequest(req.UserID, req.ProductID); err != nil {
		return nil, err
	}

	if req.Quantity < 0 {
		return nil, appErrors.ValidationError("Quantity must be 0 or greater")
	}

	unlock := s.lockUser(req.UserID)
	defer unlock()

	cart, err := s.fetchCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Quantity == 0 {
		cart.RemoveItem(req.ProductID)
	} else {
		i := cart.FindItem(req.ProductID)
		if i < 0 {
			return nil, appErrors.NotFoundError("Item not found in cart")
		}

		cart.Items[i].Quantity = req.Quantity
	}

	cart.RecomputeTotals()
	cart.UpdatedAt = time.Now()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	if err := s.resolveProducts(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveItem deletes the matching line. A product id absent from the cart is
// a no-op, not an error.
func (s *cartService) RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*models.Cart, error) {

	if err := validateItemRequest(userID, productID); err != nil {
		return nil, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.fetchCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(productID)
	cart.RecomputeTotals()
	cart.UpdatedAt = time.Now()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	if err := s.resolveProducts(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// ClearCart empties the lines and zeroes the totals. The cart record itself
// is kept.
func (s *cartService) ClearCart(ctx context.Context, userID string) (*models.Cart, error) {

	if userID == "" {
		return nil, appErrors.ValidationError("User ID is required")
	}

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.fetchCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	cart.RecomputeTotals()
	cart.UpdatedAt = time.Now()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

// fetchCart loads an existing cart for a mutation. Unlike GetCart it does not
// synthesize: mutations other than add require the cart to exist.
func (s *cartService) fetchCart(ctx context.Context, userID string) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	return cart, nil
}

// getProduct is a read-through lookup: cache first, then the repository.
// Cache failures degrade to the repository, they never fail the operation.
func (s *cartService) getProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	key := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("Product cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if found {
		return &cached, nil
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := s.cache.Set(ctx, key, product, 0); err != nil {
		slog.Warn("Product cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return product, nil
}

// resolveProducts attaches the full product record to every line, the
// denormalized join consumers render from. A line whose product has since
// vanished keeps a nil product rather than failing the whole cart.
func (s *cartService) resolveProducts(ctx context.Context, cart *models.Cart) error {

	if len(cart.Items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return appErrors.DatabaseError("Failed to resolve cart products").WithError(err)
	}

	for i := range cart.Items {
		cart.Items[i].Product = products[cart.Items[i].ProductID]
	}

	return nil
}

func validateItemRequest(userID string, productID uuid.UUID) error {
	if userID == "" {
		return appErrors.ValidationError("User ID is required")
	}

	if productID == uuid.Nil {
		return appErrors.ValidationError("Product ID is required")
	}

	return nil
}

func emptyCart(userID string) *models.Cart {
	return &models.Cart{
		UserID: userID,
		Items:  []models.CartItem{},
	}
}
