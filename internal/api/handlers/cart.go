package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iamtien-cmd/shopping-cart-platform/internal/api/middleware"
	appErrors "github.com/iamtien-cmd/shopping-cart-platform/internal/errors"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/metrics"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/models"
	service "github.com/iamtien-cmd/shopping-cart-platform/internal/services"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/utils"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// GetCart godoc
//	@Summary		Get a user's cart
//	@Description	Returns the user's cart, or an empty cart shape if the user has none yet.
//	@Tags			Cart
//	@Produce		json
//	@Param			userId	path		string					true	"User ID"
//	@Success		200		{object}	models.Cart				"The user's cart"
//	@Failure		400		{object}	response.ErrorResponse	"Missing user id"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Router			/cart/{userId} [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		userID := r.PathValue("userId")
		if userID == "" {
			response.Error(w, appErrors.ValidationError("User ID is required"))
			return
		}

		logger = logger.With(slog.String("userID", userID))

		cart, err := h.cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("Failed to fetch cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// AddItem godoc
//	@Summary		Add a product to the cart
//	@Description	Adds the requested quantity of a product, creating the cart on first use. Repeat adds of the same product accumulate on one line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"User, product and quantity"
//	@Success		200		{object}	models.Cart				"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or insufficient stock"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found or inactive"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Router			/cart/add [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			metrics.ObserveCartMutation("add", "error")
			return
		}

		logger = logger.With(slog.String("userID", req.UserID), slog.String("productID", req.ProductID.String()))

		cart, err := h.cartService.AddItem(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to add item to cart", slog.Any("error", err))
			metrics.ObserveCartMutation("add", "error")
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.Int("quantity", req.Quantity))
		metrics.ObserveCartMutation("add", "success")
		response.Success(w, http.StatusOK, cart)
	}
}

// UpdateQuantity godoc
//	@Summary		Update a cart line's quantity
//	@Description	Replaces the quantity of an existing line. Quantity 0 removes the line. Never creates a new line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.UpdateQuantityRequest	true	"User, product and new quantity"
//	@Success		200		{object}	models.Cart						"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse			"Validation error"
//	@Failure		404		{object}	response.ErrorResponse			"Cart or item not found"
//	@Failure		500		{object}	response.ErrorResponse			"Internal server error"
//	@Router			/cart/update [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			metrics.ObserveCartMutation("update", "error")
			return
		}

		logger = logger.With(slog.String("userID", req.UserID), slog.String("productID", req.ProductID.String()))

		cart, err := h.cartService.UpdateQuantity(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to update cart item", slog.Any("error", err))
			metrics.ObserveCartMutation("update", "error")
			response.Error(w, err)
			return
		}

		logger.Info("Cart item updated", slog.Int("quantity", req.Quantity))
		metrics.ObserveCartMutation("update", "success")
		response.Success(w, http.StatusOK, cart)
	}
}

// RemoveItem godoc
//	@Summary		Remove a product from the cart
//	@Description	Deletes the matching line. A product not in the cart is a no-op.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.RemoveItemRequest	true	"User and product"
//	@Success		200		{object}	models.Cart					"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		404		{object}	response.ErrorResponse		"Cart not found"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Router			/cart/remove [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RemoveItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			metrics.ObserveCartMutation("remove", "error")
			return
		}

		logger = logger.With(slog.String("userID", req.UserID), slog.String("productID", req.ProductID.String()))

		cart, err := h.cartService.RemoveItem(r.Context(), req.UserID, req.ProductID)
		if err != nil {
			logger.Error("Failed to remove cart item", slog.Any("error", err))
			metrics.ObserveCartMutation("remove", "error")
			response.Error(w, err)
			return
		}

		logger.Info("Cart item removed")
		metrics.ObserveCartMutation("remove", "success")
		response.Success(w, http.StatusOK, cart)
	}
}

// ClearCart godoc
//	@Summary		Clear a user's cart
//	@Description	Empties the cart's lines and zeroes its totals. The cart record is kept.
//	@Tags			Cart
//	@Produce		json
//	@Param			userId	path		string						true	"User ID"
//	@Success		200		{object}	models.ClearCartResponse	"Confirmation and the emptied cart"
//	@Failure		404		{object}	response.ErrorResponse		"Cart not found"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Router			/cart/clear/{userId} [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		userID := r.PathValue("userId")
		if userID == "" {
			response.Error(w, appErrors.ValidationError("User ID is required"))
			return
		}

		logger = logger.With(slog.String("userID", userID))

		cart, err := h.cartService.ClearCart(r.Context(), userID)
		if err != nil {
			logger.Error("Failed to clear cart", slog.Any("error", err))
			metrics.ObserveCartMutation("clear", "error")
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared")
		metrics.ObserveCartMutation("clear", "success")
		response.Success(w, http.StatusOK, models.ClearCartResponse{
			Message: "Cart cleared successfully",
			Cart:    cart,
		})
	}
}
