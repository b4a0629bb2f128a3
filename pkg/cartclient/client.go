package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client performs the HTTP round trips against the cart API. It is safe for
// concurrent use. Every failure is terminal for that one call; there are no
// retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a Client for the API mounted at baseURL
// (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type itemPayload struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type updatePayload struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *envelopeError  `json:"error,omitempty"`
}

type envelopeError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// GetCart fetches the user's cart. A user without a cart gets the empty cart
// shape, never an error.
func (c *Client) GetCart(ctx context.Context, userID string) (*Cart, error) {
	var cart Cart

	if err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(userID), nil, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// AddItem adds quantity of a product to the user's cart and returns the
// updated cart.
func (c *Client) AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	var cart Cart

	payload := updatePayload{UserID: userID, ProductID: productID, Quantity: quantity}

	if err := c.do(ctx, http.MethodPost, "/cart/add", payload, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// UpdateItem replaces the quantity on an existing cart line. Quantity 0
// removes the line.
func (c *Client) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	var cart Cart

	payload := updatePayload{UserID: userID, ProductID: productID, Quantity: quantity}

	if err := c.do(ctx, http.MethodPut, "/cart/update", payload, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// RemoveItem deletes a product's line from the cart and returns the updated
// cart.
func (c *Client) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	var cart Cart

	payload := itemPayload{UserID: userID, ProductID: productID}

	if err := c.do(ctx, http.MethodDelete, "/cart/remove", payload, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// ClearCart empties the user's cart. The response body is not surfaced;
// callers that need the resulting state synthesize or re-fetch it.
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear/"+url.PathEscape(userID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {

	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}

		return fmt.Errorf("decoding response body: %w", err)
	}

	// The error kind is not preserved past this point; the caller gets the
	// server's display message only.
	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != nil && env.Error.Message != "" {
			return errors.New(env.Error.Message)
		}

		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if dest == nil {
		return nil
	}

	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}

	return nil
}
