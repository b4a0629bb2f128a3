package cartclient

import (
	"context"
	"sync"
)

// State is the session's single state slice.
type State struct {
	Cart    *Cart
	Loading bool
	Error   string
}

// Session mirrors one user's cart between server round trips. Every
// successful operation replaces the cart wholesale with the server's
// response and clears the error; a failure records the error message and
// keeps the previous cart (stale but not corrupted). Loading is true only
// for the duration of an operation's own round trip.
//
// Concurrent operations are not coordinated: each is an independent round
// trip and the state reflects whichever response lands last.
type Session struct {
	client *Client
	userID string

	mu    sync.Mutex
	state State
}

// NewSession returns a session for one user's cart.
func NewSession(client *Client, userID string) *Session {
	return &Session{client: client, userID: userID}
}

// State returns a snapshot of the current state slice. The cart is copied so
// callers cannot mutate the session's view.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state

	if s.state.Cart != nil {
		cart := *s.state.Cart
		cart.Items = append([]CartItem(nil), s.state.Cart.Items...)
		snapshot.Cart = &cart
	}

	return snapshot
}

// Fetch loads the cart from the server.
func (s *Session) Fetch(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	cart, err := s.client.GetCart(ctx, s.userID)
	if err != nil {
		s.setError(err)
		return err
	}

	s.setCart(cart)

	return nil
}

// AddItem adds quantity of a product to the cart.
func (s *Session) AddItem(ctx context.Context, productID string, quantity int) error {
	s.setLoading(true)
	defer s.setLoading(false)

	cart, err := s.client.AddItem(ctx, s.userID, productID, quantity)
	if err != nil {
		s.setError(err)
		return err
	}

	s.setCart(cart)

	return nil
}

// UpdateItem replaces the quantity of an existing cart line.
func (s *Session) UpdateItem(ctx context.Context, productID string, quantity int) error {
	s.setLoading(true)
	defer s.setLoading(false)

	cart, err := s.client.UpdateItem(ctx, s.userID, productID, quantity)
	if err != nil {
		s.setError(err)
		return err
	}

	s.setCart(cart)

	return nil
}

// RemoveItem deletes a product's line from the cart.
func (s *Session) RemoveItem(ctx context.Context, productID string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	cart, err := s.client.RemoveItem(ctx, s.userID, productID)
	if err != nil {
		s.setError(err)
		return err
	}

	s.setCart(cart)

	return nil
}

// Clear empties the cart. On success the session does not re-fetch: it
// synthesizes the empty cart shape locally. Every other operation trusts the
// server's returned body verbatim; clear is the one deliberate exception.
func (s *Session) Clear(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.client.ClearCart(ctx, s.userID); err != nil {
		s.setError(err)
		return err
	}

	s.setCart(&Cart{
		UserID:      s.userID,
		Items:       []CartItem{},
		TotalAmount: 0,
		TotalItems:  0,
	})

	return nil
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Loading = loading
}

func (s *Session) setCart(cart *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Cart = cart
	s.state.Error = ""
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Error = err.Error()
}
