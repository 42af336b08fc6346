package api

import (
	"sync"

	"marketplace-service/internal/cart"
	"marketplace-service/internal/checkout"
)

// checkoutRegistry holds each authenticated user's in-memory cart/checkout
// state. Carts are ephemeral; nothing here is persisted.
type checkoutRegistry struct {
	mu        sync.Mutex
	sessions  map[string]*checkout.Checkout
	publisher checkout.OrderPublisher
}

func newCheckoutRegistry(publisher checkout.OrderPublisher) *checkoutRegistry {
	return &checkoutRegistry{
		sessions:  make(map[string]*checkout.Checkout),
		publisher: publisher,
	}
}

// get returns the user's checkout, creating one with an empty cart on first
// use. Each user is their own single mutator; the registry lock only guards
// the map itself.
func (r *checkoutRegistry) get(userID string) *checkout.Checkout {
	r.mu.Lock()
	defer r.mu.Unlock()

	co, ok := r.sessions[userID]
	if !ok {
		co = checkout.New(userID, cart.New(), r.publisher)
		r.sessions[userID] = co
	}
	return co
}
