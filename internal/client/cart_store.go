package client

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voltmart/storefront/internal/client/credstore"
	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/eventbus"
)

// User-visible notification texts.
const (
	msgSignInRequired = "sign in to add items to your cart"
	msgCartLoadFailed = "couldn't load your cart, please try again"
	msgCartOpFailed   = "couldn't update your cart, please try again"
)

// CartStore keeps a numeric cart summary consistent with the remote cart
// resource, gated by session validity: without a token the summary is forced
// to empty without touching the network. Mutations never return an error;
// they classify failures, notify where appropriate, and report success as a
// boolean. Overlapping calls are not serialized: the last response to
// complete wins, and each call in isolation leaves state consistent with its
// own server response.
type CartStore struct {
	api      CartAPI
	creds    credstore.Store
	bus      eventbus.Bus
	notifier Notifier
	log      zerolog.Logger

	mu        sync.Mutex
	count     int
	total     float64
	isLoading bool
	closed    bool

	unsubscribe func()
}

// NewCartStore constructs an empty cart summary and subscribes it to
// auth-changed signals so any session transition triggers a re-sync.
func NewCartStore(api CartAPI, creds credstore.Store, bus eventbus.Bus, notifier Notifier, log zerolog.Logger) *CartStore {
	c := &CartStore{
		api:      api,
		creds:    creds,
		bus:      bus,
		notifier: notifier,
		log:      log,
	}
	c.unsubscribe = bus.Subscribe(domain.SignalAuthChanged, func(string) {
		c.Refresh(context.Background())
	})
	return c
}

// Summary returns the current count/total pair.
func (c *CartStore) Summary() domain.CartSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CartSummary{Count: c.count, Total: c.total}
}

// Loading reports whether a cart operation is in flight.
func (c *CartStore) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoading
}

// Close unsubscribes the store and discards results of in-flight requests.
func (c *CartStore) Close() {
	c.unsubscribe()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Refresh re-derives the summary from the remote cart. With no token present
// it forces count=0,total=0 without a network call. A 401/403 is the normal
// anonymous steady state and resets silently; any other failure notifies the
// user and resets to safe defaults rather than retaining a stale value.
func (c *CartStore) Refresh(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	token, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("cart refresh: credential read failed")
		c.setSummary(0, 0)
		return
	}
	if token == "" {
		c.setSummary(0, 0)
		return
	}

	snapshot, err := c.api.Fetch(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			c.log.Warn().Err(err).Msg("cart refresh failed")
			c.notifier.Notify(msgCartLoadFailed)
		}
		c.setSummary(0, 0)
		return
	}

	c.setSummary(domain.ItemCount(snapshot.Items), snapshot.Total)
}

// AddItem posts a new or incremented line item. Reports success; on failure a
// 401 produces a sign-in prompt, anything else a generic failure notice.
func (c *CartStore) AddItem(ctx context.Context, productID string, quantity int, variantKey string) bool {
	if quantity <= 0 {
		c.log.Warn().Int("quantity", quantity).Str("product_id", productID).Msg("add item: rejected quantity")
		return false
	}

	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.api.AddItem(ctx, token(ctx, c.creds), productID, quantity, variantKey); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.notifier.Notify(msgSignInRequired)
			c.setSummary(0, 0)
		} else {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("add item failed")
			c.notifier.Notify(msgCartOpFailed)
		}
		return false
	}

	c.Refresh(ctx)
	c.bus.Emit(domain.SignalCartUpdated)
	return true
}

// RemoveItem deletes a line item, optionally scoped to a variant. A 401 here
// resets silently: removing from a cart the user no longer has is not worth
// an alert.
func (c *CartStore) RemoveItem(ctx context.Context, productID, variantKey string) bool {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.api.RemoveItem(ctx, token(ctx, c.creds), productID, variantKey); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.setSummary(0, 0)
		} else {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("remove item failed")
			c.notifier.Notify(msgCartOpFailed)
		}
		return false
	}

	c.Refresh(ctx)
	c.bus.Emit(domain.SignalCartUpdated)
	return true
}

// UpdateItem applies a partial update to an existing line item.
func (c *CartStore) UpdateItem(ctx context.Context, productID string, patch ItemPatch) bool {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.api.UpdateItem(ctx, token(ctx, c.creds), productID, patch); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.setSummary(0, 0)
		} else {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("update item failed")
			c.notifier.Notify(msgCartOpFailed)
		}
		return false
	}

	c.Refresh(ctx)
	c.bus.Emit(domain.SignalCartUpdated)
	return true
}

// Clear deletes the entire cart resource. The resulting state is known, so
// the summary is set to empty directly with no follow-up fetch.
func (c *CartStore) Clear(ctx context.Context) bool {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.api.Clear(ctx, token(ctx, c.creds)); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.setSummary(0, 0)
		} else {
			c.log.Warn().Err(err).Msg("clear cart failed")
			c.notifier.Notify(msgCartOpFailed)
		}
		return false
	}

	c.setSummary(0, 0)
	c.bus.Emit(domain.SignalCartUpdated)
	return true
}

// WatchCredential resets the summary from scratch whenever a peer process
// rewrites the credential. Returns a stop function.
func (c *CartStore) WatchCredential(ctx context.Context) (stop func()) {
	return c.creds.Watch(func(key string) {
		if key != credstore.KeyToken {
			return
		}
		c.Refresh(ctx)
	})
}

func (c *CartStore) setSummary(count int, total float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.count = count
	c.total = total
}

func (c *CartStore) setLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.isLoading = v
}

// token reads the persisted credential, degrading to "" on storage errors so
// the endpoint's own 401 drives the unauthenticated path.
func token(ctx context.Context, creds credstore.Store) string {
	t, err := creds.Token(ctx)
	if err != nil {
		return ""
	}
	return t
}
