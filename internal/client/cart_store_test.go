package client

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voltmart/storefront/internal/client/credstore"
	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/eventbus"
)

// ---------------------------------------------------------------------------
// Stub cart API and recording notifier
// ---------------------------------------------------------------------------

type stubCartAPI struct {
	fetchFn    func(token string) (domain.CartSnapshot, error)
	addErr     error
	removeErr  error
	updateErr  error
	clearErr   error
	fetchCalls int
	addCalls   int
}

func (s *stubCartAPI) Fetch(_ context.Context, token string) (domain.CartSnapshot, error) {
	s.fetchCalls++
	if s.fetchFn == nil {
		return domain.CartSnapshot{}, nil
	}
	return s.fetchFn(token)
}

func (s *stubCartAPI) AddItem(_ context.Context, _, _ string, _ int, _ string) error {
	s.addCalls++
	return s.addErr
}

func (s *stubCartAPI) RemoveItem(context.Context, string, string, string) error {
	return s.removeErr
}

func (s *stubCartAPI) UpdateItem(context.Context, string, string, ItemPatch) error {
	return s.updateErr
}

func (s *stubCartAPI) Clear(context.Context, string) error {
	return s.clearErr
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.messages = append(n.messages, message)
}

func newCart(api CartAPI) (*CartStore, credstore.Store, *eventbus.Memory, *recordingNotifier) {
	creds := credstore.NewMemory()
	bus := eventbus.NewMemory()
	notifier := &recordingNotifier{}
	return NewCartStore(api, creds, bus, notifier, zerolog.Nop()), creds, bus, notifier
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestCartStore_Refresh_NoTokenSkipsNetwork(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			t.Fatalf("no network call expected without a token")
			return domain.CartSnapshot{}, nil
		},
	}
	c, _, _, _ := newCart(api)

	c.Refresh(context.Background())

	if got := c.Summary(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}

func TestCartStore_Refresh_CountsMissingQuantityAsOne(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			return domain.CartSnapshot{
				Items: []domain.CartItem{
					{ProductID: "A", Quantity: 2},
					{ProductID: "B"}, // malformed line, no quantity
				},
				Total: 500,
			}, nil
		},
	}
	c, creds, _, _ := newCart(api)
	_ = creds.SetToken(context.Background(), "tok")

	c.Refresh(context.Background())

	got := c.Summary()
	if got.Count != 3 || got.Total != 500 {
		t.Fatalf("expected count=3 total=500, got %+v", got)
	}
	if c.Loading() {
		t.Fatalf("loading stuck true after refresh")
	}
}

func TestCartStore_Refresh_UnauthenticatedResetsSilently(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			return domain.CartSnapshot{}, domain.ErrUnauthenticated
		},
	}
	c, creds, _, notifier := newCart(api)
	_ = creds.SetToken(context.Background(), "stale")

	c.Refresh(context.Background())

	if got := c.Summary(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("401 is a normal steady state, got notifications %v", notifier.messages)
	}
}

func TestCartStore_Refresh_FailureNotifiesAndResets(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			return domain.CartSnapshot{}, domain.ErrRequestFailed
		},
	}
	c, creds, _, notifier := newCart(api)
	_ = creds.SetToken(context.Background(), "tok")

	c.Refresh(context.Background())

	if got := c.Summary(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("expected reset to safe defaults, got %+v", got)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one notification, got %v", notifier.messages)
	}
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

func TestCartStore_AddItem_SuccessRefreshes(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			return domain.CartSnapshot{Items: []domain.CartItem{{ProductID: "X", Quantity: 1}}, Total: 100}, nil
		},
	}
	c, creds, bus, _ := newCart(api)
	_ = creds.SetToken(context.Background(), "tok")

	updates := 0
	bus.Subscribe(domain.SignalCartUpdated, func(string) { updates++ })

	if ok := c.AddItem(context.Background(), "X", 1, ""); !ok {
		t.Fatalf("expected success")
	}
	if api.fetchCalls != 1 {
		t.Fatalf("expected follow-up refresh, got %d fetches", api.fetchCalls)
	}
	if got := c.Summary(); got.Count != 1 || got.Total != 100 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if updates != 1 {
		t.Fatalf("expected one cart-updated emission, got %d", updates)
	}
}

func TestCartStore_AddItem_SucceedsButRefreshFails(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			return domain.CartSnapshot{}, domain.ErrRequestFailed
		},
	}
	c, creds, _, notifier := newCart(api)
	_ = creds.SetToken(context.Background(), "tok")

	// The server accepted the mutation; its success stands on its own while
	// the display falls back to safe defaults.
	if ok := c.AddItem(context.Background(), "X", 1, ""); !ok {
		t.Fatalf("mutation accepted by server must report success")
	}
	if got := c.Summary(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("expected failure-reset to empty, got %+v", got)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected refresh failure notification, got %v", notifier.messages)
	}
}

func TestCartStore_AddItem_UnauthenticatedPromptsSignIn(t *testing.T) {
	api := &stubCartAPI{addErr: domain.ErrUnauthenticated}
	c, _, _, notifier := newCart(api)

	if ok := c.AddItem(context.Background(), "X", 1, ""); ok {
		t.Fatalf("expected failure")
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != msgSignInRequired {
		t.Fatalf("expected sign-in prompt, got %v", notifier.messages)
	}
}

func TestCartStore_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	api := &stubCartAPI{}
	c, _, _, _ := newCart(api)

	if c.AddItem(context.Background(), "X", 0, "") {
		t.Fatalf("zero quantity must fail")
	}
	if c.AddItem(context.Background(), "X", -2, "") {
		t.Fatalf("negative quantity must fail")
	}
	if api.addCalls != 0 {
		t.Fatalf("invalid quantity must not reach the network")
	}
}

func TestCartStore_RemoveItem_UnauthenticatedIsSilent(t *testing.T) {
	api := &stubCartAPI{removeErr: domain.ErrUnauthenticated}
	c, _, _, notifier := newCart(api)

	if ok := c.RemoveItem(context.Background(), "X", ""); ok {
		t.Fatalf("expected failure")
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("remove while signed out must stay silent, got %v", notifier.messages)
	}
	if got := c.Summary(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("expected forced-empty state, got %+v", got)
	}
}

func TestCartStore_UpdateItem_FailureNotifies(t *testing.T) {
	api := &stubCartAPI{updateErr: domain.ErrRequestFailed}
	c, _, _, notifier := newCart(api)

	quantity := 3
	if ok := c.UpdateItem(context.Background(), "X", ItemPatch{Quantity: &quantity}); ok {
		t.Fatalf("expected failure")
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one notification, got %v", notifier.messages)
	}
}

func TestCartStore_Clear_SetsEmptyWithoutRefetch(t *testing.T) {
	api := &stubCartAPI{
		fetchFn: func(string) (domain.CartSnapshot, error) {
			return domain.CartSnapshot{Items: []domain.CartItem{{ProductID: "A", Quantity: 5}}, Total: 500}, nil
		},
	}
	c, creds, _, _ := newCart(api)
	_ = creds.SetToken(context.Background(), "tok")
	c.Refresh(context.Background())

	if ok := c.Clear(context.Background()); !ok {
		t.Fatalf("expected success")
	}
	if got := c.Summary(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("expected empty summary after clear, got %+v", got)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("clear must not refetch, got %d fetches", api.fetchCalls)
	}
}

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------

func TestCartStore_AuthChangedTriggersExactlyOneRefresh(t *testing.T) {
	api := &stubCartAPI{}
	creds := credstore.NewMemory()
	bus := eventbus.NewMemory()
	_ = creds.SetToken(context.Background(), "tok")

	first := NewCartStore(api, creds, bus, &recordingNotifier{}, zerolog.Nop())
	second := NewCartStore(api, creds, bus, &recordingNotifier{}, zerolog.Nop())
	defer first.Close()
	defer second.Close()

	bus.Emit(domain.SignalAuthChanged)

	if api.fetchCalls != 2 {
		t.Fatalf("expected one refresh per subscribed store, got %d", api.fetchCalls)
	}

	bus.Emit(domain.SignalAuthChanged)
	if api.fetchCalls != 4 {
		t.Fatalf("expected exactly one refresh per emission, got %d total", api.fetchCalls)
	}
}

func TestCartStore_CloseStopsReactingToSignals(t *testing.T) {
	api := &stubCartAPI{}
	c, creds, bus, _ := newCart(api)
	_ = creds.SetToken(context.Background(), "tok")

	c.Close()
	bus.Emit(domain.SignalAuthChanged)

	if api.fetchCalls != 0 {
		t.Fatalf("closed store refreshed anyway")
	}
}
