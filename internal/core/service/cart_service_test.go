package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/core/ports"
	"github.com/voltmart/storefront/internal/eventbus"
)

type stubCartRepo struct {
	byUser  map[string]*domain.Cart
	saveErr error
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{byUser: make(map[string]*domain.Cart)}
}

func (r *stubCartRepo) FindByUserID(_ context.Context, userID string) (*domain.Cart, error) {
	cart, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (r *stubCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	r.byUser[cart.UserID] = &clone
	return nil
}

func (r *stubCartRepo) DeleteByUserID(_ context.Context, userID string) error {
	if _, ok := r.byUser[userID]; !ok {
		return domain.ErrCartNotFound
	}
	delete(r.byUser, userID)
	return nil
}

func newCartService(repo ports.CartRepository) (*CartService, *eventbus.Memory) {
	bus := eventbus.NewMemory()
	return NewCartService(repo, bus, zerolog.Nop()), bus
}

func TestCartService_Get_EmptyCartForNewUser(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalAmount != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCartService_AddItem_MergesSameProductAndVariant(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "steel", UnitPrice: 300})
	cart, err := svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 2, VariantKey: "steel", UnitPrice: 300})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalAmount != 900 {
		t.Fatalf("expected total 900, got %v", cart.TotalAmount)
	}
}

func TestCartService_AddItem_DifferentVariantIsSeparateLine(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "steel", UnitPrice: 300})
	cart, _ := svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "white", UnitPrice: 280})

	if len(cart.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart.Items))
	}
}

func TestCartService_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())

	if _, err := svc.AddItem(context.Background(), "u1", ports.AddItemInput{ProductID: "x", Quantity: 0}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCartService_UpdateItem_QuantityZeroRemovesLine(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "x", Quantity: 2, UnitPrice: 10})
	zero := 0
	cart, err := svc.UpdateItem(ctx, "u1", "x", "", ports.UpdateItemInput{Quantity: &zero})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalAmount != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCartService_UpdateItem_MissingLine(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "x", Quantity: 1})
	one := 1
	if _, err := svc.UpdateItem(ctx, "u1", "ghost", "", ports.UpdateItemInput{Quantity: &one}); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCartService_RemoveItem_VariantScoped(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "steel", UnitPrice: 300})
	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "white", UnitPrice: 280})

	cart, err := svc.RemoveItem(ctx, "u1", "fridge-01", "steel")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].VariantKey != "white" {
		t.Fatalf("wrong line removed: %+v", cart.Items)
	}
}

func TestCartService_RemoveItem_UnscopedRemovesAllVariants(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "steel"})
	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "fridge-01", Quantity: 1, VariantKey: "white"})

	cart, err := svc.RemoveItem(ctx, "u1", "fridge-01", "")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected all variants removed, got %+v", cart.Items)
	}
}

func TestCartService_Clear_DeletesAndSignals(t *testing.T) {
	repo := newStubCartRepo()
	svc, bus := newCartService(repo)
	ctx := context.Background()

	updates := 0
	bus.Subscribe(domain.SignalCartUpdated, func(string) { updates++ })

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "x", Quantity: 1})
	if err := svc.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, err := repo.FindByUserID(ctx, "u1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("cart document survived clear")
	}
	if updates != 2 { // one for add, one for clear
		t.Fatalf("expected 2 cart-updated signals, got %d", updates)
	}
}

func TestCartService_Clear_MissingCartIsNoop(t *testing.T) {
	svc, _ := newCartService(newStubCartRepo())

	if err := svc.Clear(context.Background(), "ghost"); err != nil {
		t.Fatalf("clearing an absent cart must be a no-op, got %v", err)
	}
}

func TestCartService_MutationsEmitCartUpdated(t *testing.T) {
	svc, bus := newCartService(newStubCartRepo())
	ctx := context.Background()

	updates := 0
	bus.Subscribe(domain.SignalCartUpdated, func(string) { updates++ })

	_, _ = svc.AddItem(ctx, "u1", ports.AddItemInput{ProductID: "x", Quantity: 1})
	two := 2
	_, _ = svc.UpdateItem(ctx, "u1", "x", "", ports.UpdateItemInput{Quantity: &two})
	_, _ = svc.RemoveItem(ctx, "u1", "x", "")

	if updates != 3 {
		t.Fatalf("expected 3 signals, got %d", updates)
	}
}
