package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/core/ports"
	"github.com/voltmart/storefront/internal/eventbus"
)

// CartService owns the per-user cart aggregate. Every mutation rewrites the
// whole document and recomputes the total from line prices, then signals
// cart-updated so peer processes re-sync.
type CartService struct {
	repo ports.CartRepository
	bus  eventbus.Bus
	log  zerolog.Logger
}

func NewCartService(repo ports.CartRepository, bus eventbus.Bus, log zerolog.Logger) *CartService {
	return &CartService{repo: repo, bus: bus, log: log}
}

// Get returns the user's cart, or an empty one if none exists yet.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem appends a line, or increments the quantity of an existing line for
// the same product and variant.
func (s *CartService) AddItem(ctx context.Context, userID string, input ports.AddItemInput) (*domain.Cart, error) {
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == input.ProductID && cart.Items[i].VariantKey == input.VariantKey {
			cart.Items[i].Quantity += input.Quantity
			if input.UnitPrice > 0 {
				cart.Items[i].UnitPrice = input.UnitPrice
			}
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{
			LineID:     uuid.NewString(),
			ProductID:  input.ProductID,
			VariantKey: input.VariantKey,
			Quantity:   input.Quantity,
			UnitPrice:  input.UnitPrice,
			AddedAt:    time.Now().UTC(),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("product_id", input.ProductID).Int("quantity", input.Quantity).Msg("cart item added")
	return cart, nil
}

// UpdateItem patches an existing line. A quantity of zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID, variantKey string, input ports.UpdateItemInput) (*domain.Cart, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findLine(cart.Items, productID, variantKey)
	if idx < 0 {
		return nil, domain.ErrItemNotFound
	}

	if input.VariantKey != nil {
		cart.Items[idx].VariantKey = *input.VariantKey
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if *input.Quantity == 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			cart.Items[idx].Quantity = *input.Quantity
		}
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes a line, optionally scoped to a variant.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, variantKey string) (*domain.Cart, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.ProductID == productID && (variantKey == "" || item.VariantKey == variantKey) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, domain.ErrItemNotFound
	}
	cart.Items = kept

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("product_id", productID).Msg("cart item removed")
	return cart, nil
}

// Clear deletes the user's cart resource entirely.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return err
	}
	s.bus.Emit(domain.SignalCartUpdated)
	return nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.TotalAmount = domain.Subtotal(cart.Items)
	cart.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		return err
	}
	s.bus.Emit(domain.SignalCartUpdated)
	return nil
}

func findLine(items []domain.CartItem, productID, variantKey string) int {
	for i, item := range items {
		if item.ProductID == productID && (variantKey == "" || item.VariantKey == variantKey) {
			return i
		}
	}
	return -1
}
