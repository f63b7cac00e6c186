package domain

import "time"

// CartItem is one product line in a cart, optionally scoped to a variant
// (e.g. colour) that distinguishes otherwise-identical products.
type CartItem struct {
	LineID     string    `json:"line_id,omitempty" bson:"line_id,omitempty"`
	ProductID  string    `json:"product_id" bson:"product_id"`
	VariantKey string    `json:"variant_key,omitempty" bson:"variant_key,omitempty"`
	Quantity   int       `json:"quantity,omitempty" bson:"quantity"`
	UnitPrice  float64   `json:"unit_price" bson:"unit_price"`
	AddedAt    time.Time `json:"added_at" bson:"added_at"`
}

// Cart is the per-user cart aggregate persisted server-side.
type Cart struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Items       []CartItem `json:"items" bson:"items"`
	TotalAmount float64    `json:"total_amount" bson:"total_amount"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// CartSnapshot is the normalized result of fetching the remote cart
// resource: the line items plus the server-reported total.
type CartSnapshot struct {
	Items []CartItem
	Total float64
}

// CartSummary is the aggregate view a client keeps in memory: how many units
// are in the cart, and what they cost. Currency is server-determined.
type CartSummary struct {
	Count int
	Total float64
}

// ItemCount folds the item list into a unit count. An item with no explicit
// quantity counts as 1, so a malformed line degrades rather than disappears.
func ItemCount(items []CartItem) int {
	count := 0
	for _, it := range items {
		if it.Quantity > 0 {
			count += it.Quantity
		} else {
			count++
		}
	}
	return count
}

// Subtotal recomputes the monetary total from line prices.
func Subtotal(items []CartItem) float64 {
	total := 0.0
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += float64(qty) * it.UnitPrice
	}
	return total
}
