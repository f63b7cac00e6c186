package rest

import (
	"encoding/json"
	"fmt"

	"github.com/voltmart/storefront/internal/core/domain"
)

// wireItem is the line-item shape on the wire. Quantity is a pointer so a
// missing quantity survives as zero and gets its default of 1 at fold time.
type wireItem struct {
	ProductID  string  `json:"productId"`
	Quantity   *int    `json:"quantity"`
	VariantKey string  `json:"variantKey"`
	UnitPrice  float64 `json:"unitPrice"`
}

// cartEnvelope covers every payload shape historical backends have emitted
// for the cart resource.
type cartEnvelope struct {
	Success *bool `json:"success"`

	Items    json.RawMessage `json:"items"`
	Data     json.RawMessage `json:"data"`
	Products json.RawMessage `json:"products"`

	TotalAmount *float64 `json:"totalAmount"`
	Total       *float64 `json:"total"`
	TotalValue  *float64 `json:"totalValue"`
}

// ParseCartPayload normalizes a raw cart response into a snapshot.
//
// Item list, first match wins: "items", "data" (when it is an array),
// "products", then "data.data" for the doubly wrapped legacy shape.
// Total, first present wins: "totalAmount", "total", "totalValue", else 0.
// A payload declaring {"success": false} yields an empty snapshot.
func ParseCartPayload(raw []byte) (domain.CartSnapshot, error) {
	var env cartEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("%w: cart payload: %v", domain.ErrInvalidResponse, err)
	}

	if env.Success != nil && !*env.Success {
		return domain.CartSnapshot{}, nil
	}

	items, total := pickItems(env), pickTotal(env)
	return domain.CartSnapshot{Items: items, Total: total}, nil
}

func pickItems(env cartEnvelope) []domain.CartItem {
	if items, ok := decodeItems(env.Items); ok {
		return items
	}
	if items, ok := decodeItems(env.Data); ok {
		return items
	}
	if items, ok := decodeItems(env.Products); ok {
		return items
	}
	// data may itself be a wrapped envelope: {"data": {"data": [...]}}
	if len(env.Data) > 0 {
		var nested cartEnvelope
		if err := json.Unmarshal(env.Data, &nested); err == nil {
			if items, ok := decodeItems(nested.Data); ok {
				return items
			}
		}
	}
	return nil
}

// decodeItems reports ok only when raw is a JSON array of line items.
func decodeItems(raw json.RawMessage) ([]domain.CartItem, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var wire []wireItem
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, false
	}
	items := make([]domain.CartItem, 0, len(wire))
	for _, w := range wire {
		item := domain.CartItem{
			ProductID:  w.ProductID,
			VariantKey: w.VariantKey,
			UnitPrice:  w.UnitPrice,
		}
		if w.Quantity != nil {
			item.Quantity = *w.Quantity
		}
		items = append(items, item)
	}
	return items, true
}

func pickTotal(env cartEnvelope) float64 {
	switch {
	case env.TotalAmount != nil:
		return *env.TotalAmount
	case env.Total != nil:
		return *env.Total
	case env.TotalValue != nil:
		return *env.TotalValue
	default:
		return 0
	}
}
