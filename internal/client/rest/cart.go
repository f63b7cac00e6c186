package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/voltmart/storefront/internal/client"
	"github.com/voltmart/storefront/internal/core/domain"
)

var _ client.CartAPI = (*Client)(nil)

// Fetch retrieves and normalizes the remote cart.
func (c *Client) Fetch(ctx context.Context, token string) (domain.CartSnapshot, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/cart", token, nil)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return ParseCartPayload(raw)
}

type addItemRequest struct {
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	VariantKey string `json:"variantKey,omitempty"`
}

// AddItem posts a new or incremented line item.
func (c *Client) AddItem(ctx context.Context, token, productID string, quantity int, variantKey string) error {
	body := addItemRequest{ProductID: productID, Quantity: quantity, VariantKey: variantKey}
	return c.do(ctx, http.MethodPost, "/cart/items", token, body, nil)
}

// RemoveItem deletes a line item, optionally scoped to a variant passed as a
// query parameter.
func (c *Client) RemoveItem(ctx context.Context, token, productID, variantKey string) error {
	path := "/cart/items/" + url.PathEscape(productID)
	if variantKey != "" {
		path += "?variantKey=" + url.QueryEscape(variantKey)
	}
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

type updateItemRequest struct {
	Quantity   *int    `json:"quantity,omitempty"`
	VariantKey *string `json:"variantKey,omitempty"`
}

// UpdateItem applies a partial update to an existing line item.
func (c *Client) UpdateItem(ctx context.Context, token, productID string, patch client.ItemPatch) error {
	body := updateItemRequest{Quantity: patch.Quantity, VariantKey: patch.VariantKey}
	return c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(productID), token, body, nil)
}

// Clear deletes the entire cart resource.
func (c *Client) Clear(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/cart", token, nil, nil)
}
