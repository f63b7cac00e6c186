package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voltmart/storefront/internal/api/metrics"
	"github.com/voltmart/storefront/internal/core/domain"
	"github.com/voltmart/storefront/internal/core/ports"
)

// CartHandler handles HTTP requests for the per-user cart resource.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// --- Request / Response types ---
//
// The cart wire format is camelCase for compatibility with the storefront
// frontends; the snake_case domain tags are persistence-only.

type cartItemResponse struct {
	LineID     string  `json:"lineId"`
	ProductID  string  `json:"productId"`
	VariantKey string  `json:"variantKey,omitempty"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	AddedAt    string  `json:"addedAt"`
}

type cartResponse struct {
	Items       []cartItemResponse `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
}

type addItemRequest struct {
	ProductID  string  `json:"productId"  validate:"required"`
	Quantity   int     `json:"quantity"   validate:"required,gt=0"`
	VariantKey string  `json:"variantKey"`
	UnitPrice  float64 `json:"unitPrice"  validate:"gte=0"`
}

type updateItemRequest struct {
	Quantity   *int    `json:"quantity"`
	VariantKey *string `json:"variantKey"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, cartItemResponse{
			LineID:     it.LineID,
			ProductID:  it.ProductID,
			VariantKey: it.VariantKey,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			AddedAt:    it.AddedAt.UTC().Format(time.RFC3339),
		})
	}
	return cartResponse{Items: items, TotalAmount: cart.TotalAmount}
}

func observeCartOp(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CartOpsTotal.WithLabelValues(op, result).Inc()
	metrics.CartOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Get handles GET /cart.
//
// @Summary      Get the authenticated user's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  map[string]string
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	start := time.Now()
	cart, err := h.service.Get(c.Request().Context(), userID)
	observeCartOp("get", start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// AddItem handles POST /cart/items.
//
// @Summary      Add an item to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addItemRequest  true  "Line item to add or merge"
// @Success      200   {object}  cartResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	start := time.Now()
	cart, err := h.service.AddItem(c.Request().Context(), userID, ports.AddItemInput{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		VariantKey: req.VariantKey,
		UnitPrice:  req.UnitPrice,
	})
	observeCartOp("add", start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// UpdateItem handles PUT /cart/items/:productID. The variant being updated
// is addressed by the variantKey query parameter; the body carries the
// patch, where a quantity of zero removes the line.
//
// @Summary      Update a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        productID   path      string             true   "Product id"
// @Param        variantKey  query     string             false  "Variant being addressed"
// @Param        body        body      updateItemRequest  true   "Fields to change"
// @Success      200         {object}  cartResponse
// @Failure      400         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Router       /cart/items/{productID} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	start := time.Now()
	cart, err := h.service.UpdateItem(c.Request().Context(), userID, c.Param("productID"), c.QueryParam("variantKey"), ports.UpdateItemInput{
		Quantity:   req.Quantity,
		VariantKey: req.VariantKey,
	})
	observeCartOp("update", start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// RemoveItem handles DELETE /cart/items/:productID. Without a variantKey
// query parameter every variant of the product is removed.
//
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        productID   path      string  true   "Product id"
// @Param        variantKey  query     string  false  "Variant to remove; omit for all variants"
// @Success      200         {object}  cartResponse
// @Failure      404         {object}  map[string]string
// @Router       /cart/items/{productID} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	start := time.Now()
	cart, err := h.service.RemoveItem(c.Request().Context(), userID, c.Param("productID"), c.QueryParam("variantKey"))
	observeCartOp("remove", start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCartResponse(cart))
}

// Clear handles DELETE /cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	start := time.Now()
	err = h.service.Clear(c.Request().Context(), userID)
	observeCartOp("clear", start, err)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AdminGet handles GET /admin/carts/:userID, a back-office view of any
// user's cart. RBAC restricts it to admins at the router.
//
// @Summary      Inspect a user's cart (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "User id"
// @Success      200     {object}  cartResponse
// @Failure      403     {object}  map[string]string
// @Router       /admin/carts/{userID} [get]
func (h *CartHandler) AdminGet(c echo.Context) error {
	cart, err := h.service.Get(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}
