package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"storefront-cart/internal/domain"
	"github.com/gin-gonic/gin"
)

// cartEngine is the consumer-facing surface of the synchronization
// engine, as this package needs it.
type cartEngine interface {
	AddToCart(ctx context.Context, merchandiseID string, quantity int) bool
	UpdateQuantity(ctx context.Context, lineID string, quantity int) bool
	RemoveItem(ctx context.Context, lineID string) bool
	ClearCart()
	RefreshCart(ctx context.Context)
	Snapshot() *domain.CartSnapshot
	TotalItems() int
	Subtotal() float64
	Err() string
	IsLoading() bool
	IsInitializing() bool
}

type cartHandlers struct {
	engine cartEngine
}

type cartView struct {
	Cart           *domain.CartSnapshot `json:"cart"`
	TotalItems     int                  `json:"totalItems"`
	Subtotal       float64              `json:"subtotal"`
	IsLoading      bool                 `json:"isLoading"`
	IsInitializing bool                 `json:"isInitializing"`
	Error          string               `json:"error,omitempty"`
}

type mutationResult struct {
	OK    bool                 `json:"ok"`
	Cart  *domain.CartSnapshot `json:"cart"`
	Error string               `json:"error,omitempty"`
}

type addItemRequest struct {
	MerchandiseID string `json:"merchandiseId" binding:"required"`
	Quantity      int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *cartHandlers) view() cartView {
	return cartView{
		Cart:           h.engine.Snapshot(),
		TotalItems:     h.engine.TotalItems(),
		Subtotal:       h.engine.Subtotal(),
		IsLoading:      h.engine.IsLoading(),
		IsInitializing: h.engine.IsInitializing(),
		Error:          h.engine.Err(),
	}
}

func (h *cartHandlers) result(ok bool) mutationResult {
	res := mutationResult{
		OK:   ok,
		Cart: h.engine.Snapshot(),
	}
	if !ok {
		res.Error = h.engine.Err()
	}
	return res
}

func (h *cartHandlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.view())
}

func (h *cartHandlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "merchandiseId is required"})
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	ok := h.engine.AddToCart(c.Request.Context(), req.MerchandiseID, req.Quantity)
	c.JSON(mutationStatus(ok), h.result(ok))
}

func (h *cartHandlers) updateItem(c *gin.Context) {
	lineID, err := lineIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line id"})
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || *req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a non-negative integer"})
		return
	}
	// Quantity 0 is a removal; the engine routes it.
	ok := h.engine.UpdateQuantity(c.Request.Context(), lineID, *req.Quantity)
	c.JSON(mutationStatus(ok), h.result(ok))
}

func (h *cartHandlers) removeItem(c *gin.Context) {
	lineID, err := lineIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line id"})
		return
	}
	ok := h.engine.RemoveItem(c.Request.Context(), lineID)
	c.JSON(mutationStatus(ok), h.result(ok))
}

func (h *cartHandlers) clearCart(c *gin.Context) {
	h.engine.ClearCart()
	c.JSON(http.StatusOK, h.view())
}

func (h *cartHandlers) refreshCart(c *gin.Context) {
	h.engine.RefreshCart(c.Request.Context())
	c.JSON(http.StatusOK, h.view())
}

// lineIDParam unescapes the line id path segment; storefront line ids
// are gids containing slashes and query-ish suffixes, so clients send
// them URL-escaped.
func lineIDParam(c *gin.Context) (string, error) {
	raw := c.Param("lineID")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	if decoded == "" {
		return "", errors.New("empty line id")
	}
	return decoded, nil
}

func mutationStatus(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
