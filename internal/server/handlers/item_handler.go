package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/repository"
	"github.com/harshg28/stockroom/internal/service/inventory"
)

// ItemHandler exposes item management and the stock ledger over HTTP.
type ItemHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewItemHandler constructs the HTTP handler adapter.
func NewItemHandler(svc *inventory.Service, logger *zap.Logger) *ItemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemHandler{svc: svc, logger: logger}
}

type createItemRequest struct {
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	Quantity     int64   `json:"quantity"`
	ReorderLevel int64   `json:"reorder_level"`
	UnitPrice    float64 `json:"unit_price"`
	Location     string  `json:"location"`
}

// Create adds a new item; the serial number comes back assigned.
func (h *ItemHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.CreateItem(c.Request.Context(), inventory.CreateItemInput{
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		UnitPrice:    req.UnitPrice,
		Location:     req.Location,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// List returns all items with their derived stock status.
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{"item": item, "stock_status": item.StockStatus()})
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one item with its derived stock status.
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "stock_status": item.StockStatus()})
}

// Delete removes an item and everything that references it.
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories lists the distinct non-empty categories.
func (h *ItemHandler) Categories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type stockAdjustRequest struct {
	Quantity int64  `json:"quantity" binding:"required"`
	Remarks  string `json:"remarks"`
}

// AddStock records a manual stock-in movement.
func (h *ItemHandler) AddStock(c *gin.Context) {
	var req stockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.AddStock(c.Request.Context(), c.Param("id"), req.Quantity, req.Remarks)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "stock_status": item.StockStatus()})
}

// RemoveStock records a manual stock-out movement.
func (h *ItemHandler) RemoveStock(c *gin.Context) {
	var req stockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.RemoveStock(c.Request.Context(), c.Param("id"), req.Quantity, req.Remarks)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "stock_status": item.StockStatus()})
}

// Transactions lists an item's ledger entries.
func (h *ItemHandler) Transactions(c *gin.Context) {
	txns, err := h.svc.Transactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (h *ItemHandler) respondError(c *gin.Context, err error) {
	respondDomainError(c, h.logger, err)
}

// respondDomainError maps domain sentinels to HTTP statuses. Validation and
// conflict errors carry their message so the caller can correct the
// request; everything else is a generic, retryable storage failure.
func respondDomainError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrIssuanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrAlreadyReceived):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error, please retry"})
	}
}
