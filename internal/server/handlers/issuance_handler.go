package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/service/inventory"
	"github.com/harshg28/stockroom/internal/service/issuance"
)

// IssuanceHandler exposes the loan workflow over HTTP.
type IssuanceHandler struct {
	svc    *issuance.Service
	logger *zap.Logger
}

// NewIssuanceHandler constructs the HTTP handler adapter.
func NewIssuanceHandler(svc *issuance.Service, logger *zap.Logger) *IssuanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssuanceHandler{svc: svc, logger: logger}
}

type openIssuanceRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
	User      string `json:"user" binding:"required"`
	Issuer    string `json:"issuer" binding:"required"`
	Receiver  string `json:"receiver" binding:"required"`
	Condition string `json:"issue_condition"`
	Remark    string `json:"remark"`
}

// Open creates a loan record and moves the stock out.
func (h *IssuanceHandler) Open(c *gin.Context) {
	var req openIssuanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	iss, err := h.svc.Open(c.Request.Context(), issuance.OpenRequest{
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		User:      req.User,
		Issuer:    req.Issuer,
		Receiver:  req.Receiver,
		Condition: models.IssueCondition(req.Condition),
		Remark:    req.Remark,
	})
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, iss)
}

type closeIssuanceRequest struct {
	ComponentStatus string `json:"component_status" binding:"required"`
	Remark          string `json:"remark"`
}

// Close marks a loan as received. Closing an already-received loan is a
// no-op and still answers 200, with changed=false.
func (h *IssuanceHandler) Close(c *gin.Context) {
	var req closeIssuanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, err := models.ParseComponentStatus(req.ComponentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	iss, changed, err := h.svc.Close(c.Request.Context(), c.Param("id"), status, req.Remark)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issuance": iss, "changed": changed})
}

// Get returns one issuance.
func (h *IssuanceHandler) Get(c *gin.Context) {
	iss, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, iss)
}

// List returns all issuances, newest first.
func (h *IssuanceHandler) List(c *gin.Context) {
	issuances, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, issuances)
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrSameParty) ||
		errors.Is(err, models.ErrInvalidPairing) ||
		errors.Is(err, models.ErrInvalidQuantity) ||
		errors.Is(err, models.ErrUnknownParty) ||
		errors.Is(err, models.ErrUnknownComponentStatus) ||
		errors.Is(err, inventory.ErrInvalidItem)
}
