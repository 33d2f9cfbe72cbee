package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/service/importer"
)

// ImportHandler triggers bulk imports from the configured spreadsheet.
// It stays registered even without a configured source so the caller gets a
// clear answer instead of a 404.
type ImportHandler struct {
	svc    *importer.Service
	logger *zap.Logger
}

// NewImportHandler constructs the HTTP handler adapter. svc may be nil when
// no spreadsheet source is configured.
func NewImportHandler(svc *importer.Service, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{svc: svc, logger: logger}
}

type importRequest struct {
	SheetRange string            `json:"sheet_range" binding:"required"`
	Mapping    map[string]string `json:"mapping" binding:"required"`
	HasHeader  bool              `json:"has_header"`
}

// Run executes one import. The mapping arrives as column index -> field
// name with string keys (JSON objects cannot have integer keys).
func (h *ImportHandler) Run(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import source is not configured"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mapping := make(importer.ColumnMapping, len(req.Mapping))
	for key, field := range req.Mapping {
		col, err := strconv.Atoi(key)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mapping keys must be column indexes"})
			return
		}
		mapping[col] = field
	}

	summary, err := h.svc.Import(c.Request.Context(), importer.Request{
		SheetRange: req.SheetRange,
		Mapping:    mapping,
		HasHeader:  req.HasHeader,
	})
	if err != nil {
		if errors.Is(err, importer.ErrInvalidMapping) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("import failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "import failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
