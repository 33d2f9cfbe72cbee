// Package importer maps spreadsheet rows onto item creations. Every row
// goes through the same creation path as a manual add — same serial
// allocation, same validation — the only difference is the imported flag.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/repository/sheets"
	"github.com/harshg28/stockroom/internal/service/inventory"
)

// Importable field names a spreadsheet column may map onto.
const (
	FieldName         = "name"
	FieldCategory     = "category"
	FieldQuantity     = "quantity"
	FieldReorderLevel = "reorder_level"
	FieldUnitPrice    = "unit_price"
	FieldLocation     = "location"
)

// ErrInvalidMapping indicates the column mapping cannot be used.
var ErrInvalidMapping = errors.New("invalid column mapping")

// ColumnMapping associates a zero-based spreadsheet column index with an
// item field name.
type ColumnMapping map[int]string

var knownFields = map[string]struct{}{
	FieldName:         {},
	FieldCategory:     {},
	FieldQuantity:     {},
	FieldReorderLevel: {},
	FieldUnitPrice:    {},
	FieldLocation:     {},
}

// Validate checks the mapping before any row is touched: column indexes
// must be non-negative, fields must be known, no field may be mapped twice,
// and the name field is required.
func (m ColumnMapping) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("%w: no columns mapped", ErrInvalidMapping)
	}

	seen := make(map[string]int, len(m))
	hasName := false
	for col, field := range m {
		if col < 0 {
			return fmt.Errorf("%w: negative column index %d", ErrInvalidMapping, col)
		}
		if _, ok := knownFields[field]; !ok {
			return fmt.Errorf("%w: unknown field %q for column %d", ErrInvalidMapping, field, col)
		}
		if prev, dup := seen[field]; dup {
			return fmt.Errorf("%w: field %q mapped to both column %d and %d", ErrInvalidMapping, field, prev, col)
		}
		seen[field] = col
		if field == FieldName {
			hasName = true
		}
	}
	if !hasName {
		return fmt.Errorf("%w: the %s field must be mapped", ErrInvalidMapping, FieldName)
	}
	return nil
}

// Request describes one import run.
type Request struct {
	SheetRange string
	Mapping    ColumnMapping
	HasHeader  bool
}

// RowError records why a single row was skipped.
type RowError struct {
	Row   int    `json:"row"`
	Cause string `json:"cause"`
}

// Summary reports the outcome of an import run. Failed rows never abort the
// run; each row stands alone.
type Summary struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Service reads rows from the spreadsheet source and creates items through
// the inventory service.
type Service struct {
	source    sheets.Repository
	inventory *inventory.Service
	logger    *zap.Logger
}

// NewService wires an importer instance.
func NewService(source sheets.Repository, inv *inventory.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:    source,
		inventory: inv,
		logger:    logger,
	}
}

// Import validates the mapping, reads the range and creates one item per
// row. Rows that fail to parse or to validate are collected in the summary
// and skipped.
func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	if err := req.Mapping.Validate(); err != nil {
		return Summary{}, err
	}
	if s.source == nil {
		return Summary{}, errors.New("import source is not configured")
	}

	rows, err := s.source.ReadRange(ctx, req.SheetRange)
	if err != nil {
		return Summary{}, err
	}

	start := time.Now()
	summary := Summary{}

	for i, row := range rows {
		if i == 0 && req.HasHeader {
			continue
		}

		input, err := mapRow(row, req.Mapping)
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, RowError{Row: i + 1, Cause: err.Error()})
			continue
		}
		input.IsImported = true

		if _, err := s.inventory.CreateItem(ctx, input); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, RowError{Row: i + 1, Cause: err.Error()})
			continue
		}
		summary.Imported++
	}

	s.logger.Info("import finished",
		zap.String("range", req.SheetRange),
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("took", time.Since(start)))

	return summary, nil
}

func mapRow(row []interface{}, mapping ColumnMapping) (inventory.CreateItemInput, error) {
	var input inventory.CreateItemInput

	for col, field := range mapping {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprintf("%v", row[col]))
		if cell == "" {
			continue
		}

		switch field {
		case FieldName:
			input.Name = cell
		case FieldCategory:
			input.Category = cell
		case FieldLocation:
			input.Location = cell
		case FieldQuantity:
			qty, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return inventory.CreateItemInput{}, fmt.Errorf("column %d: invalid quantity %q", col, cell)
			}
			input.Quantity = qty
		case FieldReorderLevel:
			level, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return inventory.CreateItemInput{}, fmt.Errorf("column %d: invalid reorder level %q", col, cell)
			}
			input.ReorderLevel = level
		case FieldUnitPrice:
			price, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return inventory.CreateItemInput{}, fmt.Errorf("column %d: invalid unit price %q", col, cell)
			}
			input.UnitPrice = price
		}
	}

	if input.Name == "" {
		return inventory.CreateItemInput{}, errors.New("row has no name value")
	}
	return input, nil
}
