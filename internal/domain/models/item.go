package models

import "time"

// StockStatus is the derived classification of an item's current quantity
// against its reorder level.
type StockStatus string

const (
	StockStatusOut StockStatus = "Out of Stock"
	StockStatusLow StockStatus = "Low Stock"
	StockStatusIn  StockStatus = "In Stock"
)

// Item is a stocked good. Quantity is never written directly by callers; it
// only moves through the stock operations on the store so the non-negative
// invariant holds under concurrent access.
type Item struct {
	ID           string    `bson:"_id" json:"id"`
	SerialNumber int64     `bson:"serial_no" json:"serial_no"`
	Name         string    `bson:"name" json:"name"`
	Category     string    `bson:"category" json:"category"`
	Quantity     int64     `bson:"quantity" json:"quantity"`
	ReorderLevel int64     `bson:"reorder_level" json:"reorder_level"`
	UnitPrice    float64   `bson:"unit_price" json:"unit_price"`
	Location     string    `bson:"location" json:"location"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	IsImported   bool      `bson:"is_imported" json:"is_imported"`
}

// StockStatus classifies the item: out of stock at zero, low stock at or
// below the reorder level, in stock otherwise.
func (i Item) StockStatus() StockStatus {
	switch {
	case i.Quantity == 0:
		return StockStatusOut
	case i.Quantity <= i.ReorderLevel:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
