package models

import "time"

// Direction marks which way stock moved.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// StockTransaction is one immutable ledger entry. Every stock mutation
// writes exactly one of these in the same atomic unit as the quantity
// change; entries are only removed when their item is deleted.
type StockTransaction struct {
	ID        string    `bson:"_id" json:"id"`
	ItemID    string    `bson:"item_id" json:"item_id"`
	Direction Direction `bson:"direction" json:"direction"`
	Quantity  int64     `bson:"quantity" json:"quantity"`
	Date      time.Time `bson:"date" json:"date"`
	Remarks   string    `bson:"remarks" json:"remarks"`
}
