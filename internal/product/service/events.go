package service

import (
	"encoding/json"
	"time"
)

const (
	SubjectProductCreated      = "products.created"
	SubjectProductStockUpdated = "products.stock.updated"
	SubjectProductUpdated      = "products.updated"
	SubjectProductDeleted      = "products.deleted"
)

// ProductEvent is published after a product is created, changed or removed.
type ProductEvent struct {
	subject    string
	ProductID  string    `json:"product_id"`
	Name       string    `json:"product_name,omitempty"`
	Stock      int32     `json:"stock_available"`
	StockDelta int32     `json:"stock_delta,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newProductEvent(subject string, p *ProductDto, delta int32) ProductEvent {
	e := ProductEvent{subject: subject, StockDelta: delta, OccurredAt: time.Now().UTC()}
	if p != nil {
		e.ProductID, e.Name, e.Stock = p.ID, p.Name, p.Stock
	}
	return e
}

func (e ProductEvent) Subject() string {
	return e.subject
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
