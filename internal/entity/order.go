package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBid OrderSide = "BID"
	OrderSideAsk OrderSide = "ASK"
)

// ParseOrderSide canonicalizes a raw side string to upper case.
func ParseOrderSide(raw string) (OrderSide, bool) {
	side := OrderSide(strings.ToUpper(strings.TrimSpace(raw)))
	switch side {
	case OrderSideBid, OrderSideAsk:
		return side, true
	default:
		return "", false
	}
}

// Order is one stored order record. BaseAmount is always derived from
// QuoteAmount and Price, never supplied by callers.
type Order struct {
	UUID        string          `json:"uuid"`
	Price       decimal.Decimal `json:"price"`
	QuoteAmount decimal.Decimal `json:"quote_amount"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	Side        OrderSide       `json:"side"`
}

type CreateOrderRequest struct {
	Price       decimal.Decimal
	QuoteAmount decimal.Decimal
	Side        OrderSide
}

// UpdateOrderRequest mutates price and/or quote amount of an existing order.
// Nil means "leave unchanged". Side and UUID are immutable.
type UpdateOrderRequest struct {
	UUID        string
	Price       *decimal.Decimal
	QuoteAmount *decimal.Decimal
}

type OrderAction string

const (
	OrderActionCreated   OrderAction = "CREATED"
	OrderActionUpdated   OrderAction = "UPDATED"
	OrderActionCancelled OrderAction = "CANCELLED"
)

type OrderEvent struct {
	Action     OrderAction `json:"action"`
	Order      Order       `json:"order"`
	OccurredAt int64       `json:"occurred_at"`
}

type OrderAuditLog struct {
	ID          string          `db:"id" json:"id"`
	OrderUUID   string          `db:"order_uuid" json:"order_uuid"`
	Action      OrderAction     `db:"action" json:"action"`
	Price       decimal.Decimal `db:"price" json:"price"`
	QuoteAmount decimal.Decimal `db:"quote_amount" json:"quote_amount"`
	BaseAmount  decimal.Decimal `db:"base_amount" json:"base_amount"`
	Side        OrderSide       `db:"side" json:"side"`
	OccurredAt  time.Time       `db:"occurred_at" json:"occurred_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

func (o OrderAuditLog) TableName() string {
	return "order_audit_logs"
}
