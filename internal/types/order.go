package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

type OrderSide string

type OrderType string

type OrderStatus string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

const (
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
)

const (
	// OrderStatusPending is the initial state of every order.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusFilled, OrderStatusCancelled and OrderStatusRejected are terminal.
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// IsTerminal reports whether no transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusRejected
}

// Order is a tracked entry or exit order. Orders are mutated only through the
// lifecycle transitions in internal/trading and are archived, never deleted.
type Order struct {
	OrderID  string    `yaml:"order_id" json:"order_id" validate:"required,uuid"`
	Symbol   string    `yaml:"symbol" json:"symbol" validate:"required"`
	Side     OrderSide `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Type     OrderType `yaml:"order_type" json:"order_type" validate:"required,oneof=LIMIT MARKET STOP_LIMIT"`
	Quantity int64     `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Price    float64   `yaml:"price" json:"price" validate:"required,gt=0"`
	// StopPrice is only meaningful for stop-limit orders.
	StopPrice optional.Option[float64] `yaml:"stop_price" json:"stop_price"`
	Status    OrderStatus              `yaml:"status" json:"status" validate:"required,oneof=PENDING FILLED CANCELLED REJECTED"`
	CreatedAt time.Time                `yaml:"created_at" json:"created_at" validate:"required"`
	UpdatedAt time.Time                `yaml:"updated_at" json:"updated_at" validate:"required"`
	// FilledPrice and FilledQuantity are set when the order transitions to FILLED.
	FilledPrice    optional.Option[float64] `yaml:"filled_price" json:"filled_price"`
	FilledQuantity int64                    `yaml:"filled_quantity" json:"filled_quantity" validate:"gte=0,ltefield=Quantity"`
	// SignalID is an advisory back-reference to the originating signal, not ownership.
	SignalID optional.Option[string] `yaml:"signal_id" json:"signal_id"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}
