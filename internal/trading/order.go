// Package trading implements the order and position lifecycles: orders move
// from PENDING to exactly one terminal status, positions from OPEN to CLOSED.
// All transitions validate the current state and reject anything else, so a
// stored record can never reach an impossible state.
package trading

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// NewOrderParams carries the caller-supplied fields of a new order.
type NewOrderParams struct {
	Symbol    string
	Side      types.OrderSide
	Type      types.OrderType
	Quantity  int64
	Price     float64
	StopPrice optional.Option[float64]
	SignalID  optional.Option[string]
}

// NewOrder creates a PENDING order from the given parameters. A stop-limit
// order must carry a stop price; any other validation failure is reported as
// an invalid-order error.
func NewOrder(params NewOrderParams, now time.Time) (types.Order, error) {
	if params.Type == types.OrderTypeStopLimit && params.StopPrice.IsNone() {
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidOrder,
			"stop-limit order for %s requires a stop price", params.Symbol)
	}

	order := types.Order{
		OrderID:   uuid.NewString(),
		Symbol:    params.Symbol,
		Side:      params.Side,
		Type:      params.Type,
		Quantity:  params.Quantity,
		Price:     params.Price,
		StopPrice: params.StopPrice,
		Status:    types.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		SignalID:  params.SignalID,
	}

	if err := order.Validate(); err != nil {
		return types.Order{}, err
	}

	return order, nil
}

// CheckOrderFill reports whether a pending order would fill at the current
// price. Market orders fill unconditionally; limit buys fill at or below the
// limit, limit sells at or above it. A stop-limit order first needs its stop
// touched, then fills under its limit condition.
func CheckOrderFill(order types.Order, currentPrice float64) bool {
	if order.Status != types.OrderStatusPending {
		return false
	}

	switch order.Type {
	case types.OrderTypeMarket:
		return true
	case types.OrderTypeLimit:
		return limitSatisfied(order, currentPrice)
	case types.OrderTypeStopLimit:
		return stopTouched(order, currentPrice) && limitSatisfied(order, currentPrice)
	default:
		return false
	}
}

func limitSatisfied(order types.Order, currentPrice float64) bool {
	if order.Side == types.OrderSideBuy {
		return currentPrice <= order.Price
	}

	return currentPrice >= order.Price
}

func stopTouched(order types.Order, currentPrice float64) bool {
	stop, err := order.StopPrice.Take()
	if err != nil {
		return false
	}

	if order.Side == types.OrderSideBuy {
		return currentPrice >= stop
	}

	return currentPrice <= stop
}

// FillOrder transitions a PENDING order to FILLED at the given price for its
// full quantity. Any other starting status is an invalid transition.
func FillOrder(order *types.Order, fillPrice float64, now time.Time) error {
	if order.Status != types.OrderStatusPending {
		return errors.Newf(errors.ErrCodeInvalidTransition,
			"cannot fill order %s in status %s", order.OrderID, order.Status)
	}

	if fillPrice <= 0 {
		return errors.Newf(errors.ErrCodeInvalidOrder,
			"non-positive fill price %f for order %s", fillPrice, order.OrderID)
	}

	order.Status = types.OrderStatusFilled
	order.FilledPrice = optional.Some(fillPrice)
	order.FilledQuantity = order.Quantity
	order.UpdatedAt = now

	return nil
}

// CancelOrder transitions a PENDING order to CANCELLED. Terminal orders,
// including already cancelled ones, are rejected with an invalid transition.
func CancelOrder(order *types.Order, now time.Time) error {
	if order.Status != types.OrderStatusPending {
		return errors.Newf(errors.ErrCodeInvalidTransition,
			"cannot cancel order %s in status %s", order.OrderID, order.Status)
	}

	order.Status = types.OrderStatusCancelled
	order.UpdatedAt = now

	return nil
}

// RejectOrder transitions a PENDING order to REJECTED.
func RejectOrder(order *types.Order, now time.Time) error {
	if order.Status != types.OrderStatusPending {
		return errors.Newf(errors.ErrCodeInvalidTransition,
			"cannot reject order %s in status %s", order.OrderID, order.Status)
	}

	order.Status = types.OrderStatusRejected
	order.UpdatedAt = now

	return nil
}

// OrderValue returns the executed value of a filled order, or the nominal
// value at the limit price otherwise.
func OrderValue(order types.Order) float64 {
	if price, err := order.FilledPrice.Take(); err == nil {
		return price * float64(order.FilledQuantity)
	}

	return order.Price * float64(order.Quantity)
}
