package trading

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"github.com/shopspring/decimal"
)

// OpenPosition creates an OPEN position from a filled entry order. A BUY fill
// opens a long position, a SELL fill a short one. Orders in any other status
// cannot open a position.
func OpenPosition(order types.Order, stopLoss, targetPrice float64) (types.Position, error) {
	if order.Status != types.OrderStatusFilled {
		return types.Position{}, errors.Newf(errors.ErrCodeInvalidOrder,
			"cannot open position from order %s in status %s", order.OrderID, order.Status)
	}

	fillPrice, err := order.FilledPrice.Take()
	if err != nil {
		return types.Position{}, errors.Newf(errors.ErrCodeInvalidOrder,
			"filled order %s has no fill price", order.OrderID)
	}

	side := types.PositionSideLong
	if order.Side == types.OrderSideSell {
		side = types.PositionSideShort
	}

	position := types.Position{
		PositionID:   uuid.NewString(),
		Symbol:       order.Symbol,
		Side:         side,
		EntryPrice:   fillPrice,
		CurrentPrice: fillPrice,
		Quantity:     order.FilledQuantity,
		StopLoss:     stopLoss,
		TargetPrice:  targetPrice,
		Status:       types.PositionStatusOpen,
		EntryTime:    order.UpdatedAt,
		SignalID:     order.SignalID,
	}

	if err := position.Validate(); err != nil {
		return types.Position{}, err
	}

	return position, nil
}

// UpdatePosition refreshes the current price and unrealized PnL of an open
// position. Updating a closed position is an invalid-state error.
func UpdatePosition(position *types.Position, currentPrice float64) error {
	if position.Status != types.PositionStatusOpen {
		return errors.Newf(errors.ErrCodeInvalidState,
			"cannot update closed position %s", position.PositionID)
	}

	position.CurrentPrice = currentPrice
	position.UnrealizedPnL = pnl(position.Side, position.EntryPrice, currentPrice, position.Quantity)

	return nil
}

// ShouldStopLoss reports whether the price has breached the stop. Long
// positions stop at or below, short positions at or above.
func ShouldStopLoss(position types.Position, currentPrice float64) bool {
	if position.Side == types.PositionSideShort {
		return currentPrice >= position.StopLoss
	}

	return currentPrice <= position.StopLoss
}

// ShouldTakeProfit reports whether the price has reached the target.
func ShouldTakeProfit(position types.Position, currentPrice float64) bool {
	if position.Side == types.PositionSideShort {
		return currentPrice <= position.TargetPrice
	}

	return currentPrice >= position.TargetPrice
}

// ClosePosition transitions an open position to CLOSED at the exit price and
// records the realized PnL. Closing twice is an invalid-state error and never
// recomputes the realized PnL.
func ClosePosition(position *types.Position, exitPrice float64, exitTime time.Time) error {
	if position.Status != types.PositionStatusOpen {
		return errors.Newf(errors.ErrCodeInvalidState,
			"cannot close position %s in status %s", position.PositionID, position.Status)
	}

	if exitPrice <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"non-positive exit price %f for position %s", exitPrice, position.PositionID)
	}

	// UnrealizedPnL stays frozen at its last computed value.
	position.Status = types.PositionStatusClosed
	position.ExitPrice = optional.Some(exitPrice)
	position.ExitTime = optional.Some(exitTime)
	position.CurrentPrice = exitPrice
	position.RealizedPnL = realizedPnL(position.Side, position.EntryPrice, exitPrice, position.Quantity)

	return nil
}

// PnLPercent returns the position's PnL as a percentage of the entry value:
// realized once closed, unrealized while open. The result is scaled to
// percentage points, so a 5% gain is 5.0, not 0.05.
func PnLPercent(position types.Position) float64 {
	entryValue := position.EntryPrice * float64(position.Quantity)
	if entryValue == 0 {
		return 0
	}

	if position.Status == types.PositionStatusClosed {
		return position.RealizedPnL / entryValue * 100
	}

	return position.UnrealizedPnL / entryValue * 100
}

func pnl(side types.PositionSide, entryPrice, currentPrice float64, quantity int64) float64 {
	diff := currentPrice - entryPrice
	if side == types.PositionSideShort {
		diff = -diff
	}

	return diff * float64(quantity)
}

// realizedPnL computes the closed PnL in decimal space so that the archived
// figure does not accumulate float error.
func realizedPnL(side types.PositionSide, entryPrice, exitPrice float64, quantity int64) float64 {
	entry := decimal.NewFromFloat(entryPrice).Mul(decimal.NewFromInt(quantity))
	exit := decimal.NewFromFloat(exitPrice).Mul(decimal.NewFromInt(quantity))

	result := exit.Sub(entry)
	if side == types.PositionSideShort {
		result = entry.Sub(exit)
	}

	value, _ := result.Float64()

	return value
}
