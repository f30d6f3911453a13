package notification

import (
	"fmt"

	"github.com/rxtech-lab/argo-monitor/internal/types"
)

// FormatSignal renders a trading signal as a human-readable message.
func FormatSignal(signal types.TradingSignal) string {
	return fmt.Sprintf(
		"%s signal for %s\nentry: %.2f\nstop: %.2f\ntarget: %.2f\nconfidence: %.0f%%",
		signal.Type, signal.Symbol, signal.EntryPrice, signal.StopLoss, signal.TargetPrice,
		signal.Confidence*100,
	)
}

// FormatOrder renders an order transition as a human-readable message.
func FormatOrder(order types.Order) string {
	msg := fmt.Sprintf(
		"%s %s order for %s\nquantity: %d @ %.2f\nstatus: %s",
		order.Side, order.Type, order.Symbol, order.Quantity, order.Price, order.Status,
	)

	if price, err := order.FilledPrice.Take(); err == nil {
		msg += fmt.Sprintf("\nfilled: %d @ %.2f", order.FilledQuantity, price)
	}

	return msg
}

// FormatPosition renders a position update as a human-readable message.
func FormatPosition(position types.Position) string {
	if position.Status == types.PositionStatusClosed {
		return fmt.Sprintf(
			"closed %s position in %s\nentry: %.2f exit: %.2f\nrealized PnL: %.2f",
			position.Side, position.Symbol, position.EntryPrice,
			position.ExitPrice.TakeOr(0), position.RealizedPnL,
		)
	}

	return fmt.Sprintf(
		"open %s position in %s\nentry: %.2f current: %.2f\nunrealized PnL: %.2f",
		position.Side, position.Symbol, position.EntryPrice, position.CurrentPrice,
		position.UnrealizedPnL,
	)
}
