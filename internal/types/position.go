package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

type PositionSide string

type PositionStatus string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

const (
	PositionStatusOpen PositionStatus = "OPEN"
	// PositionStatusClosed is terminal; a position is closed exactly once.
	PositionStatusClosed PositionStatus = "CLOSED"
)

// Position is a tracked holding opened by a filled entry order.
// A symbol has at most one open position at a time; the caller enforces this.
type Position struct {
	PositionID string       `yaml:"position_id" json:"position_id" validate:"required,uuid"`
	Symbol     string       `yaml:"symbol" json:"symbol" validate:"required"`
	Side       PositionSide `yaml:"side" json:"side" validate:"required,oneof=LONG SHORT"`
	EntryPrice float64      `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	// CurrentPrice is refreshed every monitoring cycle while the position is open.
	CurrentPrice float64                    `yaml:"current_price" json:"current_price" validate:"required,gt=0"`
	Quantity     int64                      `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	StopLoss     float64                    `yaml:"stop_loss" json:"stop_loss" validate:"required,gt=0"`
	TargetPrice  float64                    `yaml:"target_price" json:"target_price" validate:"required,gt=0"`
	Status       PositionStatus             `yaml:"status" json:"status" validate:"required,oneof=OPEN CLOSED"`
	EntryTime    time.Time                  `yaml:"entry_time" json:"entry_time" validate:"required"`
	ExitTime     optional.Option[time.Time] `yaml:"exit_time" json:"exit_time"`
	ExitPrice    optional.Option[float64]   `yaml:"exit_price" json:"exit_price"`
	// UnrealizedPnL is valid while the position is open; it is frozen at its
	// last computed value when the position closes.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// RealizedPnL is valid only once the position is closed and is never recomputed.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// SignalID is an advisory back-reference to the originating signal.
	SignalID optional.Option[string] `yaml:"signal_id" json:"signal_id"`
}

// Validate validates the Position struct.
func (p *Position) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid position", err)
	}

	return nil
}
