package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

type SignalType string

const (
	// SignalTypeBollingerBreakout is emitted when the close crosses outside a Bollinger band.
	SignalTypeBollingerBreakout SignalType = "bollinger_breakout"
	// SignalTypeBullishEngulfing is emitted when a bullish candle fully engulfs the prior bearish body.
	SignalTypeBullishEngulfing SignalType = "bullish_engulfing"
	// SignalTypeBreakHigh is emitted when the current high strictly exceeds the previous high.
	SignalTypeBreakHigh SignalType = "break_high"
	// SignalTypeComposite is emitted when at least two independent confirmations agree.
	SignalTypeComposite SignalType = "composite"
)

// TradingSignal is a strategy's recommendation to enter a position, with
// attached risk parameters. Signals are immutable once created.
type TradingSignal struct {
	ID     string     `yaml:"id" json:"id" validate:"required,uuid"`
	Symbol string     `yaml:"symbol" json:"symbol" validate:"required"`
	Type   SignalType `yaml:"type" json:"type" validate:"required,oneof=bollinger_breakout bullish_engulfing break_high composite"`
	// Time is the time of the triggering bar, not the wall clock,
	// so that analysis stays idempotent.
	Time       time.Time `yaml:"time" json:"time" validate:"required"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	StopLoss   float64   `yaml:"stop_loss" json:"stop_loss" validate:"required,gt=0"`
	// TargetPrice is entry + risk_reward_ratio * (entry - stop_loss) for longs.
	TargetPrice float64 `yaml:"target_price" json:"target_price" validate:"required,gt=0"`
	// RiskRewardRatio is target distance divided by stop distance.
	RiskRewardRatio float64 `yaml:"risk_reward_ratio" json:"risk_reward_ratio" validate:"required,gt=0"`
	Confidence      float64 `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	// Indicators is a snapshot of the indicator values used to justify the signal.
	Indicators map[string]float64 `yaml:"indicators" json:"indicators"`
}

// Validate validates the TradingSignal struct.
func (s *TradingSignal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid trading signal", err)
	}

	return nil
}
