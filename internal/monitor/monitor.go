// Package monitor runs the evaluation loop: on every tick it fetches daily
// bars for the configured universe, simulates fills for pending orders,
// maintains open positions and asks the strategy for new entry signals. Each
// symbol is evaluated independently so one bad symbol never aborts the cycle.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/logger"
	"github.com/rxtech-lab/argo-monitor/internal/marketdata"
	"github.com/rxtech-lab/argo-monitor/internal/notification"
	"github.com/rxtech-lab/argo-monitor/internal/strategy"
	"github.com/rxtech-lab/argo-monitor/internal/trading"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"go.uber.org/zap"
)

// Store is the persistence surface the monitor depends on.
type Store interface {
	SaveBars(series types.PriceSeries) error
	SaveSignal(signal types.TradingSignal) error
	SaveOrder(order types.Order) error
	SavePosition(position types.Position) error
	GetSignals(symbol string) ([]types.TradingSignal, error)
	GetPendingOrders() ([]types.Order, error)
	GetOpenPositionBySymbol(symbol string) (optional.Option[types.Position], error)
}

// Monitor owns one evaluation loop over the configured symbol universe.
type Monitor struct {
	cfg      config.MonitorConfig
	strategy strategy.Strategy
	provider marketdata.Provider
	store    Store
	notifier notification.Notifier
	logger   *logger.Logger

	inFlight atomic.Bool
}

// NewMonitor wires the monitor against its collaborators.
func NewMonitor(
	cfg config.MonitorConfig,
	strat strategy.Strategy,
	provider marketdata.Provider,
	store Store,
	notifier notification.Notifier,
	logger *logger.Logger,
) *Monitor {
	return &Monitor{
		cfg:      cfg,
		strategy: strat,
		provider: provider,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Run evaluates the universe once immediately and then on every tick until
// the context is cancelled. A tick fires into a skipped no-op while the
// previous cycle is still in flight, so cycles never overlap.
func (m *Monitor) Run(ctx context.Context) error {
	m.runGuarded(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.runGuarded(ctx)
		}
	}
}

func (m *Monitor) runGuarded(ctx context.Context) {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.logger.Warn("previous cycle still in flight, skipping tick")
		return
	}

	defer m.inFlight.Store(false)

	m.RunOnce(ctx)
}

// RunOnce evaluates every configured symbol. A failing symbol is logged and
// skipped; the cycle stops early only when the context is cancelled.
func (m *Monitor) RunOnce(ctx context.Context) {
	started := time.Now()

	pendingBySymbol, err := m.pendingOrdersBySymbol()
	if err != nil {
		m.logger.Error("failed to load pending orders", zap.Error(err))
		return
	}

	for batch, symbols := range symbolBatches(m.cfg.Symbols, m.cfg.BatchSize) {
		m.logger.Debug("evaluating batch", zap.Int("batch", batch), zap.Int("symbols", len(symbols)))

		for _, symbol := range symbols {
			if ctx.Err() != nil {
				m.logger.Info("cycle cancelled", zap.String("symbol", symbol))
				return
			}

			if err := m.evaluateSymbol(ctx, symbol, pendingBySymbol[symbol]); err != nil {
				if errors.IsInsufficientDataError(err) {
					m.logger.Debug("not enough history yet", zap.String("symbol", symbol), zap.Error(err))
					continue
				}

				m.logger.Error("failed to evaluate symbol", zap.String("symbol", symbol), zap.Error(err))
			}
		}
	}

	m.logger.Info("cycle complete",
		zap.Int("symbols", len(m.cfg.Symbols)),
		zap.Duration("elapsed", time.Since(started)),
	)
}

// symbolBatches chunks the universe into batches of at most size symbols.
// A size of zero (or one covering the whole universe) yields a single batch.
func symbolBatches(symbols []string, size int) [][]string {
	if size <= 0 || size >= len(symbols) {
		return [][]string{symbols}
	}

	batches := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		batches = append(batches, symbols[start:end])
	}

	return batches
}

func (m *Monitor) pendingOrdersBySymbol() (map[string][]types.Order, error) {
	pending, err := m.store.GetPendingOrders()
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string][]types.Order, len(pending))
	for _, order := range pending {
		bySymbol[order.Symbol] = append(bySymbol[order.Symbol], order)
	}

	return bySymbol, nil
}

func (m *Monitor) evaluateSymbol(ctx context.Context, symbol string, pending []types.Order) error {
	series, err := m.provider.GetPriceSeries(ctx, symbol)
	if err != nil {
		return err
	}

	lastBar, ok := series.Last()
	if !ok {
		return errors.Newf(errors.ErrCodeDataNotFound, "empty price series for %s", symbol)
	}

	// history persists best effort: evaluation proceeds on the fetched series
	// even when the write fails
	if err := m.store.SaveBars(series); err != nil {
		m.logger.Warn("failed to persist price bars", zap.String("symbol", symbol), zap.Error(err))
	}

	hasPendingEntry, err := m.processPendingOrders(ctx, pending, lastBar.Close)
	if err != nil {
		return err
	}

	holding, err := m.maintainPosition(ctx, symbol, series, lastBar)
	if err != nil {
		return err
	}

	if holding || hasPendingEntry {
		return nil
	}

	return m.scanForEntry(ctx, symbol, series)
}

// processPendingOrders simulates fills against the latest close. An entry fill
// opens a position from its originating signal; orders that remain pending are
// reported so the scan does not stack a second entry.
func (m *Monitor) processPendingOrders(ctx context.Context, pending []types.Order, lastClose float64) (bool, error) {
	hasPendingEntry := false

	for _, order := range pending {
		if !trading.CheckOrderFill(order, lastClose) {
			if order.Side == types.OrderSideBuy {
				hasPendingEntry = true
			}

			continue
		}

		fillPrice := lastClose
		if err := trading.FillOrder(&order, fillPrice, time.Now().UTC()); err != nil {
			return hasPendingEntry, err
		}

		if err := m.store.SaveOrder(order); err != nil {
			return hasPendingEntry, err
		}

		m.logger.Info("order filled",
			zap.String("order_id", order.OrderID),
			zap.String("symbol", order.Symbol),
			zap.Float64("price", fillPrice),
		)
		m.notify(ctx, notification.SeverityInfo, "order filled", notification.FormatOrder(order))

		if order.Side == types.OrderSideBuy {
			if err := m.openPositionFromFill(ctx, order); err != nil {
				return hasPendingEntry, err
			}
		}
	}

	return hasPendingEntry, nil
}

func (m *Monitor) openPositionFromFill(ctx context.Context, order types.Order) error {
	signal, err := m.lookupSignal(order)
	if err != nil {
		return err
	}

	position, err := trading.OpenPosition(order, signal.StopLoss, signal.TargetPrice)
	if err != nil {
		return err
	}

	if err := m.store.SavePosition(position); err != nil {
		return err
	}

	m.logger.Info("position opened",
		zap.String("position_id", position.PositionID),
		zap.String("symbol", position.Symbol),
		zap.Float64("entry", position.EntryPrice),
	)
	m.notify(ctx, notification.SeverityInfo, "position opened", notification.FormatPosition(position))

	return nil
}

// lookupSignal resolves the signal an entry order was placed for; the signal
// carries the stop and target the position inherits.
func (m *Monitor) lookupSignal(order types.Order) (types.TradingSignal, error) {
	signalID, err := order.SignalID.Take()
	if err != nil {
		return types.TradingSignal{}, errors.Newf(errors.ErrCodeInvalidOrder,
			"entry order %s has no signal reference", order.OrderID)
	}

	signals, err := m.store.GetSignals(order.Symbol)
	if err != nil {
		return types.TradingSignal{}, err
	}

	for _, signal := range signals {
		if signal.ID == signalID {
			return signal, nil
		}
	}

	return types.TradingSignal{}, errors.Newf(errors.ErrCodeDataNotFound,
		"signal %s for order %s not found", signalID, order.OrderID)
}

// maintainPosition refreshes the open position for the symbol and closes it
// when the strategy calls the exit. Reports whether the symbol still holds an
// open position afterwards.
func (m *Monitor) maintainPosition(ctx context.Context, symbol string, series types.PriceSeries, lastBar types.PriceBar) (bool, error) {
	current, err := m.store.GetOpenPositionBySymbol(symbol)
	if err != nil {
		return false, err
	}

	position, err := current.Take()
	if err != nil {
		return false, nil
	}

	if err := trading.UpdatePosition(&position, lastBar.Close); err != nil {
		return true, err
	}

	if err := m.store.SavePosition(position); err != nil {
		return true, err
	}

	exit, err := m.strategy.ShouldSell(position, series)
	if err != nil {
		return true, err
	}

	if !exit {
		return true, nil
	}

	return false, m.exitPosition(ctx, position, lastBar.Close)
}

// exitPosition closes a position through a market order filled at the latest
// close: long positions sell, short positions buy to cover.
func (m *Monitor) exitPosition(ctx context.Context, position types.Position, lastClose float64) error {
	side := types.OrderSideSell
	if position.Side == types.PositionSideShort {
		side = types.OrderSideBuy
	}

	now := time.Now().UTC()

	order, err := trading.NewOrder(trading.NewOrderParams{
		Symbol:   position.Symbol,
		Side:     side,
		Type:     types.OrderTypeMarket,
		Quantity: position.Quantity,
		Price:    lastClose,
		SignalID: position.SignalID,
	}, now)
	if err != nil {
		return err
	}

	if err := trading.FillOrder(&order, lastClose, now); err != nil {
		return err
	}

	if err := m.store.SaveOrder(order); err != nil {
		return err
	}

	if err := trading.ClosePosition(&position, lastClose, now); err != nil {
		return err
	}

	if err := m.store.SavePosition(position); err != nil {
		return err
	}

	m.logger.Info("position closed",
		zap.String("position_id", position.PositionID),
		zap.String("symbol", position.Symbol),
		zap.Float64("exit", lastClose),
		zap.Float64("realized_pnl", position.RealizedPnL),
	)
	m.notify(ctx, notification.SeverityInfo, "position closed", notification.FormatPosition(position))

	return nil
}

// scanForEntry asks the strategy for a signal and places a limit entry order
// at the signal's entry price when it clears the acceptance thresholds.
func (m *Monitor) scanForEntry(ctx context.Context, symbol string, series types.PriceSeries) error {
	result, err := m.strategy.Analyze(symbol, series)
	if err != nil {
		return err
	}

	signal, err := result.Take()
	if err != nil {
		return nil
	}

	if err := m.store.SaveSignal(signal); err != nil {
		return err
	}

	m.notify(ctx, notification.SeverityInfo, "signal detected", notification.FormatSignal(signal))

	if !m.strategy.ShouldBuy(signal) {
		m.logger.Debug("signal below acceptance thresholds",
			zap.String("symbol", symbol),
			zap.Float64("confidence", signal.Confidence),
		)

		return nil
	}

	quantity, err := m.strategy.CalculatePositionSize(signal, m.cfg.InitialCapital)
	if err != nil {
		return err
	}

	if quantity == 0 {
		m.logger.Debug("position size rounds to zero shares", zap.String("symbol", symbol))
		return nil
	}

	order, err := trading.NewOrder(trading.NewOrderParams{
		Symbol:   symbol,
		Side:     types.OrderSideBuy,
		Type:     types.OrderTypeLimit,
		Quantity: quantity,
		Price:    signal.EntryPrice,
		SignalID: optional.Some(signal.ID),
	}, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := m.store.SaveOrder(order); err != nil {
		return err
	}

	m.logger.Info("entry order placed",
		zap.String("order_id", order.OrderID),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("limit", signal.EntryPrice),
	)
	m.notify(ctx, notification.SeverityInfo, "entry order placed", notification.FormatOrder(order))

	return nil
}

// notify delivers best effort: a sink failure is logged, never propagated.
func (m *Monitor) notify(ctx context.Context, severity notification.Severity, title, message string) {
	if err := m.notifier.Notify(ctx, severity, title, message); err != nil {
		m.logger.Warn("failed to deliver notification", zap.String("title", title), zap.Error(err))
	}
}
