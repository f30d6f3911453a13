// Package storage persists price bars, signals, orders and positions to an
// embedded DuckDB database. Records are written with INSERT OR REPLACE keyed
// by their identifiers so that lifecycle updates overwrite the previous row;
// nothing is ever deleted.
package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/logger"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"go.uber.org/zap"
)

// Store is a DuckDB-backed persistence layer.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewStore opens the database at path, or an in-memory database when path is
// empty, and creates the schema.
func NewStore(path string, logger *logger.Logger) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStorageInitFailed, err, "failed to open database at %s", path)
	}

	store := &Store{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			signal_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			signal_type TEXT NOT NULL,
			signal_time TIMESTAMP NOT NULL,
			entry_price DOUBLE NOT NULL,
			stop_loss DOUBLE NOT NULL,
			target_price DOUBLE NOT NULL,
			risk_reward_ratio DOUBLE NOT NULL,
			confidence DOUBLE NOT NULL,
			indicators TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol TEXT NOT NULL,
			bar_time TIMESTAMP NOT NULL,
			open DOUBLE NOT NULL,
			high DOUBLE NOT NULL,
			low DOUBLE NOT NULL,
			close DOUBLE NOT NULL,
			volume BIGINT NOT NULL,
			PRIMARY KEY (symbol, bar_time)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			order_type TEXT NOT NULL,
			quantity BIGINT NOT NULL,
			price DOUBLE NOT NULL,
			stop_price DOUBLE,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			filled_price DOUBLE,
			filled_quantity BIGINT NOT NULL,
			signal_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			position_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			entry_price DOUBLE NOT NULL,
			current_price DOUBLE NOT NULL,
			quantity BIGINT NOT NULL,
			stop_loss DOUBLE NOT NULL,
			target_price DOUBLE NOT NULL,
			status TEXT NOT NULL,
			entry_time TIMESTAMP NOT NULL,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			unrealized_pnl DOUBLE NOT NULL,
			realized_pnl DOUBLE NOT NULL,
			signal_id TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to create schema", err)
		}
	}

	return nil
}

// SaveBars upserts a fetched price series in one transaction, so a cycle's
// history either lands completely or not at all. Re-saving the same bars is a
// no-op overwrite.
func (s *Store) SaveBars(series types.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to begin bar transaction", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO price_bars (symbol, bar_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to prepare bar insert", err)
	}
	defer stmt.Close()

	for _, bar := range series {
		_, err := stmt.Exec(bar.Symbol, bar.Time, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(errors.ErrCodeStorageWriteFailed, err, "failed to save bar %s %s",
				bar.Symbol, bar.Time.Format(time.DateOnly))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to commit bars", err)
	}

	s.logger.Debug("saved price bars", zap.String("symbol", series[0].Symbol), zap.Int("bars", len(series)))

	return nil
}

// GetBars returns the stored price series for a symbol, ascending by date.
func (s *Store) GetBars(symbol string) (types.PriceSeries, error) {
	query := s.sq.
		Select("symbol", "bar_time", "open", "high", "low", "close", "volume").
		From("price_bars").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("bar_time ASC").
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStorageReadFailed, err, "failed to query bars for %s", symbol)
	}
	defer rows.Close()

	var series types.PriceSeries

	for rows.Next() {
		var bar types.PriceBar

		err := rows.Scan(&bar.Symbol, &bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to scan bar", err)
		}

		series = append(series, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to iterate bars", err)
	}

	return series, nil
}

// SaveSignal upserts a trading signal.
func (s *Store) SaveSignal(signal types.TradingSignal) error {
	indicators, err := json.Marshal(signal.Indicators)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageWriteFailed, err, "failed to encode indicators for signal %s", signal.ID)
	}

	query := s.sq.
		Insert("signals").
		Options("OR REPLACE").
		Columns(
			"signal_id", "symbol", "signal_type", "signal_time", "entry_price",
			"stop_loss", "target_price", "risk_reward_ratio", "confidence", "indicators",
		).
		Values(
			signal.ID, signal.Symbol, string(signal.Type), signal.Time, signal.EntryPrice,
			signal.StopLoss, signal.TargetPrice, signal.RiskRewardRatio, signal.Confidence, string(indicators),
		).
		RunWith(s.db)

	if _, err := query.Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeStorageWriteFailed, err, "failed to save signal %s", signal.ID)
	}

	s.logger.Debug("saved signal", zap.String("signal_id", signal.ID), zap.String("symbol", signal.Symbol))

	return nil
}

// SaveOrder upserts an order; lifecycle transitions overwrite the stored row.
func (s *Store) SaveOrder(order types.Order) error {
	query := s.sq.
		Insert("orders").
		Options("OR REPLACE").
		Columns(
			"order_id", "symbol", "side", "order_type", "quantity", "price", "stop_price",
			"status", "created_at", "updated_at", "filled_price", "filled_quantity", "signal_id",
		).
		Values(
			order.OrderID, order.Symbol, string(order.Side), string(order.Type), order.Quantity,
			order.Price, nullableFloat(order.StopPrice), string(order.Status), order.CreatedAt,
			order.UpdatedAt, nullableFloat(order.FilledPrice), order.FilledQuantity,
			nullableString(order.SignalID),
		).
		RunWith(s.db)

	if _, err := query.Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeStorageWriteFailed, err, "failed to save order %s", order.OrderID)
	}

	return nil
}

// SavePosition upserts a position; lifecycle transitions overwrite the stored row.
func (s *Store) SavePosition(position types.Position) error {
	query := s.sq.
		Insert("positions").
		Options("OR REPLACE").
		Columns(
			"position_id", "symbol", "side", "entry_price", "current_price", "quantity",
			"stop_loss", "target_price", "status", "entry_time", "exit_time", "exit_price",
			"unrealized_pnl", "realized_pnl", "signal_id",
		).
		Values(
			position.PositionID, position.Symbol, string(position.Side), position.EntryPrice,
			position.CurrentPrice, position.Quantity, position.StopLoss, position.TargetPrice,
			string(position.Status), position.EntryTime, nullableTime(position.ExitTime),
			nullableFloat(position.ExitPrice), position.UnrealizedPnL, position.RealizedPnL,
			nullableString(position.SignalID),
		).
		RunWith(s.db)

	if _, err := query.Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeStorageWriteFailed, err, "failed to save position %s", position.PositionID)
	}

	return nil
}

// GetSignals returns the stored signals for a symbol, newest first.
func (s *Store) GetSignals(symbol string) ([]types.TradingSignal, error) {
	query := s.sq.
		Select(
			"signal_id", "symbol", "signal_type", "signal_time", "entry_price",
			"stop_loss", "target_price", "risk_reward_ratio", "confidence", "indicators",
		).
		From("signals").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("signal_time DESC").
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStorageReadFailed, err, "failed to query signals for %s", symbol)
	}
	defer rows.Close()

	var signals []types.TradingSignal

	for rows.Next() {
		var (
			signal     types.TradingSignal
			sigType    string
			indicators string
		)

		err := rows.Scan(
			&signal.ID, &signal.Symbol, &sigType, &signal.Time, &signal.EntryPrice,
			&signal.StopLoss, &signal.TargetPrice, &signal.RiskRewardRatio, &signal.Confidence, &indicators,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to scan signal", err)
		}

		signal.Type = types.SignalType(sigType)

		if indicators != "" {
			if err := json.Unmarshal([]byte(indicators), &signal.Indicators); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeStorageReadFailed, err, "failed to decode indicators for signal %s", signal.ID)
			}
		}

		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to iterate signals", err)
	}

	return signals, nil
}

// GetPendingOrders returns all orders still awaiting a fill.
func (s *Store) GetPendingOrders() ([]types.Order, error) {
	return s.queryOrders(squirrel.Eq{"status": string(types.OrderStatusPending)})
}

// GetOrdersBySymbol returns all stored orders for a symbol, oldest first.
func (s *Store) GetOrdersBySymbol(symbol string) ([]types.Order, error) {
	return s.queryOrders(squirrel.Eq{"symbol": symbol})
}

func (s *Store) queryOrders(where squirrel.Eq) ([]types.Order, error) {
	query := s.sq.
		Select(
			"order_id", "symbol", "side", "order_type", "quantity", "price", "stop_price",
			"status", "created_at", "updated_at", "filled_price", "filled_quantity", "signal_id",
		).
		From("orders").
		Where(where).
		OrderBy("created_at ASC").
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to query orders", err)
	}
	defer rows.Close()

	var orders []types.Order

	for rows.Next() {
		var (
			order       types.Order
			side        string
			orderType   string
			status      string
			stopPrice   sql.NullFloat64
			filledPrice sql.NullFloat64
			signalID    sql.NullString
		)

		err := rows.Scan(
			&order.OrderID, &order.Symbol, &side, &orderType, &order.Quantity, &order.Price,
			&stopPrice, &status, &order.CreatedAt, &order.UpdatedAt, &filledPrice,
			&order.FilledQuantity, &signalID,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to scan order", err)
		}

		order.Side = types.OrderSide(side)
		order.Type = types.OrderType(orderType)
		order.Status = types.OrderStatus(status)
		order.StopPrice = optionalFloat(stopPrice)
		order.FilledPrice = optionalFloat(filledPrice)
		order.SignalID = optionalString(signalID)

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to iterate orders", err)
	}

	return orders, nil
}

// GetOpenPositions returns all currently open positions.
func (s *Store) GetOpenPositions() ([]types.Position, error) {
	return s.queryPositions(squirrel.Eq{"status": string(types.PositionStatusOpen)})
}

// GetOpenPositionBySymbol returns the open position for a symbol, or None when
// the symbol has no open position.
func (s *Store) GetOpenPositionBySymbol(symbol string) (optional.Option[types.Position], error) {
	positions, err := s.queryPositions(squirrel.Eq{
		"symbol": symbol,
		"status": string(types.PositionStatusOpen),
	})
	if err != nil {
		return optional.None[types.Position](), err
	}

	if len(positions) == 0 {
		return optional.None[types.Position](), nil
	}

	return optional.Some(positions[0]), nil
}

func (s *Store) queryPositions(where squirrel.Eq) ([]types.Position, error) {
	query := s.sq.
		Select(
			"position_id", "symbol", "side", "entry_price", "current_price", "quantity",
			"stop_loss", "target_price", "status", "entry_time", "exit_time", "exit_price",
			"unrealized_pnl", "realized_pnl", "signal_id",
		).
		From("positions").
		Where(where).
		OrderBy("entry_time ASC").
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to query positions", err)
	}
	defer rows.Close()

	var positions []types.Position

	for rows.Next() {
		var (
			position  types.Position
			side      string
			status    string
			exitTime  sql.NullTime
			exitPrice sql.NullFloat64
			signalID  sql.NullString
		)

		err := rows.Scan(
			&position.PositionID, &position.Symbol, &side, &position.EntryPrice,
			&position.CurrentPrice, &position.Quantity, &position.StopLoss, &position.TargetPrice,
			&status, &position.EntryTime, &exitTime, &exitPrice, &position.UnrealizedPnL,
			&position.RealizedPnL, &signalID,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to scan position", err)
		}

		position.Side = types.PositionSide(side)
		position.Status = types.PositionStatus(status)
		position.ExitTime = optionalTime(exitTime)
		position.ExitPrice = optionalFloat(exitPrice)
		position.SignalID = optionalString(signalID)

		positions = append(positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageReadFailed, "failed to iterate positions", err)
	}

	return positions, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullableFloat(value optional.Option[float64]) any {
	if v, err := value.Take(); err == nil {
		return v
	}

	return nil
}

func nullableTime(value optional.Option[time.Time]) any {
	if v, err := value.Take(); err == nil {
		return v
	}

	return nil
}

func nullableString(value optional.Option[string]) any {
	if v, err := value.Take(); err == nil {
		return v
	}

	return nil
}

func optionalFloat(value sql.NullFloat64) optional.Option[float64] {
	if value.Valid {
		return optional.Some(value.Float64)
	}

	return optional.None[float64]()
}

func optionalTime(value sql.NullTime) optional.Option[time.Time] {
	if value.Valid {
		return optional.Some(value.Time)
	}

	return optional.None[time.Time]()
}

func optionalString(value sql.NullString) optional.Option[string] {
	if value.Valid {
		return optional.Some(value.String)
	}

	return optional.None[string]()
}
