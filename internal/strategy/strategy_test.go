package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

type StrategyTestSuite struct {
	suite.Suite
	cfg config.StrategyConfig
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.cfg = config.StrategyConfig{
		Name:              "bollinger",
		MAPeriod:          20,
		BollingerPeriod:   20,
		BollingerStdDev:   2.0,
		ThresholdLargeCap: 0.08,
		ThresholdSmallCap: 0.20,
		LargeCapCutoff:    300e9,
		MidCapCutoff:      10e9,
		RiskRewardRatio:   2.0,
		MinConfidence:     0.3,
		RiskFraction:      0.01,
		StopLossBuffer:    0.02,
	}
}

// flatBar builds a bar with a narrow plausible range around the close.
func flatBar(day int, close float64) types.PriceBar {
	return types.PriceBar{
		Symbol: "TEST",
		Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Open:   close,
		High:   close + 0.5,
		Low:    close - 0.5,
		Close:  close,
		Volume: 1_000_000,
	}
}

func flatSeries(n int, close float64) types.PriceSeries {
	series := make(types.PriceSeries, 0, n)
	for i := range n {
		series = append(series, flatBar(i, close))
	}

	return series
}

func (suite *StrategyTestSuite) TestFactorySelectsVariant() {
	for name, want := range map[string]string{
		"bollinger":      "bollinger",
		"mean_reversion": "mean_reversion",
		"composite":      "composite",
	} {
		cfg := suite.cfg
		cfg.Name = name

		s, err := New(cfg, nil)
		suite.Require().NoError(err)
		suite.Equal(want, s.Name())
	}
}

func (suite *StrategyTestSuite) TestFactoryRejectsUnknownName() {
	cfg := suite.cfg
	cfg.Name = "momentum"

	_, err := New(cfg, nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *StrategyTestSuite) TestCalculatePositionSize() {
	s := NewBollingerStrategy(suite.cfg)
	signal := types.TradingSignal{Symbol: "TEST", EntryPrice: 100, StopLoss: 95}

	// 10000 * 0.01 / (100 - 95) = 20 shares
	qty, err := s.CalculatePositionSize(signal, 10_000)
	suite.Require().NoError(err)
	suite.Equal(int64(20), qty)
}

func (suite *StrategyTestSuite) TestCalculatePositionSizeFloorsToZero() {
	s := NewBollingerStrategy(suite.cfg)
	signal := types.TradingSignal{Symbol: "TEST", EntryPrice: 100, StopLoss: 95}

	qty, err := s.CalculatePositionSize(signal, 400)
	suite.Require().NoError(err)
	suite.Equal(int64(0), qty)
}

func (suite *StrategyTestSuite) TestCalculatePositionSizeRejectsInvalidRisk() {
	s := NewBollingerStrategy(suite.cfg)

	_, err := s.CalculatePositionSize(types.TradingSignal{Symbol: "TEST", EntryPrice: 95, StopLoss: 100}, 10_000)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRisk))

	_, err = s.CalculatePositionSize(types.TradingSignal{Symbol: "TEST", EntryPrice: 100, StopLoss: 95}, 0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRisk))
}

func (suite *StrategyTestSuite) TestTargetPlacedAtRiskRewardMultiple() {
	s := NewBollingerStrategy(suite.cfg)

	signal := s.newSignal("TEST", types.SignalTypeBollingerBreakout, flatBar(0, 50), 50, 45, 0.5, nil)

	// entry 50, stop 45, rr 2 -> target 50 + 2*5 = 60
	suite.InDelta(60.0, signal.TargetPrice, 1e-9)
	suite.Equal(2.0, signal.RiskRewardRatio)
}

func (suite *StrategyTestSuite) TestAnalyzeIsDeterministic() {
	s := NewBollingerStrategy(suite.cfg)
	series := flatSeries(24, 100)
	series = append(series, flatBar(24, 110))

	first, err := s.Analyze("TEST", series)
	suite.Require().NoError(err)
	second, err := s.Analyze("TEST", series)
	suite.Require().NoError(err)

	suite.Equal(first.Unwrap().ID, second.Unwrap().ID)
}

func (suite *StrategyTestSuite) TestShouldBuyThresholds() {
	s := NewBollingerStrategy(suite.cfg)

	suite.True(s.ShouldBuy(types.TradingSignal{RiskRewardRatio: 2.0, Confidence: 0.5}))
	suite.False(s.ShouldBuy(types.TradingSignal{RiskRewardRatio: 1.5, Confidence: 0.5}))
	suite.False(s.ShouldBuy(types.TradingSignal{RiskRewardRatio: 2.0, Confidence: 0.1}))
}

func TestStrategyTestSuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

type BollingerStrategyTestSuite struct {
	suite.Suite
	cfg config.StrategyConfig
}

func (suite *BollingerStrategyTestSuite) SetupTest() {
	suite.cfg = config.StrategyConfig{
		Name:              "bollinger",
		MAPeriod:          20,
		BollingerPeriod:   20,
		BollingerStdDev:   2.0,
		ThresholdLargeCap: 0.08,
		ThresholdSmallCap: 0.20,
		LargeCapCutoff:    300e9,
		MidCapCutoff:      10e9,
		RiskRewardRatio:   2.0,
		MinConfidence:     0.3,
		RiskFraction:      0.01,
		StopLossBuffer:    0.02,
	}
}

func (suite *BollingerStrategyTestSuite) TestAnalyzeEmitsBreakoutSignal() {
	s := NewBollingerStrategy(suite.cfg)

	// 24 flat bars then a spike far above the upper band
	series := flatSeries(24, 100)
	series = append(series, flatBar(24, 110))

	result, err := s.Analyze("TEST", series)
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())

	signal := result.Unwrap()
	suite.Equal(types.SignalTypeBollingerBreakout, signal.Type)
	suite.Equal("TEST", signal.Symbol)
	suite.InDelta(110.0, signal.EntryPrice, 1e-9)
	suite.Greater(signal.Confidence, 0.0)
	suite.LessOrEqual(signal.Confidence, 1.0)
	suite.Less(signal.StopLoss, signal.EntryPrice)
	suite.Greater(signal.TargetPrice, signal.EntryPrice)
}

func (suite *BollingerStrategyTestSuite) TestAnalyzeQuietSeriesEmitsNothing() {
	s := NewBollingerStrategy(suite.cfg)

	result, err := s.Analyze("TEST", flatSeries(25, 100))
	suite.Require().NoError(err)
	suite.True(result.IsNone())
}

func (suite *BollingerStrategyTestSuite) TestAnalyzeShortSeriesReturnsInsufficientData() {
	s := NewBollingerStrategy(suite.cfg)

	_, err := s.Analyze("TEST", flatSeries(10, 100))
	suite.Require().Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *BollingerStrategyTestSuite) TestShouldSellOnStopAndTarget() {
	s := NewBollingerStrategy(suite.cfg)
	position := types.Position{
		Symbol:      "TEST",
		Side:        types.PositionSideLong,
		EntryPrice:  100,
		StopLoss:    95,
		TargetPrice: 110,
		Status:      types.PositionStatusOpen,
	}

	hold, err := s.ShouldSell(position, flatSeries(5, 100))
	suite.Require().NoError(err)
	suite.False(hold)

	stopped, err := s.ShouldSell(position, flatSeries(5, 94))
	suite.Require().NoError(err)
	suite.True(stopped)

	took, err := s.ShouldSell(position, flatSeries(5, 111))
	suite.Require().NoError(err)
	suite.True(took)
}

func (suite *BollingerStrategyTestSuite) TestShouldSellShortFlipsDirections() {
	s := NewBollingerStrategy(suite.cfg)
	short := types.Position{
		Symbol:      "TEST",
		Side:        types.PositionSideShort,
		EntryPrice:  100,
		StopLoss:    105,
		TargetPrice: 90,
		Status:      types.PositionStatusOpen,
	}

	stopped, err := s.ShouldSell(short, flatSeries(5, 106))
	suite.Require().NoError(err)
	suite.True(stopped)

	took, err := s.ShouldSell(short, flatSeries(5, 89))
	suite.Require().NoError(err)
	suite.True(took)
}

func TestBollingerStrategyTestSuite(t *testing.T) {
	suite.Run(t, new(BollingerStrategyTestSuite))
}

type MeanReversionStrategyTestSuite struct {
	suite.Suite
	cfg      config.StrategyConfig
	universe map[string]types.StockInfo
}

func (suite *MeanReversionStrategyTestSuite) SetupTest() {
	suite.cfg = config.StrategyConfig{
		Name:              "mean_reversion",
		MAPeriod:          20,
		BollingerPeriod:   20,
		BollingerStdDev:   2.0,
		ThresholdLargeCap: 0.08,
		ThresholdSmallCap: 0.20,
		LargeCapCutoff:    300e9,
		MidCapCutoff:      10e9,
		RiskRewardRatio:   2.0,
		MinConfidence:     0.3,
		RiskFraction:      0.01,
		StopLossBuffer:    0.02,
	}
	suite.universe = map[string]types.StockInfo{
		"BIG":   {Symbol: "BIG", Name: "Big Corp", MarketCap: 350e9},
		"SMALL": {Symbol: "SMALL", Name: "Small Corp", MarketCap: 5e9},
	}
}

func (suite *MeanReversionStrategyTestSuite) TestAnalyzeEmitsSignalOnDeepPullback() {
	s := NewMeanReversionStrategy(suite.cfg, suite.universe)

	// flat at 100 then a collapse to 70: below the lower band and ~29% under
	// the 20-day MA, past both cap thresholds
	series := flatSeries(24, 100)
	series = append(series, flatBar(24, 70))

	result, err := s.Analyze("SMALL", series)
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())

	signal := result.Unwrap()
	suite.InDelta(70.0, signal.EntryPrice, 1e-9)
	suite.Less(signal.StopLoss, signal.EntryPrice)
	suite.Greater(signal.Confidence, 0.0)
}

func (suite *MeanReversionStrategyTestSuite) TestCapDependentThreshold() {
	s := NewMeanReversionStrategy(suite.cfg, suite.universe)

	suite.InDelta(0.08, s.deviationThreshold("BIG"), 1e-9)
	suite.InDelta(0.20, s.deviationThreshold("SMALL"), 1e-9)
	// unknown symbols fall back to the looser threshold
	suite.InDelta(0.20, s.deviationThreshold("UNKNOWN"), 1e-9)
}

func (suite *MeanReversionStrategyTestSuite) TestModestDipBelowBandOnlyForLargeCap() {
	s := NewMeanReversionStrategy(suite.cfg, suite.universe)

	// a ~12% drop clears the 8% large-cap threshold but not the 20% one
	series := flatSeries(24, 100)
	series = append(series, flatBar(24, 88))

	large, err := s.Analyze("BIG", series)
	suite.Require().NoError(err)
	suite.True(large.IsSome())

	small, err := s.Analyze("SMALL", series)
	suite.Require().NoError(err)
	suite.True(small.IsNone())
}

func (suite *MeanReversionStrategyTestSuite) TestShouldSellOnBearishEngulfing() {
	s := NewMeanReversionStrategy(suite.cfg, suite.universe)
	position := types.Position{
		Symbol:      "SMALL",
		Side:        types.PositionSideLong,
		EntryPrice:  100,
		StopLoss:    90,
		TargetPrice: 120,
		Status:      types.PositionStatusOpen,
	}

	series := flatSeries(4, 100)
	series = append(series,
		types.PriceBar{Symbol: "SMALL", Time: flatBar(4, 0).Time, Open: 99, High: 101.5, Low: 98.5, Close: 101, Volume: 1_000_000},
		types.PriceBar{Symbol: "SMALL", Time: flatBar(5, 0).Time, Open: 101.2, High: 101.6, Low: 98.4, Close: 98.8, Volume: 1_000_000},
	)

	exit, err := s.ShouldSell(position, series)
	suite.Require().NoError(err)
	suite.True(exit)
}

func TestMeanReversionStrategyTestSuite(t *testing.T) {
	suite.Run(t, new(MeanReversionStrategyTestSuite))
}

type CompositeStrategyTestSuite struct {
	suite.Suite
	cfg config.StrategyConfig
}

func (suite *CompositeStrategyTestSuite) SetupTest() {
	suite.cfg = config.StrategyConfig{
		Name:              "composite",
		MAPeriod:          20,
		BollingerPeriod:   20,
		BollingerStdDev:   2.0,
		ThresholdLargeCap: 0.08,
		ThresholdSmallCap: 0.20,
		LargeCapCutoff:    300e9,
		MidCapCutoff:      10e9,
		RiskRewardRatio:   2.0,
		MinConfidence:     0.3,
		RiskFraction:      0.01,
		StopLossBuffer:    0.02,
	}
}

// patternSeries returns 19 flat bars followed by a bearish bar, a bullish bar
// engulfing it and breaking its high, and a quiet final bar.
func patternSeries() types.PriceSeries {
	series := flatSeries(19, 100)
	series = append(series,
		types.PriceBar{Symbol: "TEST", Time: flatBar(19, 0).Time, Open: 101, High: 101.5, Low: 98.5, Close: 99, Volume: 1_000_000},
		types.PriceBar{Symbol: "TEST", Time: flatBar(20, 0).Time, Open: 98.8, High: 102.5, Low: 98.5, Close: 102, Volume: 1_000_000},
		types.PriceBar{Symbol: "TEST", Time: flatBar(21, 0).Time, Open: 100.4, High: 100.9, Low: 100.0, Close: 100.5, Volume: 1_000_000},
	)

	return series
}

func (suite *CompositeStrategyTestSuite) TestTwoPatternConfirmationsEmitSignal() {
	s := NewCompositeStrategy(suite.cfg, nil)

	result, err := s.Analyze("TEST", patternSeries())
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())

	signal := result.Unwrap()
	suite.Equal(types.SignalTypeComposite, signal.Type)
	// no breakout contributed, so the entry is the final bar's open
	suite.InDelta(100.4, signal.EntryPrice, 1e-9)
	suite.Greater(signal.Confidence, 0.0)
	suite.Less(signal.Confidence, 1.0)
	suite.Less(signal.StopLoss, signal.EntryPrice)
	suite.Contains(signal.Indicators, "engulfing_confidence")
	suite.Contains(signal.Indicators, "break_high_confidence")
}

func (suite *CompositeStrategyTestSuite) TestSingleConfirmationEmitsNothing() {
	s := NewCompositeStrategy(suite.cfg, nil)

	// the bullish bar engulfs the prior body but does not break its high
	series := flatSeries(19, 100)
	series = append(series,
		types.PriceBar{Symbol: "TEST", Time: flatBar(19, 0).Time, Open: 101, High: 101.5, Low: 98.5, Close: 99, Volume: 1_000_000},
		types.PriceBar{Symbol: "TEST", Time: flatBar(20, 0).Time, Open: 98.8, High: 101.4, Low: 98.5, Close: 101.2, Volume: 1_000_000},
		types.PriceBar{Symbol: "TEST", Time: flatBar(21, 0).Time, Open: 100.4, High: 100.9, Low: 100.0, Close: 100.5, Volume: 1_000_000},
	)

	result, err := s.Analyze("TEST", series)
	suite.Require().NoError(err)
	suite.True(result.IsNone())
}

func (suite *CompositeStrategyTestSuite) TestQuietSeriesEmitsNothing() {
	s := NewCompositeStrategy(suite.cfg, nil)

	result, err := s.Analyze("TEST", flatSeries(25, 100))
	suite.Require().NoError(err)
	suite.True(result.IsNone())
}

func (suite *CompositeStrategyTestSuite) TestBreakoutContributionUsesClose() {
	s := NewCompositeStrategy(suite.cfg, nil)

	// the prior bar breaks the flat bar's high while the final bar clears the
	// upper band, giving a breakout plus a break-high confirmation
	series := flatSeries(20, 100)
	series = append(series,
		types.PriceBar{Symbol: "TEST", Time: flatBar(20, 0).Time, Open: 101, High: 101.5, Low: 98.5, Close: 99, Volume: 1_000_000},
		types.PriceBar{Symbol: "TEST", Time: flatBar(21, 0).Time, Open: 98.8, High: 112.5, Low: 98.5, Close: 112, Volume: 1_000_000},
	)

	result, err := s.Analyze("TEST", series)
	suite.Require().NoError(err)
	suite.Require().True(result.IsSome())

	signal := result.Unwrap()
	// the breakout fired on the final bar, so the entry is its close
	suite.InDelta(112.0, signal.EntryPrice, 1e-9)
	suite.Contains(signal.Indicators, "breakout_confidence")
}

func (suite *CompositeStrategyTestSuite) TestShortSeriesReturnsInsufficientData() {
	s := NewCompositeStrategy(suite.cfg, nil)

	_, err := s.Analyze("TEST", flatSeries(2, 100))
	suite.Require().Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func TestCompositeStrategyTestSuite(t *testing.T) {
	suite.Run(t, new(CompositeStrategyTestSuite))
}
