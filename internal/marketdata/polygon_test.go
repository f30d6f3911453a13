package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-monitor/internal/logger"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

type PolygonProviderTestSuite struct {
	suite.Suite
	provider *PolygonProvider
}

func (suite *PolygonProviderTestSuite) SetupTest() {
	constituents := map[string][]string{
		"SPX": {"AAPL", "MSFT"},
		"NDX": {"AAPL"},
	}

	provider, err := NewPolygonProvider("test-key", 200, constituents, logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.provider = provider
}

func (suite *PolygonProviderTestSuite) TestNewPolygonProviderRequiresAPIKey() {
	_, err := NewPolygonProvider("", 200, nil, logger.NewNopLogger())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *PolygonProviderTestSuite) TestNewPolygonProviderRequiresLookback() {
	_, err := NewPolygonProvider("test-key", 0, nil, logger.NewNopLogger())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *PolygonProviderTestSuite) TestGetIndexConstituents() {
	symbols, err := suite.provider.GetIndexConstituents(context.Background(), "SPX")
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, symbols)

	_, err = suite.provider.GetIndexConstituents(context.Background(), "DJI")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *PolygonProviderTestSuite) TestIndexesForSymbol() {
	indexes := suite.provider.indexesFor("AAPL")
	suite.ElementsMatch([]string{"SPX", "NDX"}, indexes)

	suite.Empty(suite.provider.indexesFor("TSLA"))
}

func TestPolygonProviderTestSuite(t *testing.T) {
	suite.Run(t, new(PolygonProviderTestSuite))
}
