package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BollingerTestSuite struct {
	suite.Suite
}

func TestBollingerSuite(t *testing.T) {
	suite.Run(t, new(BollingerTestSuite))
}

func (suite *BollingerTestSuite) TestFlatSeriesCollapsesBands() {
	values := []float64{100, 100, 100, 100, 100}

	bands, err := Bollinger(values, 3, 2.0)
	suite.NoError(err)

	for i := 2; i < len(values); i++ {
		suite.Equal(100.0, bands.Middle[i])
		suite.Equal(100.0, bands.Upper[i])
		suite.Equal(100.0, bands.Lower[i])
	}
}

func (suite *BollingerTestSuite) TestPopulationStdDev() {
	// window [1,2,3]: mean 2, population std sqrt(2/3)
	bands, err := Bollinger([]float64{1, 2, 3}, 3, 2.0)
	suite.NoError(err)

	sd := math.Sqrt(2.0 / 3.0)
	suite.InDelta(2.0, bands.Middle[2], 1e-9)
	suite.InDelta(2.0+2*sd, bands.Upper[2], 1e-9)
	suite.InDelta(2.0-2*sd, bands.Lower[2], 1e-9)
}

func (suite *BollingerTestSuite) TestLeadingValuesUndefined() {
	bands, err := Bollinger([]float64{1, 2, 3, 4}, 3, 2.0)
	suite.NoError(err)
	suite.True(math.IsNaN(bands.Upper[0]))
	suite.True(math.IsNaN(bands.Upper[1]))
	suite.True(Defined(bands.Upper[2]))
}

func (suite *BollingerTestSuite) TestInsufficientData() {
	_, err := Bollinger([]float64{1, 2}, 20, 2.0)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *BollingerTestSuite) TestInvalidStdDev() {
	_, err := Bollinger([]float64{1, 2, 3}, 3, 0)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStdDev))
}
