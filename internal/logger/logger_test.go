package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLoggerDefaultsToInfo() {
	logger, err := NewLogger("")
	suite.NoError(err)
	suite.Require().NotNil(logger)
	suite.NotNil(logger.Logger)
	suite.False(logger.Core().Enabled(zapcore.DebugLevel))
	suite.True(logger.Core().Enabled(zapcore.InfoLevel))
}

func (suite *LoggerTestSuite) TestNewLoggerHonorsLevel() {
	logger, err := NewLogger("debug")
	suite.NoError(err)
	suite.Require().NotNil(logger)
	suite.True(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNewLoggerRejectsUnknownLevel() {
	logger, err := NewLogger("loud")
	suite.Error(err)
	suite.Nil(logger)
	suite.Contains(err.Error(), "invalid log level")
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	// Sync should not panic and should return nil for a nil inner logger
	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestNopLogger() {
	logger := NewNopLogger()
	suite.NotNil(logger)

	// Should not panic
	logger.Info("discarded message")
	logger.Error("discarded error")
}
