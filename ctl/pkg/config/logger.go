package config

import (
	"os"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
	logFile  *lumberjack.Logger
)

// GetLogger returns the process wide logger, creating it from the log configuration on first use.
// By default only fatal messages are logged.
func GetLogger() (*zap.Logger, error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return logger, nil
	}

	var err error
	if viper.GetBool(LogDeveloperKey) {
		logger, err = zap.NewDevelopment()
		return logger, err
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if path := viper.GetString(LogFileKey); path != "" {
		logFile = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
		}
		sink = zapcore.AddSync(logFile)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, levelFromInt(viper.GetInt(LogLevelKey)))
	logger = zap.New(core)
	return logger, nil
}

// levelFromInt maps the user facing log level (0=Fatal, 1=Error, 2=Warn, 3=Info, 4+=Debug).
func levelFromInt(level int) zapcore.Level {
	switch {
	case level <= 0:
		return zapcore.FatalLevel
	case level == 1:
		return zapcore.ErrorLevel
	case level == 2:
		return zapcore.WarnLevel
	case level == 3:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Cleanup flushes and releases the logger.
func Cleanup() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
