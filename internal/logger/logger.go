package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger configured from the environment.
// APP_ENV or LOG_ENV set to "production" selects the JSON production
// config; anything else builds a colored development logger.
func New() (*zap.Logger, error) {
	env := os.Getenv("LOG_ENV")
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return cfg.Build(zap.AddCaller())
}

// Component returns a child logger tagged with the owning component name
func Component(l *zap.Logger, name string) *zap.Logger {
	return l.Named(name)
}

// Sync flushes buffered log entries. Safe to defer at shutdown; the
// error from syncing stderr on some platforms is intentionally ignored.
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
