package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New instantiates a production-ready zap logger with JSON structured output.
// devがtrueのときは人間向けのconsole出力にする
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Must is a helper that panics when the logger cannot be created.
func Must(l *zap.Logger, err error) *zap.Logger {
	if err != nil {
		panic(err)
	}
	return l
}
