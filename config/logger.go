package config

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the process-wide logger. Until InitLogger runs it is a
// development console logger writing to stderr.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = NewLogger("development", "info")
		}
	})
	return logger
}

// InitLogger replaces the process-wide logger using the loaded configuration.
func InitLogger(cfg *Config) *zap.Logger {
	l := NewLogger(cfg.AppEnv, cfg.LogLevel)
	loggerOnce.Do(func() {})
	logger = l
	return l
}

func NewLogger(env, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}
	encoderConfig.EncodeDuration = func(d time.Duration, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(d.String())
	}

	var encoder zapcore.Encoder
	if env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	return zap.New(zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		lvl,
	))
}
