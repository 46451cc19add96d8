package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log stays a no-op logger until Init is called, so packages can log from tests.
var Log = zap.NewNop().Sugar()

// Init builds the production logger at level, writing to output ("stderr",
// "stdout" or a file path).
func Init(level, output string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if output != "" {
		cfg.OutputPaths = []string{output}
		cfg.ErrorOutputPaths = []string{output}
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = logger.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
