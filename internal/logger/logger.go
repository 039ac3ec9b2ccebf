package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var l *zap.Logger

// Init builds the process-wide JSON logger and replaces zap's globals with it.
func Init(service string, level zapcore.Level) error {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "@timestamp"
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), level)
	base := zap.New(core).With(
		zap.String("service", service),
	)

	l = base
	zap.ReplaceGlobals(l)
	return nil
}

func L() *zap.Logger {
	if l == nil {
		_ = Init("inventory-records", zapcore.InfoLevel)
	}
	return l
}
