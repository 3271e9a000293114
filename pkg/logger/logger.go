package logger

import (
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers per concern. They stay no-op until InitLoggers runs, so packages
// and tests can log without any setup.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
	ContextLogger  = zap.NewNop()
)

func newLogger(filePath string, level zapcore.Level) (*zap.Logger, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ws := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core), nil
}

// InitLoggers opens one JSON log file per concern under dir.
func InitLoggers(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Cannot create log directory: %v", err)
	}

	targets := []struct {
		dst   **zap.Logger
		file  string
		level zapcore.Level
	}{
		{&ErrorLogger, "errors.log", zapcore.ErrorLevel},
		{&AuditLogger, "audit.log", zapcore.InfoLevel},
		{&RequestLogger, "request.log", zapcore.InfoLevel},
		{&SecurityLogger, "security.log", zapcore.WarnLevel},
		{&SystemLogger, "system.log", zapcore.InfoLevel},
		{&ContextLogger, "context.log", zapcore.DebugLevel},
	}
	for _, t := range targets {
		l, err := newLogger(filepath.Join(dir, t.file), t.level)
		if err != nil {
			log.Fatalf("Cannot create %s logger: %v", t.file, err)
		}
		*t.dst = l
	}
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
	_ = ContextLogger.Sync()
}
