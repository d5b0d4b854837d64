package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// New builds the process logger: tinted output on stdout, duplicated into a
// rotated file when LOG_FILE is set. The result is also installed as the
// slog default so FromContext has a sane fallback.
func New() *slog.Logger {
	var writer io.Writer = os.Stdout
	noColor := false

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stdout, rotated)
		noColor = true
	}

	logger := slog.New(tint.NewHandler(writer, &tint.Options{
		Level:      parseLevel(os.Getenv("LOG_LEVEL")),
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
