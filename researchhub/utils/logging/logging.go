package logging

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	AppLogger     = zap.NewNop()
	RequestLogger = zap.NewNop()
	TimerLogger   = zap.NewNop()
	ErrorLogger   = zap.NewNop()
)

// ensureLogsDir makes sure the log folder exists
func ensureLogsDir(dir string) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		panic("Failed to create logs directory: " + err.Error())
	}
}

func rotating(dir, name string, maxSize, maxAge int) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename: filepath.Join(dir, name), MaxSize: maxSize, MaxAge: maxAge, Compress: true,
	})
}

// InitLogger wires the four rotating JSON loggers under dir.
// The app logger is teed to stdout so startup problems are visible.
func InitLogger(dir string) {
	if dir == "" {
		dir = "./logs"
	}
	ensureLogsDir(dir)
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	appCore := zapcore.NewTee(
		zapcore.NewCore(encoder, rotating(dir, "app.log", 100, 28), zap.InfoLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.InfoLevel),
	)
	AppLogger = zap.New(appCore)

	RequestLogger = zap.New(zapcore.NewCore(encoder, rotating(dir, "request.log", 50, 7), zap.InfoLevel))
	TimerLogger = zap.New(zapcore.NewCore(encoder, rotating(dir, "timer.log", 50, 7), zap.InfoLevel))
	ErrorLogger = zap.New(zapcore.NewCore(encoder, rotating(dir, "error.log", 100, 30), zap.ErrorLevel))
}

// InitNop silences every logger. Used by tests.
func InitNop() {
	AppLogger = zap.NewNop()
	RequestLogger = zap.NewNop()
	TimerLogger = zap.NewNop()
	ErrorLogger = zap.NewNop()
}

// Sync flushes buffered entries, call before exit.
func Sync() {
	for _, l := range []*zap.Logger{AppLogger, RequestLogger, TimerLogger, ErrorLogger} {
		_ = l.Sync()
	}
}

// LogDuration lets you do: defer logging.LogDuration(ctx, "FuncName")()
func LogDuration(ctx context.Context, name string) func() {
	start := time.Now()
	reqID := middleware.GetReqID(ctx)

	return func() {
		fields := []zap.Field{
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		TimerLogger.Info("Function timed", fields...)
	}
}
