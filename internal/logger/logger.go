// Package logger provides structured, leveled logging used throughout the
// engine. It wraps zap so call sites can log with simple key/value pairs
// while still getting JSON output, levels, and trace correlation in
// production.
package logger

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging verbosity level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// LoggerInterface is implemented by every logger used across the engine.
// Every business module and infra adapter depends on this interface, never
// on a concrete logger, so tests can substitute a no-op implementation.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, kv ...interface{})
	Info(ctx context.Context, msg string, kv ...interface{})
	Warn(ctx context.Context, msg string, kv ...interface{})
	Error(ctx context.Context, msg string, kv ...interface{})
	With(kv ...interface{}) LoggerInterface
}

// zapLogger implements LoggerInterface on top of zap.SugaredLogger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// Config controls logger construction.
type Config struct {
	ServiceName string
	Level       Level
	Development bool // human-readable console output instead of JSON
}

// New builds a LoggerInterface per Config.
func New(cfg Config) LoggerInterface {
	zapLevel := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Development {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapLevel)
	base := zap.New(core).With(zap.String("service", cfg.ServiceName))

	return &zapLogger{sugar: base.Sugar()}
}

// NewNop returns a logger that discards everything; useful in tests.
func NewNop() LoggerInterface {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// traceFields pulls trace_id/span_id out of ctx, when it carries a valid span context,
// so log lines correlate with OTEL spans without every call site doing it.
func traceFields(ctx context.Context) []interface{} {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []interface{}{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, kv ...interface{}) {
	l.sugar.Debugw(msg, append(traceFields(ctx), kv...)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, kv ...interface{}) {
	l.sugar.Infow(msg, append(traceFields(ctx), kv...)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, kv ...interface{}) {
	l.sugar.Warnw(msg, append(traceFields(ctx), kv...)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, kv ...interface{}) {
	l.sugar.Errorw(msg, append(traceFields(ctx), kv...)...)
}

func (l *zapLogger) With(kv ...interface{}) LoggerInterface {
	return &zapLogger{sugar: l.sugar.With(kv...)}
}
