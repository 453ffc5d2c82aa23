// Package log generalizes the teacher's leveled, field-carrying logger
// (plog.Error("text", log.Message(msg))) into a small facade over zap so
// every component in actorcore logs the same way.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a single structured attribute attached to a log line.
type Field = zap.Field

// Logger is the per-component handle, analogous to the teacher's plog.
type Logger struct {
	name string
	z    *zap.Logger
}

var base *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	base = z
}

// New returns a named Logger, e.g. log.New("actor.dispatcher").
func New(name string) *Logger {
	return &Logger{name: name, z: base.Named(name)}
}

// SetCore lets an embedder splice an additional zapcore.Core (for example
// one that republishes log lines onto the event stream) into every logger
// New creates afterwards; loggers created earlier keep their old core.
func SetCore(wrap func(zapcore.Core) zapcore.Core) {
	base = base.WithOptions(zap.WrapCore(wrap))
}

func (l *Logger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

// Message mirrors the teacher's log.Message(msg) field constructor: wraps an
// arbitrary payload (usually a system message) for structured output.
func Message(v interface{}) Field { return zap.Any("message", v) }

// PID names the actor identity a log line concerns.
func PID(v interface{}) Field { return zap.Any("pid", v) }

// Err wraps an error value.
func Err(err error) Field { return zap.Error(err) }

// String/Int/Uint64/Any are re-exported so callers never need to import zap directly.
func String(key, val string) Field       { return zap.String(key, val) }
func Int(key string, val int) Field      { return zap.Int(key, val) }
func Uint64(key string, val uint64) Field { return zap.Uint64(key, val) }
func Any(key string, val interface{}) Field { return zap.Any(key, val) }
