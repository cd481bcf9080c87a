/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encoding defines the log encoding.
type Encoding string

// Log encodings.
const (
	Console Encoding = "console"
	JSON    Encoding = "json"
)

// Log is a per-module logger. The effective level of the module is looked up on every call
// so that SetLevel/SetSpec take effect for loggers created before the change.
type Log struct {
	instance *zap.Logger
	sugared  *zap.SugaredLogger
	module   string
}

type options struct {
	stdOut   zapcore.WriteSyncer
	encoding Encoding
}

// Option is a logger option.
type Option func(o *options)

// WithStdOut sets the output for logs.
func WithStdOut(stdOut zapcore.WriteSyncer) Option {
	return func(o *options) {
		o.stdOut = stdOut
	}
}

// WithEncoding sets the output encoding (console or json).
func WithEncoding(encoding Encoding) Option {
	return func(o *options) {
		o.encoding = encoding
	}
}

// New creates a logger for the given module.
func New(module string, opts ...Option) *Log {
	o := &options{
		stdOut:   zapcore.Lock(os.Stdout),
		encoding: Console,
	}

	for _, opt := range opts {
		opt(o)
	}

	core := zapcore.NewCore(newEncoder(o.encoding), o.stdOut, &moduleLevelEnabler{module: module})

	instance := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(module)

	return &Log{
		instance: instance,
		sugared:  instance.Sugar(),
		module:   module,
	}
}

func newEncoder(encoding Encoding) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if encoding == JSON {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder

		return zapcore.NewJSONEncoder(cfg)
	}

	return zapcore.NewConsoleEncoder(cfg)
}

type moduleLevelEnabler struct {
	module string
}

func (e *moduleLevelEnabler) Enabled(level zapcore.Level) bool {
	return GetLevel(e.module).Enabled(level)
}

// Module returns the name of the module.
func (l *Log) Module() string {
	return l.module
}

// IsEnabled returns true if the given level is enabled for the module.
func (l *Log) IsEnabled(level Level) bool {
	return GetLevel(l.module).Enabled(zapcore.Level(level))
}

// Debug logs a message with structured fields at debug level.
func (l *Log) Debug(msg string, fields ...zap.Field) {
	l.instance.Debug(msg, fields...)
}

// Info logs a message with structured fields at info level.
func (l *Log) Info(msg string, fields ...zap.Field) {
	l.instance.Info(msg, fields...)
}

// Warn logs a message with structured fields at warning level.
func (l *Log) Warn(msg string, fields ...zap.Field) {
	l.instance.Warn(msg, fields...)
}

// Error logs a message with structured fields at error level.
func (l *Log) Error(msg string, fields ...zap.Field) {
	l.instance.Error(msg, fields...)
}

// Panic logs a message with structured fields and then panics.
func (l *Log) Panic(msg string, fields ...zap.Field) {
	l.instance.Panic(msg, fields...)
}

// Debugf formats and logs a message at debug level.
func (l *Log) Debugf(msg string, args ...interface{}) {
	l.sugared.Debugf(msg, args...)
}

// Infof formats and logs a message at info level.
func (l *Log) Infof(msg string, args ...interface{}) {
	l.sugared.Infof(msg, args...)
}

// Warnf formats and logs a message at warning level.
func (l *Log) Warnf(msg string, args ...interface{}) {
	l.sugared.Warnf(msg, args...)
}

// Errorf formats and logs a message at error level.
func (l *Log) Errorf(msg string, args ...interface{}) {
	l.sugared.Errorf(msg, args...)
}

// Panicf formats and logs a message and then panics.
func (l *Log) Panicf(msg string, args ...interface{}) {
	l.sugared.Panicf(msg, args...)
}

// Sync flushes any buffered log entries.
func (l *Log) Sync() error {
	if err := l.instance.Sync(); err != nil {
		return fmt.Errorf("sync logger %s: %w", l.module, err)
	}

	return nil
}
