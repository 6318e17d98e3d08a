// Copyright 2026 The RSPCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger is rspcore's structured logger. It wraps log/slog with a
// TRACE level below slog's built-in DEBUG and an OFF level above ERROR,
// and can write either to stderr or to a file
// rotated by gopkg.in/natefinch/lumberjack.v2.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rspcore/rspcore/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Custom levels, spaced the way slog's built-ins are (multiples of 4) so
// they interleave cleanly with slog.LevelDebug/Info/Warn/Error.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelOff   slog.Level = 12
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

type loggerFactory struct {
	file            *lumberjack.Logger
	format          string
	level           string
	logRotateConfig cfg.LogRotateLoggingConfig
}

var defaultLoggerFactory = &loggerFactory{
	format: "text",
	level:  cfg.SeverityInfo,
}

var defaultLogger = slog.New(defaultLoggerFactory.createHandler(os.Stderr, new(slog.LevelVar)))

// Init configures the package-level logger from c. Subsequent calls replace
// the previous configuration; Init is not safe to call concurrently with
// logging calls.
func Init(c cfg.LoggingConfig) error {
	factory := &loggerFactory{
		format:          c.Format,
		level:           c.Severity,
		logRotateConfig: c.LogRotate,
	}
	if factory.format == "" {
		factory.format = "json"
	}

	var w io.Writer = os.Stderr
	if c.FilePath != "" {
		factory.file = &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.LogRotate.MaxFileSizeMB,
			MaxBackups: c.LogRotate.BackupFileCount,
			Compress:   c.LogRotate.Compress,
		}
		w = factory.file
	}

	levelVar := new(slog.LevelVar)
	setLoggingLevel(factory.level, levelVar)
	defaultLoggerFactory = factory
	defaultLogger = slog.New(factory.createHandler(w, levelVar))
	return nil
}

// InitAsync is Init, but wraps the destination writer in an asyncWriter so
// logging calls never block on file I/O. Returns the asyncWriter so callers
// can Close it (flushing buffered lines) during shutdown.
func InitAsync(c cfg.LoggingConfig, bufferSize int) (*asyncWriter, error) {
	if err := Init(c); err != nil {
		return nil, err
	}

	var dst io.Writer = os.Stderr
	if defaultLoggerFactory.file != nil {
		dst = defaultLoggerFactory.file
	}
	aw := newAsyncWriter(dst, bufferSize)

	levelVar := new(slog.LevelVar)
	setLoggingLevel(defaultLoggerFactory.level, levelVar)
	defaultLogger = slog.New(defaultLoggerFactory.createHandler(aw, levelVar))
	return aw, nil
}

// SetLogFormat switches the active logger's wire format without touching
// its destination or level.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	levelVar := new(slog.LevelVar)
	setLoggingLevel(defaultLoggerFactory.level, levelVar)

	var w io.Writer = os.Stderr
	if defaultLoggerFactory.file != nil {
		w = defaultLoggerFactory.file
	}
	defaultLogger = slog.New(defaultLoggerFactory.createHandler(w, levelVar))
}

func setLoggingLevel(severity string, levelVar *slog.LevelVar) {
	switch severity {
	case cfg.SeverityTrace:
		levelVar.Set(LevelTrace)
	case cfg.SeverityDebug:
		levelVar.Set(LevelDebug)
	case cfg.SeverityInfo:
		levelVar.Set(LevelInfo)
	case cfg.SeverityWarning:
		levelVar.Set(LevelWarn)
	case cfg.SeverityError:
		levelVar.Set(LevelError)
	case cfg.SeverityOff:
		levelVar.Set(LevelOff)
	default:
		levelVar.Set(LevelInfo)
	}
}

func (f *loggerFactory) createHandler(w io.Writer, levelVar *slog.LevelVar) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			lvl := a.Value.Any().(slog.Level)
			name, ok := levelNames[lvl]
			if !ok {
				name = lvl.String()
			}
			a.Key = "severity"
			a.Value = slog.StringValue(name)
		case slog.TimeKey:
			if f.format != "json" {
				a.Value = slog.StringValue(a.Value.Time().Format("01/02/06 15:04:05.000000"))
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: levelVar, ReplaceAttr: replace}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func log(level slog.Level, format string, v ...interface{}) {
	ctx := context.Background()
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.Log(ctx, level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...interface{}) { log(LevelTrace, format, v...) }
func Debugf(format string, v ...interface{}) { log(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { log(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { log(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { log(LevelError, format, v...) }

// Close flushes and closes the log file, if one is open.
func Close() error {
	if defaultLoggerFactory.file == nil {
		return nil
	}
	return defaultLoggerFactory.file.Close()
}
