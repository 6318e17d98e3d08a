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

package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/rspcore/rspcore/cfg"
	"github.com/stretchr/testify/assert"
)

func redirectLogsToBuffer(buf *bytes.Buffer, severity string, format string) {
	levelVar := new(slog.LevelVar)
	defaultLoggerFactory = &loggerFactory{format: format, level: severity}
	setLoggingLevel(severity, levelVar)
	defaultLogger = slog.New(defaultLoggerFactory.createHandler(buf, levelVar))
}

// emitAllLevels runs all five logging functions at the given severity,
// each against its own freshly redirected buffer, and returns their output
// in Trace/Debug/Info/Warn/Error order.
func emitAllLevels(severity, format string) []string {
	fns := []func(){
		func() { Tracef("trace %d", 1) },
		func() { Debugf("debug %d", 2) },
		func() { Infof("info %d", 3) },
		func() { Warnf("warn %d", 4) },
		func() { Errorf("error %d", 5) },
	}
	var out []string
	for _, f := range fns {
		var buf bytes.Buffer
		redirectLogsToBuffer(&buf, severity, format)
		f()
		out = append(out, buf.String())
	}
	return out
}

func assertEmptiness(t *testing.T, out []string, expectEmpty [5]bool) {
	t.Helper()
	for i, empty := range expectEmpty {
		if empty {
			assert.Emptyf(t, out[i], "index %d", i)
		} else {
			assert.NotEmptyf(t, out[i], "index %d", i)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	assertEmptiness(t, emitAllLevels(cfg.SeverityOff, "text"), [5]bool{true, true, true, true, true})
	assertEmptiness(t, emitAllLevels(cfg.SeverityError, "text"), [5]bool{true, true, true, true, false})
	assertEmptiness(t, emitAllLevels(cfg.SeverityWarning, "text"), [5]bool{true, true, true, false, false})
	assertEmptiness(t, emitAllLevels(cfg.SeverityInfo, "text"), [5]bool{true, true, false, false, false})
	assertEmptiness(t, emitAllLevels(cfg.SeverityDebug, "text"), [5]bool{true, false, false, false, false})
	assertEmptiness(t, emitAllLevels(cfg.SeverityTrace, "text"), [5]bool{false, false, false, false, false})
}

func TestTextFormatIncludesSeverityAndMessage(t *testing.T) {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, cfg.SeverityInfo, "text")
	Infof("hello %s", "world")
	assert.Regexp(t, regexp.MustCompile(`severity=INFO`), buf.String())
	assert.Regexp(t, regexp.MustCompile(`msg="hello world"`), buf.String())
}

func TestJSONFormatIncludesSeverityAndMessage(t *testing.T) {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, cfg.SeverityInfo, "json")
	Warnf("disk %s", "full")
	assert.Contains(t, buf.String(), `"severity":"WARNING"`)
	assert.Contains(t, buf.String(), `"msg":"disk full"`)
}

func TestSetLoggingLevel(t *testing.T) {
	cases := []struct {
		severity string
		want     slog.Level
	}{
		{cfg.SeverityTrace, LevelTrace},
		{cfg.SeverityDebug, LevelDebug},
		{cfg.SeverityInfo, LevelInfo},
		{cfg.SeverityWarning, LevelWarn},
		{cfg.SeverityError, LevelError},
		{cfg.SeverityOff, LevelOff},
	}
	for _, c := range cases {
		lv := new(slog.LevelVar)
		setLoggingLevel(c.severity, lv)
		assert.Equal(t, c.want, lv.Level())
	}
}

func TestInitDefaultsFormatToJSON(t *testing.T) {
	assert.NoError(t, Init(cfg.LoggingConfig{Severity: cfg.SeverityInfo}))
	assert.Equal(t, "json", defaultLoggerFactory.format)
}

func TestSetLogFormat(t *testing.T) {
	assert.NoError(t, Init(cfg.LoggingConfig{Severity: cfg.SeverityInfo, Format: "text"}))
	SetLogFormat("json")
	assert.Equal(t, "json", defaultLoggerFactory.format)
}
