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

// Package cfg defines rspcore's user-facing configuration: flags bound
// through pflag/viper, unmarshaled into a single Config tree.
package cfg

import "time"

// Config is the root of rspcore's configuration tree. Every field is bound
// to a flag in BindFlags and may additionally be set from a YAML config
// file via --config-file.
type Config struct {
	// Foreground keeps connect/mount running in the invoking process
	// instead of re-executing in the background once the session is
	// established. Defaults to false, matching the teacher's own
	// daemonize-unless-told-otherwise default.
	Foreground bool             `yaml:"foreground"`
	Logging    LoggingConfig    `yaml:"logging"`
	Connection ConnectionConfig `yaml:"connection"`
	Execution  ExecutionConfig  `yaml:"execution"`
	HostIO     HostIOConfig     `yaml:"host-io"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Serial     SerialConfig     `yaml:"serial"`
}

// LoggingConfig controls internal/logger.
type LoggingConfig struct {
	Severity  string                 `yaml:"severity"`
	FilePath  string                 `yaml:"file-path"`
	Format    string                 `yaml:"format"`
	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`
}

// LogRotateLoggingConfig mirrors the knobs gopkg.in/natefinch/lumberjack.v2
// exposes for the log file internal/logger rotates.
type LogRotateLoggingConfig struct {
	MaxFileSizeMB   int  `yaml:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count"`
	Compress        bool `yaml:"compress"`
}

// ConnectionConfig carries the per-connection user overrides spec.md §3
// describes: the Feature registry's override tri-states, noack/extended
// negotiation requests, and the Framer's timeouts and interrupt sequence.
type ConnectionConfig struct {
	NoAckRequested       bool          `yaml:"noack"`
	ExtendedMode         bool          `yaml:"extended-mode"`
	PacketSizeOverride   int           `yaml:"packet-size-override"`
	PacketTimeout        time.Duration `yaml:"packet-timeout"`
	WatchdogTimeout      time.Duration `yaml:"watchdog-timeout"`
	InterruptSequence    string        `yaml:"interrupt-sequence"`
	ForcedPacketOverride []string      `yaml:"forced-packets"`
}

// ExecutionConfig controls internal/execctl's mode selection.
type ExecutionConfig struct {
	NonStop       bool `yaml:"non-stop"`
	RangeStepping bool `yaml:"range-stepping"`
}

// HostIOConfig controls internal/hostio's memory/readahead window sizing.
type HostIOConfig struct {
	MemoryReadWindow int `yaml:"memory-read-window"`
	ReadaheadWindow  int `yaml:"readahead-window"`
}

// MetricsConfig controls internal/metrics' Prometheus exporter.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen-addr"`
}

// SerialConfig controls cmd's optional serial transport opener (§3.5):
// the baud rate used when the connect target looks like a device path
// instead of a host:port.
type SerialConfig struct {
	BaudRate int `yaml:"baud-rate"`
}

// Interrupt sequence choices for ConnectionConfig.InterruptSequence.
const (
	InterruptCtrlC  = "ctrl-c"
	InterruptBreak  = "break"
	InterruptBreakG = "break-g"
)

// Logging severities, in increasing order of verbosity suppression.
const (
	SeverityTrace   = "TRACE"
	SeverityDebug   = "DEBUG"
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
	SeverityOff     = "OFF"
)
