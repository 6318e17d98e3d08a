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

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlags registers every rspcore flag on flagSet and binds it to the
// matching viper key, following the same BindPFlag-per-flag pattern the
// teacher's cfg.BindFlags uses.
func BindFlags(flagSet *pflag.FlagSet) error {
	defaults := DefaultConfig()

	flagSet.BoolP("foreground", "", defaults.Foreground,
		"Stay in the foreground instead of daemonizing once connect/mount succeeds.")
	if err := viper.BindPFlag("foreground", flagSet.Lookup("foreground")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", defaults.Logging.Severity,
		"Minimum severity to log: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	if err := viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", defaults.Logging.FilePath,
		"Path to a log file. Empty means log to stderr.")
	if err := viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", defaults.Logging.Format,
		"Log line format: text or json.")
	if err := viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.IntP("log-max-file-size-mb", "", defaults.Logging.LogRotate.MaxFileSizeMB,
		"Rotate the log file after it exceeds this many megabytes.")
	if err := viper.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-max-file-size-mb")); err != nil {
		return err
	}

	flagSet.IntP("log-backup-count", "", defaults.Logging.LogRotate.BackupFileCount,
		"Number of rotated log files to retain.")
	if err := viper.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-backup-count")); err != nil {
		return err
	}

	flagSet.BoolP("log-compress", "", defaults.Logging.LogRotate.Compress,
		"Gzip rotated log files.")
	if err := viper.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-compress")); err != nil {
		return err
	}

	flagSet.BoolP("noack", "", defaults.Connection.NoAckRequested,
		"Request QStartNoAckMode as soon as the stub allows it.")
	if err := viper.BindPFlag("connection.noack", flagSet.Lookup("noack")); err != nil {
		return err
	}

	flagSet.BoolP("extended-mode", "", defaults.Connection.ExtendedMode,
		"Open the connection in extended ('!') mode.")
	if err := viper.BindPFlag("connection.extended-mode", flagSet.Lookup("extended-mode")); err != nil {
		return err
	}

	flagSet.IntP("packet-size-override", "", defaults.Connection.PacketSizeOverride,
		"Force the negotiated packet size instead of trusting qSupported's PacketSize. 0 defers to negotiation.")
	if err := viper.BindPFlag("connection.packet-size-override", flagSet.Lookup("packet-size-override")); err != nil {
		return err
	}

	flagSet.DurationP("packet-timeout", "", defaults.Connection.PacketTimeout,
		"Timeout for an ordinary (non-forever) packet read.")
	if err := viper.BindPFlag("connection.packet-timeout", flagSet.Lookup("packet-timeout")); err != nil {
		return err
	}

	flagSet.DurationP("watchdog-timeout", "", defaults.Connection.WatchdogTimeout,
		"Timeout for a forever wait. 0 disables the watchdog.")
	if err := viper.BindPFlag("connection.watchdog-timeout", flagSet.Lookup("watchdog-timeout")); err != nil {
		return err
	}

	flagSet.StringP("interrupt-sequence", "", defaults.Connection.InterruptSequence,
		"All-stop interrupt sequence: ctrl-c, break, or break-g.")
	if err := viper.BindPFlag("connection.interrupt-sequence", flagSet.Lookup("interrupt-sequence")); err != nil {
		return err
	}

	flagSet.StringSliceP("force-packet", "", nil,
		"Force a packet's feature-registry override, e.g. --force-packet=qXfer:features:read=off. May be repeated.")
	if err := viper.BindPFlag("connection.forced-packets", flagSet.Lookup("force-packet")); err != nil {
		return err
	}

	flagSet.BoolP("non-stop", "", defaults.Execution.NonStop,
		"Request non-stop mode instead of all-stop.")
	if err := viper.BindPFlag("execution.non-stop", flagSet.Lookup("non-stop")); err != nil {
		return err
	}

	flagSet.BoolP("range-stepping", "", defaults.Execution.RangeStepping,
		"Use vCont range-stepping when the stub advertises 'r' support.")
	if err := viper.BindPFlag("execution.range-stepping", flagSet.Lookup("range-stepping")); err != nil {
		return err
	}

	flagSet.IntP("memory-read-window", "", defaults.HostIO.MemoryReadWindow,
		"Upper bound on a single 'm' packet's requested length.")
	if err := viper.BindPFlag("host-io.memory-read-window", flagSet.Lookup("memory-read-window")); err != nil {
		return err
	}

	flagSet.IntP("readahead-window", "", defaults.HostIO.ReadaheadWindow,
		"Bytes fetched per vFile pread miss to populate the readahead cache. 0 disables readahead.")
	if err := viper.BindPFlag("host-io.readahead-window", flagSet.Lookup("readahead-window")); err != nil {
		return err
	}

	flagSet.StringP("metrics-listen-addr", "", defaults.Metrics.ListenAddr,
		"Address to serve Prometheus metrics on, e.g. :9090. Empty disables the metrics server.")
	if err := viper.BindPFlag("metrics.listen-addr", flagSet.Lookup("metrics-listen-addr")); err != nil {
		return err
	}

	flagSet.IntP("serial-baud-rate", "", defaults.Serial.BaudRate,
		"Baud rate used when the connect target is a serial device path.")
	if err := viper.BindPFlag("serial.baud-rate", flagSet.Lookup("serial-baud-rate")); err != nil {
		return err
	}

	return nil
}
