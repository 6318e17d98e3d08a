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

import "time"

// DefaultLogRotateConfig returns the log-rotate defaults used before a
// config file or flags have been parsed.
func DefaultLogRotateConfig() LogRotateLoggingConfig {
	return LogRotateLoggingConfig{
		MaxFileSizeMB:   64,
		BackupFileCount: 5,
		Compress:        true,
	}
}

// DefaultLoggingConfig returns the logging defaults.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity:  SeverityInfo,
		Format:    "text",
		LogRotate: DefaultLogRotateConfig(),
	}
}

// DefaultConfig returns a Config populated with rspcore's startup defaults,
// equivalent to what BindFlags registers as each flag's default value.
func DefaultConfig() Config {
	return Config{
		Foreground: false,
		Logging:    DefaultLoggingConfig(),
		Connection: ConnectionConfig{
			PacketTimeout:     2 * time.Second,
			InterruptSequence: InterruptCtrlC,
		},
		HostIO: HostIOConfig{
			MemoryReadWindow: 4096,
			ReadaheadWindow:  4096,
		},
		Metrics: MetricsConfig{
			ListenAddr: "",
		},
		Serial: SerialConfig{
			BaudRate: 115200,
		},
	}
}
