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

import "fmt"

func isValidLogRotateConfig(c *LogRotateLoggingConfig) error {
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if c.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (retain all backups) or positive")
	}
	return nil
}

func isValidInterruptSequence(seq string) error {
	switch seq {
	case InterruptCtrlC, InterruptBreak, InterruptBreakG:
		return nil
	default:
		return fmt.Errorf("interrupt-sequence must be one of %q, %q, %q, got %q",
			InterruptCtrlC, InterruptBreak, InterruptBreakG, seq)
	}
}

// ValidateConfig returns a non-nil error if c is internally inconsistent.
// It never inspects external state (the network, the filesystem): per
// spec.md's error taxonomy, those failures surface later as Connection
// errors, not as a config error.
func ValidateConfig(c *Config) error {
	if err := isValidLogRotateConfig(&c.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err := isValidInterruptSequence(c.Connection.InterruptSequence); err != nil {
		return fmt.Errorf("error parsing connection config: %w", err)
	}

	if c.Connection.PacketSizeOverride < 0 {
		return fmt.Errorf("packet-size-override may not be negative")
	}

	if c.Connection.PacketTimeout <= 0 {
		return fmt.Errorf("packet-timeout must be positive")
	}

	if c.HostIO.MemoryReadWindow <= 0 {
		return fmt.Errorf("memory-read-window must be positive")
	}

	if c.HostIO.ReadaheadWindow < 0 {
		return fmt.Errorf("readahead-window may not be negative")
	}

	for _, tok := range c.Connection.ForcedPacketOverride {
		if err := validateForcedPacketToken(tok); err != nil {
			return fmt.Errorf("error parsing forced-packets config: %w", err)
		}
	}

	return nil
}

func validateForcedPacketToken(tok string) error {
	name, state, ok := splitForcedPacketToken(tok)
	if !ok {
		return fmt.Errorf("malformed forced-packet override %q, want name=on|off", tok)
	}
	if name == "" {
		return fmt.Errorf("malformed forced-packet override %q: empty name", tok)
	}
	if state != "on" && state != "off" {
		return fmt.Errorf("malformed forced-packet override %q: state must be on or off", tok)
	}
	return nil
}

// splitForcedPacketToken splits "name=on" into ("name", "on", true).
func splitForcedPacketToken(tok string) (name, state string, ok bool) {
	for i := 0; i < len(tok); i++ {
		if tok[i] == '=' {
			return tok[:i], tok[i+1:], true
		}
	}
	return "", "", false
}
