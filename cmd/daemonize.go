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

package cmd

import (
	"fmt"
	"os"

	"github.com/jacobsa/daemonize"
	"github.com/kardianos/osext"

	"github.com/rspcore/rspcore/cfg"
	"github.com/rspcore/rspcore/internal/logger"
)

// maybeDaemonize re-executes the current command with --foreground set and
// waits for the child to report its outcome, the way gcsfuse's legacy_main
// re-execs itself in the background unless --foreground was given. It
// returns daemonized=true when the parent should stop here (the child has
// taken over); the caller's RunE should return err (possibly nil)
// immediately in that case.
func maybeDaemonize(c cfg.Config) (daemonized bool, err error) {
	if c.Foreground {
		return false, nil
	}

	path, err := osext.Executable()
	if err != nil {
		return false, fmt.Errorf("osext.Executable: %w", err)
	}

	args := append([]string{}, os.Args[1:]...)
	args = append(args, "--foreground")

	env := []string{
		fmt.Sprintf("PATH=%s", os.Getenv("PATH")),
	}
	if home, err := os.UserHomeDir(); err == nil {
		env = append(env, fmt.Sprintf("HOME=%s", home))
	}

	if err := daemonize.Run(path, args, env, os.Stdout); err != nil {
		return false, fmt.Errorf("daemonize.Run: %w", err)
	}
	return true, nil
}

// signalOutcome reports the foreground child's result to a waiting
// daemonize.Run parent, if any. It is harmless to call when the process
// was not itself spawned by daemonize.Run (the case when a user passes
// --foreground directly): daemonize.SignalOutcome then fails quietly and
// the failure is only logged, matching gcsfuse's
// callDaemonizeSignalOutcome helper.
func signalOutcome(outcome error) {
	if err := daemonize.SignalOutcome(outcome); err != nil {
		logger.Errorf("rsp: failed to signal outcome to parent process: %v", err)
	}
}
