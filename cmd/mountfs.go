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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rspcore/rspcore/internal/clock"
	"github.com/rspcore/rspcore/internal/logger"
	"github.com/rspcore/rspcore/internal/remote"
	"github.com/rspcore/rspcore/internal/rspfs"
)

var mountPid int64

var mountCmd = &cobra.Command{
	Use:   "mount <target> <mountpoint>",
	Short: "Mount the stub's vFile namespace for --pid as a local FUSE filesystem",
	Long: `mount opens an RSP session against <target> and exposes the debug
stub's Host I/O (vFile) namespace for the target process named by --pid
as a local directory tree rooted at <mountpoint>, rather than driving an
execution event loop.`,
	Args: cobra.ExactArgs(2),
	RunE: runMount,
}

func init() {
	mountCmd.Flags().Int64Var(&mountPid, "pid", 0, "Target process ID whose vFile namespace to mount")
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	c, err := checkedConfig()
	if err != nil {
		return err
	}
	if daemonized, err := maybeDaemonize(c); daemonized || err != nil {
		return err
	}
	if err := logger.Init(c.Logging); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logger.Close()

	target, mountPoint := args[0], args[1]
	mh, metricsServer, err := startMetricsIfConfigured(c.Metrics.ListenAddr)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer metricsServer.Close()
	}

	transport, err := resolveTransport(target, c, mh)
	if err != nil {
		return err
	}
	defer transport.Close()

	conn := remote.New(transport, c, clock.RealClock{}, mh, defaultRegisterSpecs())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := conn.Open(ctx); err != nil {
		signalOutcome(err)
		return fmt.Errorf("opening RSP session: %w", err)
	}
	logger.Infof("rsp[%s]: connected to %s, mounting pid %d at %s", conn.SessionID(), target, mountPid, mountPoint)

	mfs, err := rspfs.Mount(mountPoint, conn, rspfs.Options{Pid: mountPid})
	if err != nil {
		signalOutcome(err)
		return fmt.Errorf("mounting at %s: %w", mountPoint, err)
	}
	signalOutcome(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Infof("rsp: unmounting %s", mountPoint)
	return mfs.Join(context.Background())
}
