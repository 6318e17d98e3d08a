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
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rspcore/rspcore/internal/clock"
	"github.com/rspcore/rspcore/internal/logger"
	"github.com/rspcore/rspcore/internal/metrics"
	"github.com/rspcore/rspcore/internal/notify"
	"github.com/rspcore/rspcore/internal/remote"
)

var connectCmd = &cobra.Command{
	Use:   "connect <target>",
	Short: "Open an RSP session against <target> and run until disconnect",
	Long: `<target> is a host:port to dial over TCP, the path to a Unix
domain socket, or a serial device path (e.g. /dev/ttyUSB0).`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
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

	mh, metricsServer, err := startMetricsIfConfigured(c.Metrics.ListenAddr)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer metricsServer.Close()
	}

	target := args[0]
	logger.Infof("rsp: resolving transport for %s (%s)", target, targetKind(target))
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
	signalOutcome(nil)
	logger.Infof("rsp[%s]: connected to %s", conn.SessionID(), target)

	conn.OnConsoleOutput = func(s string) { fmt.Print(s) }

	go watchInterrupts(ctx, conn)

	return runEventLoop(ctx, conn)
}

// startMetricsIfConfigured serves internal/metrics' Prometheus handler on
// listenAddr if it's non-empty, returning a noop Handle and nil server
// otherwise.
func startMetricsIfConfigured(listenAddr string) (metrics.Handle, *http.Server, error) {
	if listenAddr == "" {
		return metrics.NewNoopHandle(), nil, nil
	}
	mh, handler, err := metrics.NewOTelHandle()
	if err != nil {
		return nil, nil, fmt.Errorf("initializing metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("rsp: metrics server: %v", err)
		}
	}()
	return mh, srv, nil
}

// watchInterrupts sends conn.Interrupt on the first SIGINT and
// conn.Escalate on a second one, matching a debugger's usual Ctrl-C
// behavior of escalating if the first request doesn't produce a stop.
func watchInterrupts(ctx context.Context, conn *remote.Connection) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	escalated := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			var err error
			if !escalated {
				err = conn.Interrupt(ctx)
				escalated = true
			} else {
				err = conn.Escalate(ctx)
			}
			if err != nil {
				logger.Warnf("rsp: interrupt: %v", err)
			}
		}
	}
}

// runEventLoop resumes every thread and waits for stop replies until the
// transport is closed or ctx is cancelled, printing each stop to stdout.
// It is a minimal driver standing in for a real front-end's command
// dispatcher (spec.md's Non-goal: "not a user command dispatcher").
func runEventLoop(ctx context.Context, conn *remote.Connection) error {
	if err := conn.Resume(ctx, remote.ResumeRequest{
		Ptid: notify.Ptid{Pid: notify.WildcardID, Lwp: notify.WildcardID},
	}); err != nil {
		return fmt.Errorf("initial resume: %w", err)
	}

	for {
		sr, err := conn.Wait(ctx, nil)
		if err != nil {
			return fmt.Errorf("waiting for stop: %w", err)
		}
		fmt.Printf("stop: ptid=%s status=%s reason=%d\n", sr.Ptid, sr.Status.Kind, sr.Reason)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := conn.Resume(ctx, remote.ResumeRequest{Ptid: sr.Ptid}); err != nil {
			return fmt.Errorf("resuming after stop: %w", err)
		}
	}
}
