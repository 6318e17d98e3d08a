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
	"io"
	"net"
	"os"

	goserial "github.com/daedaluz/goserial"

	"github.com/rspcore/rspcore/cfg"
	"github.com/rspcore/rspcore/internal/metrics"
	"github.com/rspcore/rspcore/internal/sockstat"
)

// resolveTransport implements spec.md's assumption of an already-open
// byte-stream transport: it opens one from a user-supplied target string,
// per SPEC_FULL.md §3.5. A target that parses as host:port is dialed as
// TCP; an existing path whose mode is a socket is dialed as a Unix domain
// socket; anything else is treated as a serial device path.
func resolveTransport(target string, c cfg.Config, mh metrics.Handle) (io.ReadWriteCloser, error) {
	switch {
	case looksLikeTCPAddr(target):
		conn, err := net.Dial("tcp", target)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", target, err)
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			return sockstat.Wrap(tcpConn, mh), nil
		}
		return conn, nil

	case isUnixSocketPath(target):
		conn, err := net.Dial("unix", target)
		if err != nil {
			return nil, fmt.Errorf("dialing unix socket %s: %w", target, err)
		}
		return conn, nil

	default:
		return openSerial(target, c.Serial.BaudRate)
	}
}

func looksLikeTCPAddr(target string) bool {
	_, _, err := net.SplitHostPort(target)
	return err == nil
}

func isUnixSocketPath(target string) bool {
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}

// openSerial opens target as a serial device via github.com/daedaluz/goserial,
// configuring it for raw byte-stream use at baudRate (SPEC_FULL.md §3.5).
func openSerial(target string, baudRate int) (io.ReadWriteCloser, error) {
	port, err := goserial.Open(target, nil)
	if err != nil {
		return nil, fmt.Errorf("opening serial device %s: %w", target, err)
	}
	if err := configureSerial(port, baudRate); err != nil {
		port.Close()
		return nil, fmt.Errorf("configuring serial device %s: %w", target, err)
	}
	return port, nil
}

func configureSerial(port *goserial.Port, baudRate int) error {
	if err := port.MakeRaw(); err != nil {
		return err
	}
	attrs, err := port.GetAttr2()
	if err != nil {
		return err
	}
	attrs.SetSpeed(baudCFlag(baudRate))
	return port.SetAttr2(goserial.TCSANOW, attrs)
}

// baudCFlag maps a requested integer baud rate to the nearest standard
// termios speed constant goserial exposes, falling back to B115200 for an
// unrecognized rate.
func baudCFlag(baudRate int) goserial.CFlag {
	switch baudRate {
	case 9600:
		return goserial.B9600
	case 19200:
		return goserial.B19200
	case 38400:
		return goserial.B38400
	case 57600:
		return goserial.B57600
	case 115200:
		return goserial.B115200
	case 230400:
		return goserial.B230400
	case 460800:
		return goserial.B460800
	case 921600:
		return goserial.B921600
	default:
		return goserial.B115200
	}
}

// targetKind is used only for diagnostics/logging, reporting which branch
// resolveTransport took without re-running its checks.
func targetKind(target string) string {
	switch {
	case looksLikeTCPAddr(target):
		return "tcp"
	case isUnixSocketPath(target):
		return "unix"
	default:
		return "serial"
	}
}
