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

package remote

import (
	"errors"
	"fmt"

	"github.com/rspcore/rspcore/internal/feature"
)

// NotSupportedError reports that a requested operation has no support on
// the wire: the stub refused it during qSupported negotiation or a lazy
// probe, and internal/feature's monotonicity invariant means it will not
// be retried.
type NotSupportedError struct {
	Kind feature.Kind
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("rsp: %s is not supported by this stub", e.Kind)
}

// UnexpectedReplyError reports a reply that parsed but didn't match the
// grammar the caller expected for the request it sent — distinct from a
// framer.ProtocolError, which is a framing-level violation.
type UnexpectedReplyError struct {
	Request string
	Reply   string
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("rsp: unexpected reply %q to %q", e.Reply, e.Request)
}

// ErrNoTarget is returned by an operation that requires a stopped (or
// existing) target when none is available, e.g. memory access before the
// first stop is reported.
var ErrNoTarget = errors.New("rsp: no target is currently selected")

// joinErrs composes the core's top-level error taxonomy: a disconnect
// during an in-flight request should surface both the operation's own
// failure and the connection-level cause, rather than only the last one
// seen.
func joinErrs(errs ...error) error {
	return errors.Join(errs...)
}
