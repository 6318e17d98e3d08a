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
	"context"

	"github.com/rspcore/rspcore/internal/notify"
)

// drainVStopped implements spec.md §4.6's drain rule: once a %Stop
// notification has filled the single in-flight slot, repeatedly send
// vStopped and parse each reply until "OK" terminates the drain. Each
// drained event is appended to the queue unless its waitstatus was
// explicitly marked ignore by a prior discard, in which case it is
// dropped but still acked (acking happens implicitly: sending the next
// vStopped is itself the acknowledgement of the previous reply).
func (c *Connection) drainVStopped(ctx context.Context) error {
	if c.draining {
		return nil
	}
	c.draining = true
	defer func() { c.draining = false }()

	if sr, ok := c.notifs.TakePending(notify.KindStop); ok {
		c.notifs.Enqueue(notify.KindStop, sr)
	}

	for {
		reply, err := c.exec(ctx, "vStopped")
		if err != nil {
			return err
		}
		if reply == "OK" {
			return nil
		}
		sr, err := notify.ParseStopReply(reply)
		if err != nil {
			return err
		}
		c.notifs.Enqueue(notify.KindStop, sr)
	}
}

// drainIfPending calls drainVStopped when a %Stop notification has been
// queued since the last drain, per spec.md §4.6's "at the next safe
// point (after the current request/reply pair completes)".
func (c *Connection) drainIfPending(ctx context.Context) error {
	if !c.notifs.HasPending(notify.KindStop) {
		return nil
	}
	return c.drainVStopped(ctx)
}
