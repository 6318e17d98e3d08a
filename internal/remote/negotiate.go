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

	"github.com/rspcore/rspcore/internal/feature"
	"github.com/rspcore/rspcore/internal/logger"
)

// Open performs spec.md §4.1/§4.2's connection handshake: a single
// qSupported negotiation, then (if the user requested and the stub
// advertised them) QStartNoAckMode and QNonStop.
func (c *Connection) Open(ctx context.Context) error {
	logger.Infof("rsp[%s]: opening connection", c.sessionID)
	if err := c.negotiateQSupported(ctx); err != nil {
		return err
	}
	c.multiprocess = c.features.Effective(feature.KindMultiprocess)

	if c.cfg.Connection.NoAckRequested && c.features.Effective(feature.KindQStartNoAckMode) {
		if err := c.sendOKRequest(ctx, "QStartNoAckMode"); err != nil {
			return err
		}
		c.framer.SetNoAckMode()
	}

	if c.cfg.Execution.NonStop {
		if !c.features.Effective(feature.KindQNonStop) {
			return &NotSupportedError{Kind: feature.KindQNonStop}
		}
		if err := c.sendOKRequest(ctx, "QNonStop:1"); err != nil {
			return err
		}
		c.nonStop = true
	}

	return nil
}

func (c *Connection) negotiateQSupported(ctx context.Context) error {
	reply, err := c.exec(ctx, c.features.RequestString())
	if err != nil {
		return err
	}
	return c.features.ParseQSupportedReply(reply)
}

func (c *Connection) sendOKRequest(ctx context.Context, body string) error {
	reply, err := c.exec(ctx, body)
	if err != nil {
		return err
	}
	if reply != "OK" {
		return &UnexpectedReplyError{Request: body, Reply: reply}
	}
	return nil
}
