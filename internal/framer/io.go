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

package framer

import "time"

type byteOrErr struct {
	b   byte
	err error
}

// startPump launches the single goroutine allowed to touch f.br. Every
// other method reads from f.byteCh instead, so a timed-out wait never
// races a fresh read against the still-pending blocking one.
func (f *Framer) startPump() {
	f.byteCh = make(chan byteOrErr, 1)
	go func() {
		for {
			b, err := f.br.ReadByte()
			f.byteCh <- byteOrErr{b, err}
			if err != nil {
				return
			}
		}
	}()
}

// nextByte returns the next byte from the transport, or ErrTimeout if
// timeout elapses first. timeout <= 0 means wait indefinitely.
func (f *Framer) nextByte(timeout time.Duration) (byte, error) {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timeoutCh = f.clock.After(timeout)
	}
	select {
	case v := <-f.byteCh:
		return v.b, v.err
	case <-timeoutCh:
		return 0, ErrTimeout
	}
}
