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

package logger

import (
	"io"
	"sync"
)

// asyncWriter buffers writes through a channel so a slow sink (a rotating
// file on a loaded disk) never blocks rspcore's single-threaded core, which
// spends most of its time waiting on the transport. Lines are dropped, not
// blocked on, once the buffer is full — the core favors making forward
// progress on the protocol over guaranteeing every trace line lands.
type asyncWriter struct {
	dst     io.Writer
	lines   chan []byte
	done    chan struct{}
	dropped uint64

	closeOnce sync.Once
}

// newAsyncWriter starts a goroutine draining lines to dst. bufferSize is the
// number of pending log lines it will hold before dropping new ones.
func newAsyncWriter(dst io.Writer, bufferSize int) *asyncWriter {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	w := &asyncWriter{
		dst:   dst,
		lines: make(chan []byte, bufferSize),
		done:  make(chan struct{}),
	}
	go w.drain()
	return w
}

func (w *asyncWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)
	select {
	case w.lines <- line:
	default:
		w.dropped++
	}
	return len(p), nil
}

// Dropped reports how many log lines were discarded because the buffer was
// full.
func (w *asyncWriter) Dropped() uint64 {
	return w.dropped
}

func (w *asyncWriter) drain() {
	defer close(w.done)
	for line := range w.lines {
		_, _ = w.dst.Write(line)
	}
}

// Close stops accepting new lines and waits for the buffered ones to drain.
func (w *asyncWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.lines)
	})
	<-w.done
	return nil
}
