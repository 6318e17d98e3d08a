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
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// slowWriter blocks every Write until release is closed, letting tests
// prove the async wrapper doesn't block its caller on a stuck sink.
type slowWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	release chan struct{}
}

func newSlowWriter() *slowWriter {
	return &slowWriter{release: make(chan struct{})}
}

func (w *slowWriter) Write(p []byte) (int, error) {
	<-w.release
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *slowWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestAsyncWriterDoesNotBlockOnSlowSink(t *testing.T) {
	sw := newSlowWriter()
	aw := newAsyncWriter(sw, 8)

	done := make(chan struct{})
	go func() {
		_, _ = aw.Write([]byte("line one\n"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("asyncWriter.Write blocked on a stuck sink")
	}

	close(sw.release)
	assert.NoError(t, aw.Close())
	assert.Equal(t, "line one\n", sw.String())
}

func TestAsyncWriterDropsWhenBufferFull(t *testing.T) {
	sw := newSlowWriter()
	aw := newAsyncWriter(sw, 1)

	// The drain goroutine immediately blocks on the first line since
	// sw.release is never closed here, so the buffer fills after one more.
	_, _ = aw.Write([]byte("a\n"))
	_, _ = aw.Write([]byte("b\n"))
	_, _ = aw.Write([]byte("c\n"))

	assert.Greater(t, aw.Dropped(), uint64(0))

	close(sw.release)
	assert.NoError(t, aw.Close())
}
