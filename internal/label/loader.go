/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package label

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	applog "hmidraw/internal/log"
)

// BuildFunc builds geometry for text at a font size.
type BuildFunc func(ctx context.Context, text string, fontSize float64) (*Geometry, error)

// Result is a finished build for one text record. Err is set when the
// build failed; Geometry is nil then.
type Result struct {
	TextID   string
	Gen      uint64
	Geometry *Geometry
	Err      error
}

type request struct {
	gen    uint64
	cancel context.CancelFunc
}

// Loader runs label builds off the event thread. A new request for a text
// record cancels and supersedes the one still in flight, so only the latest
// build for each record is ever delivered. Finished results queue up until
// the event thread drains them.
type Loader struct {
	build BuildFunc
	log   *slog.Logger

	mu      sync.Mutex
	gen     uint64
	pending map[string]request
	ready   []Result
	notify  func()
	closed  bool

	wg sync.WaitGroup
}

func NewLoader(build BuildFunc) *Loader {
	return &Loader{
		build:   build,
		log:     applog.WithComponent("label"),
		pending: make(map[string]request),
	}
}

// SetNotify registers fn to be called from the worker goroutine each time a
// result becomes ready. UIs use it to schedule a drain on their thread.
func (l *Loader) SetNotify(fn func()) {
	l.mu.Lock()
	l.notify = fn
	l.mu.Unlock()
}

// Request starts building text for textID and returns the request's
// generation. Any earlier request for textID is cancelled.
func (l *Loader) Request(textID, text string, fontSize float64) uint64 {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0
	}
	if prev, ok := l.pending[textID]; ok {
		prev.cancel()
		l.log.Debug("label build superseded", "text", textID, "gen", prev.gen)
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.pending[textID] = request{gen: gen, cancel: cancel}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer cancel()
		g, err := l.build(ctx, text, fontSize)
		l.finish(Result{TextID: textID, Gen: gen, Geometry: g, Err: err})
	}()
	return gen
}

func (l *Loader) finish(r Result) {
	l.mu.Lock()
	cur, ok := l.pending[r.TextID]
	if !ok || cur.gen != r.Gen {
		l.mu.Unlock()
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			l.log.Debug("stale label build failed", "text", r.TextID, "gen", r.Gen, "err", r.Err)
		}
		return
	}
	delete(l.pending, r.TextID)
	l.ready = append(l.ready, r)
	notify := l.notify
	l.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Cancel drops the in-flight request for textID, if any.
func (l *Loader) Cancel(textID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.pending[textID]; ok {
		prev.cancel()
		delete(l.pending, textID)
	}
}

// Drain returns the results that finished since the last call, in
// completion order.
func (l *Loader) Drain() []Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.ready
	l.ready = nil
	return out
}

// Pending is the number of requests still building.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Wait blocks until every started build has returned or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels everything in flight and rejects further requests.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	for id, r := range l.pending {
		r.cancel()
		delete(l.pending, id)
	}
	l.mu.Unlock()
	l.wg.Wait()
}
