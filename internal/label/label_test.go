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
	"math"
	"path/filepath"
	"testing"

	"hmidraw/internal/domain"
)

var _ domain.Renderable = (*Geometry)(nil)

func TestBuilder_BasicFaceIsDeterministic(t *testing.T) {
	b := NewBuilder(nil, Basic)
	g, err := b.Build(context.Background(), "Label", 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	w, h := g.Extent()
	if math.Abs(w-35.0/13) > 1e-12 || math.Abs(h-1) > 1e-12 {
		t.Fatalf("extent = %v x %v", w, h)
	}
	g2, _ := b.Build(context.Background(), "Label", 2)
	w2, h2 := g2.Extent()
	if math.Abs(w2-2*w) > 1e-12 || math.Abs(h2-2*h) > 1e-12 {
		t.Fatalf("extent must scale with size: %v x %v", w2, h2)
	}
	if g2.Text() != "Label" || g2.FontSize() != 2 || g2.Ascent() <= 0 {
		t.Fatalf("geometry fields: %+v", g2)
	}
}

func TestBuilder_EmbeddedFontCached(t *testing.T) {
	lib := NewFontLibrary()
	b := NewBuilder(lib, "")
	g, err := b.Build(context.Background(), "Label", 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if w, h := g.Extent(); w <= 0 || h <= 0 {
		t.Fatalf("empty extent %v x %v", w, h)
	}
	if _, err := b.Build(context.Background(), "Other", 3); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if lib.Loaded() != 1 {
		t.Fatalf("font must be parsed once, cached=%d", lib.Loaded())
	}
	empty, _ := b.Build(context.Background(), "", 1)
	if w, _ := empty.Extent(); w != 0 {
		t.Fatalf("empty text width = %v", w)
	}
}

func TestBuilder_Failures(t *testing.T) {
	b := NewBuilder(nil, filepath.Join(t.TempDir(), "missing.ttf"))
	if _, err := b.Build(context.Background(), "Label", 1); !errors.Is(err, domain.ErrAssetLoad) {
		t.Fatalf("expected ErrAssetLoad, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBuilder(nil, Basic).Build(ctx, "Label", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// gate blocks builds until released, so tests control completion order.
type gate struct {
	started chan string
	release map[string]chan struct{}
}

func newGate(texts ...string) *gate {
	g := &gate{started: make(chan string, 16), release: map[string]chan struct{}{}}
	for _, s := range texts {
		g.release[s] = make(chan struct{})
	}
	return g
}

func (g *gate) build(ctx context.Context, text string, size float64) (*Geometry, error) {
	g.started <- text
	select {
	case <-g.release[text]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Geometry{text: text, size: size, width: size, height: size}, nil
}

func TestLoader_NewRequestSupersedesPending(t *testing.T) {
	g := newGate("old", "new")
	l := NewLoader(g.build)
	defer l.Close()

	first := l.Request("text_1", "old", 1)
	<-g.started
	second := l.Request("text_1", "new", 3)
	<-g.started
	if second <= first {
		t.Fatalf("generations must increase: %d then %d", first, second)
	}
	close(g.release["new"])
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	res := l.Drain()
	if len(res) != 1 {
		t.Fatalf("want only the latest result, got %d", len(res))
	}
	if res[0].Gen != second || res[0].Geometry.FontSize() != 3 || res[0].Err != nil {
		t.Fatalf("result = %+v", res[0])
	}
	if l.Pending() != 0 || len(l.Drain()) != 0 {
		t.Fatalf("loader must be idle after drain")
	}
}

func TestLoader_IndependentRecordsAndNotify(t *testing.T) {
	g := newGate("a", "b")
	l := NewLoader(g.build)
	defer l.Close()
	notified := make(chan struct{}, 4)
	l.SetNotify(func() { notified <- struct{}{} })

	l.Request("text_1", "a", 1)
	l.Request("text_2", "b", 1)
	<-g.started
	<-g.started
	if l.Pending() != 2 {
		t.Fatalf("pending = %d", l.Pending())
	}
	close(g.release["b"])
	<-notified
	res := l.Drain()
	if len(res) != 1 || res[0].TextID != "text_2" {
		t.Fatalf("b must finish first: %+v", res)
	}
	close(g.release["a"])
	<-notified
	res = l.Drain()
	if len(res) != 1 || res[0].TextID != "text_1" {
		t.Fatalf("then a: %+v", res)
	}
}

func TestLoader_CancelAndErrors(t *testing.T) {
	g := newGate("x")
	l := NewLoader(g.build)
	l.Request("text_1", "x", 1)
	<-g.started
	l.Cancel("text_1")
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(l.Drain()) != 0 {
		t.Fatalf("cancelled request must not deliver")
	}

	failing := NewLoader(func(context.Context, string, float64) (*Geometry, error) {
		return nil, domain.ErrAssetLoad
	})
	failing.Request("text_9", "x", 1)
	_ = failing.Wait(context.Background())
	res := failing.Drain()
	if len(res) != 1 || !errors.Is(res[0].Err, domain.ErrAssetLoad) {
		t.Fatalf("failures are delivered: %+v", res)
	}
	failing.Close()
	if failing.Request("text_9", "x", 1) != 0 {
		t.Fatalf("closed loader must reject requests")
	}
	l.Close()
}
