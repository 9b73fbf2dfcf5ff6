/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package placement

import (
	"errors"
	"math"
	"testing"

	"hmidraw/internal/domain"
	"hmidraw/internal/registry"
	"hmidraw/internal/scene"
	"hmidraw/internal/vector"
)

type fakePreview struct {
	w, h      float64
	at        vector.Pt
	moves     int
	destroyed bool
}

func (p *fakePreview) Size() (float64, float64) { return p.w, p.h }
func (p *fakePreview) MoveTo(tl vector.Pt)      { p.at = tl; p.moves++ }
func (p *fakePreview) Destroy()                 { p.destroyed = true }

type fakeFactory struct{ made []*fakePreview }

func (f *fakeFactory) NewPreview(domain.Kind) DragPreview {
	p := &fakePreview{w: 40, h: 20}
	f.made = append(f.made, p)
	return p
}

type fixture struct {
	m     *Machine
	reg   *registry.Registry
	graph *scene.Graph
	prev  *fakeFactory
}

// Orthographic camera over a 400x400 canvas showing 80x80 scene units,
// background covering x,y in [-40,0].
func newFixture() *fixture {
	mapper := &scene.Mapper{Camera: scene.NewOrthographic(80, 1, 1, 1000, 100)}
	mapper.Resize(scene.Viewport{Width: 400, Height: 400})
	g := scene.NewGraph()
	g.SetBackground(&scene.Mesh{Name: "background", Z: 1, Node: vector.NewRect(vector.R(-40, -40, 40, 40), vector.Fill{}, vector.Stroke{})})
	reg := registry.New(registry.Options{ZBase: 5, ZStep: 0.1})
	f := &fakeFactory{}
	return &fixture{
		m:     New(mapper, scene.HitTester{Graph: g}, reg, f, 5),
		reg:   reg,
		graph: g,
		prev:  f,
	}
}

// inside maps to scene (-20, -20); outside to (20, 20).
var (
	inside  = vector.Pt{X: 100, Y: 300}
	outside = vector.Pt{X: 300, Y: 100}
)

func TestDropOnBackgroundCreatesShape(t *testing.T) {
	f := newFixture()
	if err := f.m.PointerDown(domain.Circle, vector.Pt{X: 5, Y: 5}, vector.Pt{X: 2, Y: 3}); err != nil {
		t.Fatalf("down: %v", err)
	}
	if f.m.State() != Dragging {
		t.Fatalf("state = %v", f.m.State())
	}
	ghost := f.prev.made[0]
	if ghost.at != (vector.Pt{X: 3, Y: 2}) {
		t.Fatalf("ghost must start at the grab point, at %+v", ghost.at)
	}
	f.m.PointerMove(inside)
	if ghost.at != (vector.Pt{X: 80, Y: 290}) {
		t.Fatalf("ghost must be centred on pointer, at %+v", ghost.at)
	}
	res := f.m.PointerUp(inside)
	if res.Outcome != Dropped || res.Err != nil {
		t.Fatalf("result %+v", res)
	}
	if math.Abs(res.Position.X+20) > 1e-9 || math.Abs(res.Position.Y+20) > 1e-9 || res.Position.Z != 5 {
		t.Fatalf("drop position %+v", res.Position)
	}
	if f.reg.Len() != 1 || res.Entry.Shape.Kind != domain.Circle {
		t.Fatalf("registry len %d", f.reg.Len())
	}
	if res.Entry.Shape.ZOrder != f.reg.ZFor(1) {
		t.Fatalf("z-order %v", res.Entry.Shape.ZOrder)
	}
	if !ghost.destroyed || f.m.State() != Idle {
		t.Fatalf("ghost must be destroyed and machine idle")
	}
}

func TestDropOutsideBackgroundCancels(t *testing.T) {
	f := newFixture()
	f.m.PointerDown(domain.Rectangle, outside, vector.Pt{})
	res := f.m.PointerUp(outside)
	if res.Outcome != Cancelled || f.reg.Len() != 0 || f.reg.Count() != 0 {
		t.Fatalf("miss must not create: %+v len=%d", res, f.reg.Len())
	}
	if !f.prev.made[0].destroyed {
		t.Fatalf("ghost must be destroyed")
	}
}

func TestSecondDragIsBusy(t *testing.T) {
	f := newFixture()
	f.m.PointerDown(domain.Ellipse, inside, vector.Pt{})
	if err := f.m.PointerDown(domain.Circle, inside, vector.Pt{}); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if k, _ := f.m.Tool(); k != domain.Ellipse || len(f.prev.made) != 1 {
		t.Fatalf("first drag must be untouched")
	}
	if res := f.m.PointerUp(inside); res.Outcome != Dropped || res.Entry.Shape.Kind != domain.Ellipse {
		t.Fatalf("result %+v", res)
	}
}

func TestCancelAndIdleEvents(t *testing.T) {
	f := newFixture()
	if res := f.m.PointerUp(inside); res.Outcome != None {
		t.Fatalf("pointer up while idle: %v", res.Outcome)
	}
	f.m.PointerMove(inside) // ignored while idle
	if err := f.m.PointerDown(domain.Kind(0), inside, vector.Pt{}); !errors.Is(err, domain.ErrUnrecognizedKind) {
		t.Fatalf("expected ErrUnrecognizedKind, got %v", err)
	}
	f.m.PointerDown(domain.FreeText, inside, vector.Pt{})
	if res := f.m.Cancel(); res.Outcome != Cancelled || res.Kind != domain.FreeText {
		t.Fatalf("cancel %+v", res)
	}
	if f.m.Cancel().Outcome != None || f.reg.Len() != 0 {
		t.Fatalf("second cancel is a no-op")
	}
}

func TestDegenerateRayIsAMiss(t *testing.T) {
	f := newFixture()
	mapper := &scene.Mapper{Camera: scene.Camera{Position: scene.V(0, 0, 5), Target: scene.V(10, 0, 5), Up: scene.V(0, 0, 1), FovDeg: 45, Aspect: 1}}
	mapper.Resize(scene.Viewport{Width: 400, Height: 400})
	m := New(mapper, scene.HitTester{Graph: f.graph}, f.reg, nil, 5)
	m.PointerDown(domain.Circle, vector.Pt{X: 200, Y: 200}, vector.Pt{})
	res := m.PointerUp(vector.Pt{X: 200, Y: 200})
	if res.Outcome != Cancelled || !errors.Is(res.Err, domain.ErrDegenerateRay) || f.reg.Len() != 0 {
		t.Fatalf("degenerate drop %+v", res)
	}
}

func TestTwoDropsStackUpwards(t *testing.T) {
	f := newFixture()
	for i := 0; i < 2; i++ {
		f.m.PointerDown(domain.Rectangle, inside, vector.Pt{})
		f.m.PointerUp(inside)
	}
	es := f.reg.Entries()
	if len(es) != 2 || es[1].Shape.ZOrder-es[0].Shape.ZOrder < 0.099 {
		t.Fatalf("z values %v %v", es[0].Shape.ZOrder, es[1].Shape.ZOrder)
	}
	for _, e := range es {
		m, err := scene.NewShapeMesh(e.Shape)
		if err != nil {
			t.Fatalf("mesh: %v", err)
		}
		f.graph.Add(m)
	}
	hit, ok := scene.HitTester{Graph: f.graph}.Pick(scene.Ray{Origin: scene.V(-20, -20, 100), Dir: scene.V(0, 0, -1)})
	if !ok || hit.Name != "shape_2" {
		t.Fatalf("top-most must win, got %+v", hit)
	}
}
