/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"errors"
	"fmt"
	"testing"

	"hmidraw/internal/domain"
	"hmidraw/internal/vector"
)

func newTestRegistry() (*Registry, *[]Change) {
	n := 0
	r := New(Options{ZBase: 5, ZStep: 0.1, NewID: func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}})
	var changes []Change
	r.Subscribe(func(c Change) { changes = append(changes, c) })
	return r, &changes
}

func TestCreate_DefaultsPerKind(t *testing.T) {
	r, _ := newTestRegistry()
	for _, k := range domain.Kinds() {
		e, err := r.Create(k, vector.Pt{X: 10, Y: 10})
		if err != nil {
			t.Fatalf("create %s: %v", k, err)
		}
		if e.Shape.Kind != k || e.Text == nil {
			t.Fatalf("%s: bad entry %+v", k, e)
		}
		if e.Text.OwnerID != e.Shape.ID || e.Shape.TextID != e.Text.ID {
			t.Fatalf("%s: shape and text must reference each other", k)
		}
		if e.Shape.View.PositionX != 10 || e.Shape.View.PositionY != 10 {
			t.Fatalf("%s: position %+v", k, e.Shape.View)
		}
		if e.Shape.View.Opacity != 1 || !e.Shape.View.Transparent {
			t.Fatalf("%s: opacity/transparent defaults", k)
		}
		if e.Text.View.FontSize != 1 || e.Text.Content.Label != "Label" {
			t.Fatalf("%s: text defaults %+v", k, e.Text)
		}
	}
	circle, _ := r.FindByName("shape_1")
	if circle.Shape.View.Width != 5 || circle.Shape.View.Height != 5 {
		t.Fatalf("circle size %+v", circle.Shape.View)
	}
	if circle.Text.View.PositionX != 8.75 || circle.Text.View.PositionY != 10 {
		t.Fatalf("label position %+v", circle.Text.View)
	}
	if circle.Shape.View.FillColor.Hex() != "000000" || circle.Text.View.FillColor.Hex() != "ffffff" {
		t.Fatalf("shape colours")
	}
	free, ok := r.FindByName("textShape_4")
	if !ok {
		t.Fatalf("free text must be named textShape_4")
	}
	if free.Text.Name != "text_4" || free.Text.View.PositionX != 10 || free.Text.View.FillColor.Hex() != "00ff00" {
		t.Fatalf("free text %+v", free.Text)
	}
}

func TestCreate_UniqueNamesAndZOrder(t *testing.T) {
	r, changes := newTestRegistry()
	seen := map[string]bool{}
	var lastZ float64
	for i := 0; i < 20; i++ {
		e, err := r.Create(domain.Kinds()[i%4], vector.Pt{})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[e.Shape.Name] {
			t.Fatalf("duplicate name %s", e.Shape.Name)
		}
		seen[e.Shape.Name] = true
		if e.Shape.ZOrder != r.ZFor(i+1) || e.Shape.ZOrder <= lastZ {
			t.Fatalf("z-order %v after %v", e.Shape.ZOrder, lastZ)
		}
		lastZ = e.Shape.ZOrder
	}
	if r.Len() != 20 || len(*changes) != 20 {
		t.Fatalf("len=%d changes=%d", r.Len(), len(*changes))
	}
	es := r.Entries()
	if es[0].Shape.ZOrder != 5+0.1 || es[1].Shape.ZOrder != 5+0.2 {
		t.Fatalf("first z values %v %v", es[0].Shape.ZOrder, es[1].Shape.ZOrder)
	}
}

func TestCreate_UnrecognizedKind(t *testing.T) {
	r, changes := newTestRegistry()
	if _, err := r.Create(domain.Kind(42), vector.Pt{}); !errors.Is(err, domain.ErrUnrecognizedKind) {
		t.Fatalf("expected ErrUnrecognizedKind, got %v", err)
	}
	if r.Len() != 0 || r.Count() != 0 || len(*changes) != 0 {
		t.Fatalf("rejected create must not mutate")
	}
	e, _ := r.Create(domain.Circle, vector.Pt{})
	if e.Shape.Name != "shape_1" {
		t.Fatalf("counter must not skip, got %s", e.Shape.Name)
	}
}

func TestFindByName(t *testing.T) {
	r, _ := newTestRegistry()
	r.Create(domain.Rectangle, vector.Pt{X: 3, Y: -4})
	e, ok := r.FindByName("shape_1")
	if !ok || e.Shape.Kind != domain.Rectangle || e.Shape.View.PositionY != -4 {
		t.Fatalf("find: %+v %v", e, ok)
	}
	if _, ok := r.FindByName("shape_2"); ok {
		t.Fatalf("unexpected match")
	}
	if _, ok := r.FindByText(e.Text.ID); !ok {
		t.Fatalf("find by text")
	}
}

func TestApplyShapeEdits(t *testing.T) {
	r, changes := newTestRegistry()
	e, _ := r.Create(domain.Circle, vector.Pt{X: 1, Y: 1})
	*changes = nil

	changed, err := r.ApplyShapeEdits("shape_1", ShapeEditOf(e.Shape.View))
	if err != nil || changed || len(*changes) != 0 {
		t.Fatalf("identical edit must be a no-op: %v %v %d", changed, err, len(*changes))
	}

	edit := ShapeEditOf(e.Shape.View)
	edit.Opacity = 0.4
	changed, err = r.ApplyShapeEdits("shape_1", edit)
	if err != nil || !changed {
		t.Fatalf("apply: %v %v", changed, err)
	}
	v := e.Shape.View
	if v.Opacity != 0.4 || v.Width != 5 || v.Height != 5 || !v.Transparent || v.PositionX != 1 {
		t.Fatalf("only opacity may change: %+v", v)
	}
	if len(*changes) != 1 || (*changes)[0].Kind != ShapeEdited {
		t.Fatalf("changes: %+v", *changes)
	}

	if _, err := r.ApplyShapeEdits("shape_9", edit); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	edit.Opacity = 2
	if _, err := r.ApplyShapeEdits("shape_1", edit); !errors.Is(err, domain.ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit, got %v", err)
	}
	if e.Shape.View.Opacity != 0.4 {
		t.Fatalf("invalid edit must not be written")
	}
}

func TestApplyTextEdits(t *testing.T) {
	r, changes := newTestRegistry()
	e, _ := r.Create(domain.Rectangle, vector.Pt{})
	*changes = nil
	edit := TextEditOf(e.Text.View)

	changed, rebuild, err := r.ApplyTextEdits("shape_1", edit, e.Text.Content)
	if err != nil || changed || rebuild || len(*changes) != 0 {
		t.Fatalf("identical edit must be a no-op")
	}

	edit.Opacity = 0.5
	changed, rebuild, err = r.ApplyTextEdits("shape_1", edit, e.Text.Content)
	if err != nil || !changed || rebuild {
		t.Fatalf("opacity change needs no rebuild: %v %v %v", changed, rebuild, err)
	}

	pos := [2]float64{e.Text.View.PositionX, e.Text.View.PositionY}
	edit.FontSize = 3
	changed, rebuild, err = r.ApplyTextEdits("shape_1", edit, e.Text.Content)
	if err != nil || !changed || !rebuild {
		t.Fatalf("font size change must rebuild: %v %v %v", changed, rebuild, err)
	}
	if e.Text.Content.Label != "Label" || pos != [2]float64{e.Text.View.PositionX, e.Text.View.PositionY} {
		t.Fatalf("label and position must survive a rebuild")
	}

	changed, rebuild, _ = r.ApplyTextEdits("shape_1", edit, domain.TextContent{Label: "Pump"})
	if !changed || !rebuild || e.Text.Content.Label != "Pump" {
		t.Fatalf("label change must rebuild")
	}
	kinds := []ChangeKind{}
	for _, c := range *changes {
		kinds = append(kinds, c.Kind)
	}
	want := []ChangeKind{TextEdited, TextRebuild, TextRebuild}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("changes = %v, want %v", kinds, want)
	}

	if _, _, err := r.ApplyTextEdits("nope", edit, e.Text.Content); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	edit.FontSize = -1
	if _, _, err := r.ApplyTextEdits("shape_1", edit, e.Text.Content); !errors.Is(err, domain.ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit, got %v", err)
	}
}

type geom struct{ size float64 }

func (g geom) Text() string           { return "Label" }
func (g geom) FontSize() float64      { return g.size }
func (g geom) Extent() (w, h float64) { return 3, g.size }

func TestAttachRenderable(t *testing.T) {
	r, changes := newTestRegistry()
	e, _ := r.Create(domain.Ellipse, vector.Pt{})
	if e.Text.Renderable != nil {
		t.Fatalf("renderable is built asynchronously")
	}
	if _, err := r.AttachRenderable(e.Text.ID, geom{1}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	old := e.Text.Renderable
	r.AttachRenderable(e.Text.ID, geom{2})
	if e.Text.Renderable == old || e.Text.Renderable.FontSize() != 2 {
		t.Fatalf("renderable must be replaced")
	}
	if (*changes)[len(*changes)-1].Kind != RenderableAttached {
		t.Fatalf("attach must emit")
	}
	if _, err := r.AttachRenderable("missing", geom{1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if RenderableAttached.String() != "renderable_attached" || ChangeKind(99).String() != "change(99)" {
		t.Fatalf("change kind names")
	}
}
