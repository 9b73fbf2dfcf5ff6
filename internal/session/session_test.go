/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"hmidraw/internal/config"
	"hmidraw/internal/domain"
	"hmidraw/internal/placement"
	"hmidraw/internal/settings"
	"hmidraw/internal/vector"
)

type fakeForm struct {
	values  settings.Values
	visible bool
	readErr error
}

func (f *fakeForm) Write(v settings.Values)            { f.values = v }
func (f *fakeForm) Read() (settings.Values, error)     { return f.values, f.readErr }
func (f *fakeForm) SetVisible(v bool)                  { f.visible = v }
func (f *fakeForm) ShowNavigation(settings.Navigation) {}

type errs []error

func (e *errs) Notify(err error) { *e = append(*e, err) }

// newSession uses an orthographic camera at 10 px per scene unit with the
// scene origin at pixel (400,400). The built-in plate covers [-30,30]².
func newSession(t *testing.T, mutate func(*config.AppConfig)) (*Session, *fakeForm, *errs) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Scene.Orthographic = true
	cfg.Scene.ViewHeight = 80
	cfg.Scene.ViewportWidth, cfg.Scene.ViewportHeight = 800, 800
	if mutate != nil {
		mutate(&cfg)
	}
	form := &fakeForm{}
	var notes errs
	n := 0
	s := New(Options{
		Config:   cfg,
		Form:     form,
		Notifier: &notes,
		Clock:    func() time.Time { return time.UnixMilli(1700000000000) },
		NewID: func() string {
			n++
			return "id-" + string(rune('a'+n))
		},
	})
	t.Cleanup(s.Close)
	return s, form, &notes
}

func settle(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func place(t *testing.T, s *Session, kind domain.Kind, px, py float64) placement.Result {
	t.Helper()
	p := vector.Pt{X: px, Y: py}
	if err := s.BeginDrag(kind, p, vector.Pt{}); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	s.MoveDrag(p)
	return s.Drop(p)
}

func TestSession_DropOnBackgroundCreatesShapeAndLabel(t *testing.T) {
	s, _, notes := newSession(t, nil)
	res := place(t, s, domain.Circle, 450, 400)
	if res.Outcome != placement.Dropped {
		t.Fatalf("outcome = %v err=%v", res.Outcome, res.Err)
	}
	if math.Abs(res.Position.X-5) > 1e-9 || math.Abs(res.Position.Y) > 1e-9 || res.Position.Z != 5 {
		t.Fatalf("drop position = %+v", res.Position)
	}
	m := s.Graph.Find("shape_1")
	if m == nil || m.Z != 5.1 || !m.Pickable {
		t.Fatalf("shape mesh = %+v", m)
	}
	if s.Graph.Find("text_1") != nil {
		t.Fatalf("label mesh present before its geometry was built")
	}

	settle(t, s)
	lm := s.Graph.Find("text_1")
	if lm == nil || lm.Label != "Label" || lm.Pickable || lm.Z != m.Z {
		t.Fatalf("label mesh = %+v", lm)
	}
	e, _ := s.Registry.FindByName("shape_1")
	if e.Text.Renderable == nil {
		t.Fatalf("renderable not attached")
	}
	if len(*notes) != 0 {
		t.Fatalf("unexpected notifications: %v", *notes)
	}
}

func TestSession_DropOutsideBackgroundMisses(t *testing.T) {
	s, _, notes := newSession(t, nil)
	res := place(t, s, domain.Rectangle, 10, 10)
	if res.Outcome != placement.Cancelled || res.Err != nil {
		t.Fatalf("result = %+v", res)
	}
	if s.Registry.Len() != 0 || s.Graph.Len() != 0 {
		t.Fatalf("registry or graph touched by a missed drop")
	}
	if len(*notes) != 0 {
		t.Fatalf("a miss is not an error: %v", *notes)
	}
}

func TestSession_DropOutsideCanvasCancels(t *testing.T) {
	s, _, _ := newSession(t, nil)
	// left of the canvas, over the palette
	res := place(t, s, domain.Circle, -10, 400)
	if res.Outcome != placement.Cancelled || s.Registry.Len() != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestSession_BackgroundLoadFailureIsNotified(t *testing.T) {
	s, _, notes := newSession(t, func(c *config.AppConfig) {
		c.Scene.Background = "does-not-exist.svg"
	})
	if len(*notes) != 1 || !errors.Is((*notes)[0], domain.ErrAssetLoad) {
		t.Fatalf("notes = %v", *notes)
	}
	if res := place(t, s, domain.Circle, 400, 400); res.Outcome != placement.Cancelled {
		t.Fatalf("drop without background should miss, got %v", res.Outcome)
	}
	if err := s.LoadBackground(""); err != nil {
		t.Fatalf("reload plate: %v", err)
	}
	if res := place(t, s, domain.Circle, 400, 400); res.Outcome != placement.Dropped {
		t.Fatalf("drop after reload = %v", res.Outcome)
	}
}

func TestSession_SecondDragIsBusy(t *testing.T) {
	s, _, notes := newSession(t, nil)
	p := vector.Pt{X: 400, Y: 400}
	if err := s.BeginDrag(domain.Ellipse, p, vector.Pt{}); err != nil {
		t.Fatalf("first drag: %v", err)
	}
	if err := s.BeginDrag(domain.Circle, p, vector.Pt{}); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("second drag err = %v", err)
	}
	if len(*notes) != 1 {
		t.Fatalf("busy drag not notified")
	}
	res := s.Drop(p)
	if res.Kind != domain.Ellipse || res.Outcome != placement.Dropped {
		t.Fatalf("first drag was disturbed: %+v", res)
	}
	if s.CancelDrag().Outcome != placement.None {
		t.Fatalf("cancel with nothing dragged")
	}
}

func TestSession_ClickOpensSettingsAndApplies(t *testing.T) {
	s, form, notes := newSession(t, nil)
	place(t, s, domain.Rectangle, 400, 400)
	settle(t, s)

	if _, ok := s.Click(vector.Pt{X: 700, Y: 700}); ok || form.visible {
		t.Fatalf("click on empty canvas picked something")
	}
	name, ok := s.Click(vector.Pt{X: 410, Y: 410})
	if !ok || name != "shape_1" || !form.visible || s.Settings.Target() != "shape_1" {
		t.Fatalf("click = %q %v visible=%v", name, ok, form.visible)
	}
	if form.values.ShapeWidth != 5 || form.values.Label != "Label" {
		t.Fatalf("form not populated: %+v", form.values)
	}

	form.values.ShapeWidth = 10
	form.values.Label = "Pump"
	a, err := s.Save()
	if err != nil || !a.Shape || !a.Text || !a.Rebuild {
		t.Fatalf("save = %+v, %v", a, err)
	}
	if form.visible || s.Settings.State() != settings.Closed {
		t.Fatalf("save should close the form")
	}
	if b := s.Graph.Find("shape_1").Bounds(); math.Abs(b.W-10) > 1e-9 {
		t.Fatalf("shape mesh not synced, bounds %+v", b)
	}
	if lm := s.Graph.Find("text_1"); lm == nil || lm.Label != "Label" {
		t.Fatalf("old label should stay until the rebuild lands: %+v", lm)
	}
	settle(t, s)
	if lm := s.Graph.Find("text_1"); lm.Label != "Pump" {
		t.Fatalf("label after rebuild = %q", lm.Label)
	}
	if len(*notes) != 0 {
		t.Fatalf("notes = %v", *notes)
	}
}

func TestSession_InvalidEditIsRejected(t *testing.T) {
	s, form, notes := newSession(t, nil)
	place(t, s, domain.Circle, 400, 400)
	s.Click(vector.Pt{X: 400, Y: 400})
	form.values.ShapeOpacity = 2
	if _, err := s.Apply(); !errors.Is(err, domain.ErrInvalidEdit) {
		t.Fatalf("apply err = %v", err)
	}
	if e, _ := s.Registry.FindByName("shape_1"); e.Shape.View.Opacity != 1 {
		t.Fatalf("invalid edit was written")
	}
	if len(*notes) != 1 {
		t.Fatalf("invalid edit not notified")
	}
	form.values.ShapeOpacity = math.NaN()
	form.values.ShapeWidth = math.Inf(1)
	if _, err := s.Apply(); !errors.Is(err, domain.ErrInvalidEdit) {
		t.Fatalf("non-finite apply err = %v", err)
	}
	e, _ := s.Registry.FindByName("shape_1")
	if e.Shape.View.Opacity != 1 || e.Shape.View.Width != 5 {
		t.Fatalf("non-finite edit was written: %+v", e.Shape.View)
	}
	if err := s.WriteExport(&strings.Builder{}); err != nil {
		t.Fatalf("export after rejected edit: %v", err)
	}
	s.Settings.Close()
	if _, err := s.Apply(); !errors.Is(err, domain.ErrNotOpen) {
		t.Fatalf("apply on closed form err = %v", err)
	}
}

func TestSession_FreeTextLabelIsPickable(t *testing.T) {
	s, form, _ := newSession(t, nil)
	res := place(t, s, domain.FreeText, 400, 400)
	if res.Entry.Shape.Name != "textShape_1" {
		t.Fatalf("name = %s", res.Entry.Shape.Name)
	}
	if s.Graph.Len() != 0 {
		t.Fatalf("free text has no body mesh")
	}
	settle(t, s)
	lm := s.Graph.Find("textShape_1")
	if lm == nil || !lm.Pickable {
		t.Fatalf("free text label mesh = %+v", lm)
	}
	name, ok := s.Click(vector.Pt{X: 402, Y: 398})
	if !ok || name != "textShape_1" || !form.visible {
		t.Fatalf("click on free text = %q %v", name, ok)
	}
}

func TestSession_ExportIsValidJSON(t *testing.T) {
	s, _, _ := newSession(t, nil)
	place(t, s, domain.Circle, 400, 400)
	place(t, s, domain.Ellipse, 420, 380)
	docs := s.Export()
	if len(docs) != 2 || docs[0].Shape.Name != "shape_1" || docs[1].Shape.Shape != "ellipse" {
		t.Fatalf("docs = %+v", docs)
	}
	b, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil || len(raw) != 2 {
		t.Fatalf("snapshot json: %v", err)
	}
	if !strings.Contains(string(b), `"id": "label_1700000000000"`) {
		t.Fatalf("ids should come from the clock:\n%s", b)
	}
}
