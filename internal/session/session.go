/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session is the editor's application context. It owns the scene,
// the registry and the interaction controllers, and routes registry
// changes to the scene graph and the label loader.
package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"hmidraw/internal/background"
	"hmidraw/internal/config"
	"hmidraw/internal/domain"
	"hmidraw/internal/export"
	"hmidraw/internal/label"
	applog "hmidraw/internal/log"
	"hmidraw/internal/placement"
	"hmidraw/internal/registry"
	"hmidraw/internal/scene"
	"hmidraw/internal/settings"
	"hmidraw/internal/telemetry"
	"hmidraw/internal/vector"
)

// Notifier surfaces recovered errors to the user.
type Notifier interface {
	Notify(err error)
}

type NotifyFunc func(error)

func (f NotifyFunc) Notify(err error) { f(err) }

type logNotifier struct{ log *slog.Logger }

func (n logNotifier) Notify(err error) { n.log.Warn("editor error", "err", err) }

// Options configure a session. Only Config is required; a zero Config is
// replaced by config.Defaults().
type Options struct {
	Config config.AppConfig

	Form      settings.Form
	Previews  placement.PreviewFactory
	Notifier  Notifier
	Telemetry *telemetry.Client

	Fonts *label.FontLibrary
	// Build overrides label geometry building; tests use it to hold builds.
	Build label.BuildFunc
	Clock export.Clock
	NewID func() string
}

type Session struct {
	cfg config.SceneConfig

	Mapper    *scene.Mapper
	Graph     *scene.Graph
	Registry  *registry.Registry
	Placement *placement.Machine
	Settings  *settings.Controller
	Labels    *label.Loader
	Fonts     *label.FontLibrary

	exporter *export.Serializer
	notifier Notifier
	tel      *telemetry.Client
	log      *slog.Logger
}

// New builds a session and loads the configured background. A background
// that fails to load is reported through the notifier; the session still
// works but every drop misses.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg.ConfigVersion == 0 {
		cfg = config.Defaults()
	}
	sc := cfg.Scene
	log := applog.WithComponent("session")

	s := &Session{
		cfg:      sc,
		Mapper:   &scene.Mapper{Camera: newCamera(sc)},
		Graph:    scene.NewGraph(),
		Fonts:    opts.Fonts,
		exporter: export.NewSerializer(opts.Clock),
		notifier: opts.Notifier,
		tel:      opts.Telemetry,
		log:      log,
	}
	if s.notifier == nil {
		s.notifier = logNotifier{log: log}
	}
	if s.Fonts == nil {
		s.Fonts = label.NewFontLibrary()
	}
	s.Mapper.Resize(scene.Viewport{Width: float64(sc.ViewportWidth), Height: float64(sc.ViewportHeight)})

	s.Registry = registry.New(registry.Options{
		ZBase:        sc.ZBase,
		ZStep:        sc.ZStep,
		DefaultLabel: cfg.Fonts.DefaultLabel,
		NewID:        opts.NewID,
	})
	s.Registry.Subscribe(s.onChange)

	build := opts.Build
	if build == nil {
		build = label.NewBuilder(s.Fonts, cfg.Fonts.Path).Build
	}
	s.Labels = label.NewLoader(build)

	s.Placement = placement.New(s.Mapper, scene.HitTester{Graph: s.Graph}, s.Registry, opts.Previews, sc.TargetZ)
	form := opts.Form
	if form == nil {
		form = nopForm{}
	}
	s.Settings = settings.NewController(form, s.Registry)

	_ = s.LoadBackground(sc.Background)
	s.tel.Event(telemetry.EventStarted, nil)
	return s
}

func newCamera(sc config.SceneConfig) scene.Camera {
	aspect := 1.0
	if sc.ViewportHeight > 0 {
		aspect = float64(sc.ViewportWidth) / float64(sc.ViewportHeight)
	}
	if sc.Orthographic {
		return scene.NewOrthographic(sc.ViewHeight, aspect, sc.Near, sc.Far, sc.CameraZ)
	}
	return scene.NewPerspective(sc.FovDeg, aspect, sc.Near, sc.Far, sc.CameraZ)
}

// LoadBackground replaces the background artwork. On failure the previous
// artwork is removed and the error is also sent to the notifier.
func (s *Session) LoadBackground(path string) error {
	art, err := background.Load(path)
	if err != nil {
		s.Graph.SetBackground(nil)
		s.notifier.Notify(err)
		return err
	}
	s.Graph.SetBackground(art.Mesh(background.Placement{
		Scale:   s.cfg.BackgroundScale,
		OffsetX: s.cfg.BackgroundOffsetX,
		OffsetY: s.cfg.BackgroundOffsetY,
		Z:       s.cfg.BackgroundZ,
	}))
	return nil
}

// Resize follows the canvas to a new window rectangle.
func (s *Session) Resize(v scene.Viewport) { s.Mapper.Resize(v) }

func (s *Session) onChange(c registry.Change) {
	e := c.Entry
	switch c.Kind {
	case registry.Created:
		if e.Shape.Kind != domain.FreeText {
			m, err := scene.NewShapeMesh(e.Shape)
			if err != nil {
				s.notifier.Notify(err)
				return
			}
			s.Graph.Add(m)
		}
		s.requestLabel(e)
	case registry.ShapeEdited:
		if m := s.Graph.Find(e.Shape.Name); m != nil && e.Shape.Kind != domain.FreeText {
			m.SyncShape(e.Shape.View)
		}
	case registry.TextEdited, registry.RenderableAttached:
		s.syncLabel(e)
	case registry.TextRebuild:
		// the old label stays visible until the new geometry arrives
		s.syncLabel(e)
		s.requestLabel(e)
	}
}

func (s *Session) requestLabel(e registry.Entry) {
	s.Labels.Request(e.Text.ID, e.Text.Content.Label, e.Text.View.FontSize)
}

// syncLabel puts the label mesh of e in the graph. A FreeText label is the
// shape itself, so it carries the shape's name and can be picked.
func (s *Session) syncLabel(e registry.Entry) {
	if e.Text.Renderable == nil {
		return
	}
	free := e.Shape.Kind == domain.FreeText
	m := scene.NewLabelMesh(e.Text, e.Shape.ZOrder, free)
	if free {
		m.Name = e.Shape.Name
	}
	s.Graph.Add(m)
}

// Tick applies finished label builds. Call it on the event thread; it
// returns the number of labels attached.
func (s *Session) Tick() int {
	n := 0
	for _, r := range s.Labels.Drain() {
		if r.Err != nil {
			if !errors.Is(r.Err, context.Canceled) {
				s.notifier.Notify(r.Err)
			}
			continue
		}
		if _, err := s.Registry.AttachRenderable(r.TextID, r.Geometry); err != nil {
			s.notifier.Notify(err)
			continue
		}
		n++
	}
	return n
}

// Settle waits for in-flight label builds and applies them.
func (s *Session) Settle(ctx context.Context) error {
	if err := s.Labels.Wait(ctx); err != nil {
		return err
	}
	s.Tick()
	return nil
}

// BeginDrag starts dragging a palette tool.
func (s *Session) BeginDrag(kind domain.Kind, pointer, offset vector.Pt) error {
	if err := s.Placement.PointerDown(kind, pointer, offset); err != nil {
		s.notifier.Notify(err)
		return err
	}
	return nil
}

func (s *Session) MoveDrag(pointer vector.Pt) { s.Placement.PointerMove(pointer) }

// Drop ends the drag at pointer. Releasing outside the canvas cancels the
// drag like a miss.
func (s *Session) Drop(pointer vector.Pt) placement.Result {
	var res placement.Result
	if s.Placement.State() == placement.Dragging && !s.Mapper.Viewport.Contains(pointer) {
		res = s.Placement.Cancel()
	} else {
		res = s.Placement.PointerUp(pointer)
	}
	switch {
	case res.Outcome == placement.Dropped:
		s.tel.Event(telemetry.EventShapePlaced, map[string]any{"kind": res.Kind.String()})
	case res.Err != nil:
		s.notifier.Notify(res.Err)
	case res.Outcome == placement.Cancelled:
		s.tel.Event(telemetry.EventDropMissed, map[string]any{"kind": res.Kind.String()})
	}
	return res
}

func (s *Session) CancelDrag() placement.Result { return s.Placement.Cancel() }

// Click handles a canvas click: the open form is closed, and a shape under
// the pointer opens in a fresh form. It returns the picked shape's name.
func (s *Session) Click(pointer vector.Pt) (string, bool) {
	s.Settings.Close()
	ray, err := s.Mapper.Ray(pointer)
	if err != nil {
		return "", false
	}
	m, ok := scene.HitTester{Graph: s.Graph}.Pick(ray)
	if !ok {
		return "", false
	}
	if err := s.Settings.Open(m.Name); err != nil {
		s.notifier.Notify(err)
		return "", false
	}
	return m.Name, true
}

// Apply writes the settings form back to the registry.
func (s *Session) Apply() (settings.Applied, error) {
	return s.applied(s.Settings.Apply())
}

// Save applies and closes the settings form.
func (s *Session) Save() (settings.Applied, error) {
	return s.applied(s.Settings.Save())
}

func (s *Session) applied(a settings.Applied, err error) (settings.Applied, error) {
	if err != nil {
		s.notifier.Notify(err)
		return a, err
	}
	if a.Shape || a.Text {
		s.tel.Event(telemetry.EventSettingsApplied, map[string]any{"shape": a.Shape, "text": a.Text, "rebuild": a.Rebuild})
	}
	return a, nil
}

// Export snapshots every placed shape in z-order.
func (s *Session) Export() []export.Document {
	return s.exporter.All(s.Registry.Entries())
}

// WriteExport validates the export and writes it as a JSON array.
func (s *Session) WriteExport(w io.Writer) error {
	docs := s.Export()
	if err := export.ValidateAll(docs); err != nil {
		return err
	}
	if err := export.Encode(w, docs); err != nil {
		return err
	}
	applog.WithOperation(s.log, "export").Info("documents written", "count", len(docs))
	s.tel.Event(telemetry.EventExported, map[string]any{"count": len(docs)})
	return nil
}

// Snapshot is WriteExport into memory; the crash handler stores it.
func (s *Session) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteExport(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close stops label loading.
func (s *Session) Close() {
	s.Placement.Cancel()
	s.Labels.Close()
}

// nopForm backs the settings controller when no UI is attached.
type nopForm struct{}

func (nopForm) Write(settings.Values)              {}
func (nopForm) Read() (settings.Values, error)     { return settings.Values{}, errors.New("no settings form attached") }
func (nopForm) SetVisible(bool)                    {}
func (nopForm) ShowNavigation(settings.Navigation) {}
