/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package placement runs the drag-and-drop lifecycle that turns a palette
// tool into a placed shape: Idle, Dragging, then Dropped or Cancelled and
// back to Idle.
package placement

import (
	"fmt"
	"log/slog"

	"hmidraw/internal/domain"
	applog "hmidraw/internal/log"
	"hmidraw/internal/registry"
	"hmidraw/internal/scene"
	"hmidraw/internal/vector"
)

type State uint8

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

type Outcome uint8

const (
	// None means no drag was in progress.
	None Outcome = iota
	Dropped
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	}
	return "none"
}

// DragPreview is the ghost that follows the pointer during a drag.
type DragPreview interface {
	// Size is the ghost's extent in window pixels.
	Size() (w, h float64)
	// MoveTo places the ghost's top-left corner.
	MoveTo(topLeft vector.Pt)
	Destroy()
}

// PreviewFactory creates the ghost for a tool.
type PreviewFactory interface {
	NewPreview(kind domain.Kind) DragPreview
}

// Mapper yields camera rays and drop-plane points for window pixels.
type Mapper interface {
	Ray(pointer vector.Pt) (scene.Ray, error)
	MapToPlane(pointer vector.Pt, targetZ float64) (scene.Vec3, error)
}

// BackgroundHitter reports whether a ray hits the background artwork.
type BackgroundHitter interface {
	Background(ray scene.Ray) (scene.Vec3, bool)
}

// Creator is the registry operation a drop ends in.
type Creator interface {
	Create(kind domain.Kind, pos vector.Pt) (registry.Entry, error)
}

// Result describes how a drag ended. Err explains a cancelled drop.
type Result struct {
	Outcome  Outcome
	Kind     domain.Kind
	Position scene.Vec3
	Entry    registry.Entry
	Err      error
}

type drag struct {
	kind    domain.Kind
	pointer vector.Pt
	preview DragPreview
}

// Machine is the single drag slot of a session.
type Machine struct {
	mapper   Mapper
	hits     BackgroundHitter
	creator  Creator
	previews PreviewFactory
	targetZ  float64

	cur *drag
	log *slog.Logger
}

func New(m Mapper, h BackgroundHitter, c Creator, p PreviewFactory, targetZ float64) *Machine {
	return &Machine{
		mapper:   m,
		hits:     h,
		creator:  c,
		previews: p,
		targetZ:  targetZ,
		log:      applog.WithComponent("placement"),
	}
}

func (m *Machine) State() State {
	if m.cur != nil {
		return Dragging
	}
	return Idle
}

// Tool returns the kind being dragged.
func (m *Machine) Tool() (domain.Kind, bool) {
	if m.cur == nil {
		return 0, false
	}
	return m.cur.kind, true
}

// PointerDown starts dragging kind. offset is where the pointer grabbed the
// palette button, relative to its top-left corner; the ghost first appears
// with that grab point under the pointer. A second drag while one
// is running is rejected with ErrBusy and leaves the first untouched.
func (m *Machine) PointerDown(kind domain.Kind, pointer, offset vector.Pt) error {
	if m.cur != nil {
		m.log.Warn("drag start rejected", "kind", kind.String(), "dragging", m.cur.kind.String())
		return fmt.Errorf("start %s drag: %w", kind, domain.ErrBusy)
	}
	if !kind.Valid() {
		return fmt.Errorf("start drag: %w", domain.ErrUnrecognizedKind)
	}
	d := &drag{kind: kind, pointer: pointer}
	if m.previews != nil {
		d.preview = m.previews.NewPreview(kind)
		d.preview.MoveTo(vector.Pt{X: pointer.X - offset.X, Y: pointer.Y - offset.Y})
	}
	m.cur = d
	m.log.Debug("drag started", "kind", kind.String(), "x", pointer.X, "y", pointer.Y)
	return nil
}

// PointerMove moves the ghost so it stays centred on the pointer.
func (m *Machine) PointerMove(pointer vector.Pt) {
	if m.cur == nil {
		return
	}
	m.cur.pointer = pointer
	m.follow(pointer)
}

func (m *Machine) follow(pointer vector.Pt) {
	if m.cur.preview == nil {
		return
	}
	w, h := m.cur.preview.Size()
	m.cur.preview.MoveTo(vector.Pt{X: pointer.X - w/2, Y: pointer.Y - h/2})
}

// PointerUp ends the drag. When the pointer is over the background
// artwork the shape is created at the drop position on the target plane;
// otherwise the drag is cancelled without touching the registry.
func (m *Machine) PointerUp(pointer vector.Pt) Result {
	d := m.cur
	if d == nil {
		return Result{Outcome: None}
	}
	m.end()
	res := Result{Kind: d.kind, Outcome: Cancelled}

	pos, err := m.mapper.MapToPlane(pointer, m.targetZ)
	if err != nil {
		res.Err = err
		m.log.Info("drop missed", "kind", d.kind.String(), "err", err)
		return res
	}
	ray, err := m.mapper.Ray(pointer)
	if err != nil {
		res.Err = err
		return res
	}
	if _, ok := m.hits.Background(ray); !ok {
		m.log.Info("drop missed", "kind", d.kind.String(), "reason", "outside background")
		return res
	}
	e, err := m.creator.Create(d.kind, pos.XY())
	if err != nil {
		res.Err = err
		return res
	}
	res.Outcome = Dropped
	res.Position = pos
	res.Entry = e
	return res
}

// Cancel aborts a running drag.
func (m *Machine) Cancel() Result {
	d := m.cur
	if d == nil {
		return Result{Outcome: None}
	}
	m.end()
	m.log.Debug("drag cancelled", "kind", d.kind.String())
	return Result{Outcome: Cancelled, Kind: d.kind}
}

func (m *Machine) end() {
	if m.cur.preview != nil {
		m.cur.preview.Destroy()
	}
	m.cur = nil
}
