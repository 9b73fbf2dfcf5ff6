/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package registry holds the placed shapes of a session and their labels.
// Entries are appended in creation order, which is also z-order, and are
// edited in place; there is no removal.
//
// A Registry is owned by the event thread and is not safe for concurrent
// use.
package registry

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"hmidraw/internal/domain"
	applog "hmidraw/internal/log"
	"hmidraw/internal/vector"
)

// Defaults for new records.
const (
	DefaultSize     = 5.0
	DefaultFontSize = 1.0
	DefaultLabel    = "Label"
)

// Entry pairs a shape with its label.
type Entry struct {
	Shape *domain.ShapeRecord
	Text  *domain.TextRecord
}

type ChangeKind uint8

const (
	Created ChangeKind = iota + 1
	ShapeEdited
	TextEdited
	// TextRebuild means the label's geometry must be built again.
	TextRebuild
	RenderableAttached
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case ShapeEdited:
		return "shape_edited"
	case TextEdited:
		return "text_edited"
	case TextRebuild:
		return "text_rebuild"
	case RenderableAttached:
		return "renderable_attached"
	}
	return "change(" + strconv.Itoa(int(k)) + ")"
}

// Change is delivered to observers after every mutation.
type Change struct {
	Kind  ChangeKind
	Entry Entry
}

type Observer func(Change)

type Options struct {
	ZBase        float64
	ZStep        float64
	DefaultLabel string
	// NewID generates record ids; uuid.NewString when nil.
	NewID func() string
}

type Registry struct {
	opts      Options
	count     int
	entries   []Entry
	byName    map[string]int
	byText    map[string]int
	observers []Observer
	log       *slog.Logger
}

func New(opts Options) *Registry {
	if opts.ZStep == 0 {
		opts.ZStep = 0.1
	}
	if opts.DefaultLabel == "" {
		opts.DefaultLabel = DefaultLabel
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Registry{
		opts:   opts,
		byName: make(map[string]int),
		byText: make(map[string]int),
		log:    applog.WithComponent("registry"),
	}
}

// Subscribe registers fn for change notifications.
func (r *Registry) Subscribe(fn Observer) { r.observers = append(r.observers, fn) }

func (r *Registry) emit(kind ChangeKind, e Entry) {
	for _, fn := range r.observers {
		fn(Change{Kind: kind, Entry: e})
	}
}

// Len is the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Count is the creation counter: the number of successful creates.
func (r *Registry) Count() int { return r.count }

// ZFor returns the z-order of the n-th created shape.
func (r *Registry) ZFor(n int) float64 { return r.opts.ZBase + float64(n)*r.opts.ZStep }

// Entries returns the entries in z-order, lowest first.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Create places a new shape of kind at pos and attaches its default label.
// The counter only advances for recognized kinds.
func (r *Registry) Create(kind domain.Kind, pos vector.Pt) (Entry, error) {
	if !kind.Valid() {
		r.log.Warn("create rejected", "kind", kind.String())
		return Entry{}, fmt.Errorf("create %s: %w", kind, domain.ErrUnrecognizedKind)
	}
	r.count++
	n := r.count
	z := r.ZFor(n)

	shape := &domain.ShapeRecord{
		ID:     r.opts.NewID(),
		Kind:   kind,
		Name:   "shape_" + strconv.Itoa(n),
		ZOrder: z,
		View: domain.ShapeView{
			FillColor:   domain.ShapeFill,
			Width:       DefaultSize,
			Height:      DefaultSize,
			PositionX:   pos.X,
			PositionY:   pos.Y,
			Opacity:     1,
			Transparent: true,
		},
	}
	text := &domain.TextRecord{
		ID:      r.opts.NewID(),
		OwnerID: shape.ID,
		Name:    "text_" + strconv.Itoa(n),
		View: domain.TextView{
			FontSize:  DefaultFontSize,
			FillColor: domain.LabelFill,
			Opacity:   1,
		},
		Content: domain.TextContent{Label: r.opts.DefaultLabel},
	}
	if kind == domain.FreeText {
		// The text is the shape: no body, label at the drop point.
		shape.Name = "textShape_" + strconv.Itoa(n)
		shape.View.Width, shape.View.Height = 0, 0
		shape.View.FillColor = domain.FreeTextFill
		text.View.FillColor = domain.FreeTextFill
		text.View.PositionX, text.View.PositionY = pos.X, pos.Y
	} else {
		// a quarter in from the left edge, vertically centred
		text.View.PositionX = pos.X - shape.View.Width/4
		text.View.PositionY = pos.Y
	}
	shape.TextID = text.ID

	if _, dup := r.byName[shape.Name]; dup {
		// unreachable while names derive from the counter
		return Entry{}, fmt.Errorf("create %s: duplicate name %s", kind, shape.Name)
	}
	e := Entry{Shape: shape, Text: text}
	r.entries = append(r.entries, e)
	r.byName[shape.Name] = len(r.entries) - 1
	r.byText[text.ID] = len(r.entries) - 1
	r.log.Info("shape created", "name", shape.Name, "kind", kind.String(), "x", pos.X, "y", pos.Y, "z", z)
	r.emit(Created, e)
	return e, nil
}

// FindByName returns the entry whose shape is called name.
func (r *Registry) FindByName(name string) (Entry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// FindByText returns the entry owning the text record with id textID.
func (r *Registry) FindByText(textID string) (Entry, bool) {
	i, ok := r.byText[textID]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

func (r *Registry) lookup(op, name string) (Entry, error) {
	e, ok := r.FindByName(name)
	if !ok {
		r.log.Warn("no such shape", "op", op, "name", name)
		return Entry{}, fmt.Errorf("%s %q: %w", op, name, domain.ErrNotFound)
	}
	return e, nil
}

// ShapeEdit is the part of a shape view the settings form edits.
type ShapeEdit struct {
	Opacity     float64
	Transparent bool
	Width       float64
	Height      float64
}

// ShapeEditOf extracts the editable fields of v.
func ShapeEditOf(v domain.ShapeView) ShapeEdit {
	return ShapeEdit{Opacity: v.Opacity, Transparent: v.Transparent, Width: v.Width, Height: v.Height}
}

// ApplyShapeEdits writes edit onto the named shape. When every field
// already matches, nothing is written and no change is emitted.
func (r *Registry) ApplyShapeEdits(name string, edit ShapeEdit) (bool, error) {
	e, err := r.lookup("apply shape edits", name)
	if err != nil {
		return false, err
	}
	v := e.Shape.View
	if ShapeEditOf(v) == edit {
		return false, nil
	}
	v.Opacity, v.Transparent, v.Width, v.Height = edit.Opacity, edit.Transparent, edit.Width, edit.Height
	if err := v.Validate(); err != nil {
		return false, fmt.Errorf("apply shape edits %q: %w", name, err)
	}
	e.Shape.View = v
	r.log.Debug("shape edited", "name", name, "opacity", v.Opacity, "transparent", v.Transparent, "w", v.Width, "h", v.Height)
	r.emit(ShapeEdited, e)
	return true, nil
}

// TextEdit is the part of a text view the settings form edits.
type TextEdit struct {
	FontSize    float64
	Opacity     float64
	Transparent bool
}

func TextEditOf(v domain.TextView) TextEdit {
	return TextEdit{FontSize: v.FontSize, Opacity: v.Opacity, Transparent: v.Transparent}
}

// ApplyTextEdits writes edit and content onto the label of the named
// shape. rebuild reports that the font size or the label text changed, so
// the label's geometry must be built again; the current renderable stays
// in place until AttachRenderable replaces it.
func (r *Registry) ApplyTextEdits(name string, edit TextEdit, content domain.TextContent) (changed, rebuild bool, err error) {
	e, err := r.lookup("apply text edits", name)
	if err != nil {
		return false, false, err
	}
	v := e.Text.View
	cur := TextEditOf(v)
	if cur == edit && e.Text.Content == content {
		return false, false, nil
	}
	v.FontSize, v.Opacity, v.Transparent = edit.FontSize, edit.Opacity, edit.Transparent
	if err := v.Validate(); err != nil {
		return false, false, fmt.Errorf("apply text edits %q: %w", name, err)
	}
	rebuild = cur.FontSize != edit.FontSize || e.Text.Content != content
	e.Text.View = v
	e.Text.Content = content
	r.log.Debug("text edited", "name", e.Text.Name, "font_size", v.FontSize, "label", content.Label, "rebuild", rebuild)
	if rebuild {
		r.emit(TextRebuild, e)
	} else {
		r.emit(TextEdited, e)
	}
	return true, rebuild, nil
}

// AttachRenderable installs freshly built geometry on a text record,
// discarding the previous one.
func (r *Registry) AttachRenderable(textID string, g domain.Renderable) (Entry, error) {
	e, ok := r.FindByText(textID)
	if !ok {
		return Entry{}, fmt.Errorf("attach renderable %q: %w", textID, domain.ErrNotFound)
	}
	e.Text.Renderable = g
	r.emit(RenderableAttached, e)
	return e, nil
}
