//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hmidraw/internal/domain"
	"hmidraw/internal/placement"
	"hmidraw/internal/vector"
)

var toolTitles = map[domain.Kind]string{
	domain.Circle:    "Circle",
	domain.Rectangle: "Rectangle",
	domain.Ellipse:   "Ellipse",
	domain.FreeText:  "Text",
}

// ToolButton is a palette entry. Dragging it onto the canvas places a
// shape of its kind.
type ToolButton struct {
	widget.Button
	Kind domain.Kind

	ed       *editor
	dragging bool
	last     vector.Pt
}

func newToolButton(kind domain.Kind, ed *editor) *ToolButton {
	b := &ToolButton{Kind: kind, ed: ed}
	b.Text = toolTitles[kind]
	b.ExtendBaseWidget(b)
	return b
}

func (b *ToolButton) Dragged(e *fyne.DragEvent) {
	p := b.ed.canvasPoint(e.AbsolutePosition)
	if !b.dragging {
		if err := b.ed.sess.BeginDrag(b.Kind, p, toPt(e.Position)); err != nil {
			return
		}
		b.dragging = true
	}
	b.last = p
	b.ed.sess.MoveDrag(p)
}

func (b *ToolButton) DragEnd() {
	if !b.dragging {
		return
	}
	b.dragging = false
	b.ed.dropped(b.ed.sess.Drop(b.last))
}

// ghost is the drag preview, drawn in the window overlay.
type ghost struct {
	obj fyne.CanvasObject
	ed  *editor
}

var (
	ghostShape = color.NRGBA{A: 0x90}
	ghostText  = color.NRGBA{G: 0xff, A: 0xff}
)

// NewPreview implements placement.PreviewFactory.
func (ed *editor) NewPreview(kind domain.Kind) placement.DragPreview {
	var obj fyne.CanvasObject
	switch kind {
	case domain.Circle:
		obj = canvas.NewCircle(ghostShape)
		obj.Resize(fyne.NewSize(40, 40))
	case domain.Ellipse:
		obj = canvas.NewCircle(ghostShape)
		obj.Resize(fyne.NewSize(56, 32))
	case domain.FreeText:
		t := canvas.NewText("Label", ghostText)
		t.Resize(t.MinSize())
		obj = t
	default:
		obj = canvas.NewRectangle(ghostShape)
		obj.Resize(fyne.NewSize(40, 40))
	}
	ed.overlay.Add(obj)
	return &ghost{obj: obj, ed: ed}
}

func (g *ghost) Size() (w, h float64) {
	s := g.obj.Size()
	return float64(s.Width), float64(s.Height)
}

// MoveTo takes canvas coordinates.
func (g *ghost) MoveTo(topLeft vector.Pt) {
	d := fyne.CurrentApp().Driver()
	c := d.AbsolutePositionForObject(g.ed.canvas)
	o := d.AbsolutePositionForObject(g.ed.overlay)
	g.obj.Move(fyne.NewPos(float32(topLeft.X)+c.X-o.X, float32(topLeft.Y)+c.Y-o.Y))
}

func (g *ghost) Destroy() {
	g.ed.overlay.Remove(g.obj)
}
