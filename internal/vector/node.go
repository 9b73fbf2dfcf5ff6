/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a scene-graph item that can be rendered by different backends.
// It supports basic transforms, styling, bounds, and hit-testing. Hit takes
// a point in the coordinate space of the node's parent.

type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Fill() Fill
	Stroke() Stroke
	SetFill(Fill)
	SetStroke(Stroke)
	Hit(p Pt) bool
}

type baseNode struct {
	xf     Affine2D
	fill   Fill
	stroke Stroke
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }
func (b *baseNode) Fill() Fill              { return b.fill }
func (b *baseNode) Stroke() Stroke          { return b.stroke }
func (b *baseNode) SetFill(f Fill)          { b.fill = f }
func (b *baseNode) SetStroke(s Stroke)      { b.stroke = s }

// local maps p into the node's own space. A singular transform collapses
// the node, so nothing can hit it.
func (b *baseNode) local(p Pt) (Pt, bool) {
	inv, ok := b.xf.Invert()
	if !ok {
		return Pt{}, false
	}
	return inv.Apply(p), true
}

// RectNode draws an axis-aligned rectangle before transform.
type RectNode struct {
	baseNode
	rect Rect
}

func NewRect(r Rect, f Fill, s Stroke) *RectNode {
	return &RectNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rect: r}
}

func (n *RectNode) Geometry() Rect { return n.rect }
func (n *RectNode) Bounds() Rect   { return n.xf.ApplyRect(n.rect) }

func (n *RectNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	return ok && n.rect.Contains(q)
}

// EllipseNode represents an ellipse inscribed in rect.
type EllipseNode struct {
	baseNode
	rect Rect
}

func NewEllipse(r Rect, f Fill, s Stroke) *EllipseNode {
	return &EllipseNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rect: r}
}

func (n *EllipseNode) Geometry() Rect { return n.rect }
func (n *EllipseNode) Bounds() Rect   { return n.xf.ApplyRect(n.rect) }

func (n *EllipseNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	if !ok {
		return false
	}
	rx := n.rect.W / 2
	ry := n.rect.H / 2
	if rx == 0 || ry == 0 {
		return false
	}
	c := n.rect.Center()
	dx := (q.X - c.X) / rx
	dy := (q.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// PolygonNode is a filled set of rings, hit-tested with the even-odd rule
// so holes in imported artwork are not hittable.
type PolygonNode struct {
	baseNode
	rings [][]Pt
	bbox  Rect
}

func NewPolygon(rings [][]Pt, f Fill, s Stroke) *PolygonNode {
	var all []Pt
	for _, r := range rings {
		all = append(all, r...)
	}
	return &PolygonNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rings: rings, bbox: boundsOf(all)}
}

// NewPathPolygon flattens p into a polygon node.
func NewPathPolygon(p Path, f Fill, s Stroke) *PolygonNode {
	return NewPolygon(p.Flatten(), f, s)
}

func (n *PolygonNode) Rings() [][]Pt { return n.rings }
func (n *PolygonNode) Bounds() Rect  { return n.xf.ApplyRect(n.bbox) }

func (n *PolygonNode) Hit(p Pt) bool {
	q, ok := n.local(p)
	if !ok || !n.bbox.Contains(q) {
		return false
	}
	inside := false
	for _, ring := range n.rings {
		for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
			a, b := ring[i], ring[j]
			if (a.Y > q.Y) != (b.Y > q.Y) {
				x := (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y) + a.X
				if q.X < x {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// Group is a container for child nodes with its own transform.
type Group struct {
	baseNode
	Children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{baseNode: baseNode{xf: Identity}}
	g.Children = append(g.Children, children...)
	return g
}

func (g *Group) Add(n Node) { g.Children = append(g.Children, n) }

func (g *Group) Bounds() Rect {
	var b Rect
	first := true
	for _, c := range g.Children {
		cb := c.Bounds()
		if first {
			b = cb
			first = false
		} else {
			b = b.Union(cb)
		}
	}
	if first {
		return Rect{}
	}
	return g.xf.ApplyRect(b)
}

func (g *Group) Hit(p Pt) bool {
	return g.HitChild(p) != nil
}

// HitChild returns the top-most child under p, or nil.
func (g *Group) HitChild(p Pt) Node {
	q, ok := g.local(p)
	if !ok {
		return nil
	}
	for i := len(g.Children) - 1; i >= 0; i-- { // top-most first
		if g.Children[i].Hit(q) {
			return g.Children[i]
		}
	}
	return nil
}
