/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and flattening.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Empty reports whether the path has no drawing commands.
func (p *Path) Empty() bool { return len(p.Cmds) == 0 }

// Bounds returns an axis-aligned bounding box of the path using control
// points, which always encloses the curve.
func (p *Path) Bounds() Rect {
	var pts []Pt
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			pts = append(pts, Pt{c.Data[0], c.Data[1]})
		case QuadTo:
			pts = append(pts, Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]})
		case CubicTo:
			pts = append(pts, Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}, Pt{c.Data[4], c.Data[5]})
		}
	}
	return boundsOf(pts)
}

// CurveSegments is the number of line segments each bezier is split into
// when flattening.
const CurveSegments = 16

// Flatten converts the path into closed polygon rings. Every MoveTo starts
// a new ring; open subpaths are treated as implicitly closed, matching how
// fills are painted. Rings with fewer than three points are dropped.
func (p *Path) Flatten() [][]Pt {
	var rings [][]Pt
	var ring []Pt
	var cur, start Pt
	flush := func() {
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
		ring = nil
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			flush()
			cur = Pt{c.Data[0], c.Data[1]}
			start = cur
			ring = append(ring, cur)
		case LineTo:
			cur = Pt{c.Data[0], c.Data[1]}
			ring = append(ring, cur)
		case QuadTo:
			c1 := Pt{c.Data[0], c.Data[1]}
			end := Pt{c.Data[2], c.Data[3]}
			for i := 1; i <= CurveSegments; i++ {
				t := float64(i) / CurveSegments
				u := 1 - t
				ring = append(ring, Pt{
					X: u*u*cur.X + 2*u*t*c1.X + t*t*end.X,
					Y: u*u*cur.Y + 2*u*t*c1.Y + t*t*end.Y,
				})
			}
			cur = end
		case CubicTo:
			c1 := Pt{c.Data[0], c.Data[1]}
			c2 := Pt{c.Data[2], c.Data[3]}
			end := Pt{c.Data[4], c.Data[5]}
			for i := 1; i <= CurveSegments; i++ {
				t := float64(i) / CurveSegments
				u := 1 - t
				ring = append(ring, Pt{
					X: u*u*u*cur.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*cur.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			cur = end
		case Close:
			flush()
			cur = start
		}
	}
	flush()
	return rings
}
