/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"

	"hmidraw/internal/vector"
)

// Camera is a look-at camera with either a perspective or an orthographic
// projection.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	FovDeg float64 // vertical field of view, perspective only
	Aspect float64 // width / height
	Near   float64
	Far    float64

	Orthographic bool
	ViewHeight   float64 // visible scene height, orthographic only
}

// NewPerspective returns a camera on the z axis at distance z looking at
// the origin with +Y up.
func NewPerspective(fovDeg, aspect, near, far, z float64) Camera {
	return Camera{
		Position: V(0, 0, z),
		Up:       V(0, 1, 0),
		FovDeg:   fovDeg,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// NewOrthographic is like NewPerspective but shows viewHeight scene units
// vertically regardless of depth.
func NewOrthographic(viewHeight, aspect, near, far, z float64) Camera {
	c := NewPerspective(0, aspect, near, far, z)
	c.Orthographic = true
	c.ViewHeight = viewHeight
	return c
}

// basis returns forward, right and up unit vectors.
func (c Camera) basis() (f, r, u Vec3) {
	f = c.Target.Sub(c.Position).Normalize()
	r = f.Cross(c.Up).Normalize()
	u = r.Cross(f)
	return f, r, u
}

// Ray returns the ray through a point in normalized device coordinates
// (both axes in [-1,1], +Y up).
func (c Camera) Ray(ndc vector.Pt) Ray {
	f, r, u := c.basis()
	if c.Orthographic {
		halfH := c.ViewHeight / 2
		halfW := halfH * c.Aspect
		origin := c.Position.Add(r.Scale(ndc.X * halfW)).Add(u.Scale(ndc.Y * halfH))
		return Ray{Origin: origin, Dir: f}
	}
	tanHalf := math.Tan(c.FovDeg * math.Pi / 360)
	dir := f.Add(r.Scale(ndc.X * tanHalf * c.Aspect)).Add(u.Scale(ndc.Y * tanHalf))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Viewport is the canvas rectangle in window pixels.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
}

func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return v.Width / v.Height
}

// Contains reports whether a window pixel lies on the canvas.
func (v Viewport) Contains(p vector.Pt) bool {
	return vector.R(v.Left, v.Top, v.Width, v.Height).Contains(p)
}

// NDC converts a window pixel into normalized device coordinates. It
// reports false for an empty viewport.
func (v Viewport) NDC(p vector.Pt) (vector.Pt, bool) {
	if v.Width <= 0 || v.Height <= 0 {
		return vector.Pt{}, false
	}
	return vector.Pt{
		X: (p.X-v.Left)/v.Width*2 - 1,
		Y: -((p.Y-v.Top)/v.Height*2 - 1),
	}, true
}

// Project maps a scene point to normalized device coordinates. It reports
// false for points at or behind a perspective camera.
func (c Camera) Project(p Vec3) (vector.Pt, bool) {
	f, r, u := c.basis()
	d := p.Sub(c.Position)
	x, y, z := d.Dot(r), d.Dot(u), d.Dot(f)
	if c.Orthographic {
		halfH := c.ViewHeight / 2
		halfW := halfH * c.Aspect
		if halfH == 0 || halfW == 0 {
			return vector.Pt{}, false
		}
		return vector.Pt{X: x / halfW, Y: y / halfH}, true
	}
	if z <= 0 {
		return vector.Pt{}, false
	}
	tanHalf := math.Tan(c.FovDeg * math.Pi / 360)
	return vector.Pt{X: x / (z * tanHalf * c.Aspect), Y: y / (z * tanHalf)}, true
}

// Pixel converts normalized device coordinates back into a window pixel.
func (v Viewport) Pixel(ndc vector.Pt) vector.Pt {
	return vector.Pt{
		X: v.Left + (ndc.X+1)/2*v.Width,
		Y: v.Top + (1-ndc.Y)/2*v.Height,
	}
}
