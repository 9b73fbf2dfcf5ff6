/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"math"

	"hmidraw/internal/domain"
	"hmidraw/internal/vector"
)

// Vec3 is a point or direction in scene space.
type Vec3 struct{ X, Y, Z float64 }

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64         { return math.Sqrt(a.Dot(a)) }
func (a Vec3) XY() vector.Pt        { return vector.Pt{X: a.X, Y: a.Y} }
func (a Vec3) WithZ(z float64) Vec3 { return Vec3{a.X, a.Y, z} }
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Normalize returns the unit vector, or the zero vector unchanged.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Ray is a half-line from Origin along Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

// IntersectZ returns the point where the ray crosses the plane z = z0.
// A ray parallel to the plane, or one that only reaches it behind its
// origin, yields ErrDegenerateRay.
func (r Ray) IntersectZ(z0 float64) (Vec3, error) {
	if r.Dir.Z == 0 {
		return Vec3{}, fmt.Errorf("intersect z=%v: %w", z0, domain.ErrDegenerateRay)
	}
	t := (z0 - r.Origin.Z) / r.Dir.Z
	if t < 0 {
		return Vec3{}, fmt.Errorf("intersect z=%v behind origin: %w", z0, domain.ErrDegenerateRay)
	}
	p := r.At(t)
	p.Z = z0
	return p, nil
}
