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

	"hmidraw/internal/domain"
	"hmidraw/internal/vector"
)

// Mapper turns pointer positions into scene-space points.
type Mapper struct {
	Camera   Camera
	Viewport Viewport
}

// Resize updates the viewport and keeps the camera aspect in step.
func (m *Mapper) Resize(v Viewport) {
	m.Viewport = v
	m.Camera.Aspect = v.Aspect()
}

// Ray returns the camera ray under a window pixel.
func (m *Mapper) Ray(pointer vector.Pt) (Ray, error) {
	ndc, ok := m.Viewport.NDC(pointer)
	if !ok {
		return Ray{}, fmt.Errorf("empty viewport: %w", domain.ErrDegenerateRay)
	}
	return m.Camera.Ray(ndc), nil
}

// MapToPlane projects a window pixel onto the plane z = targetZ.
func (m *Mapper) MapToPlane(pointer vector.Pt, targetZ float64) (Vec3, error) {
	ray, err := m.Ray(pointer)
	if err != nil {
		return Vec3{}, err
	}
	return ray.IntersectZ(targetZ)
}

// Project maps a scene point to a window pixel.
func (m *Mapper) Project(p Vec3) (vector.Pt, bool) {
	ndc, ok := m.Camera.Project(p)
	if !ok {
		return vector.Pt{}, false
	}
	return m.Viewport.Pixel(ndc), true
}
