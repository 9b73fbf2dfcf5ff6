/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// HitTester resolves rays against the background artwork and placed
// meshes. Each mesh is intersected on its own plane.
type HitTester struct {
	Graph *Graph
}

// Background reports whether ray hits the background artwork, and where it
// crosses the background plane. Without artwork nothing is hit.
func (h HitTester) Background(ray Ray) (Vec3, bool) {
	bg := h.Graph.Background()
	if bg == nil {
		return Vec3{}, false
	}
	p, err := ray.IntersectZ(bg.Z)
	if err != nil {
		return Vec3{}, false
	}
	return p, bg.Node.Hit(p.XY())
}

// Pick returns the top-most pickable mesh under ray. Higher z wins; among
// meshes on the same plane the later one wins, matching render order.
func (h HitTester) Pick(ray Ray) (*Mesh, bool) {
	ms := h.Graph.Meshes()
	for i := len(ms) - 1; i >= 0; i-- {
		m := ms[i]
		if !m.Pickable {
			continue
		}
		p, err := ray.IntersectZ(m.Z)
		if err != nil {
			continue
		}
		if m.Node.Hit(p.XY()) {
			return m, true
		}
	}
	return nil, false
}
