/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"slices"

	"hmidraw/internal/domain"
	"hmidraw/internal/vector"
)

// Mesh is a flat, hit-testable item lying on the plane z = Z.
type Mesh struct {
	Name string
	Z    float64
	Node vector.Node

	Opacity     float64
	Transparent bool
	// Pickable meshes take part in shape-selection hits.
	Pickable bool
	// Label is the text a label mesh shows; empty for shapes.
	Label string
}

// Bounds returns the mesh's footprint on its plane.
func (m *Mesh) Bounds() vector.Rect { return m.Node.Bounds() }

// unit is the geometry every placed shape is built from; its size and
// position live in the node transform.
var unit = vector.R(-0.5, -0.5, 1, 1)

func shapeTransform(v domain.ShapeView) vector.Affine2D {
	return vector.Translate(v.PositionX, v.PositionY).Mul(vector.Scale(v.Width, v.Height))
}

// NewShapeMesh builds the mesh for a circle, rectangle or ellipse record.
// FreeText records have no shape mesh; their label is the pickable item.
func NewShapeMesh(rec *domain.ShapeRecord) (*Mesh, error) {
	fill := vector.Fill{Color: toVector(rec.View.FillColor), Enabled: true}
	var node vector.Node
	switch rec.Kind {
	case domain.Circle, domain.Ellipse:
		node = vector.NewEllipse(unit, fill, vector.Stroke{})
	case domain.Rectangle:
		node = vector.NewRect(unit, fill, vector.Stroke{})
	default:
		return nil, domain.ErrUnrecognizedKind
	}
	m := &Mesh{Name: rec.Name, Z: rec.ZOrder, Node: node, Pickable: true}
	m.SyncShape(rec.View)
	return m, nil
}

// SyncShape copies an edited view onto the mesh.
func (m *Mesh) SyncShape(v domain.ShapeView) {
	m.Node.SetTransform(shapeTransform(v))
	f := m.Node.Fill()
	f.Color = toVector(v.FillColor)
	m.Node.SetFill(f)
	m.Opacity = v.Opacity
	m.Transparent = v.Transparent
}

// NewLabelMesh builds the mesh for built label geometry. The label's
// baseline origin sits at the text position.
func NewLabelMesh(rec *domain.TextRecord, z float64, pickable bool) *Mesh {
	w, h := rec.Renderable.Extent()
	node := vector.NewRect(vector.R(0, 0, w, h), vector.Fill{Color: toVector(rec.View.FillColor), Enabled: true}, vector.Stroke{})
	node.SetTransform(vector.Translate(rec.View.PositionX, rec.View.PositionY))
	return &Mesh{
		Name:        rec.Name,
		Z:           z,
		Node:        node,
		Opacity:     rec.View.Opacity,
		Transparent: rec.View.Transparent,
		Pickable:    pickable,
		Label:       rec.Renderable.Text(),
	}
}

func toVector(c domain.Color) vector.Color {
	return vector.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

// Graph is the set of meshes in the scene plus the background artwork.
type Graph struct {
	background *Mesh
	meshes     []*Mesh
}

func NewGraph() *Graph { return &Graph{} }

func (g *Graph) SetBackground(m *Mesh) { g.background = m }
func (g *Graph) Background() *Mesh     { return g.background }

// Add inserts m, replacing any mesh with the same name.
func (g *Graph) Add(m *Mesh) {
	g.Remove(m.Name)
	g.meshes = append(g.meshes, m)
}

// Remove deletes the mesh called name and reports whether it existed.
func (g *Graph) Remove(name string) bool {
	i := slices.IndexFunc(g.meshes, func(m *Mesh) bool { return m.Name == name })
	if i < 0 {
		return false
	}
	g.meshes = slices.Delete(g.meshes, i, i+1)
	return true
}

func (g *Graph) Find(name string) *Mesh {
	for _, m := range g.meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (g *Graph) Len() int { return len(g.meshes) }

// Meshes returns the meshes in render order: ascending z, then insertion
// order. The background is not included.
func (g *Graph) Meshes() []*Mesh {
	out := slices.Clone(g.meshes)
	slices.SortStableFunc(out, func(a, b *Mesh) int {
		switch {
		case a.Z < b.Z:
			return -1
		case a.Z > b.Z:
			return 1
		}
		return 0
	})
	return out
}
