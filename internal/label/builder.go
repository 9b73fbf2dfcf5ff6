/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package label builds label geometry for shape texts and loads it in the
// background. Geometry is immutable; a new size or text means a new build.
package label

import (
	"context"

	"golang.org/x/image/font"
)

// Geometry is built label geometry in scene units. It implements
// domain.Renderable.
type Geometry struct {
	text   string
	size   float64
	width  float64
	height float64
	ascent float64
}

func (g *Geometry) Text() string           { return g.text }
func (g *Geometry) FontSize() float64      { return g.size }
func (g *Geometry) Extent() (w, h float64) { return g.width, g.height }
func (g *Geometry) Ascent() float64        { return g.ascent }

// Builder measures text with a face from the library.
type Builder struct {
	Lib  *FontLibrary
	Path string // font source; "" is Go Regular, Basic is the bitmap face
}

func NewBuilder(lib *FontLibrary, path string) *Builder {
	if lib == nil {
		lib = NewFontLibrary()
	}
	return &Builder{Lib: lib, Path: path}
}

// Build lays text out on a single line at fontSize scene units per em.
func (b *Builder) Build(ctx context.Context, text string, fontSize float64) (*Geometry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	face, em, err := b.Lib.Face(b.Path)
	if err != nil {
		return nil, err
	}
	m := face.Metrics()
	adv := font.MeasureString(face, text)
	k := fontSize / em
	g := &Geometry{
		text:   text,
		size:   fontSize,
		width:  fixedToFloat(adv) * k,
		height: (fixedToFloat(m.Ascent) + fixedToFloat(m.Descent)) * k,
		ascent: fixedToFloat(m.Ascent) * k,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func fixedToFloat[T ~int32](v T) float64 { return float64(v) / 64 }
