/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterizes the scene as the camera sees it and exports
// it as a vector PDF. The desktop canvas paints from the raster; the CLI
// and the File menu write PNG and PDF files.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"hmidraw/internal/label"
	"hmidraw/internal/scene"
	"hmidraw/internal/vector"
)

// Renderer draws meshes by casting one camera ray per pixel; label meshes
// are drawn as glyphs.
type Renderer struct {
	Fonts    *label.FontLibrary
	FontPath string
	// Clear is the colour behind everything; white when zero.
	Clear color.RGBA
}

// Scene draws g through the camera of m into a w x h image. The viewport
// of m is ignored; the image is the viewport.
func (r *Renderer) Scene(g *scene.Graph, m *scene.Mapper, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	bg := r.Clear
	if bg == (color.RGBA{}) {
		bg = color.RGBA{255, 255, 255, 255}
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	if w <= 0 || h <= 0 {
		return img
	}
	local := *m
	local.Resize(scene.Viewport{Width: float64(w), Height: float64(h)})

	var surfaces, labels []*scene.Mesh
	if bg := g.Background(); bg != nil {
		surfaces = append(surfaces, bg)
	}
	for _, ms := range g.Meshes() {
		if ms.Label != "" {
			labels = append(labels, ms)
		} else {
			surfaces = append(surfaces, ms)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ray, err := local.Ray(vector.Pt{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if err != nil {
				continue
			}
			for _, ms := range surfaces {
				p, err := ray.IntersectZ(ms.Z)
				if err != nil {
					continue
				}
				f, ok := fillAt(ms.Node, p.XY())
				if !ok || !f.Enabled {
					continue
				}
				blend(img, x, y, f.Color.RGBA(), alpha(ms))
			}
		}
	}
	for _, ms := range labels {
		r.drawLabel(img, &local, ms)
	}
	return img
}

func alpha(m *scene.Mesh) float64 {
	if !m.Transparent {
		return 1
	}
	return math.Max(0, math.Min(1, m.Opacity))
}

// fillAt returns the fill of the top-most leaf under p, descending into
// groups.
func fillAt(n vector.Node, p vector.Pt) (vector.Fill, bool) {
	g, ok := n.(*vector.Group)
	if !ok {
		if n.Hit(p) {
			return n.Fill(), true
		}
		return vector.Fill{}, false
	}
	c := g.HitChild(p)
	if c == nil {
		return vector.Fill{}, false
	}
	if inner, ok := c.(*vector.Group); ok {
		inv, ok := g.Transform().Invert()
		if !ok {
			return vector.Fill{}, false
		}
		return fillAt(inner, inv.Apply(p))
	}
	return c.Fill(), true
}

func blend(img *image.RGBA, x, y int, c color.RGBA, a float64) {
	if a >= 1 {
		img.SetRGBA(x, y, c)
		return
	}
	d := img.RGBAAt(x, y)
	mix := func(s, t uint8) uint8 { return uint8(math.Round(float64(s)*a + float64(t)*(1-a))) }
	img.SetRGBA(x, y, color.RGBA{mix(c.R, d.R), mix(c.G, d.G), mix(c.B, d.B), 255})
}

// drawLabel draws the label text so its em box spans the projected mesh.
func (r *Renderer) drawLabel(img *image.RGBA, m *scene.Mapper, ms *scene.Mesh) {
	b := ms.Bounds()
	bottom, ok1 := m.Project(scene.V(b.X, b.Y, ms.Z))
	top, ok2 := m.Project(scene.V(b.X, b.Y+b.H, ms.Z))
	if !ok1 || !ok2 || r.Fonts == nil {
		return
	}
	px := bottom.Y - top.Y
	if px < 1 {
		return
	}
	face, err := r.Fonts.FaceAt(r.FontPath, px)
	if err != nil {
		return
	}
	met := face.Metrics()
	fc := ms.Node.Fill().Color
	c := color.NRGBA{R: fc.R, G: fc.G, B: fc.B, A: uint8(math.Round(255 * alpha(ms)))}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(bottom.X * 64), Y: fixed.Int26_6(bottom.Y*64) - met.Descent},
	}
	d.DrawString(ms.Label)
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := EncodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
