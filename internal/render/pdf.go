/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf"

	"hmidraw/internal/scene"
	"hmidraw/internal/vector"
	"hmidraw/internal/version"
)

// PDFOptions controls the vector export. The page shows the drop plane
// from straight above with y pointing up, whatever the camera does.
type PDFOptions struct {
	// Scale is points per scene unit; 10 when zero.
	Scale float64
	// Margin around the drawing in points; 18 when zero.
	Margin float64
	// IncludeGuides draws a red hairline around the drawing bounds.
	IncludeGuides bool
	// Uncompressed keeps content streams readable.
	Uncompressed bool
	Title        string
}

type page struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	scale  float64
	margin float64
	bounds vector.Rect
}

// pt maps a scene point to page points, origin top-left.
func (p *page) pt(q vector.Pt) (float64, float64) {
	return p.margin + (q.X-p.bounds.X)*p.scale, p.margin + (p.bounds.Y+p.bounds.H-q.Y)*p.scale
}

// WritePDF draws the background and every mesh of g as vector shapes on a
// single page sized to the drawing. Labels use the built-in Helvetica.
func WritePDF(w io.Writer, g *scene.Graph, opt PDFOptions) error {
	scale := opt.Scale
	if scale <= 0 {
		scale = 10
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 18
	}
	b, ok := drawingBounds(g)
	if !ok {
		return fmt.Errorf("export pdf: nothing to draw")
	}
	size := gofpdf.SizeType{Wd: b.W*scale + 2*margin, Ht: b.H*scale + 2*margin}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetCompression(!opt.Uncompressed)
	title := opt.Title
	if title == "" {
		title = "HmiDraw diagram"
	}
	pdf.SetTitle(title, false)
	pdf.SetCreator("HmiDraw "+version.String(), false)
	pdf.AddPage()

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), scale: scale, margin: margin, bounds: b}
	if bg := g.Background(); bg != nil {
		p.mesh(bg)
	}
	for _, m := range g.Meshes() {
		p.mesh(m)
	}
	if opt.IncludeGuides {
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.2)
		pdf.Rect(margin, margin, b.W*scale, b.H*scale, "D")
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// SavePDF writes the PDF export of g to path.
func SavePDF(path string, g *scene.Graph, opt PDFOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(f, g, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

func drawingBounds(g *scene.Graph) (vector.Rect, bool) {
	var b vector.Rect
	found := false
	add := func(r vector.Rect) {
		if r.Empty() {
			return
		}
		if !found {
			b, found = r, true
			return
		}
		b = b.Union(r)
	}
	if bg := g.Background(); bg != nil {
		add(bg.Bounds())
	}
	for _, m := range g.Meshes() {
		add(m.Bounds())
	}
	return b, found
}

func (p *page) mesh(m *scene.Mesh) {
	p.pdf.SetAlpha(alpha(m), "Normal")
	defer p.pdf.SetAlpha(1, "Normal")
	if m.Label != "" {
		p.label(m)
		return
	}
	p.node(m.Node, vector.Identity)
}

func (p *page) node(n vector.Node, parent vector.Affine2D) {
	xf := parent.Mul(n.Transform())
	if grp, ok := n.(*vector.Group); ok {
		for _, c := range grp.Children {
			p.node(c, xf)
		}
		return
	}
	f := n.Fill()
	if !f.Enabled {
		return
	}
	p.pdf.SetFillColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
	switch n := n.(type) {
	case *vector.RectNode:
		r := n.Geometry()
		p.rings([][]vector.Pt{{{X: r.X, Y: r.Y}, {X: r.X + r.W, Y: r.Y}, {X: r.X + r.W, Y: r.Y + r.H}, {X: r.X, Y: r.Y + r.H}}}, xf, "F")
	case *vector.EllipseNode:
		r := n.Geometry()
		if xf.B == 0 && xf.C == 0 {
			x, y := p.pt(xf.Apply(r.Center()))
			p.pdf.Ellipse(x, y, math.Abs(xf.A)*r.W/2*p.scale, math.Abs(xf.D)*r.H/2*p.scale, 0, "F")
			return
		}
		p.rings([][]vector.Pt{ellipseRing(r)}, xf, "F")
	case *vector.PolygonNode:
		style := "F"
		if f.Rule == vector.EvenOdd {
			style = "F*"
		}
		p.rings(n.Rings(), xf, style)
	}
}

// rings fills all rings as one path so holes follow the fill rule.
func (p *page) rings(rings [][]vector.Pt, xf vector.Affine2D, style string) {
	drawn := false
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		for i, q := range ring {
			x, y := p.pt(xf.Apply(q))
			if i == 0 {
				p.pdf.MoveTo(x, y)
			} else {
				p.pdf.LineTo(x, y)
			}
		}
		p.pdf.ClosePath()
		drawn = true
	}
	if drawn {
		p.pdf.DrawPath(style)
	}
}

func ellipseRing(r vector.Rect) []vector.Pt {
	const n = 48
	c := r.Center()
	out := make([]vector.Pt, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / n
		out[i] = vector.Pt{X: c.X + r.W/2*math.Cos(a), Y: c.Y + r.H/2*math.Sin(a)}
	}
	return out
}

// label sets the text on the bottom edge of the mesh with the mesh height
// as font size.
func (p *page) label(m *scene.Mesh) {
	b := m.Bounds()
	size := b.H * p.scale
	if size <= 0 {
		return
	}
	c := m.Node.Fill().Color
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetFont("Helvetica", "", size)
	x, y := p.pt(b.Min())
	p.pdf.Text(x, y, p.tr(m.Label))
}
