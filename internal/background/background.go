/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package background loads the SVG artwork shapes are dropped onto. Every
// filled element becomes a polygon node carrying its fill colour; curves
// are flattened, so hit-testing is exact up to the flattening tolerance.
package background

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"hmidraw/internal/domain"
	applog "hmidraw/internal/log"
	"hmidraw/internal/scene"
	"hmidraw/internal/vector"
)

//go:embed assets/plate.svg
var plateSVG []byte

// Shape is one filled element of the artwork.
type Shape struct {
	ID   string
	Fill domain.Color
	Node *vector.PolygonNode
}

// Artwork is the parsed background in SVG user units (y down).
type Artwork struct {
	Shapes []Shape
}

// Placement positions artwork in the scene. Scale is applied with the y
// axis flipped so SVG's y-down content reads upright.
type Placement struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Z       float64
}

// Load reads and parses the SVG at path. An empty path selects the
// built-in plate. Any failure wraps domain.ErrAssetLoad.
func Load(path string) (*Artwork, error) {
	l := applog.WithComponent("background")
	var data []byte
	if strings.TrimSpace(path) == "" {
		data = plateSVG
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			l.Warn("background read failed", "path", path, "err", err)
			return nil, fmt.Errorf("read background %s: %v: %w", path, err, domain.ErrAssetLoad)
		}
		data = b
	}
	a, err := Parse(bytes.NewReader(data))
	if err != nil {
		l.Warn("background parse failed", "path", path, "err", err)
		return nil, err
	}
	l.Info("background loaded", "path", path, "shapes", len(a.Shapes))
	return a, nil
}

// Default returns the built-in plate.
func Default() (*Artwork, error) { return Load("") }

// Bounds is the union of all shape bounds in SVG units.
func (a *Artwork) Bounds() vector.Rect {
	var b vector.Rect
	for i, s := range a.Shapes {
		if i == 0 {
			b = s.Node.Bounds()
			continue
		}
		b = b.Union(s.Node.Bounds())
	}
	return b
}

// Mesh places the artwork in the scene as the background mesh.
func (a *Artwork) Mesh(p Placement) *scene.Mesh {
	g := vector.NewGroup()
	for _, s := range a.Shapes {
		g.Add(s.Node)
	}
	g.SetTransform(vector.Translate(p.OffsetX, p.OffsetY).Mul(vector.Scale(p.Scale, -p.Scale)))
	return &scene.Mesh{Name: "background", Z: p.Z, Node: g, Opacity: 1}
}

// frame is the inherited state of an open element.
type frame struct {
	fill string
	xf   vector.Affine2D
}

// Parse decodes SVG from r. The document must contain an <svg> root and at
// least one filled element.
func Parse(r io.Reader) (*Artwork, error) {
	dec := xml.NewDecoder(r)
	stack := []frame{{fill: "#000000", xf: vector.Identity}}
	a := &Artwork{}
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode svg: %v: %w", err, domain.ErrAssetLoad)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "svg" {
				sawRoot = true
			}
			top := stack[len(stack)-1]
			f := frame{fill: top.fill, xf: top.xf}
			at := attrs(t.Attr)
			if v, ok := at.fill(); ok {
				f.fill = v
			}
			if v, ok := at["transform"]; ok {
				f.xf = f.xf.Mul(parseTransform(v))
			}
			stack = append(stack, f)
			if rings := elementRings(t.Name.Local, at); len(rings) > 0 {
				a.add(at["id"], f, rings)
			}
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !sawRoot {
		return nil, fmt.Errorf("no <svg> root: %w", domain.ErrAssetLoad)
	}
	if len(a.Shapes) == 0 {
		return nil, fmt.Errorf("svg has no filled shapes: %w", domain.ErrAssetLoad)
	}
	return a, nil
}

func (a *Artwork) add(id string, f frame, rings [][]vector.Pt) {
	if strings.EqualFold(strings.TrimSpace(f.fill), "none") {
		return
	}
	// an element without any fill paints black
	c, ok := parseFill(f.fill)
	if !ok && strings.TrimSpace(f.fill) != "" {
		applog.WithComponent("background").Warn("unknown fill, using black", "id", id, "fill", f.fill)
	}
	n := vector.NewPolygon(rings, vector.Fill{Color: vector.Color{R: c.R, G: c.G, B: c.B, A: 255}, Rule: vector.EvenOdd, Enabled: true}, vector.Stroke{})
	n.SetTransform(f.xf)
	a.Shapes = append(a.Shapes, Shape{ID: id, Fill: c, Node: n})
}

type attrMap map[string]string

func attrs(in []xml.Attr) attrMap {
	m := make(attrMap, len(in))
	for _, a := range in {
		m[a.Name.Local] = a.Value
	}
	return m
}

// fill resolves the element's own fill; an inline style wins over the
// presentation attribute.
func (m attrMap) fill() (string, bool) {
	if style, ok := m["style"]; ok {
		for _, decl := range strings.Split(style, ";") {
			k, v, found := strings.Cut(decl, ":")
			if found && strings.TrimSpace(k) == "fill" {
				return strings.TrimSpace(v), true
			}
		}
	}
	v, ok := m["fill"]
	return strings.TrimSpace(v), ok
}

func (m attrMap) num(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(m[key], "px")), 64)
	if err != nil {
		return 0
	}
	return v
}

// ellipseSegments is the polygon resolution for circles and ellipses.
const ellipseSegments = 48

func elementRings(name string, at attrMap) [][]vector.Pt {
	switch name {
	case "rect":
		x, y, w, h := at.num("x"), at.num("y"), at.num("width"), at.num("height")
		if w <= 0 || h <= 0 {
			return nil
		}
		return [][]vector.Pt{{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}}
	case "circle":
		r := at.num("r")
		return ellipseRing(at.num("cx"), at.num("cy"), r, r)
	case "ellipse":
		return ellipseRing(at.num("cx"), at.num("cy"), at.num("rx"), at.num("ry"))
	case "polygon", "polyline":
		pts := parsePoints(at["points"])
		if len(pts) < 3 {
			return nil
		}
		return [][]vector.Pt{pts}
	case "path":
		p, err := ParsePathData(at["d"])
		if err != nil {
			applog.WithComponent("background").Debug("skip path", "id", at["id"], "err", err)
			return nil
		}
		return p.Flatten()
	}
	return nil
}

func ellipseRing(cx, cy, rx, ry float64) [][]vector.Pt {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	ring := make([]vector.Pt, 0, ellipseSegments)
	for i := 0; i < ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		ring = append(ring, vector.Pt{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)})
	}
	return [][]vector.Pt{ring}
}

func parsePoints(s string) []vector.Pt {
	nums := numberList(s)
	var pts []vector.Pt
	for i := 0; i+1 < len(nums); i += 2 {
		pts = append(pts, vector.Pt{X: nums[i], Y: nums[i+1]})
	}
	return pts
}

func numberList(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}

// parseFill understands hex colours, rgb(r,g,b) and the SVG colour
// keywords.
func parseFill(s string) (domain.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return domain.Color{R: c.R, G: c.G, B: c.B}, true
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		n := numberList(strings.TrimSuffix(strings.TrimPrefix(s, "rgb("), ")"))
		if len(n) != 3 {
			return domain.Color{}, false
		}
		clamp := func(v float64) uint8 { return uint8(max(0, min(255, math.Round(v)))) }
		return domain.Color{R: clamp(n[0]), G: clamp(n[1]), B: clamp(n[2])}, true
	}
	if strings.HasPrefix(s, "#") {
		c, err := domain.ParseColor(s)
		return c, err == nil
	}
	return domain.Color{}, false
}
