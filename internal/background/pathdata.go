/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package background

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"hmidraw/internal/vector"
)

// pathScanner walks an SVG path "d" attribute.
type pathScanner struct {
	s   string
	pos int
}

func (p *pathScanner) skipSeparators() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r', ',':
			p.pos++
		default:
			return
		}
	}
}

func (p *pathScanner) done() bool {
	p.skipSeparators()
	return p.pos >= len(p.s)
}

// command returns the next command letter, if the next token is one.
func (p *pathScanner) command() (byte, bool) {
	p.skipSeparators()
	if p.pos >= len(p.s) {
		return 0, false
	}
	c := p.s[p.pos]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		if c == 'e' || c == 'E' {
			return 0, false
		}
		p.pos++
		return c, true
	}
	return 0, false
}

// hasNumber reports whether a number follows.
func (p *pathScanner) hasNumber() bool {
	p.skipSeparators()
	if p.pos >= len(p.s) {
		return false
	}
	c := p.s[p.pos]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (p *pathScanner) number() (float64, error) {
	p.skipSeparators()
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
		p.pos++
	}
	seenDot, seenExp := false, false
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			if p.pos+1 < len(p.s) && (p.s[p.pos+1] == '-' || p.s[p.pos+1] == '+') {
				p.pos++
			}
		default:
			return p.parse(start)
		}
		p.pos++
	}
	return p.parse(start)
}

func (p *pathScanner) parse(start int) (float64, error) {
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("path number at %d: %w", start, err)
	}
	return v, nil
}

func (p *pathScanner) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParsePathData converts SVG path data into a vector.Path. Supported
// commands are M, L, H, V, C, S, Q, T and Z in absolute and relative form.
func ParsePathData(d string) (vector.Path, error) {
	var path vector.Path
	sc := &pathScanner{s: d}
	var cur, start, lastCtrl vector.Pt
	var last byte
	for !sc.done() {
		cmd, ok := sc.command()
		if !ok {
			if last == 0 {
				return path, fmt.Errorf("path data must start with a command")
			}
			// implicit repeat; coordinates after a moveto are linetos
			cmd = last
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			case 'Z', 'z':
				return path, fmt.Errorf("numbers after closepath at %d", sc.pos)
			}
		}
		rel := cmd >= 'a' && cmd <= 'z'
		abs := func(x, y float64) vector.Pt {
			if rel {
				return vector.Pt{X: cur.X + x, Y: cur.Y + y}
			}
			return vector.Pt{X: x, Y: y}
		}
		switch cmd | 0x20 { // lower-case
		case 'm':
			n, err := sc.numbers(2)
			if err != nil {
				return path, err
			}
			cur = abs(n[0], n[1])
			start = cur
			path.MoveTo(cur.X, cur.Y)
		case 'l':
			n, err := sc.numbers(2)
			if err != nil {
				return path, err
			}
			cur = abs(n[0], n[1])
			path.LineTo(cur.X, cur.Y)
		case 'h':
			n, err := sc.numbers(1)
			if err != nil {
				return path, err
			}
			if rel {
				cur.X += n[0]
			} else {
				cur.X = n[0]
			}
			path.LineTo(cur.X, cur.Y)
		case 'v':
			n, err := sc.numbers(1)
			if err != nil {
				return path, err
			}
			if rel {
				cur.Y += n[0]
			} else {
				cur.Y = n[0]
			}
			path.LineTo(cur.X, cur.Y)
		case 'c':
			n, err := sc.numbers(6)
			if err != nil {
				return path, err
			}
			c1, c2, end := abs(n[0], n[1]), abs(n[2], n[3]), abs(n[4], n[5])
			path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, cur = c2, end
		case 's':
			n, err := sc.numbers(4)
			if err != nil {
				return path, err
			}
			c1 := cur
			if l := last | 0x20; l == 'c' || l == 's' {
				c1 = vector.Pt{X: 2*cur.X - lastCtrl.X, Y: 2*cur.Y - lastCtrl.Y}
			}
			c2, end := abs(n[0], n[1]), abs(n[2], n[3])
			path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, cur = c2, end
		case 'q':
			n, err := sc.numbers(4)
			if err != nil {
				return path, err
			}
			c1, end := abs(n[0], n[1]), abs(n[2], n[3])
			path.QuadTo(c1.X, c1.Y, end.X, end.Y)
			lastCtrl, cur = c1, end
		case 't':
			n, err := sc.numbers(2)
			if err != nil {
				return path, err
			}
			c1 := cur
			if l := last | 0x20; l == 'q' || l == 't' {
				c1 = vector.Pt{X: 2*cur.X - lastCtrl.X, Y: 2*cur.Y - lastCtrl.Y}
			}
			end := abs(n[0], n[1])
			path.QuadTo(c1.X, c1.Y, end.X, end.Y)
			lastCtrl, cur = c1, end
		case 'z':
			path.Close()
			cur = start
		default:
			return path, fmt.Errorf("unsupported path command %q", cmd)
		}
		last = cmd
	}
	return path, nil
}

// parseTransform handles translate, scale, rotate (degrees, about the
// origin) and matrix, composed left to right.
func parseTransform(s string) vector.Affine2D {
	m := vector.Identity
	for {
		s = strings.TrimLeft(s, " ,\t\n")
		open := strings.IndexByte(s, '(')
		closing := strings.IndexByte(s, ')')
		if open < 0 || closing < open {
			return m
		}
		name := strings.TrimSpace(s[:open])
		args := numberList(s[open+1 : closing])
		s = s[closing+1:]
		switch name {
		case "translate":
			if len(args) == 1 {
				args = append(args, 0)
			}
			if len(args) >= 2 {
				m = m.Mul(vector.Translate(args[0], args[1]))
			}
		case "scale":
			if len(args) == 1 {
				args = append(args, args[0])
			}
			if len(args) >= 2 {
				m = m.Mul(vector.Scale(args[0], args[1]))
			}
		case "rotate":
			if len(args) >= 1 {
				m = m.Mul(vector.Rotate(args[0] * math.Pi / 180))
			}
		case "matrix":
			if len(args) == 6 {
				m = m.Mul(vector.Affine2D{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]})
			}
		}
	}
}
