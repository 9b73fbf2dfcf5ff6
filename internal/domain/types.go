/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model of the editor: placed shapes, the
// labels attached to them and the views the settings form edits.

import (
	"fmt"
	"math"
	"strings"
)

// Kind enumerates the shapes the palette can place.
type Kind uint8

const (
	Circle Kind = iota + 1
	Rectangle
	Ellipse
	FreeText
)

var kindNames = map[Kind]string{
	Circle:    "circle",
	Rectangle: "rectangle",
	Ellipse:   "ellipse",
	FreeText:  "text",
}

// Kinds lists every placeable kind in palette order.
func Kinds() []Kind { return []Kind{Circle, Rectangle, Ellipse, FreeText} }

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the placeable kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a palette tool name ("circle", "rectangle", "ellipse",
// "text") to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("parse kind %q: %w", s, ErrUnrecognizedKind)
}

// ShapeView holds the editable appearance of a placed shape.
type ShapeView struct {
	FillColor   Color
	Width       float64
	Height      float64
	PositionX   float64
	PositionY   float64
	Opacity     float64 // 0..1
	Transparent bool
}

// ShapeRecord is one placed visual element.
type ShapeRecord struct {
	ID     string
	Kind   Kind
	Name   string
	View   ShapeView
	ZOrder float64
	// TextID links the record to its label.
	TextID string
}

// TextView holds the editable appearance of a label.
type TextView struct {
	FontSize    float64
	FillColor   Color
	PositionX   float64
	PositionY   float64
	Opacity     float64
	Transparent bool
}

type TextContent struct {
	Label string
}

// Renderable is built label geometry. It is immutable: a new font size or
// label text needs a new Renderable.
type Renderable interface {
	Text() string
	FontSize() float64
	Extent() (w, h float64)
}

// TextRecord is the label attached to a ShapeRecord. OwnerID is a lookup
// reference only.
type TextRecord struct {
	ID      string
	OwnerID string
	Name    string
	View    TextView
	Content TextContent
	// Renderable is nil while its geometry is being built.
	Renderable Renderable
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks the ranges the settings form can produce.
func (v ShapeView) Validate() error {
	if !finite(v.Opacity, v.Width, v.Height) {
		return fmt.Errorf("shape view %v/%vx%v not finite: %w", v.Opacity, v.Width, v.Height, ErrInvalidEdit)
	}
	if v.Opacity < 0 || v.Opacity > 1 {
		return fmt.Errorf("shape opacity %v outside [0,1]: %w", v.Opacity, ErrInvalidEdit)
	}
	if v.Width < 0 || v.Height < 0 {
		return fmt.Errorf("shape size %vx%v negative: %w", v.Width, v.Height, ErrInvalidEdit)
	}
	return nil
}

func (v TextView) Validate() error {
	if !finite(v.Opacity, v.FontSize) {
		return fmt.Errorf("text view %v/%v not finite: %w", v.Opacity, v.FontSize, ErrInvalidEdit)
	}
	if v.Opacity < 0 || v.Opacity > 1 {
		return fmt.Errorf("text opacity %v outside [0,1]: %w", v.Opacity, ErrInvalidEdit)
	}
	if v.FontSize < 0 {
		return fmt.Errorf("font size %v negative: %w", v.FontSize, ErrInvalidEdit)
	}
	return nil
}
