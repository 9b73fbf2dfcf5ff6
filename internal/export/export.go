/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export projects registry entries into the document shape handed
// to the HMI backend and validates documents against the bundled schema.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"hmidraw/internal/registry"
)

// DynamicType tags every exported document.
const DynamicType = "[Hmi] update dynamic label"

type Document struct {
	ID      string    `json:"id"`
	Shape   ShapePart `json:"shape"`
	Text    TextPart  `json:"text"`
	Dynamic Dynamic   `json:"dynamic"`
}

type ShapePart struct {
	ElementID string    `json:"elementId"`
	Shape     string    `json:"shape"`
	Name      string    `json:"name"`
	View      ShapeView `json:"view"`
}

type ShapeView struct {
	Fill        string  `json:"fill"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	X           float64 `json:"X"`
	Y           float64 `json:"y"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
}

type TextPart struct {
	ElementID string      `json:"elementId"`
	Name      string      `json:"name"`
	View      TextView    `json:"view"`
	Content   TextContent `json:"content"`
}

type TextView struct {
	FontSize    float64 `json:"fontSize"`
	Fill        string  `json:"fill"`
	X           float64 `json:"X"`
	Y           float64 `json:"y"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
}

type TextContent struct {
	Label string `json:"label"`
}

type Dynamic struct {
	Topic     Topic   `json:"topic"`
	Animation TypeRef `json:"animation"`
	Type      string  `json:"type"`
}

type Topic struct {
	Output   string  `json:"output"`
	IsLinked bool    `json:"islinked"`
	Action   TypeRef `json:"action"`
}

// TypeRef is an optional type tag; nil encodes as JSON null.
type TypeRef struct {
	Type *string `json:"type"`
}

// Clock yields the export timestamp.
type Clock func() time.Time

// Serializer builds documents. Identifiers come from the clock in
// milliseconds, so two exports within the same millisecond share ids.
type Serializer struct {
	Now Clock
}

func NewSerializer(now Clock) *Serializer {
	if now == nil {
		now = time.Now
	}
	return &Serializer{Now: now}
}

// Snapshot projects one entry. The result shares no memory with the entry.
func (s *Serializer) Snapshot(e registry.Entry) Document {
	ms := s.Now().UnixMilli()
	sv, tv := e.Shape.View, e.Text.View
	return Document{
		ID: "label_" + strconv.FormatInt(ms, 10),
		Shape: ShapePart{
			ElementID: "element_id_" + strconv.FormatInt(ms, 10),
			Shape:     e.Shape.Kind.String(),
			Name:      e.Shape.Name,
			View: ShapeView{
				Fill:        sv.FillColor.Hex(),
				Width:       sv.Width,
				Height:      sv.Height,
				X:           sv.PositionX,
				Y:           sv.PositionY,
				Opacity:     sv.Opacity,
				Transparent: sv.Transparent,
			},
		},
		Text: TextPart{
			ElementID: "label_" + strconv.FormatInt(ms+1, 10),
			Name:      e.Text.Name,
			View: TextView{
				FontSize:    tv.FontSize,
				Fill:        tv.FillColor.Hex(),
				X:           tv.PositionX,
				Y:           tv.PositionY,
				Opacity:     tv.Opacity,
				Transparent: tv.Transparent,
			},
			Content: TextContent{Label: e.Text.Content.Label},
		},
		Dynamic: Dynamic{Type: DynamicType},
	}
}

// All snapshots every entry in z-order.
func (s *Serializer) All(es []registry.Entry) []Document {
	out := make([]Document, 0, len(es))
	for _, e := range es {
		out = append(out, s.Snapshot(e))
	}
	return out
}

// Encode writes docs as an indented JSON array.
func Encode(w io.Writer, docs []Document) error {
	if docs == nil {
		docs = []Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
