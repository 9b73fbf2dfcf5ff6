/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package settings drives the per-shape settings panel: it loads a placed
// shape into the form, writes applied edits back to the registry and
// discards anything not applied when the panel closes.
package settings

import (
	"fmt"
	"log/slog"

	"hmidraw/internal/domain"
	applog "hmidraw/internal/log"
	"hmidraw/internal/registry"
)

// Values are the editable fields of the panel.
type Values struct {
	ShapeOpacity     float64
	ShapeTransparent bool
	ShapeWidth       float64
	ShapeHeight      float64

	TextFontSize    float64
	TextOpacity     float64
	TextTransparent bool
	Label           string
}

// ValuesOf reads the editable fields of an entry.
func ValuesOf(e registry.Entry) Values {
	s, t := e.Shape.View, e.Text.View
	return Values{
		ShapeOpacity:     s.Opacity,
		ShapeTransparent: s.Transparent,
		ShapeWidth:       s.Width,
		ShapeHeight:      s.Height,
		TextFontSize:     t.FontSize,
		TextOpacity:      t.Opacity,
		TextTransparent:  t.Transparent,
		Label:            e.Text.Content.Label,
	}
}

func (v Values) shapeEdit() registry.ShapeEdit {
	return registry.ShapeEdit{Opacity: v.ShapeOpacity, Transparent: v.ShapeTransparent, Width: v.ShapeWidth, Height: v.ShapeHeight}
}

func (v Values) textEdit() registry.TextEdit {
	return registry.TextEdit{FontSize: v.TextFontSize, Opacity: v.TextOpacity, Transparent: v.TextTransparent}
}

// Form is the panel's widget layer.
type Form interface {
	Write(Values)
	// Read returns the current field values; a field that does not parse
	// yields an error wrapping domain.ErrInvalidEdit.
	Read() (Values, error)
	SetVisible(bool)
	ShowNavigation(Navigation)
}

// Editor is the registry surface the controller needs.
type Editor interface {
	FindByName(name string) (registry.Entry, bool)
	ApplyShapeEdits(name string, edit registry.ShapeEdit) (bool, error)
	ApplyTextEdits(name string, edit registry.TextEdit, content domain.TextContent) (changed, rebuild bool, err error)
}

type State uint8

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Applied reports which groups an Apply wrote.
type Applied struct {
	Shape   bool
	Text    bool
	Rebuild bool
	Entry   registry.Entry
}

// Controller is the Closed/Open state machine of the panel.
type Controller struct {
	form   Form
	reg    Editor
	state  State
	target string
	nav    Navigation
	log    *slog.Logger
}

func NewController(f Form, reg Editor) *Controller {
	return &Controller{form: f, reg: reg, nav: DefaultNavigation(), log: applog.WithComponent("settings")}
}

func (c *Controller) State() State           { return c.state }
func (c *Controller) Navigation() Navigation { return c.nav }

// Target is the name of the shape being edited, empty when closed.
func (c *Controller) Target() string { return c.target }

// Open loads the named shape into the form and shows it on the default
// tab. With no matching entry the panel stays as it was and ErrNotFound is
// returned for the caller to report.
func (c *Controller) Open(name string) error {
	e, ok := c.reg.FindByName(name)
	if !ok {
		c.log.Warn("open settings: no registry entry", "name", name)
		return fmt.Errorf("open settings %q: %w", name, domain.ErrNotFound)
	}
	c.state = Open
	c.target = name
	c.resetNav()
	c.form.Write(ValuesOf(e))
	c.form.SetVisible(true)
	c.log.Debug("settings opened", "name", name)
	return nil
}

// Navigate follows a navigation link while the panel is open.
func (c *Controller) Navigate(l Link) {
	if c.state != Open {
		return
	}
	c.nav = c.nav.Navigate(l)
	c.form.ShowNavigation(c.nav)
}

// Apply writes the form's values to the registry. Each group, shape and
// text, is written only when one of its fields differs from the record.
// Invalid values are rejected before anything is written.
func (c *Controller) Apply() (Applied, error) {
	if c.state != Open {
		return Applied{}, domain.ErrNotOpen
	}
	e, ok := c.reg.FindByName(c.target)
	if !ok {
		c.log.Warn("apply settings: entry vanished", "name", c.target)
		return Applied{}, fmt.Errorf("apply settings %q: %w", c.target, domain.ErrNotFound)
	}
	v, err := c.form.Read()
	if err != nil {
		return Applied{}, fmt.Errorf("apply settings %q: %w", c.target, err)
	}
	if err := validate(e, v); err != nil {
		return Applied{}, fmt.Errorf("apply settings %q: %w", c.target, err)
	}

	out := Applied{Entry: e}
	if v.shapeEdit() != registry.ShapeEditOf(e.Shape.View) {
		if out.Shape, err = c.reg.ApplyShapeEdits(c.target, v.shapeEdit()); err != nil {
			return out, err
		}
	}
	content := domain.TextContent{Label: v.Label}
	if v.textEdit() != registry.TextEditOf(e.Text.View) || content != e.Text.Content {
		if out.Text, out.Rebuild, err = c.reg.ApplyTextEdits(c.target, v.textEdit(), content); err != nil {
			return out, err
		}
	}
	c.log.Info("settings applied", "name", c.target, "shape", out.Shape, "text", out.Text, "rebuild", out.Rebuild)
	return out, nil
}

func validate(e registry.Entry, v Values) error {
	sv := e.Shape.View
	sv.Opacity, sv.Transparent, sv.Width, sv.Height = v.ShapeOpacity, v.ShapeTransparent, v.ShapeWidth, v.ShapeHeight
	if err := sv.Validate(); err != nil {
		return err
	}
	tv := e.Text.View
	tv.FontSize, tv.Opacity, tv.Transparent = v.TextFontSize, v.TextOpacity, v.TextTransparent
	return tv.Validate()
}

// Save applies and then closes. On an apply error the panel stays open.
func (c *Controller) Save() (Applied, error) {
	a, err := c.Apply()
	if err != nil {
		return a, err
	}
	c.Close()
	return a, nil
}

// Close hides the panel, discarding unapplied edits.
func (c *Controller) Close() {
	if c.state == Closed {
		return
	}
	c.state = Closed
	c.log.Debug("settings closed", "name", c.target)
	c.target = ""
	c.form.SetVisible(false)
	c.resetNav()
}

func (c *Controller) resetNav() {
	c.nav = DefaultNavigation()
	c.form.ShowNavigation(c.nav)
}
