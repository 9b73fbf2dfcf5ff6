//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"hmidraw/internal/domain"
	"hmidraw/internal/settings"
)

// SettingsForm is the settings panel. It implements settings.Form; the
// controller decides what it shows.
type SettingsForm struct {
	shapeOpacity     *widget.Entry
	shapeTransparent *widget.Check
	shapeWidth       *widget.Entry
	shapeHeight      *widget.Entry

	textFontSize    *widget.Entry
	textOpacity     *widget.Entry
	textTransparent *widget.Check
	label           *widget.Entry

	links    map[settings.Link]*widget.Button
	pages    map[settings.Tab]fyne.CanvasObject
	viewTabs *fyne.Container
	contTabs *fyne.Container
	root     *fyne.Container

	OnNavigate func(settings.Link)
	OnApply    func()
	OnSave     func()
	OnClose    func()
}

func NewSettingsForm() *SettingsForm {
	f := &SettingsForm{
		shapeOpacity:     widget.NewEntry(),
		shapeTransparent: widget.NewCheck("Transparent", nil),
		shapeWidth:       widget.NewEntry(),
		shapeHeight:      widget.NewEntry(),
		textFontSize:     widget.NewEntry(),
		textOpacity:      widget.NewEntry(),
		textTransparent:  widget.NewCheck("Transparent", nil),
		label:            widget.NewEntry(),
		links:            make(map[settings.Link]*widget.Button),
	}
	link := func(l settings.Link, title string) *widget.Button {
		b := widget.NewButton(title, func() {
			if f.OnNavigate != nil {
				f.OnNavigate(l)
			}
		})
		f.links[l] = b
		return b
	}
	sections := container.NewHBox(link(settings.LinkView, "View"), link(settings.LinkContent, "Content"))
	f.viewTabs = container.NewHBox(link(settings.LinkShape, "Shape"), link(settings.LinkText, "Text"))
	f.contTabs = container.NewHBox(link(settings.LinkStatic, "Static"))

	f.pages = map[settings.Tab]fyne.CanvasObject{
		settings.TabShape: widget.NewForm(
			widget.NewFormItem("Opacity", f.shapeOpacity),
			widget.NewFormItem("", f.shapeTransparent),
			widget.NewFormItem("Width", f.shapeWidth),
			widget.NewFormItem("Height", f.shapeHeight),
		),
		settings.TabText: widget.NewForm(
			widget.NewFormItem("Font size", f.textFontSize),
			widget.NewFormItem("Opacity", f.textOpacity),
			widget.NewFormItem("", f.textTransparent),
		),
		settings.TabStatic: widget.NewForm(widget.NewFormItem("Label", f.label)),
	}
	call := func(fn *func()) func() {
		return func() {
			if *fn != nil {
				(*fn)()
			}
		}
	}
	actions := container.NewHBox(
		widget.NewButton("Apply", call(&f.OnApply)),
		widget.NewButton("Save", call(&f.OnSave)),
		widget.NewButton("Close", call(&f.OnClose)),
	)
	f.root = container.NewVBox(
		widget.NewLabelWithStyle("Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sections,
		f.viewTabs,
		f.contTabs,
		container.NewStack(f.pages[settings.TabShape], f.pages[settings.TabText], f.pages[settings.TabStatic]),
		widget.NewSeparator(),
		actions,
	)
	f.ShowNavigation(settings.DefaultNavigation())
	f.root.Hide()
	return f
}

// Object is the panel's root for embedding in a window.
func (f *SettingsForm) Object() fyne.CanvasObject { return f.root }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func (f *SettingsForm) Write(v settings.Values) {
	f.shapeOpacity.SetText(formatFloat(v.ShapeOpacity))
	f.shapeTransparent.SetChecked(v.ShapeTransparent)
	f.shapeWidth.SetText(formatFloat(v.ShapeWidth))
	f.shapeHeight.SetText(formatFloat(v.ShapeHeight))
	f.textFontSize.SetText(formatFloat(v.TextFontSize))
	f.textOpacity.SetText(formatFloat(v.TextOpacity))
	f.textTransparent.SetChecked(v.TextTransparent)
	f.label.SetText(v.Label)
}

func (f *SettingsForm) Read() (settings.Values, error) {
	v := settings.Values{
		ShapeTransparent: f.shapeTransparent.Checked,
		TextTransparent:  f.textTransparent.Checked,
		Label:            f.label.Text,
	}
	fields := []struct {
		name string
		e    *widget.Entry
		dst  *float64
	}{
		{"shape opacity", f.shapeOpacity, &v.ShapeOpacity},
		{"width", f.shapeWidth, &v.ShapeWidth},
		{"height", f.shapeHeight, &v.ShapeHeight},
		{"font size", f.textFontSize, &v.TextFontSize},
		{"text opacity", f.textOpacity, &v.TextOpacity},
	}
	for _, fd := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(fd.e.Text), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return settings.Values{}, fmt.Errorf("%s %q: %w", fd.name, fd.e.Text, domain.ErrInvalidEdit)
		}
		*fd.dst = n
	}
	return v, nil
}

func (f *SettingsForm) SetVisible(visible bool) {
	if visible {
		f.root.Show()
	} else {
		f.root.Hide()
	}
}

// ShowNavigation highlights the active section and tab and shows its page.
func (f *SettingsForm) ShowNavigation(n settings.Navigation) {
	active := map[settings.Link]bool{
		settings.LinkView:    n.Section == settings.SectionView,
		settings.LinkContent: n.Section == settings.SectionContent,
		settings.LinkShape:   n.Tab == settings.TabShape,
		settings.LinkText:    n.Tab == settings.TabText,
		settings.LinkStatic:  n.Tab == settings.TabStatic,
	}
	for l, b := range f.links {
		if active[l] {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}
	if n.Section == settings.SectionView {
		f.viewTabs.Show()
		f.contTabs.Hide()
	} else {
		f.viewTabs.Hide()
		f.contTabs.Show()
	}
	for t, p := range f.pages {
		if t == n.Tab {
			p.Show()
		} else {
			p.Hide()
		}
	}
}
