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
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"hmidraw/internal/config"
	"hmidraw/internal/crash"
	"hmidraw/internal/domain"
	applog "hmidraw/internal/log"
	"hmidraw/internal/placement"
	"hmidraw/internal/render"
	"hmidraw/internal/session"
	"hmidraw/internal/telemetry"
	"hmidraw/internal/vector"
)

// editor ties the session to the window.
type editor struct {
	sess    *session.Session
	win     fyne.Window
	canvas  *SceneCanvas
	overlay *fyne.Container
	form    *SettingsForm
	status  *widget.Label
	rend    *render.Renderer
	log     *slog.Logger
}

// Notify implements session.Notifier with a status line message.
func (ed *editor) Notify(err error) {
	ed.log.Warn("editor error", slog.Any("err", err))
	ed.status.SetText("Error: " + err.Error())
}

func (ed *editor) canvasPoint(abs fyne.Position) vector.Pt {
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(ed.canvas)
	return vector.Pt{X: float64(abs.X - origin.X), Y: float64(abs.Y - origin.Y)}
}

func (ed *editor) dropped(res placement.Result) {
	switch res.Outcome {
	case placement.Dropped:
		ed.status.SetText("Placed " + res.Entry.Shape.Name)
	case placement.Cancelled:
		if res.Err == nil {
			ed.status.SetText("Drop missed the background")
		}
	}
	ed.canvas.Refresh()
}

// Run starts the desktop editor with an already loaded configuration.
// Logging must be initialised; tel may be nil and is flushed on exit but
// not closed.
func Run(cfg config.AppConfig, tel *telemetry.Client) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("background", cfg.Scene.Background))

	fyneApp := app.NewWithID("hmidraw")
	w := fyneApp.NewWindow("HmiDraw")
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", cfg.Scene.ViewportWidth+360), 800)
	winH := max(prefs.IntWithFallback("window.height", cfg.Scene.ViewportHeight+60), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	ed := &editor{
		win:     w,
		overlay: container.NewWithoutLayout(),
		form:    NewSettingsForm(),
		status:  widget.NewLabel("Drag a tool onto the plate"),
		log:     l,
	}
	ed.sess = session.New(session.Options{
		Config:    cfg,
		Form:      ed.form,
		Previews:  ed,
		Notifier:  ed,
		Telemetry: tel,
	})
	defer ed.sess.Close()
	h := &crash.Handler{Snapshot: ed.sess.Snapshot, Telemetry: tel}
	defer h.Recover()

	ed.rend = &render.Renderer{Fonts: ed.sess.Fonts, FontPath: cfg.Fonts.Path}
	ed.canvas = NewSceneCanvas(ed.sess, ed.rend)
	ed.canvas.OnChanged = ed.canvas.Refresh
	ed.sess.Labels.SetNotify(func() {
		fyne.Do(func() {
			if ed.sess.Tick() > 0 {
				ed.canvas.Refresh()
			}
		})
	})

	ed.form.OnNavigate = ed.sess.Settings.Navigate
	ed.form.OnApply = func() {
		if _, err := ed.sess.Apply(); err == nil {
			ed.status.SetText("Applied")
		}
		ed.canvas.Refresh()
	}
	ed.form.OnSave = func() {
		if _, err := ed.sess.Save(); err == nil {
			ed.status.SetText("Saved")
		}
		ed.canvas.Refresh()
	}
	ed.form.OnClose = ed.sess.Settings.Close

	palette := container.NewVBox(widget.NewLabelWithStyle("Tools", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, k := range domain.Kinds() {
		palette.Add(newToolButton(k, ed))
	}
	body := container.NewBorder(nil, ed.status, palette, ed.form.Object(), ed.canvas)
	w.SetContent(container.NewStack(body, ed.overlay))
	w.SetMainMenu(ed.menu())

	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		if e.Name != fyne.KeyEscape {
			return
		}
		if res := ed.sess.CancelDrag(); res.Outcome == placement.Cancelled {
			ed.status.SetText("Drag cancelled")
			return
		}
		ed.sess.Settings.Close()
	})
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	w.ShowAndRun()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	tel.Flush(ctx)
	l.Info("UI closed")
	return nil
}

func (ed *editor) menu() *fyne.MainMenu {
	openBg := fyne.NewMenuItem("Open Background…", func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			path := r.URI().Path()
			_ = r.Close()
			if ed.sess.LoadBackground(path) == nil {
				ed.status.SetText("Background: " + path)
			}
			ed.canvas.Refresh()
		}, ed.win)
	})
	exportJSON := fyne.NewMenuItem("Export JSON…", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			defer func() { _ = wc.Close() }()
			if err := ed.sess.WriteExport(wc); err != nil {
				dialog.ShowError(err, ed.win)
				return
			}
			ed.status.SetText("Exported to " + wc.URI().Path())
		}, ed.win)
	})
	exportJSON.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierControl}
	exportPNG := fyne.NewMenuItem("Export PNG…", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			defer func() { _ = wc.Close() }()
			sz := ed.canvas.Size()
			img := ed.rend.Scene(ed.sess.Graph, ed.sess.Mapper, int(sz.Width), int(sz.Height))
			if err := render.EncodePNG(wc, img); err != nil {
				dialog.ShowError(err, ed.win)
				return
			}
			ed.status.SetText("Exported to " + wc.URI().Path())
		}, ed.win)
	})
	exportPDF := fyne.NewMenuItem("Export PDF…", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			defer func() { _ = wc.Close() }()
			if err := render.WritePDF(wc, ed.sess.Graph, render.PDFOptions{}); err != nil {
				dialog.ShowError(err, ed.win)
				return
			}
			ed.status.SetText("Exported to " + wc.URI().Path())
		}, ed.win)
	})
	return fyne.NewMainMenu(fyne.NewMenu("File", openBg, fyne.NewMenuItemSeparator(), exportJSON, exportPNG, exportPDF))
}
