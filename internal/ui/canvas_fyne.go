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
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hmidraw/internal/render"
	"hmidraw/internal/scene"
	"hmidraw/internal/session"
	"hmidraw/internal/vector"
)

// SceneCanvas shows the session's scene through its camera. Its size is
// the session viewport; taps select shapes.
type SceneCanvas struct {
	widget.BaseWidget
	sess *session.Session
	rend *render.Renderer

	// OnChanged runs after a tap changed the selection.
	OnChanged func()
}

func NewSceneCanvas(s *session.Session, r *render.Renderer) *SceneCanvas {
	c := &SceneCanvas{sess: s, rend: r}
	c.ExtendBaseWidget(c)
	return c
}

func (c *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(func(w, h int) image.Image {
		return c.rend.Scene(c.sess.Graph, c.sess.Mapper, w, h)
	})
	return widget.NewSimpleRenderer(raster)
}

func (c *SceneCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

// Resize keeps the session viewport equal to the widget size.
func (c *SceneCanvas) Resize(size fyne.Size) {
	c.BaseWidget.Resize(size)
	c.sess.Resize(scene.Viewport{Width: float64(size.Width), Height: float64(size.Height)})
}

func (c *SceneCanvas) Tapped(e *fyne.PointEvent) {
	c.sess.Click(toPt(e.Position))
	if c.OnChanged != nil {
		c.OnChanged()
	}
}

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }
