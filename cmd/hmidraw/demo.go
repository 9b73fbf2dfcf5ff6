/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"hmidraw/internal/domain"
	"hmidraw/internal/placement"
	"hmidraw/internal/render"
	"hmidraw/internal/scene"
	"hmidraw/internal/session"
	"hmidraw/internal/settings"
	"hmidraw/internal/vector"
)

// scriptForm is the settings form of a headless session: the script sets
// the values the controller reads back.
type scriptForm struct {
	values  settings.Values
	visible bool
}

func (f *scriptForm) Write(v settings.Values)            { f.values = v }
func (f *scriptForm) Read() (settings.Values, error)     { return f.values, nil }
func (f *scriptForm) SetVisible(v bool)                  { f.visible = v }
func (f *scriptForm) ShowNavigation(settings.Navigation) {}

// demoDrops are scene positions on the built-in plate, one per dropped
// tool.
var demoDrops = []vector.Pt{{X: -15, Y: 10}, {X: 10, Y: 10}, {X: -10, Y: -12}, {X: 12, Y: -12}}

func parseKinds(names []string) ([]domain.Kind, error) {
	if len(names) > len(demoDrops) {
		return nil, fmt.Errorf("demo places at most %d shapes", len(demoDrops))
	}
	kinds := make([]domain.Kind, 0, len(names))
	for _, n := range names {
		k, err := domain.ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (c *cli) demoCmd() *cobra.Command {
	var background, pngPath, pdfPath string
	var kindNames []string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted headless session and print the export",
		Long: `demo drops the --kinds tools on the background, edits the first shape
through the settings form and prints the export documents as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := parseKinds(kindNames)
			if err != nil {
				return err
			}
			if background != "" {
				c.cfg.Scene.Background = background
			}
			return c.runDemo(cmd.Context(), kinds, pngPath, pdfPath)
		},
	}
	cmd.Flags().StringVar(&background, "background", "", "SVG background artwork (default: built-in plate)")
	cmd.Flags().StringVar(&pngPath, "png", "", "also render the scene to this PNG file")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also export the scene to this vector PDF file")
	cmd.Flags().StringSliceVar(&kindNames, "kinds", []string{"circle", "rectangle", "ellipse", "text"}, "tools to drop, in order")
	return cmd
}

func (c *cli) runDemo(ctx context.Context, kinds []domain.Kind, pngPath, pdfPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var firstErr error
	form := &scriptForm{}
	s := session.New(session.Options{
		Config:    c.cfg,
		Form:      form,
		Telemetry: c.tel,
		Notifier: session.NotifyFunc(func(err error) {
			c.log.Warn("demo", slog.Any("err", err))
			if firstErr == nil {
				firstErr = err
			}
		}),
	})
	defer s.Close()
	c.crash.Snapshot = s.Snapshot
	if s.Graph.Background() == nil {
		return fmt.Errorf("demo: %w", firstErr)
	}

	z := c.cfg.Scene.TargetZ
	for i, kind := range kinds {
		d := demoDrops[i]
		p, ok := s.Mapper.Project(scene.V(d.X, d.Y, z))
		if !ok {
			return fmt.Errorf("demo: drop point (%v,%v) is not in view", d.X, d.Y)
		}
		if err := s.BeginDrag(kind, p, vector.Pt{}); err != nil {
			return err
		}
		s.MoveDrag(p)
		if res := s.Drop(p); res.Outcome != placement.Dropped {
			return fmt.Errorf("demo: %s drop at (%v,%v) missed: %v", kind, d.X, d.Y, res.Err)
		}
	}
	if len(kinds) == 0 {
		return s.WriteExport(c.out)
	}

	wait, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.Settle(wait); err != nil {
		return fmt.Errorf("demo: label builds: %w", err)
	}

	first := s.Registry.Entries()[0]
	m := s.Graph.Find(first.Shape.Name)
	if m == nil {
		return fmt.Errorf("demo: %s has no mesh", first.Shape.Name)
	}
	centre := m.Bounds().Center()
	p, _ := s.Mapper.Project(scene.V(centre.X, centre.Y, m.Z))
	if name, ok := s.Click(p); !ok || name != first.Shape.Name {
		return fmt.Errorf("demo: click did not select %s", first.Shape.Name)
	}
	form.values.ShapeOpacity = 0.5
	form.values.Label = "Tank"
	if _, err := s.Save(); err != nil {
		return err
	}
	if err := s.Settle(wait); err != nil {
		return fmt.Errorf("demo: label builds: %w", err)
	}

	if err := s.WriteExport(c.out); err != nil {
		return err
	}
	if pngPath != "" {
		r := &render.Renderer{Fonts: s.Fonts, FontPath: c.cfg.Fonts.Path}
		img := r.Scene(s.Graph, s.Mapper, c.cfg.Scene.ViewportWidth, c.cfg.Scene.ViewportHeight)
		if err := render.WritePNG(pngPath, img); err != nil {
			return err
		}
		c.log.Info("demo scene rendered", slog.String("path", pngPath))
	}
	if pdfPath != "" {
		if err := render.SavePDF(pdfPath, s.Graph, render.PDFOptions{}); err != nil {
			return err
		}
		c.log.Info("demo scene exported", slog.String("path", pdfPath))
	}
	return nil
}
