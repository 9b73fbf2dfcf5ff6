/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hmidraw/internal/config"
	"hmidraw/internal/crash"
	"hmidraw/internal/domain"
	"hmidraw/internal/export"
	"hmidraw/internal/telemetry"
	"hmidraw/internal/ui"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(config.EnvBackground, "")
	t.Setenv(config.EnvFont, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvTelemetryOptIn, "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd(&buf, &crash.Handler{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "version")
	if err != nil || !strings.HasPrefix(out, "HmiDraw ") {
		t.Fatalf("version = %q, %v", out, err)
	}
}

func TestDemoCommand_PrintsEditedExport(t *testing.T) {
	isolate(t)
	out, err := run(t, "demo")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	var docs []export.Document
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("demo output is not a document array: %v\n%s", err, out)
	}
	if err := export.ValidateAll(docs); err != nil {
		t.Fatalf("demo output invalid: %v", err)
	}
	var names []string
	for _, d := range docs {
		names = append(names, d.Shape.Name)
	}
	if strings.Join(names, ",") != "shape_1,shape_2,shape_3,textShape_4" {
		t.Fatalf("names = %v", names)
	}
	if docs[0].Shape.View.Opacity != 0.5 || docs[0].Text.Content.Label != "Tank" {
		t.Fatalf("edit not exported: %+v", docs[0])
	}
	if docs[3].Shape.Shape != "text" || docs[3].Text.View.Fill != "00ff00" {
		t.Fatalf("free text doc = %+v", docs[3])
	}
}

func TestDemoCommand_WritesPNG(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "scene.png")
	if _, err := run(t, "demo", "--png", p); err != nil {
		t.Fatalf("demo: %v", err)
	}
	f, err := os.Open(p)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	def := config.Defaults().Scene
	if cfg.Width != def.ViewportWidth || cfg.Height != def.ViewportHeight {
		t.Fatalf("png size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestDemoCommand_WritesPDF(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "scene.pdf")
	if _, err := run(t, "demo", "--pdf", p); err != nil {
		t.Fatalf("demo: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}

func TestUICommand_UsesLoadedConfig(t *testing.T) {
	isolate(t)
	var got config.AppConfig
	var gotTel *telemetry.Client
	runUI = func(cfg config.AppConfig, tel *telemetry.Client) error {
		got, gotTel = cfg, tel
		return nil
	}
	t.Cleanup(func() { runUI = ui.Run })

	if _, err := run(t, "ui", "--background", "plate.svg"); err != nil {
		t.Fatalf("ui: %v", err)
	}
	if got.Scene.Background != "plate.svg" || got.Logging.Level != "error" {
		t.Fatalf("ui got config %+v", got)
	}
	if gotTel == nil {
		t.Fatalf("ui must get the command's telemetry client")
	}
}

func TestDemoCommand_Kinds(t *testing.T) {
	isolate(t)
	out, err := run(t, "demo", "--kinds", "text,ellipse")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	var docs []export.Document
	if err := json.Unmarshal([]byte(out), &docs); err != nil || len(docs) != 2 {
		t.Fatalf("docs: %v\n%s", err, out)
	}
	if docs[0].Shape.Name != "textShape_1" || docs[1].Shape.Shape != "ellipse" {
		t.Fatalf("unexpected docs %+v", docs)
	}

	if _, err := run(t, "demo", "--kinds", "hexagon"); !errors.Is(err, domain.ErrUnrecognizedKind) {
		t.Fatalf("unknown kind err = %v", err)
	}
	out, err = run(t, "demo", "--kinds", "")
	if err != nil || strings.TrimSpace(out) != "[]" {
		t.Fatalf("empty demo = %q, %v", out, err)
	}
}

func TestDemoCommand_MissingBackground(t *testing.T) {
	isolate(t)
	_, err := run(t, "demo", "--background", filepath.Join(t.TempDir(), "missing.svg"))
	if !errors.Is(err, domain.ErrAssetLoad) {
		t.Fatalf("err = %v", err)
	}
}
