/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"hmidraw/internal/config"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("HMI_LOG_LEVEL", "warn")
	t.Setenv("HMI_LOG_FORMAT", "json")
	t.Setenv("HMI_LOG_SOURCE", "true")
	t.Setenv("HMI_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestFromConfig(t *testing.T) {
	opts := FromConfig(config.LoggingConfig{Level: "debug", Format: "json", Source: true, File: "hmi.log"})
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != "hmi.log" {
		t.Fatalf("FromConfig mismatch: %+v", opts)
	}
}

func TestPrettyTextHandler_Behavior(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{level: slog.LevelWarn, w: &buf, mu: &sync.Mutex{}}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")

	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true), slog.String("label", "two words"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, " k=v") {
		t.Fatalf("output missing expected content: %q", out)
	}
	if !strings.Contains(out, "grp.n=42") {
		t.Fatalf("grouped attr missing or malformed: %q", out)
	}
	if !strings.Contains(out, "ERR") {
		t.Fatalf("expected ERR level tag in output: %q", out)
	}
	if !strings.Contains(out, "grp.pi=3.14") {
		t.Fatalf("expected float value: %q", out)
	}
	if !strings.Contains(out, `grp.label="two words"`) {
		t.Fatalf("expected quoted string value: %q", out)
	}
}

func TestInitConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Writer: &buf})
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	WithOperation(WithComponent("registry"), "create").Debug("created", slog.String("name", "shape_1"))
	out := buf.String()
	for _, want := range []string{"DBG", "created", "component=registry", "op=create", "name=shape_1", "app=hmidraw"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	l := Discard()
	l.Error("nothing to see")
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("discard logger should not enable debug")
	}
}
