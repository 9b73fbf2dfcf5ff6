/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the editor into a crash report on disk.
// The report carries the exported document so placed shapes are not lost.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "hmidraw/internal/log"
	"hmidraw/internal/telemetry"
	"hmidraw/internal/version"
)

// exitFn is swapped out by tests.
var exitFn = os.Exit

// Handler recovers panics. All fields are optional.
type Handler struct {
	// Dir receives crash-*.log and scene-*.json; empty uses os.TempDir().
	Dir string
	// Snapshot returns the current document as exported JSON.
	Snapshot  func() ([]byte, error)
	Telemetry *telemetry.Client
}

// Recover must be deferred directly: defer h.Recover().
func (h *Handler) Recover() {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	report, path, err := h.writeReport(r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if snap, err := h.writeSnapshot(); err != nil {
		l.Error("scene snapshot failed", slog.Any("err", err))
	} else if snap != "" {
		l.Info("scene snapshot written", slog.String("path", snap))
	}
	h.Telemetry.UploadCrash(report)

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", path)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func (h *Handler) dir() string {
	if h.Dir != "" {
		return h.Dir
	}
	return os.TempDir()
}

func stamp() string { return time.Now().Format("20060102-150405") }

func (h *Handler) writeReport(panicVal any, stack []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "HmiDraw Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	dir := h.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return buf.Bytes(), "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp()))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return buf.Bytes(), path, err
	}
	return buf.Bytes(), path, nil
}

// writeSnapshot returns "" when there is no snapshot func.
func (h *Handler) writeSnapshot() (string, error) {
	if h.Snapshot == nil {
		return "", nil
	}
	data, err := h.Snapshot()
	if err != nil {
		return "", err
	}
	path := filepath.Join(h.dir(), fmt.Sprintf("scene-%s.json", stamp()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
