/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"hmidraw/internal/config"
	"hmidraw/internal/crash"
	applog "hmidraw/internal/log"
	"hmidraw/internal/telemetry"
	"hmidraw/internal/ui"
	"hmidraw/internal/version"
)

// runUI is swapped out by tests.
var runUI = ui.Run

// cli carries what every command needs once the root pre-run has loaded
// the configuration.
type cli struct {
	out   io.Writer
	cfg   config.AppConfig
	tel   *telemetry.Client
	crash *crash.Handler
	log   *slog.Logger
}

func newRootCmd(out io.Writer, h *crash.Handler) *cobra.Command {
	c := &cli{out: out, crash: h}
	root := &cobra.Command{
		Use:   "hmidraw",
		Short: "Diagram editor for HMI screens",
		Long: `hmidraw places circles, rectangles, ellipses and free text on a background
plate, edits their appearance and exports them as JSON documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			c.cfg = cfg
			applog.Init(applog.FromConfig(cfg.Logging))
			c.log = applog.WithComponent("cli")
			if err != nil {
				c.log.Warn("config file ignored", slog.Any("err", err))
			}
			c.tel = telemetry.New(telemetry.FromConfig(cfg))
			c.crash.Telemetry = c.tel
			c.log.Debug("start", slog.String("cmd", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			c.tel.Close()
		},
	}
	root.SetOut(out)
	root.AddCommand(c.versionCmd(), c.demoCmd(), c.uiCmd())
	return root
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version",
		Args:    cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			_, _ = fmt.Fprintln(c.out, "HmiDraw", version.String())
		},
	}
}

func (c *cli) uiCmd() *cobra.Command {
	var background string
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop editor (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if background != "" {
				c.cfg.Scene.Background = background
			}
			return runUI(c.cfg, c.tel)
		},
	}
	cmd.Flags().StringVar(&background, "background", "", "SVG background artwork")
	return cmd
}

func main() {
	h := &crash.Handler{}
	defer h.Recover()
	if err := newRootCmd(os.Stdout, h).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
