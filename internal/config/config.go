/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration of the editor: scene and
// camera parameters, label fonts and logging. The YAML file lives in the
// user scope; environment variables are read-only overrides at runtime.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GeneralConfig holds UI-wide preferences.
type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// SceneConfig describes the drop surface, the z-order scheme and the camera.
type SceneConfig struct {
	Background        string  `yaml:"background"` // SVG artwork path; empty uses the built-in plate
	BackgroundScale   float64 `yaml:"background_scale"`
	BackgroundOffsetX float64 `yaml:"background_offset_x"`
	BackgroundOffsetY float64 `yaml:"background_offset_y"`
	BackgroundZ       float64 `yaml:"background_z"`

	TargetZ float64 `yaml:"target_z"`
	ZBase   float64 `yaml:"z_base"`
	ZStep   float64 `yaml:"z_step"`

	FovDeg       float64 `yaml:"fov_deg"`
	Near         float64 `yaml:"near"`
	Far          float64 `yaml:"far"`
	CameraZ      float64 `yaml:"camera_z"`
	Orthographic bool    `yaml:"orthographic"`
	ViewHeight   float64 `yaml:"view_height"` // visible world height for orthographic cameras

	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
}

// FontConfig selects the face used for shape labels.
type FontConfig struct {
	Path         string `yaml:"path"` // TTF/OTF; empty uses the embedded Go Regular face
	DefaultLabel string `yaml:"default_label"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration persisted as YAML.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Scene         SceneConfig   `yaml:"scene"`
	Fonts         FontConfig    `yaml:"fonts"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Scene: SceneConfig{
			BackgroundScale:   0.2,
			BackgroundOffsetX: -30,
			BackgroundOffsetY: 30,
			BackgroundZ:       1,
			TargetZ:           5,
			ZBase:             5,
			ZStep:             0.1,
			FovDeg:            45,
			Near:              1,
			Far:               1000,
			CameraZ:           100,
			ViewHeight:        80,
			ViewportWidth:     980,
			ViewportHeight:    720,
		},
		Fonts:   FontConfig{DefaultLabel: "Label"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvBackground     = "HMI_BACKGROUND"
	EnvFont           = "HMI_FONT"
	EnvTargetZ        = "HMI_TARGET_Z"
	EnvOrthographic   = "HMI_ORTHOGRAPHIC"
	EnvTelemetryOptIn = "HMI_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "HMI_LOG_LEVEL"
	EnvLogFormat = "HMI_LOG_FORMAT"
	EnvLogSource = "HMI_LOG_SOURCE"
	EnvLogFile   = "HMI_LOG_FILE"
	// EnvConfigPath points Load/Save at an explicit file instead of the per-user location.
	EnvConfigPath = "HMI_CONFIG"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "HmiDraw")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "HmiDraw")
	default:
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "hmidraw")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A missing or unreadable file is not an error; a malformed one is reported alongside the defaults.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			parseErr = err
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn

	s, d := &src.Scene, &dst.Scene
	if strings.TrimSpace(s.Background) != "" {
		d.Background = strings.TrimSpace(s.Background)
	}
	setIfNonZero(&d.BackgroundScale, s.BackgroundScale)
	setIfNonZero(&d.BackgroundOffsetX, s.BackgroundOffsetX)
	setIfNonZero(&d.BackgroundOffsetY, s.BackgroundOffsetY)
	setIfNonZero(&d.BackgroundZ, s.BackgroundZ)
	setIfNonZero(&d.TargetZ, s.TargetZ)
	setIfNonZero(&d.ZBase, s.ZBase)
	setIfNonZero(&d.ZStep, s.ZStep)
	setIfNonZero(&d.FovDeg, s.FovDeg)
	setIfNonZero(&d.Near, s.Near)
	setIfNonZero(&d.Far, s.Far)
	setIfNonZero(&d.CameraZ, s.CameraZ)
	setIfNonZero(&d.ViewHeight, s.ViewHeight)
	d.Orthographic = s.Orthographic
	if s.ViewportWidth > 0 {
		d.ViewportWidth = s.ViewportWidth
	}
	if s.ViewportHeight > 0 {
		d.ViewportHeight = s.ViewportHeight
	}

	if strings.TrimSpace(src.Fonts.Path) != "" {
		dst.Fonts.Path = strings.TrimSpace(src.Fonts.Path)
	}
	if src.Fonts.DefaultLabel != "" {
		dst.Fonts.DefaultLabel = src.Fonts.DefaultLabel
	}

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func setIfNonZero(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackground)); v != "" {
		cfg.Scene.Background = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFont)); v != "" {
		cfg.Fonts.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTargetZ)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scene.TargetZ = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvOrthographic)); v != "" {
		cfg.Scene.Orthographic = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"scene.background":         EnvBackground,
		"scene.target_z":           EnvTargetZ,
		"scene.orthographic":       EnvOrthographic,
		"fonts.path":               EnvFont,
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}
	env, ok := names[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
