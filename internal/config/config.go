/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"pookalam/internal/domain"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
	Audio          bool `yaml:"audio"`
}

type GenerationConfig struct {
	domain.GenerationParameters `yaml:",inline"`
	Mode                        string  `yaml:"mode"`  // fractal | function | parametric | implicit
	Curve                       string  `yaml:"curve"` // catalogue name for non-fractal modes
	Resolution                  float64 `yaml:"resolution"`
	Turns                       float64 `yaml:"turns"`
	DepthSort                   bool    `yaml:"depth_sort"`
	MaxPoints                   int     `yaml:"max_points"`
}

type AnimationConfig struct {
	Speed          float64 `yaml:"speed"`
	UnitsPerSecond float64 `yaml:"units_per_second"`
	HoldMs         int     `yaml:"hold_ms"`
	FadeMs         int     `yaml:"fade_ms"`
	FPS            int     `yaml:"fps"`
}

type ViewConfig struct {
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
	WheelStep  float64 `yaml:"wheel_step"`
	GridStep   float64 `yaml:"grid_step"`
	ShowGrid   bool    `yaml:"show_grid"`
	ShowAxes   bool    `yaml:"show_axes"`
	ShowLabels bool    `yaml:"show_labels"`
	ShowHUD    bool    `yaml:"show_hud"`
	LineWidth  float64 `yaml:"line_width"`
	MarkerSize float64 `yaml:"marker_size"`
	FontPath   string  `yaml:"font_path"`
	FontSize   float64 `yaml:"font_size"`
}

type SpriteConfig struct {
	Path   string `yaml:"path"`
	SizePx int    `yaml:"size_px"`
}

type PresetsConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	Path   string `yaml:"path"`   // sqlite database file
	DSN    string `yaml:"dsn"`    // postgres DSN without password
	// Password is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	General       GeneralConfig    `yaml:"general"`
	Generation    GenerationConfig `yaml:"generation"`
	Animation     AnimationConfig  `yaml:"animation"`
	View          ViewConfig       `yaml:"view"`
	Sprite        SpriteConfig     `yaml:"sprite"`
	Presets       PresetsConfig    `yaml:"presets"`
	Logging       LoggingConfig    `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Audio: false},
		Generation: GenerationConfig{
			GenerationParameters: domain.DefaultParameters(),
			Mode:                 "fractal",
			Resolution:           0.01,
			Turns:                1,
			DepthSort:            true,
			MaxPoints:            250000,
		},
		Animation: AnimationConfig{Speed: 1, UnitsPerSecond: 50, HoldMs: 1500, FadeMs: 2000, FPS: 30},
		View: ViewConfig{
			MinZoom: 0.01, MaxZoom: 100, WheelStep: 0.1, GridStep: 10,
			ShowGrid: true, ShowAxes: true, ShowLabels: true, ShowHUD: true,
			LineWidth: 1.5, MarkerSize: 24, FontSize: 11,
		},
		Sprite:  SpriteConfig{SizePx: 48},
		Presets: PresetsConfig{Driver: "sqlite"},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "PKL_CONFIG"
	EnvTelemetryOptIn = "PKL_TELEMETRY_OPT_IN"
	EnvAudio          = "PKL_AUDIO"
	EnvMode           = "PKL_MODE"
	EnvResolution     = "PKL_RESOLUTION"
	EnvDepthSort      = "PKL_DEPTH_SORT"
	EnvSpeed          = "PKL_SPEED"
	EnvFPS            = "PKL_FPS"
	EnvSprite         = "PKL_SPRITE"
	EnvPresetsDriver  = "PKL_PRESETS_DRIVER"
	EnvPresetsPath    = "PKL_PRESETS_PATH"
	EnvPresetsDSN     = "PKL_PRESETS_DSN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PKL_LOG_LEVEL"
	EnvLogFormat = "PKL_LOG_FORMAT"
	EnvLogSource = "PKL_LOG_SOURCE"
	EnvLogFile   = "PKL_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "Pookalam"
	keyringPassword = "presets_password"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
// A missing entry is reported as an empty secret.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (k *osKeyring) Set(service, key, value string) error {
	return keyring.Set(service, key, value)
}

func (k *osKeyring) Delete(service, key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Pookalam")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Pookalam")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "pookalam")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir returns the directory holding the preset database and crash reports.
func DataDir() (string, error) {
	p, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the preset database password from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	secret, _ := tokenStore.Get(keyringService, keyringPassword)
	return cfg, secret, nil
}

// Save writes the user config YAML and persists the password into OS keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
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
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if secret != "" {
		if err := tokenStore.Set(keyringService, keyringPassword, secret); err != nil {
			return err
		}
	}
	return nil
}

// ForgetSecret removes the stored preset database password.
func ForgetSecret() error { return tokenStore.Delete(keyringService, keyringPassword) }

// mergeInto copies file values over defaults. src starts from Defaults, so
// keys absent from the file keep their default.
func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	dst.General = src.General

	g := src.Generation
	if g.Size > 0 {
		dst.Generation.Size = g.Size
	}
	if g.Density > 0 {
		dst.Generation.Density = g.Density
	}
	if g.Petals > 0 {
		dst.Generation.Petals = g.Petals
	}
	dst.Generation.Style = g.Style
	dst.Generation.Complexity = g.Complexity
	if g.Symmetry > 0 {
		dst.Generation.Symmetry = g.Symmetry
	}
	if m := strings.ToLower(strings.TrimSpace(g.Mode)); m != "" {
		dst.Generation.Mode = m
	}
	dst.Generation.Curve = strings.TrimSpace(g.Curve)
	if g.Resolution > 0 {
		dst.Generation.Resolution = g.Resolution
	}
	if g.Turns > 0 {
		dst.Generation.Turns = g.Turns
	}
	dst.Generation.DepthSort = g.DepthSort
	if g.MaxPoints > 0 {
		dst.Generation.MaxPoints = g.MaxPoints
	}

	a := src.Animation
	if a.Speed > 0 {
		dst.Animation.Speed = a.Speed
	}
	if a.UnitsPerSecond > 0 {
		dst.Animation.UnitsPerSecond = a.UnitsPerSecond
	}
	if a.HoldMs >= 0 {
		dst.Animation.HoldMs = a.HoldMs
	}
	if a.FadeMs >= 0 {
		dst.Animation.FadeMs = a.FadeMs
	}
	if a.FPS > 0 {
		dst.Animation.FPS = a.FPS
	}

	v := src.View
	if v.MinZoom > 0 && v.MaxZoom >= v.MinZoom {
		dst.View.MinZoom, dst.View.MaxZoom = v.MinZoom, v.MaxZoom
	}
	if v.WheelStep > 0 {
		dst.View.WheelStep = v.WheelStep
	}
	if v.GridStep > 0 {
		dst.View.GridStep = v.GridStep
	}
	dst.View.ShowGrid = v.ShowGrid
	dst.View.ShowAxes = v.ShowAxes
	dst.View.ShowLabels = v.ShowLabels
	dst.View.ShowHUD = v.ShowHUD
	if v.LineWidth > 0 {
		dst.View.LineWidth = v.LineWidth
	}
	if v.MarkerSize > 0 {
		dst.View.MarkerSize = v.MarkerSize
	}
	dst.View.FontPath = strings.TrimSpace(v.FontPath)
	if v.FontSize > 0 {
		dst.View.FontSize = v.FontSize
	}

	dst.Sprite.Path = strings.TrimSpace(src.Sprite.Path)
	if src.Sprite.SizePx > 0 {
		dst.Sprite.SizePx = src.Sprite.SizePx
	}

	if d := strings.ToLower(strings.TrimSpace(src.Presets.Driver)); d != "" {
		dst.Presets.Driver = d
	}
	dst.Presets.Path = strings.TrimSpace(src.Presets.Path)
	dst.Presets.DSN = strings.TrimSpace(src.Presets.DSN)

	// logging
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

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAudio)); v != "" {
		cfg.General.Audio = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvMode)); v != "" {
		cfg.Generation.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvResolution)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Generation.Resolution = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDepthSort)); v != "" {
		cfg.Generation.DepthSort = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSpeed)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Animation.Speed = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFPS)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Animation.FPS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSprite)); v != "" {
		cfg.Sprite.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPresetsDriver)); v != "" {
		cfg.Presets.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPresetsPath)); v != "" {
		cfg.Presets.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPresetsDSN)); v != "" {
		cfg.Presets.DSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"general.audio":            EnvAudio,
	"generation.mode":          EnvMode,
	"generation.resolution":    EnvResolution,
	"generation.depth_sort":    EnvDepthSort,
	"animation.speed":          EnvSpeed,
	"animation.fps":            EnvFPS,
	"sprite.path":              EnvSprite,
	"presets.driver":           EnvPresetsDriver,
	"presets.path":             EnvPresetsPath,
	"presets.dsn":              EnvPresetsDSN,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// ParsedMode returns the configured generation mode, falling back to fractal.
func (g GenerationConfig) ParsedMode() domain.Mode {
	m, err := domain.ParseMode(g.Mode)
	if err != nil {
		return domain.ModeFractal
	}
	return m
}
