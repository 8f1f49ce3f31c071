/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events and crash reports.
// Nothing leaves the machine unless the user opted in and an endpoint is
// configured.
package telemetry

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"pookalam/internal/domain"
)

// Environment variables read by FromEnv.
const (
	EnvOptIn     = "PKL_TELEMETRY_OPT_IN"     // 1|true|yes|on
	EnvEventsURL = "PKL_TELEMETRY_URL"        // endpoint for JSON events
	EnvCrashURL  = "PKL_CRASH_UPLOAD_URL"     // endpoint for crash reports
	EnvTimeoutMs = "PKL_TELEMETRY_TIMEOUT_MS" // per request, default 1500
	EnvDebug     = "PKL_TELEMETRY_DEBUG"      // any value logs send results
)

const (
	defaultTimeout       = 1500 * time.Millisecond
	defaultRegenInterval = 30 * time.Second
)

// Config holds runtime configuration. The zero value sends nothing.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
	// RegenInterval rate-limits pattern_regenerated events; builds in
	// between are only counted in the session summary.
	RegenInterval time.Duration
}

func FromEnv() Config {
	cfg := Config{
		OptIn:         parseBool(os.Getenv(EnvOptIn)),
		EventsURL:     strings.TrimSpace(os.Getenv(EnvEventsURL)),
		CrashURL:      strings.TrimSpace(os.Getenv(EnvCrashURL)),
		Timeout:       defaultTimeout,
		DebugLogging:  os.Getenv(EnvDebug) != "",
		RegenInterval: defaultRegenInterval,
	}
	if ms := strings.TrimSpace(os.Getenv(EnvTimeoutMs)); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil && v > 0 {
			cfg.Timeout = v
		}
	}
	return cfg
}

// WithOptIn returns cfg with the config file's opt-in OR-ed in.
func (cfg Config) WithOptIn(optIn bool) Config {
	cfg.OptIn = cfg.OptIn || optIn
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// InitDefault creates the package client from the environment if none is
// installed yet.
func InitDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
}

// NewDefault installs a client built from cfg, closing the previous one.
func NewDefault(cfg Config) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		defaultClient.Close()
	}
	defaultClient = New(cfg)
}

func current() *Client {
	InitDefault()
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultClient
}

// Package-level forms of the Client methods, using the default client.

func Enabled() bool                           { return current().Enabled() }
func Event(name string, props map[string]any) { current().Event(name, props) }
func Flush(ctx context.Context)               { current().Flush(ctx) }
func UploadCrash(report []byte)               { current().UploadCrash(report) }

func Regenerated(mode domain.Mode, p domain.GenerationParameters, points int, elapsed time.Duration) {
	current().Regenerated(mode, p, points, elapsed)
}
