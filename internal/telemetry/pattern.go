/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"math"
	"sync"
	"time"

	"pookalam/internal/domain"
)

// PatternProps summarises a generation request without exact values:
// continuous parameters are bucketed to one decimal and the style seed is
// left out.
func PatternProps(mode domain.Mode, p domain.GenerationParameters) map[string]any {
	bucket := func(v float64) float64 { return math.Round(v*10) / 10 }
	return map[string]any{
		"mode":       mode.String(),
		"petals":     int(math.Round(p.Petals)),
		"density":    bucket(p.Density),
		"complexity": bucket(p.Complexity),
		"symmetry":   bucket(p.Symmetry),
	}
}

// buildStats accumulates regenerations between session summaries.
type buildStats struct {
	mu       sync.Mutex
	builds   int
	points   int
	slowest  time.Duration
	modes    map[string]int
	lastSent time.Time
}

// Regenerated counts a finished build. The first build, and then at most
// one per RegenInterval, is also reported as a pattern_regenerated event.
func (c *Client) Regenerated(mode domain.Mode, p domain.GenerationParameters, points int, elapsed time.Duration) {
	if !c.Enabled() {
		return
	}
	now := time.Now()
	s := &c.builds
	s.mu.Lock()
	s.builds++
	s.points += points
	s.slowest = max(s.slowest, elapsed)
	if s.modes == nil {
		s.modes = make(map[string]int)
	}
	s.modes[mode.String()]++
	send := s.lastSent.IsZero() || now.Sub(s.lastSent) >= c.cfg.RegenInterval
	if send {
		s.lastSent = now
	}
	s.mu.Unlock()

	if !send {
		return
	}
	props := PatternProps(mode, p)
	props["points"] = points
	props["elapsed_ms"] = elapsed.Milliseconds()
	c.Event("pattern_regenerated", props)
}

// summary emits and resets the accumulated build counts.
func (c *Client) summary() {
	s := &c.builds
	s.mu.Lock()
	if s.builds == 0 {
		s.mu.Unlock()
		return
	}
	props := map[string]any{
		"builds":       s.builds,
		"points_total": s.points,
		"slowest_ms":   s.slowest.Milliseconds(),
		"modes":        s.modes,
	}
	s.builds, s.points, s.slowest, s.modes = 0, 0, 0, nil
	s.mu.Unlock()
	c.Event("session_summary", props)
}
