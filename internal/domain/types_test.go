/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParametersJSONRoundTrip(t *testing.T) {
	p := GenerationParameters{Size: 120, Density: 0.7, Petals: 12, Style: 9, Complexity: 0.8, Symmetry: 0.75}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got GenerationParameters
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, p)
	}
}

func TestSanitizeReplacesNonFinite(t *testing.T) {
	p := GenerationParameters{Size: -5, Density: math.NaN(), Petals: math.Inf(1), Style: 3, Complexity: math.NaN(), Symmetry: math.Inf(-1)}
	s := p.Sanitize()
	d := DefaultParameters()
	if s.Size != d.Size || s.Density != d.Density || s.Petals != d.Petals || s.Complexity != d.Complexity || s.Symmetry != d.Symmetry {
		t.Fatalf("sanitize did not restore defaults: %+v", s)
	}
	if s.Style != 3 {
		t.Fatalf("style must be preserved, got %d", s.Style)
	}
	// out-of-range but finite values are left for the composer
	q := GenerationParameters{Size: 10, Density: 5, Petals: 0, Complexity: 2, Symmetry: 0}.Sanitize()
	if q.Petals != 0 || q.Density != 5 {
		t.Fatalf("finite values must pass through: %+v", q)
	}
}

func TestModeParsingAndCycling(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%s) = %v, %v", m, got, err)
		}
	}
	if ModeImplicit.Next() != ModeFractal {
		t.Fatalf("mode cycling must wrap")
	}
	if _, err := ParseMode("polar"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSequenceHelpers(t *testing.T) {
	var empty Sequence
	if empty.Last() != 0 || empty.MaxRadius() != 0 {
		t.Fatalf("empty sequence helpers misbehave")
	}
	s := Sequence{{X: 3, Y: 4}, {X: -1, Y: 0}}
	if s.Last() != 1 {
		t.Fatalf("Last = %d", s.Last())
	}
	if s.MaxRadius() != 5 {
		t.Fatalf("MaxRadius = %v", s.MaxRadius())
	}
}

func TestPaletteColorWraps(t *testing.T) {
	if PaletteColor(len(Palette)) != Palette[0] {
		t.Fatalf("palette must wrap forward")
	}
	if PaletteColor(-1) != Palette[len(Palette)-1] {
		t.Fatalf("palette must wrap backward")
	}
}
