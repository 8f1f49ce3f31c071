/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package presets

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"pookalam/internal/domain"
)

func samplePreset(name string) Preset {
	p := domain.DefaultParameters()
	p.Petals = 12
	p.Style = 7
	return Preset{Name: name, Params: p, Mode: domain.ModeFractal, CreatedAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []Preset{samplePreset("thiruvonam"), {Name: "rose", Params: domain.DefaultParameters(), Mode: domain.ModeParametric, Curve: "rose"}}
	data, err := Encode(in...)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `"mode": "parametric"`) {
		t.Fatalf("mode should be encoded by name:\n%s", data)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 presets, got %d", len(out))
	}
	if out[0].Params != in[0].Params || out[1].Mode != domain.ModeParametric || out[1].Curve != "rose" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if !out[0].CreatedAt.Equal(in[0].CreatedAt) {
		t.Fatalf("created_at mismatch: %v", out[0].CreatedAt)
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode empty file: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("want no presets, got %d", len(out))
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"wrong version": `{"version": 2, "presets": []}`,
		"missing name":  `{"version": 1, "presets": [{"mode": "fractal", "params": {"size": 1, "density": 0.5, "petals": 8, "style": 1, "complexity": 0.5, "symmetry": 1}}]}`,
		"bad mode":      `{"version": 1, "presets": [{"name": "x", "mode": "spiral", "params": {"size": 1, "density": 0.5, "petals": 8, "style": 1, "complexity": 0.5, "symmetry": 1}}]}`,
		"zero size":     `{"version": 1, "presets": [{"name": "x", "mode": "fractal", "params": {"size": 0, "density": 0.5, "petals": 8, "style": 1, "complexity": 0.5, "symmetry": 1}}]}`,
		"float style":   `{"version": 1, "presets": [{"name": "x", "mode": "fractal", "params": {"size": 1, "density": 0.5, "petals": 8, "style": 1.5, "complexity": 0.5, "symmetry": 1}}]}`,
		"extra field":   `{"version": 1, "presets": [], "owner": "me"}`,
	}
	for name, doc := range cases {
		if _, err := Decode([]byte(doc)); !errors.Is(err, ErrInvalidPreset) {
			t.Fatalf("%s: want ErrInvalidPreset, got %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := samplePreset("ok").Validate(); err != nil {
		t.Fatalf("valid preset rejected: %v", err)
	}
	bad := []Preset{
		samplePreset("  "),
		samplePreset(strings.Repeat("p", MaxNameLen+1)),
		func() Preset { p := samplePreset("nan"); p.Params.Petals = math.NaN(); return p }(),
		func() Preset { p := samplePreset("neg"); p.Params.Size = -1; return p }(),
		func() Preset { p := samplePreset("mode"); p.Mode = domain.Mode(9); return p }(),
		func() Preset { p := samplePreset("dense"); p.Params.Density = 2; return p }(),
		func() Preset { p := samplePreset("sym"); p.Params.Symmetry = 1.5; return p }(),
		func() Preset { p := samplePreset("petals"); p.Params.Petals = 65; return p }(),
		func() Preset { p := samplePreset("cx"); p.Params.Complexity = -0.1; return p }(),
		samplePreset(strings.Repeat("പൂ", 33)),
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPreset) {
			t.Fatalf("%q: want ErrInvalidPreset, got %v", p.Name, err)
		}
	}
}

func TestValidateCountsCharacters(t *testing.T) {
	// 31 characters, 93 bytes
	name := "ഓണം" + strings.Repeat("പ", 28)
	if len(name) <= MaxNameLen {
		t.Fatalf("test name should exceed %d bytes, got %d", MaxNameLen, len(name))
	}
	if err := samplePreset(name).Validate(); err != nil {
		t.Fatalf("31-character name rejected: %v", err)
	}
	if err := samplePreset(strings.Repeat("പ", MaxNameLen)).Validate(); err != nil {
		t.Fatalf("%d-character name rejected: %v", MaxNameLen, err)
	}
	if err := samplePreset(strings.Repeat("പ", MaxNameLen+1)).Validate(); !errors.Is(err, ErrInvalidPreset) {
		t.Fatalf("%d-character name: want ErrInvalidPreset, got %v", MaxNameLen+1, err)
	}
}

func TestValidatedPresetsDecode(t *testing.T) {
	edge := []domain.GenerationParameters{
		{Size: 1e-9, Density: 0, Petals: MinPetals, Style: -3, Complexity: 0, Symmetry: 0},
		{Size: 1e6, Density: 1, Petals: MaxPetals, Style: 1 << 20, Complexity: 1, Symmetry: 1},
		domain.DefaultParameters(),
	}
	for i, params := range edge {
		p := samplePreset(strings.Repeat("പ", MaxNameLen))
		p.Params = params
		if err := p.Validate(); err != nil {
			t.Fatalf("case %d: Validate: %v", i, err)
		}
		data, err := Encode(p)
		if err != nil {
			t.Fatalf("case %d: Encode: %v", i, err)
		}
		out, err := Decode(data)
		if err != nil {
			t.Fatalf("case %d: Decode rejected a validated preset: %v", i, err)
		}
		if out[0].Params != params {
			t.Fatalf("case %d: params changed: %+v", i, out[0].Params)
		}
	}
}

func TestFitParams(t *testing.T) {
	in := domain.GenerationParameters{Size: -1, Density: 2, Petals: 1e9, Style: 4, Complexity: math.NaN(), Symmetry: 1.5}
	got := FitParams(in)
	d := domain.DefaultParameters()
	want := domain.GenerationParameters{Size: d.Size, Density: 1, Petals: MaxPetals, Style: 4, Complexity: d.Complexity, Symmetry: 1}
	if got != want {
		t.Fatalf("FitParams = %+v, want %+v", got, want)
	}
	if FitParams(got) != got {
		t.Fatalf("FitParams must be idempotent")
	}
	p := samplePreset("fitted")
	p.Params = got
	if err := p.Validate(); err != nil {
		t.Fatalf("fitted params rejected: %v", err)
	}
	if _, err := Decode(mustEncode(t, p)); err != nil {
		t.Fatalf("fitted preset does not decode: %v", err)
	}
}

func mustEncode(t *testing.T, ps ...Preset) []byte {
	t.Helper()
	data, err := Encode(ps...)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}
