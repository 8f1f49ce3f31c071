/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package presets stores named generation parameter sets, either in an embedded
// SQLite database or a shared PostgreSQL server, and reads/writes them as
// schema-validated JSON files.
package presets

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"pookalam/internal/domain"
)

// FileVersion is the preset file format version written by Encode.
const FileVersion = 1

// MaxNameLen bounds preset names, counted in characters.
const MaxNameLen = 64

// Parameter ranges accepted in preset files. Size must be positive.
const (
	MinPetals = 1
	MaxPetals = 64
)

var (
	// ErrNotFound is returned when a named preset does not exist.
	ErrNotFound = errors.New("preset not found")
	// ErrInvalidPreset is returned for malformed presets and preset files.
	ErrInvalidPreset = errors.New("invalid preset")
)

//go:embed schema/*
var schemaFS embed.FS

// Preset is a named parameter set together with the mode it was designed for.
type Preset struct {
	Name      string                      `json:"name"`
	Params    domain.GenerationParameters `json:"params"`
	Mode      domain.Mode                 `json:"mode"`
	Curve     string                      `json:"curve,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Validate checks the name and that the parameters lie within the preset file
// ranges, so every preset it accepts survives Encode and Decode.
func (p Preset) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLen {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidPreset, MaxNameLen)
	}
	if FitParams(p.Params) != p.Params {
		return fmt.Errorf("%w: parameters out of range (%s)", ErrInvalidPreset, p.Params)
	}
	if p.Mode < domain.ModeFractal || p.Mode > domain.ModeImplicit {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidPreset, int(p.Mode))
	}
	return nil
}

// FitParams replaces non-finite values with defaults and clamps the rest into
// the ranges a preset file accepts. Validate accepts exactly the fixed points.
func FitParams(p domain.GenerationParameters) domain.GenerationParameters {
	p = p.Sanitize()
	p.Density = clamp(p.Density, 0, 1)
	p.Petals = clamp(p.Petals, MinPetals, MaxPetals)
	p.Complexity = clamp(p.Complexity, 0, 1)
	p.Symmetry = clamp(p.Symmetry, 0, 1)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type file struct {
	Version int      `json:"version"`
	Presets []Preset `json:"presets"`
}

// Encode writes presets in the file format accepted by Decode.
func Encode(ps ...Preset) ([]byte, error) {
	if ps == nil {
		ps = []Preset{}
	}
	data, err := json.MarshalIndent(file{Version: FileVersion, Presets: ps}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal presets: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode validates data against the preset file schema and decodes it.
func Decode(data []byte) ([]Preset, error) {
	schema, err := schemaFS.ReadFile("schema/presets.schema.json")
	if err != nil {
		return nil, fmt.Errorf("read preset schema: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPreset, strings.Join(msgs, "; "))
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	for _, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Presets, nil
}
