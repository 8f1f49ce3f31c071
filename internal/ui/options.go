/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the fyne desktop host. The real window is compiled with
// -tags fyne and cgo; other builds get a stub that points at the terminal host.
package ui

import (
	"pookalam/internal/audio"
	"pookalam/internal/crash"
	"pookalam/internal/presets"
	"pookalam/internal/scene"
)

// Options configures the desktop host.
type Options struct {
	Scene      *scene.Scene
	Presets    presets.Store // optional
	Audio      audio.Player  // optional
	Crash      *crash.Session
	SpritePath string
	SpritePx   int
	FontPath   string
	FontSize   float64
}
