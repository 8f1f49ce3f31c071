/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"pookalam/internal/scene"
	"pookalam/internal/vector"
)

const (
	speedStep = 1.25
	// panFraction is the share of the surface an arrow key pans.
	panFraction = 0.05
)

var paramKeys = map[rune]struct {
	p   scene.Param
	dir int
}{
	'[': {scene.ParamPetals, -1},
	']': {scene.ParamPetals, 1},
	'{': {scene.ParamStyle, -1},
	'}': {scene.ParamStyle, 1},
	'c': {scene.ParamComplexity, -1},
	'C': {scene.ParamComplexity, 1},
	'd': {scene.ParamDensity, -1},
	'D': {scene.ParamDensity, 1},
	's': {scene.ParamSymmetry, -1},
	'S': {scene.ParamSymmetry, 1},
	'<': {scene.ParamSize, -1},
	'>': {scene.ParamSize, 1},
}

func (h *Host) key(ev *tcell.EventKey) bool {
	vp := h.viewport()
	dx, dy := vp.Width*panFraction, vp.Height*panFraction
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		h.sc.Drag(vp, dx, 0)
		return true
	case tcell.KeyRight:
		h.sc.Drag(vp, -dx, 0)
		return true
	case tcell.KeyUp:
		h.sc.Drag(vp, 0, dy)
		return true
	case tcell.KeyDown:
		h.sc.Drag(vp, 0, -dy)
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	r := ev.Rune()
	if pk, ok := paramKeys[r]; ok {
		p := h.sc.Adjust(pk.p, pk.dir)
		h.status = fmt.Sprintf("%s=%g", pk.p, scene.Get(p, pk.p))
		return true
	}
	switch r {
	case 'q':
		return false
	case ' ':
		h.sc.TogglePlay()
	case 'r':
		h.sc.Reset()
	case '0':
		h.sc.ResetView()
	case '+', '=':
		h.sc.SetSpeed(h.sc.Speed() * speedStep)
		h.status = fmt.Sprintf("speed x%.2f", h.sc.Speed())
	case '-', '_':
		h.sc.SetSpeed(h.sc.Speed() / speedStep)
		h.status = fmt.Sprintf("speed x%.2f", h.sc.Speed())
	case 'z':
		h.sc.ZoomAt(vp, vp.Centre(), 1)
	case 'x':
		h.sc.ZoomAt(vp, vp.Centre(), -1)
	case 'm':
		m := h.sc.CycleMode()
		h.status = "mode " + m.String()
	case 'o':
		on := !h.sc.Request().DepthSort
		h.sc.SetDepthSort(on)
		h.status = fmt.Sprintf("depth sort %v", on)
	case 'p':
		h.savePreset()
	}
	return true
}

// surfacePt converts a cell position to canvas pixels.
func surfacePt(x, y int) vector.Pt { return vector.Pt{X: float64(x), Y: float64(2 * y)} }
