/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

// upperHalf draws the top pixel as foreground and the bottom one as background.
const upperHalf = '▀'

// Blit copies img onto the first rows of screen, two pixel rows per cell.
func Blit(screen tcell.Screen, img *image.RGBA, rows int) {
	b := img.Bounds()
	w, _ := screen.Size()
	if b.Dx() < w {
		w = b.Dx()
	}
	for cy := 0; cy < rows; cy++ {
		top := b.Min.Y + 2*cy
		if top >= b.Max.Y {
			break
		}
		for cx := 0; cx < w; cx++ {
			x := b.Min.X + cx
			fg := cellColor(img, x, top)
			bg := fg
			if top+1 < b.Max.Y {
				bg = cellColor(img, x, top+1)
			}
			screen.SetContent(cx, cy, upperHalf, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func cellColor(img *image.RGBA, x, y int) tcell.Color {
	c := img.RGBAAt(x, y)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// drawText writes s at (x, y), clipped to the screen width.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	w, h := screen.Size()
	if y < 0 || y >= h {
		return
	}
	for _, r := range s {
		if x >= w {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
}
