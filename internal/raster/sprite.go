/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package raster

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrNoSprite means no marker image is configured; callers draw the
// fallback dot.
var ErrNoSprite = errors.New("no sprite configured")

// LoadSprite decodes the image at path and, when px > 0, resamples it to a
// px x px square.
func LoadSprite(path string, px int) (image.Image, error) {
	if path == "" {
		return nil, ErrNoSprite
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sprite: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode sprite %s: %w", path, err)
	}
	if px > 0 {
		img = Resample(img, px)
	}
	return img, nil
}

// Resample scales img into a px x px RGBA image.
func Resample(img image.Image, px int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, px, px))
	draw.CatmullRom.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}

// SpriteResult carries the outcome of an asynchronous load.
type SpriteResult struct {
	Image image.Image
	Err   error
}

// LoadSpriteAsync loads the sprite on a goroutine so the frame loop never
// waits for it. The channel receives exactly one result.
func LoadSpriteAsync(path string, px int) <-chan SpriteResult {
	ch := make(chan SpriteResult, 1)
	go func() {
		img, err := LoadSprite(path, px)
		ch <- SpriteResult{Image: img, Err: err}
	}()
	return ch
}
