/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package styles resolves the appearance of text overlays: builtin presets,
// user style files, font resolution and caption wrapping.
package styles

import "github.com/JaYani55/TextToSimpleVid/internal/domain"

// Style is a reusable text overlay preset combining a font spec with fill
// and stroke colors. Stroke nil means no outline.
type Style struct {
	Name        string
	Font        FontSpec
	Color       domain.Color
	Stroke      *domain.Color
	StrokeWidth float32
}

var (
	white  = domain.Color{R: 255, G: 255, B: 255, A: 255}
	black  = domain.Color{R: 0, G: 0, B: 0, A: 255}
	yellow = domain.Color{R: 255, G: 255, B: 0, A: 255}
)

var builtinStyles = map[string]Style{
	"title": {
		Name:        "title",
		Font:        FontSpec{Family: "arial", SizePt: 72, Weight: 700},
		Color:       white,
		Stroke:      &black,
		StrokeWidth: 3,
	},
	"subtitle": {
		Name:        "subtitle",
		Font:        FontSpec{Family: "arial", SizePt: 48, Weight: 400},
		Color:       white,
		Stroke:      &black,
		StrokeWidth: 2,
	},
	"caption": {
		Name:        "caption",
		Font:        FontSpec{Family: "arial", SizePt: 36, Weight: 400},
		Color:       yellow,
		Stroke:      &black,
		StrokeWidth: 1,
	},
	"heading": {
		Name:   "heading",
		Font:   FontSpec{Family: "arial", SizePt: 64, Weight: 700},
		Color:  white,
		Stroke: nil,
	},
	"default": {
		Name:        "default",
		Font:        FontSpec{Family: "arial", SizePt: 48, Weight: 400},
		Color:       white,
		Stroke:      &black,
		StrokeWidth: 2,
	},
}

// GetStyle returns a builtin preset by name. The second return value is
// false if the style is not found.
func GetStyle(name string) (Style, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists the names of the builtin styles in stable order.
func ListStyles() []string {
	return []string{"title", "subtitle", "caption", "heading", "default"}
}
