/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package styles

// Text measurement and line breaking for caption overlays. All measurement
// goes through deterministic interfaces so tests can run without any font
// files installed.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name, lowercased
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Line is a single wrapped caption line with its measured width.
type Line struct {
	Text  string
	Width float32
}

// TextBox is the result of wrapping a caption into a box width.
type TextBox struct {
	Lines   []Line
	Width   float32
	Height  float32
	Metrics Metrics
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests and
// as the last-resort fallback when no font file can be resolved.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// WordWrapLayouter breaks caption text on spaces; it does not perform
// shaping or hyphenation. Newlines in the text force a line break.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

// Wrap lays the text out into lines no wider than maxWidth, measured with
// the face resolved for spec. maxWidth <= 0 disables wrapping and only
// honors explicit newlines. A word wider than maxWidth gets its own line.
func (l *WordWrapLayouter) Wrap(text string, spec FontSpec, maxWidth float32) TextBox {
	provider := l.Provider
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	drawer := &font.Drawer{Face: face}
	spaceW := advance(drawer, " ")

	box := TextBox{Metrics: met}
	push := func(line Line) {
		box.Lines = append(box.Lines, line)
		if line.Width > box.Width {
			box.Width = line.Width
		}
		box.Height += met.Ascent + met.Descent + met.LineGap
	}
	for _, hard := range strings.Split(text, "\n") {
		words := strings.Fields(hard)
		if len(words) == 0 {
			push(Line{})
			continue
		}
		cur := Line{}
		for _, word := range words {
			w := advance(drawer, word)
			next := cur.Width + w
			if cur.Text != "" {
				next += spaceW
			}
			if cur.Text != "" && maxWidth > 0 && next > maxWidth {
				push(cur)
				cur = Line{}
			}
			if cur.Text != "" {
				cur.Text += " "
				cur.Width += spaceW
			}
			cur.Text += word
			cur.Width += w
		}
		push(cur)
	}
	if len(box.Lines) == 0 {
		push(Line{})
	}
	return box
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s) >> 6) // fixed.Int26_6 to px
}

// Measure returns the single-line width and height of text under spec.
func Measure(provider Provider, text string, spec FontSpec) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	return advance(d, text), met.Ascent + met.Descent
}
