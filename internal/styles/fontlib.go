/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
// It does not support named instances or variations beyond the weight and
// italic flags; the filename decides those when scanning a directory.

type FontLibrary struct {
	fonts map[fontKey]*opentype.Font
	paths map[fontKey]string
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[fontKey]*opentype.Font), paths: make(map[fontKey]string)}
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
		fl.paths = make(map[fontKey]string)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	key := fontKey{family: strings.ToLower(family), weight: weight, italic: italic}
	fl.fonts[key] = f
	fl.paths[key] = path
	return nil
}

// LoadDir scans dir for .ttf and .otf files and loads each one, deriving
// family, weight and italic from the filename ("arial-bold-italic.ttf"
// becomes family arial, weight 700, italic). Unparseable font files are
// skipped so one broken file does not block the rest. A missing directory
// is not an error.
func (fl *FontLibrary) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		family, weight, italic := parseFontName(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		_ = fl.LoadTTF(family, weight, italic, filepath.Join(dir, e.Name()))
	}
	return nil
}

// Families lists the loaded family names sorted lexicographically.
func (fl *FontLibrary) Families() []string {
	if fl == nil || fl.fonts == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// parseFontName splits a filename stem such as "arial-bold" or
// "OpenSans_Italic" into family, weight and italic.
func parseFontName(stem string) (family string, weight int, italic bool) {
	weight = 400
	norm := strings.ToLower(stem)
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	parts := strings.Split(norm, "-")
	var kept []string
	for _, p := range parts {
		switch p {
		case "bold", "heavy", "black":
			weight = 700
		case "light", "thin":
			weight = 300
		case "italic", "oblique":
			italic = true
		case "regular", "normal", "":
		default:
			kept = append(kept, p)
		}
	}
	family = strings.Join(kept, "-")
	if family == "" {
		family = norm
	}
	return family, weight, italic
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if key, ok := fl.findKey(spec); ok {
		return fl.fonts[key]
	}
	return nil
}

// PathFor returns the file the resolved font was loaded from, or "" when the
// spec cannot be resolved to a loaded file.
func (fl *FontLibrary) PathFor(spec FontSpec) string {
	if key, ok := fl.findKey(spec); ok {
		return fl.paths[key]
	}
	return ""
}

func (fl *FontLibrary) findKey(spec FontSpec) (fontKey, bool) {
	if fl == nil || fl.fonts == nil {
		return fontKey{}, false
	}
	fam := strings.ToLower(spec.Family)
	exact := fontKey{family: fam, weight: spec.Weight, italic: spec.Italic}
	if _, ok := fl.fonts[exact]; ok {
		return exact, true
	}
	// Same family, matching italic, any weight.
	for k := range fl.fonts {
		if k.family == fam && k.italic == spec.Italic {
			return k, true
		}
	}
	// Same family, anything.
	for k := range fl.fonts {
		if k.family == fam {
			return k, true
		}
	}
	// Common substitutes when the named family is absent.
	for _, alt := range []string{"arial", "calibri", "segoeui", "dejavusans"} {
		if alt == fam {
			continue
		}
		for k := range fl.fonts {
			if k.family == alt {
				return k, true
			}
		}
	}
	return fontKey{}, false
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another
// Provider. It uses kerning as provided by opentype.Face and font.Drawer.

type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}

	if p.Lib != nil {
		if f := p.Lib.find(spec); f != nil {
			face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
			if err == nil {
				m := face.Metrics()
				return face, Metrics{
					Ascent:  float32(m.Ascent.Round()),
					Descent: float32(m.Descent.Round()),
					LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
				}
			}
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
