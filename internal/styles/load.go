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

	"gopkg.in/yaml.v3"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// styleDoc is the on-disk shape of a user style file.
type styleDoc struct {
	Styles []styleEntry `yaml:"styles"`
}

type styleEntry struct {
	Name        string  `yaml:"name"`
	Family      string  `yaml:"family"`
	Size        float32 `yaml:"size"`
	Bold        bool    `yaml:"bold"`
	Italic      bool    `yaml:"italic"`
	Color       string  `yaml:"color"`
	Stroke      string  `yaml:"stroke"`
	StrokeWidth float32 `yaml:"strokeWidth"`
}

// LoadFile parses one YAML style file into Style presets. Names are
// lowercased so lookups match the normalized style attribute in directives.
func LoadFile(path string) ([]Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc styleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	out := make([]Style, 0, len(doc.Styles))
	for _, e := range doc.Styles {
		st, err := e.toStyle()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, st)
	}
	return out, nil
}

// LoadDir loads every *.yaml and *.yml file in dir and merges them into a
// single name-to-style map. Files are read in lexical order, so presets in
// later files override earlier ones. A missing directory yields an empty map.
func LoadDir(dir string) (map[string]Style, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Style{}, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	out := map[string]Style{}
	for _, f := range files {
		loaded, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, st := range loaded {
			out[st.Name] = st
		}
	}
	return out, nil
}

// LoadSheet builds a stylesheet with builtins plus the user presets from dir.
func LoadSheet(dir string) (*StyleSheet, error) {
	user, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return NewStyleSheet().WithGlobal(user), nil
}

func (e styleEntry) toStyle() (Style, error) {
	name := strings.ToLower(strings.TrimSpace(e.Name))
	if name == "" {
		return Style{}, fmt.Errorf("style entry without a name")
	}
	st := Style{
		Name: name,
		Font: FontSpec{Family: strings.ToLower(strings.TrimSpace(e.Family)), SizePt: e.Size, Weight: 400, Italic: e.Italic},
	}
	if st.Font.Family == "" {
		st.Font.Family = "arial"
	}
	if st.Font.SizePt <= 0 {
		st.Font.SizePt = 48
	}
	if e.Bold {
		st.Font.Weight = 700
	}
	st.Color = domain.Color{R: 255, G: 255, B: 255, A: 255}
	if e.Color != "" {
		c, ok := domain.ParseColor(e.Color)
		if !ok {
			return Style{}, fmt.Errorf("style %q: invalid color %q", name, e.Color)
		}
		st.Color = c
	}
	if e.Stroke != "" {
		c, ok := domain.ParseColor(e.Stroke)
		if !ok {
			return Style{}, fmt.Errorf("style %q: invalid stroke color %q", name, e.Stroke)
		}
		st.Stroke = &c
		st.StrokeWidth = e.StrokeWidth
		if st.StrokeWidth <= 0 {
			st.StrokeWidth = 2
		}
	}
	return st, nil
}
