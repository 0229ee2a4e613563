/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package styles

import "sort"

// StyleSheet provides hierarchical resolution of Style presets.
// It supports two scopes:
//   - Global: app defaults loaded from the user styles directory
//   - Document: styles defined for the current script
//
// Resolution precedence is Document > Global > Builtin.
// Builtins are provided by styles.go (builtinStyles map).

type StyleSheet struct {
	Global   map[string]Style
	Document map[string]Style
}

// NewStyleSheet creates a stylesheet with empty scopes and builtin styles
// copied into Global for convenience.
func NewStyleSheet() *StyleSheet {
	ss := &StyleSheet{
		Global:   map[string]Style{},
		Document: map[string]Style{},
	}
	for _, name := range ListStyles() {
		if st, ok := GetStyle(name); ok {
			ss.Global[name] = st
		}
	}
	return ss
}

// WithGlobal returns a shallow copy with the provided app-level overrides merged.
func (s *StyleSheet) WithGlobal(over map[string]Style) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Global[k] = v
	}
	return cp
}

// WithDocument returns a shallow copy with the provided script-level overrides merged.
func (s *StyleSheet) WithDocument(over map[string]Style) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Document[k] = v
	}
	return cp
}

// Resolve returns the effective Style by name using precedence
// Document > Global > Builtin. An empty name resolves to "default".
// The second return value is false if the name cannot be resolved at any level.
func (s *StyleSheet) Resolve(name string) (Style, bool) {
	if name == "" {
		name = "default"
	}
	if s == nil {
		return GetStyle(name)
	}
	if st, ok := s.Document[name]; ok {
		return st, true
	}
	if st, ok := s.Global[name]; ok {
		return st, true
	}
	return GetStyle(name)
}

// Names returns the set of known style names considering all scopes.
// Order is deterministic: builtin ListStyles order, then any additional
// names sorted lexicographically.
func (s *StyleSheet) Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range ListStyles() {
		if _, ok := s.Resolve(name); ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	var extra []string
	collect := func(m map[string]Style) {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	collect(s.Global)
	collect(s.Document)
	sort.Strings(extra)
	return append(out, extra...)
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := &StyleSheet{Global: map[string]Style{}, Document: map[string]Style{}}
	for k, v := range s.Global {
		cp.Global[k] = v
	}
	for k, v := range s.Document {
		cp.Document[k] = v
	}
	return cp
}
