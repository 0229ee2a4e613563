/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package media locates and inspects the media files a document references:
// path resolution against library roots, per-kind extension checks, ffprobe
// duration probing, and a per-library probe cache.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// allowedExts lists the file extensions accepted per directive kind.
var allowedExts = map[domain.MarkerKind]map[string]bool{
	domain.KindImage: {".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".gif": true},
	domain.KindVideo: {".mp4": true, ".avi": true, ".mov": true, ".mkv": true},
	domain.KindAudio: {".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true},
	domain.KindSFX:   {".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true},
}

// AllowedExt reports whether the path's extension is acceptable for the kind.
// Kinds without an allow-list (text, narration) accept anything.
func AllowedExt(kind domain.MarkerKind, path string) bool {
	exts, ok := allowedExts[kind]
	if !ok {
		return true
	}
	return exts[strings.ToLower(filepath.Ext(path))]
}

// extList renders the allow-list for error messages, sorted for stable output.
func extList(kind domain.MarkerKind) string {
	exts := make([]string, 0, len(allowedExts[kind]))
	for e := range allowedExts[kind] {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return strings.Join(exts, " ")
}

// Library resolves document-relative media references against a list of
// root directories, first match wins.
type Library struct {
	Roots []string
}

func NewLibrary(roots ...string) *Library {
	return &Library{Roots: roots}
}

// Resolve turns a media reference into an absolute path of an existing file.
// Absolute references are checked as-is; relative ones are tried against each
// root in order.
func (l *Library) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty media path")
	}
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	for _, root := range l.Roots {
		cand := filepath.Join(root, path)
		if _, err := os.Stat(cand); err == nil {
			return cand, nil
		}
	}
	return "", fmt.Errorf("%s not found in any library root (%s)", path, strings.Join(l.Roots, ", "))
}

// Validate checks the extension for the kind, then resolves the path.
func (l *Library) Validate(kind domain.MarkerKind, path string) (string, error) {
	if !AllowedExt(kind, path) {
		return "", fmt.Errorf("%s is not a supported %s file (want one of: %s)", path, kind, extList(kind))
	}
	return l.Resolve(path)
}
