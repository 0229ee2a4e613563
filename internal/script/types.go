/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// An annotated document interleaves prose with [[kind: value, attr: value]]
// directives. Extraction separates the two: directives become markers in
// document order, the remaining prose becomes the narration script.

import (
	"strconv"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// Extraction is the result of scanning a document.
type Extraction struct {
	Markers   []domain.Marker
	Narration string
}

// HasDirectives reports whether any directive was found.
func (e Extraction) HasDirectives() bool { return len(e.Markers) > 0 }

// GlobalDuration returns the value of the document's video_duration
// directive, if present. The extractor has already validated it.
func (e Extraction) GlobalDuration() (float64, bool) {
	for _, m := range e.Markers {
		if m.Kind == domain.KindVideoDuration {
			v, err := strconv.ParseFloat(strings.TrimSpace(m.Value), 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}
