/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
	"github.com/JaYani55/TextToSimpleVid/internal/tts"
)

// srtWordsPerCue is the fallback grouping when narration carries no
// word-level timing from the synthesizer.
const srtWordsPerCue = 8

// RenderSRT formats narration cues as an SRT subtitle document. When the
// narration has no segments, cues are derived from the script by evenly
// spreading 8-word groups across the spoken duration.
func RenderSRT(narration *domain.Narration) ([]byte, error) {
	if narration == nil {
		return nil, fmt.Errorf("plan has no narration")
	}
	segments := narration.Segments
	if len(segments) == 0 {
		if strings.TrimSpace(narration.Script) == "" || narration.Duration <= 0 {
			return nil, fmt.Errorf("narration has neither segments nor a timed script")
		}
		segments = tts.CueSegments(narration.Script, narration.Duration, srtWordsPerCue)
	}
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatSRTTime(seg.Start), formatSRTTime(seg.End), strings.TrimSpace(seg.Text))
	}
	return []byte(b.String()), nil
}

// WriteSRT writes the narration cues to outPath as SRT.
func WriteSRT(narration *domain.Narration, outPath string) error {
	data, err := RenderSRT(narration)
	if err != nil {
		return err
	}
	return atomicWrite(outPath, data)
}

// formatSRTTime renders seconds as the SRT timestamp form HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
