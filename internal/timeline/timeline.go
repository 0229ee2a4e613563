/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package timeline turns extracted markers into resolved placements on a
// fixed-length timeline. The two passes are separate on purpose: total
// duration must be known before loop durations can resolve, so
// BaselineDuration runs first and ResolvePlacements second.
package timeline

import (
	"strconv"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// DefaultVisualSeconds is the on-screen time of an image, video or text
// placement that names no duration.
const DefaultVisualSeconds = 3.0

// Prober supplies intrinsic media durations for audio and sfx markers that
// carry no explicit duration. Implementations typically consult ffprobe
// behind a cache. A nil Prober, or a probe failure, lets such placements run
// to the end of the timeline.
type Prober interface {
	MediaDuration(path string) (float64, error)
}

// BaselineDuration computes the timeline's total duration before placement
// resolution. Precedence: an explicit video_duration directive wins; else the
// longer of the narration duration and the latest explicit non-loop marker
// end; if neither yields a positive duration the document is unresolvable.
// Loop durations and intrinsic media lengths never contribute here.
func BaselineDuration(markers []domain.Marker, narrationSeconds float64) (float64, error) {
	for _, m := range markers {
		if m.Kind == domain.KindVideoDuration {
			v, err := strconv.ParseFloat(strings.TrimSpace(m.Value), 64)
			if err == nil && v > 0 {
				return v, nil
			}
		}
	}

	starts, err := assignStarts(markers)
	if err != nil {
		return 0, err
	}
	latest := 0.0
	for _, m := range markers {
		if !m.Kind.Placeable() {
			continue
		}
		_, dur, _ := m.Timing()
		if dur == nil || dur.Loop {
			continue
		}
		if end := starts[m.ID] + dur.Seconds; end > latest {
			latest = end
		}
	}
	if narrationSeconds > latest {
		latest = narrationSeconds
	}
	if latest <= 0 {
		return 0, &domain.UnresolvableDurationError{}
	}
	return latest, nil
}

// ResolvePlacements maps every placeable marker onto [0, total]. All returned
// placements satisfy 0 <= Start < End <= total: numeric durations clamp to
// the timeline end, loop durations fill from their start to the end, and a
// start at or past the end is an error rather than a silent drop.
func ResolvePlacements(markers []domain.Marker, total float64, prober Prober) ([]domain.Placement, error) {
	if total <= 0 {
		return nil, &domain.UnresolvableDurationError{}
	}
	starts, err := assignStarts(markers)
	if err != nil {
		return nil, err
	}

	var out []domain.Placement
	for _, m := range markers {
		if !m.Kind.Placeable() {
			continue
		}
		start := starts[m.ID]
		if start < 0 || start >= total {
			return nil, &domain.InvalidTimestampError{Span: m.Span, Timestamp: start, Total: total}
		}
		_, dur, channel := m.Timing()

		end := total
		loop := false
		switch {
		case dur != nil && dur.Loop:
			loop = true
		case dur != nil:
			end = start + dur.Seconds
			if end > total {
				end = total
			}
		case m.Kind.Visual():
			end = start + DefaultVisualSeconds
			if end > total {
				end = total
			}
		default:
			// audio/sfx without a duration plays once
			if prober != nil {
				if d, perr := prober.MediaDuration(m.Value); perr == nil && d > 0 {
					end = start + d
					if end > total {
						end = total
					}
				}
			}
		}

		out = append(out, buildPlacement(m, start, end, channel, loop))
	}
	return out, nil
}

func buildPlacement(m domain.Marker, start, end float64, channel int, loop bool) domain.Placement {
	p := domain.Placement{
		ID:      m.ID,
		Kind:    m.Kind,
		Start:   start,
		End:     end,
		Channel: channel,
		Loop:    loop,
		Opacity: 1,
		Volume:  1,
	}
	if m.Kind == domain.KindText {
		p.Text = m.Value
	} else {
		p.Source = m.Value
	}
	switch a := m.Attrs.(type) {
	case domain.ImageAttrs:
		if a.Opacity != nil {
			p.Opacity = *a.Opacity
		}
		p.Position = a.Position
		p.Transition = a.Transition
	case domain.VideoAttrs:
		if a.Opacity != nil {
			p.Opacity = *a.Opacity
		}
		if a.Volume != nil {
			p.Volume = *a.Volume
		}
		p.Position = a.Position
		p.Transition = a.Transition
	case domain.AudioAttrs:
		if a.Volume != nil {
			p.Volume = *a.Volume
		}
	case domain.SFXAttrs:
		if a.Volume != nil {
			p.Volume = *a.Volume
		}
	case domain.TextAttrs:
		if a.Opacity != nil {
			p.Opacity = *a.Opacity
		}
		p.Position = a.Position
		p.Style = a.Style
		p.Color = a.Color
		p.FontSize = a.FontSize
	}
	return p
}

// assignStarts resolves each placeable marker's start time. The first marker
// of a (kind, channel) pair may omit its timestamp and defaults to 0; a
// second omission on the same pair is ambiguous and fails.
func assignStarts(markers []domain.Marker) (map[int]float64, error) {
	type slot struct {
		kind    domain.MarkerKind
		channel int
	}
	defaulted := map[slot]bool{}
	out := make(map[int]float64, len(markers))
	for _, m := range markers {
		if !m.Kind.Placeable() {
			continue
		}
		ts, _, ch := m.Timing()
		if ts != nil {
			out[m.ID] = *ts
			continue
		}
		k := slot{m.Kind, ch}
		if defaulted[k] {
			return nil, &domain.MissingTimestampError{Span: m.Span, Kind: m.Kind, Channel: ch}
		}
		defaulted[k] = true
		out[m.ID] = 0
	}
	return out, nil
}
