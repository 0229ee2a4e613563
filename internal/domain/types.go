/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model: directives extracted from an
// annotated document, and the resolved composition plan handed to exporters
// and the renderer. Markers are in-memory compile artifacts; Placement,
// Track and Plan form the serialized plan format.

import "fmt"

// MarkerKind identifies a directive kind.
type MarkerKind string

const (
	KindVideoDuration MarkerKind = "video_duration"
	KindImage         MarkerKind = "imagepath"
	KindVideo         MarkerKind = "videopath"
	KindAudio         MarkerKind = "audiopath"
	KindSFX           MarkerKind = "sfxpath"
	KindText          MarkerKind = "text"
	// KindNarration never appears in documents; the synthesized voice-over
	// track uses it in resolved plans.
	KindNarration MarkerKind = "narration"
)

// Placeable reports whether the kind produces a timeline placement.
func (k MarkerKind) Placeable() bool { return k != KindVideoDuration && k != "" }

// Visual reports whether the kind occupies the visual stack.
func (k MarkerKind) Visual() bool {
	return k == KindImage || k == KindVideo || k == KindText
}

// Audible reports whether the kind contributes to the audio mix.
func (k MarkerKind) Audible() bool {
	return k == KindAudio || k == KindSFX || k == KindNarration
}

// Span locates a directive in the source document. Offset is the byte offset
// of the opening delimiter; Line and Column are 1-based.
type Span struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
	Length int `json:"length"`
}

func (s Span) String() string { return fmt.Sprintf("line %d:%d", s.Line, s.Column) }

// Duration is a directive duration: a span in seconds, or the loop sentinel
// meaning "fill until the end of the timeline".
type Duration struct {
	Loop    bool    `json:"loop,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
}

// PositionName is a named screen anchor.
type PositionName string

const (
	PositionCenter PositionName = "center"
	PositionTop    PositionName = "top"
	PositionBottom PositionName = "bottom"
	PositionLeft   PositionName = "left"
	PositionRight  PositionName = "right"
)

// Position is either a named anchor or an absolute coordinate pair in pixels.
type Position struct {
	Name     PositionName `json:"name,omitempty"`
	X        float64      `json:"x,omitempty"`
	Y        float64      `json:"y,omitempty"`
	Absolute bool         `json:"absolute,omitempty"`
}

// Transition names the enter effect of a visual placement.
type Transition string

const (
	TransitionNone      Transition = "none"
	TransitionFade      Transition = "fade"
	TransitionCrossfade Transition = "crossfade"
)

// Color is an RGBA color used by text placements.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Marker is one extracted directive in document order. ID is the extraction
// index and is stable across runs. Attrs holds the kind's closed attribute
// set; the extractor rejects unknown names and names legal only on other
// kinds, so downstream code can switch on the concrete type without
// re-validating.
type Marker struct {
	ID    int
	Kind  MarkerKind
	Value string
	Span  Span
	Attrs Attrs
}

// Attrs is the closed, per-kind attribute set of a directive.
type Attrs interface{ isAttrs() }

// GlobalAttrs: video_duration carries no attributes.
type GlobalAttrs struct{}

// ImageAttrs is the attribute set accepted by imagepath directives.
type ImageAttrs struct {
	Timestamp  *float64
	Duration   *Duration
	Channel    int
	Opacity    *float64
	Position   *Position
	Transition Transition
}

// VideoAttrs is the attribute set accepted by videopath directives.
type VideoAttrs struct {
	Timestamp  *float64
	Duration   *Duration
	Channel    int
	Opacity    *float64
	Volume     *float64
	Position   *Position
	Transition Transition
}

// AudioAttrs is the attribute set accepted by audiopath directives.
type AudioAttrs struct {
	Timestamp *float64
	Duration  *Duration
	Channel   int
	Volume    *float64
}

// SFXAttrs is the attribute set accepted by sfxpath directives.
type SFXAttrs struct {
	Timestamp *float64
	Duration  *Duration
	Channel   int
	Volume    *float64
}

// TextAttrs is the attribute set accepted by text directives.
type TextAttrs struct {
	Timestamp *float64
	Duration  *Duration
	Channel   int
	Opacity   *float64
	Position  *Position
	Style     string
	Color     *Color
	FontSize  float64
}

func (GlobalAttrs) isAttrs() {}
func (ImageAttrs) isAttrs()  {}
func (VideoAttrs) isAttrs()  {}
func (AudioAttrs) isAttrs()  {}
func (SFXAttrs) isAttrs()    {}
func (TextAttrs) isAttrs()   {}

// Timing returns the shared scheduling fields of a placeable marker.
// For video_duration markers all results are zero values.
func (m Marker) Timing() (ts *float64, dur *Duration, channel int) {
	switch a := m.Attrs.(type) {
	case ImageAttrs:
		return a.Timestamp, a.Duration, a.Channel
	case VideoAttrs:
		return a.Timestamp, a.Duration, a.Channel
	case AudioAttrs:
		return a.Timestamp, a.Duration, a.Channel
	case SFXAttrs:
		return a.Timestamp, a.Duration, a.Channel
	case TextAttrs:
		return a.Timestamp, a.Duration, a.Channel
	}
	return nil, nil, 0
}

// Placement is a fully resolved directive on the timeline. Start and End are
// seconds from t=0 and always satisfy 0 <= Start < End <= total duration.
type Placement struct {
	ID         int         `json:"id"`
	Kind       MarkerKind  `json:"kind"`
	Source     string      `json:"source,omitempty"` // media path; empty for text
	Text       string      `json:"text,omitempty"`   // literal for text placements
	Start      float64     `json:"start"`
	End        float64     `json:"end"`
	Channel    int         `json:"channel"`
	Loop       bool        `json:"loop,omitempty"`
	Opacity    float64     `json:"opacity"`
	Volume     float64     `json:"volume"`
	Position   *Position   `json:"position,omitempty"`
	Style      string      `json:"style,omitempty"`
	Color      *Color      `json:"color,omitempty"`
	FontSize   float64     `json:"fontSize,omitempty"`
	Transition Transition  `json:"transition,omitempty"`
	Fade       *FadeWindow `json:"fade,omitempty"` // set by the plan builder
}

// FadeWindow is the transition span attached to the head of a placement.
// It always lies inside the timeline and never extends the total duration.
type FadeWindow struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Kind  Transition `json:"kind"`
}

// Track groups placements of one kind on one channel. Visual tracks carry a
// z-order rank (higher renders above); audio tracks are mixed and have none.
type Track struct {
	Kind       MarkerKind  `json:"kind"`
	Channel    int         `json:"channel"`
	ZOrder     int         `json:"zOrder,omitempty"`
	Placements []Placement `json:"placements"`
}

// Narration is the synthesized voice-over underlying the timeline.
type Narration struct {
	Script    string    `json:"script"`
	AudioPath string    `json:"audioPath,omitempty"`
	Duration  float64   `json:"duration"`
	Segments  []Segment `json:"segments,omitempty"`
}

// Segment aligns a run of narration text with its spoken span.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Plan is the compilation output handed to exporters and the renderer.
// It is immutable once built; consumers that need to mutate must Clone first.
type Plan struct {
	ID            string     `json:"id"`
	TotalDuration float64    `json:"totalDuration"`
	Narration     *Narration `json:"narration,omitempty"`
	Tracks        []Track    `json:"tracks"`
}

// VisualTracks returns the tracks on the visual stack in z-order.
func (p *Plan) VisualTracks() []Track {
	var out []Track
	for _, t := range p.Tracks {
		if t.Kind.Visual() {
			out = append(out, t)
		}
	}
	return out
}

// AudioTracks returns the tracks contributing to the audio mix.
func (p *Plan) AudioTracks() []Track {
	var out []Track
	for _, t := range p.Tracks {
		if t.Kind.Audible() || t.Kind == KindVideo {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Narration != nil {
		n := *p.Narration
		n.Segments = append([]Segment(nil), p.Narration.Segments...)
		cp.Narration = &n
	}
	cp.Tracks = make([]Track, len(p.Tracks))
	for i, t := range p.Tracks {
		nt := t
		nt.Placements = make([]Placement, len(t.Placements))
		for j, pl := range t.Placements {
			np := pl
			if pl.Position != nil {
				pos := *pl.Position
				np.Position = &pos
			}
			if pl.Color != nil {
				c := *pl.Color
				np.Color = &c
			}
			if pl.Fade != nil {
				f := *pl.Fade
				np.Fade = &f
			}
			nt.Placements[j] = np
		}
		cp.Tracks[i] = nt
	}
	return &cp
}
