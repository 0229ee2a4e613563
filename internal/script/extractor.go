/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// Extract scans a document for [[kind: value, attr: value, ...]] directives.
// Supported syntax:
//
//   - Kinds: video_duration, imagepath, videopath, audiopath, sfxpath, text.
//     The kind's own value follows the first colon; commas inside it are kept
//     as long as they precede the first attribute.
//
//   - Attributes: timestamp, duration (seconds or "loop"), channel, opacity,
//     volume, position (named anchor or "(x,y)"), style, transition, color,
//     fontsize. Each kind accepts a fixed subset; anything else is rejected.
//
//   - Directives open and close on one line. An opener without "]]" on the
//     same line fails extraction.
//
// Extraction is fail-fast: the first invalid directive aborts the document.
// Prose outside directives becomes the narration script with whitespace
// collapsed.
func Extract(input string) (Extraction, error) {
	var ex Extraction
	var narration strings.Builder
	offset := 0
	sawGlobal := false

	lines := strings.Split(input, "\n")
	for li, rawLine := range lines {
		lineNo := li + 1
		line := strings.TrimSuffix(rawLine, "\r")
		rest := line
		consumed := 0 // bytes of line already scanned
		for {
			openIdx := strings.Index(rest, "[[")
			if openIdx < 0 {
				narration.WriteString(rest)
				break
			}
			narration.WriteString(rest[:openIdx])
			span := domain.Span{
				Offset: offset + consumed + openIdx,
				Line:   lineNo,
				Column: consumed + openIdx + 1,
			}
			closeIdx := strings.Index(rest[openIdx+2:], "]]")
			if closeIdx < 0 {
				span.Length = len(rest) - openIdx
				return Extraction{}, &domain.MalformedMarkerError{Span: span, Reason: "unterminated directive"}
			}
			span.Length = closeIdx + 4
			inner := rest[openIdx+2 : openIdx+2+closeIdx]
			m, err := parseDirective(inner, span, len(ex.Markers), &sawGlobal)
			if err != nil {
				return Extraction{}, err
			}
			ex.Markers = append(ex.Markers, m)
			advance := openIdx + 2 + closeIdx + 2
			consumed += advance
			rest = rest[advance:]
		}
		narration.WriteByte('\n')
		offset += len(rawLine) + 1
	}

	ex.Narration = strings.Join(strings.Fields(narration.String()), " ")
	return ex, nil
}

var kinds = map[string]domain.MarkerKind{
	"video_duration": domain.KindVideoDuration,
	"imagepath":      domain.KindImage,
	"videopath":      domain.KindVideo,
	"audiopath":      domain.KindAudio,
	"sfxpath":        domain.KindSFX,
	"text":           domain.KindText,
}

var attrNames = map[string]struct{}{
	"timestamp":  {},
	"duration":   {},
	"channel":    {},
	"opacity":    {},
	"volume":     {},
	"position":   {},
	"style":      {},
	"transition": {},
	"color":      {},
	"fontsize":   {},
}

// legalAttrs closes each kind's attribute set. A name missing here is
// rejected even though attrNames knows it.
var legalAttrs = map[domain.MarkerKind]map[string]bool{
	domain.KindImage: {"timestamp": true, "duration": true, "channel": true, "opacity": true, "position": true, "transition": true},
	domain.KindVideo: {"timestamp": true, "duration": true, "channel": true, "opacity": true, "volume": true, "position": true, "transition": true},
	domain.KindAudio: {"timestamp": true, "duration": true, "channel": true, "volume": true},
	domain.KindSFX:   {"timestamp": true, "duration": true, "channel": true, "volume": true},
	domain.KindText:  {"timestamp": true, "duration": true, "channel": true, "opacity": true, "position": true, "style": true, "color": true, "fontsize": true},
}

func parseDirective(inner string, span domain.Span, id int, sawGlobal *bool) (domain.Marker, error) {
	parts := splitArgs(inner)
	head := parts[0]
	ci := strings.Index(head, ":")
	if ci < 0 {
		return domain.Marker{}, &domain.MalformedMarkerError{Span: span, Reason: "missing ':' after directive kind"}
	}
	kindTok := strings.ToLower(strings.TrimSpace(head[:ci]))
	value := strings.TrimSpace(head[ci+1:])
	kind, ok := kinds[kindTok]
	if !ok {
		return domain.Marker{}, &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("unknown directive kind %q", kindTok)}
	}
	if value == "" {
		return domain.Marker{}, &domain.MalformedMarkerError{Span: span, Reason: kindTok + " needs a value"}
	}

	if kind == domain.KindVideoDuration {
		if len(parts) > 1 {
			return domain.Marker{}, &domain.UnsupportedAttributeError{Span: span, Kind: kind, Attr: firstKey(parts[1])}
		}
		if *sawGlobal {
			return domain.Marker{}, &domain.MalformedMarkerError{Span: span, Reason: "duplicate video_duration directive"}
		}
		secs, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
			return domain.Marker{}, &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("video_duration needs a positive number of seconds, got %q", value)}
		}
		*sawGlobal = true
		return domain.Marker{ID: id, Kind: kind, Value: value, Span: span, Attrs: domain.GlobalAttrs{}}, nil
	}

	var bag attrBag
	seenAttr := false
	for _, part := range parts[1:] {
		ci := strings.Index(part, ":")
		if ci < 0 {
			if seenAttr {
				return domain.Marker{}, &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("expected attribute, got %q", strings.TrimSpace(part))}
			}
			// comma inside the directive's own value
			value += "," + part
			continue
		}
		key := strings.ToLower(strings.TrimSpace(part[:ci]))
		raw := strings.TrimSpace(part[ci+1:])
		if _, known := attrNames[key]; !known {
			return domain.Marker{}, &domain.UnsupportedAttributeError{Span: span, Kind: kind, Attr: key}
		}
		if !legalAttrs[kind][key] {
			return domain.Marker{}, &domain.UnsupportedAttributeError{Span: span, Kind: kind, Attr: key}
		}
		seenAttr = true
		if err := bag.set(key, raw, span); err != nil {
			return domain.Marker{}, err
		}
	}
	value = strings.TrimSpace(value)

	return domain.Marker{ID: id, Kind: kind, Value: value, Span: span, Attrs: bag.toAttrs(kind)}, nil
}

// splitArgs splits on commas outside parentheses, so position:(640,360) and
// rgb(255,0,0) survive intact.
func splitArgs(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func firstKey(part string) string {
	if i := strings.Index(part, ":"); i >= 0 {
		return strings.ToLower(strings.TrimSpace(part[:i]))
	}
	return strings.TrimSpace(part)
}

// attrBag accumulates attribute values before they are folded into the
// kind's closed variant.
type attrBag struct {
	ts         *float64
	dur        *domain.Duration
	channel    int
	opacity    *float64
	volume     *float64
	pos        *domain.Position
	style      string
	color      *domain.Color
	fontSize   float64
	transition domain.Transition
}

func (b *attrBag) set(key, raw string, span domain.Span) error {
	switch key {
	case "timestamp":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("timestamp %q is not a number", raw)}
		}
		if v < 0 {
			return &domain.InvalidTimestampError{Span: span, Timestamp: v}
		}
		b.ts = &v
	case "duration":
		if strings.EqualFold(raw, "loop") {
			b.dur = &domain.Duration{Loop: true}
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("duration %q is neither a number nor \"loop\"", raw)}
		}
		if v <= 0 {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("duration must be positive, got %q", raw)}
		}
		b.dur = &domain.Duration{Seconds: v}
	case "channel":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("channel %q is not an integer", raw)}
		}
		if n < 0 {
			return &domain.InvalidChannelError{Span: span, Channel: n}
		}
		b.channel = n
	case "opacity":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("opacity %q is not a number", raw)}
		}
		v = clamp01(v)
		b.opacity = &v
	case "volume":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("volume %q is not a number", raw)}
		}
		v = clamp01(v)
		b.volume = &v
	case "position":
		p, ok := parsePosition(raw)
		if !ok {
			return &domain.InvalidPositionError{Span: span, Value: raw}
		}
		b.pos = &p
	case "style":
		b.style = strings.ToLower(raw)
	case "transition":
		switch strings.ToLower(raw) {
		case "none":
			b.transition = domain.TransitionNone
		case "fade":
			b.transition = domain.TransitionFade
		case "crossfade":
			b.transition = domain.TransitionCrossfade
		default:
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("unknown transition %q", raw)}
		}
	case "color":
		c, ok := domain.ParseColor(raw)
		if !ok {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("invalid color %q", raw)}
		}
		b.color = &c
	case "fontsize":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || v <= 0 {
			return &domain.MalformedMarkerError{Span: span, Reason: fmt.Sprintf("fontsize must be a positive number, got %q", raw)}
		}
		b.fontSize = v
	}
	return nil
}

func (b attrBag) toAttrs(kind domain.MarkerKind) domain.Attrs {
	switch kind {
	case domain.KindImage:
		return domain.ImageAttrs{Timestamp: b.ts, Duration: b.dur, Channel: b.channel, Opacity: b.opacity, Position: b.pos, Transition: b.transition}
	case domain.KindVideo:
		return domain.VideoAttrs{Timestamp: b.ts, Duration: b.dur, Channel: b.channel, Opacity: b.opacity, Volume: b.volume, Position: b.pos, Transition: b.transition}
	case domain.KindAudio:
		return domain.AudioAttrs{Timestamp: b.ts, Duration: b.dur, Channel: b.channel, Volume: b.volume}
	case domain.KindSFX:
		return domain.SFXAttrs{Timestamp: b.ts, Duration: b.dur, Channel: b.channel, Volume: b.volume}
	case domain.KindText:
		return domain.TextAttrs{Timestamp: b.ts, Duration: b.dur, Channel: b.channel, Opacity: b.opacity, Position: b.pos, Style: b.style, Color: b.color, FontSize: b.fontSize}
	}
	return domain.GlobalAttrs{}
}

func parsePosition(raw string) (domain.Position, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "center", "top", "bottom", "left", "right":
		return domain.Position{Name: domain.PositionName(s)}, true
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		fields := strings.Split(s[1:len(s)-1], ",")
		if len(fields) == 2 {
			x, err1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
			y, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
			if err1 == nil && err2 == nil {
				return domain.Position{X: x, Y: y, Absolute: true}, true
			}
		}
	}
	return domain.Position{}, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
