/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// graph accumulates the filter graph for one plan. Video placements feed
// both the overlay stack and the audio mix from a single input node.
type graph struct {
	plan        *domain.Plan
	o           Options
	videoInputs map[int]*ffmpeg.Stream
}

func buildOutput(plan *domain.Plan, outPath string, opts Options) (*ffmpeg.Stream, error) {
	switch {
	case plan == nil:
		return nil, errors.New("nil plan")
	case plan.TotalDuration <= 0:
		return nil, errors.New("plan has no duration")
	case outPath == "":
		return nil, errors.New("output path is empty")
	}
	g := &graph{plan: plan, o: opts.withDefaults(), videoInputs: map[int]*ffmpeg.Stream{}}
	streams := []*ffmpeg.Stream{g.videoStack()}
	kw := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		"r":       g.o.FPS,
		"t":       num(plan.TotalDuration),
	}
	if audio := g.audioMix(); audio != nil {
		streams = append(streams, audio)
		kw["c:a"] = "aac"
		kw["b:a"] = "192k"
	}
	return ffmpeg.Output(streams, outPath, kw), nil
}

// videoStack builds the visual chain: a solid background canvas with every
// image, video and text placement applied bottom to top. Visual tracks come
// out of the plan already ordered by z-rank.
func (g *graph) videoStack() *ffmpeg.Stream {
	o := g.o
	backdrop := fmt.Sprintf("color=c=0x%02x%02x%02x:s=%dx%d:r=%d:d=%s",
		o.Background.R, o.Background.G, o.Background.B,
		o.Width, o.Height, o.FPS, num(g.plan.TotalDuration))
	base := ffmpeg.Input(backdrop, ffmpeg.KwArgs{"f": "lavfi"})
	for _, t := range g.plan.VisualTracks() {
		for _, p := range t.Placements {
			if p.Kind == domain.KindText {
				base = g.drawText(base, p)
			} else {
				base = g.overlay(base, p)
			}
		}
	}
	return base
}

// overlay scales a media clip, applies opacity and fade, shifts it to its
// start time and stacks it on the canvas, visible only during its window.
func (g *graph) overlay(base *ffmpeg.Stream, p domain.Placement) *ffmpeg.Stream {
	clip := g.visualClip(p)
	x, y := overlayPosition(p.Position)
	return ffmpeg.Filter([]*ffmpeg.Stream{base, clip}, "overlay", ffmpeg.Args{}, ffmpeg.KwArgs{
		"x":          x,
		"y":          y,
		"enable":     fmt.Sprintf("between(t,%s,%s)", num(p.Start), num(p.End)),
		"eof_action": "pass",
	})
}

func (g *graph) visualClip(p domain.Placement) *ffmpeg.Stream {
	dur := p.End - p.Start
	var clip *ffmpeg.Stream
	if p.Kind == domain.KindImage {
		clip = ffmpeg.Input(p.Source, ffmpeg.KwArgs{"loop": 1, "t": num(dur)})
	} else {
		kw := ffmpeg.KwArgs{}
		if p.Loop {
			kw["stream_loop"] = -1
		}
		in := ffmpeg.Input(p.Source, kw)
		g.videoInputs[p.ID] = in
		clip = in.Get("v").Filter("trim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": num(dur)})
	}
	clip = clip.Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:-2", g.scaledWidth())}).
		Filter("format", ffmpeg.Args{"rgba"})
	if p.Opacity < 1 {
		clip = clip.Filter("colorchannelmixer", ffmpeg.Args{}, ffmpeg.KwArgs{"aa": num(p.Opacity)})
	}
	if st, d, ok := fadeIn(p); ok {
		clip = clip.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{
			"t": "in", "st": num(st), "d": num(d), "alpha": 1,
		})
	}
	return clip.Filter("setpts", ffmpeg.Args{fmt.Sprintf("PTS-STARTPTS+%s/TB", num(p.Start))})
}

// drawText renders a text placement directly onto the canvas using its
// resolved style. Placement-level color and font size override the style.
func (g *graph) drawText(base *ffmpeg.Stream, p domain.Placement) *ffmpeg.Stream {
	st, _ := g.o.Sheet.Resolve(p.Style)
	size := float64(st.Font.SizePt)
	if p.FontSize > 0 {
		size = p.FontSize
	}
	col := st.Color
	if p.Color != nil {
		col = *p.Color
	}
	x, y := textPosition(p.Position)
	kw := ffmpeg.KwArgs{
		"text":      escapeText(p.Text),
		"fontsize":  num(size),
		"fontcolor": hexColor(col),
		"alpha":     textAlpha(p, col),
		"x":         x,
		"y":         y,
		"enable":    fmt.Sprintf("between(t,%s,%s)", num(p.Start), num(p.End)),
	}
	if path := g.o.Fonts.PathFor(st.Font); path != "" {
		kw["fontfile"] = path
	}
	if st.Stroke != nil && st.StrokeWidth > 0 {
		kw["borderw"] = num(float64(st.StrokeWidth))
		kw["bordercolor"] = hexColor(*st.Stroke)
	}
	return base.Filter("drawtext", ffmpeg.Args{}, kw)
}

// audioMix builds one chain per audible placement and mixes them, keeping
// the longest input. Per-category gains are multiplied with the placement
// volume; a zero product drops the leg entirely.
func (g *graph) audioMix() *ffmpeg.Stream {
	var legs []*ffmpeg.Stream
	for _, t := range g.plan.AudioTracks() {
		for _, p := range t.Placements {
			if leg := g.audioLeg(p); leg != nil {
				legs = append(legs, leg)
			}
		}
	}
	switch len(legs) {
	case 0:
		return nil
	case 1:
		return legs[0]
	}
	return ffmpeg.Filter(legs, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
		"inputs":             len(legs),
		"duration":           "longest",
		"dropout_transition": 0,
		"normalize":          0,
	})
}

func (g *graph) audioLeg(p domain.Placement) *ffmpeg.Stream {
	gain := g.gainFor(p)
	if gain <= 0 {
		return nil
	}
	var in *ffmpeg.Stream
	if p.Kind == domain.KindVideo {
		// Reuses the input node opened by the overlay stack, so the file
		// is read once for both picture and sound.
		in = g.videoInputs[p.ID]
		if in == nil {
			return nil
		}
	} else {
		if p.Source == "" {
			// Narration can be estimate-only with no synthesized file.
			return nil
		}
		in = ffmpeg.Input(p.Source)
	}
	a := in.Get("a")
	if p.Loop && p.Kind != domain.KindVideo {
		a = a.Filter("aloop", ffmpeg.Args{}, ffmpeg.KwArgs{"loop": -1, "size": 2000000000})
	}
	a = a.Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": num(p.End - p.Start)}).
		Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"}).
		Filter("volume", ffmpeg.Args{num(gain)})
	if p.Start > 0 {
		ms := int(math.Round(p.Start * 1000))
		a = a.Filter("adelay", ffmpeg.Args{fmt.Sprintf("%d|%d", ms, ms)})
	}
	return a
}

func (g *graph) gainFor(p domain.Placement) float64 {
	base := 1.0
	switch p.Kind {
	case domain.KindNarration:
		base = g.o.NarrationGain
	case domain.KindAudio:
		base = g.o.BackgroundGain
	case domain.KindSFX:
		base = g.o.SFXGain
	}
	return base * p.Volume
}

func (g *graph) scaledWidth() int {
	w := int(float64(g.o.Width) * overlayWidthRatio)
	return w - w%2
}

// fadeIn converts a placement's transition window into fade parameters on
// the clip's own clock. Windows may begin before the placement when they
// straddle a track boundary; the part before the clip exists is cut off.
func fadeIn(p domain.Placement) (start, dur float64, ok bool) {
	if p.Fade == nil {
		return 0, 0, false
	}
	lo := p.Fade.Start - p.Start
	if lo < 0 {
		lo = 0
	}
	hi := p.Fade.End - p.Start
	if hi <= lo {
		return 0, 0, false
	}
	return lo, hi - lo, true
}

// textAlpha folds the color alpha, the placement opacity and an optional
// fade-in ramp into a drawtext alpha expression.
func textAlpha(p domain.Placement, col domain.Color) string {
	a := float64(col.A) / 255 * p.Opacity
	if p.Fade == nil || p.Fade.End <= p.Fade.Start {
		return num(a)
	}
	f := p.Fade
	return fmt.Sprintf("if(lt(t,%s),0,if(lt(t,%s),%s*(t-%s)/%s,%s))",
		num(f.Start), num(f.End), num(a), num(f.Start), num(f.End-f.Start), num(a))
}

// overlayPosition maps a placement anchor onto overlay x/y expressions.
// In overlay terms W/H are the canvas and w/h the overlaid clip.
func overlayPosition(pos *domain.Position) (x, y string) {
	if pos == nil {
		return "(W-w)/2", "(H-h)/2"
	}
	if pos.Absolute {
		return num(pos.X), num(pos.Y)
	}
	switch pos.Name {
	case domain.PositionTop:
		return "(W-w)/2", "0"
	case domain.PositionBottom:
		return "(W-w)/2", "H-h"
	case domain.PositionLeft:
		return "0", "(H-h)/2"
	case domain.PositionRight:
		return "W-w", "(H-h)/2"
	}
	return "(W-w)/2", "(H-h)/2"
}

// textPosition is the drawtext variant: the canvas is w/h there and the
// rendered text box is text_w/text_h.
func textPosition(pos *domain.Position) (x, y string) {
	if pos == nil {
		return "(w-text_w)/2", "(h-text_h)/2"
	}
	if pos.Absolute {
		return num(pos.X), num(pos.Y)
	}
	switch pos.Name {
	case domain.PositionTop:
		return "(w-text_w)/2", "0"
	case domain.PositionBottom:
		return "(w-text_w)/2", "h-text_h"
	case domain.PositionLeft:
		return "0", "(h-text_h)/2"
	case domain.PositionRight:
		return "w-text_w", "(h-text_h)/2"
	}
	return "(w-text_w)/2", "(h-text_h)/2"
}

// num formats a float for a filter argument, rounding away binary noise.
func num(v float64) string {
	r := math.Round(v*10000) / 10000
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func hexColor(c domain.Color) string {
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
}

// escapeText protects filter graph metacharacters in drawtext input.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`,`, `\,`,
	`%`, `\%`,
	`;`, `\;`,
)

func escapeText(s string) string { return textEscaper.Replace(s) }
