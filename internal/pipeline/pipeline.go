/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pipeline runs the compilation stages in order: extract the
// markers, synthesize narration, size the timeline, resolve placements,
// assemble the plan. A Compiler holds no per-document state; distinct
// documents may compile concurrently on the same Compiler as long as the
// collaborators are safe for concurrent use.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/JaYani55/TextToSimpleVid/internal/compose"
	"github.com/JaYani55/TextToSimpleVid/internal/domain"
	applog "github.com/JaYani55/TextToSimpleVid/internal/log"
	"github.com/JaYani55/TextToSimpleVid/internal/media"
	"github.com/JaYani55/TextToSimpleVid/internal/script"
	"github.com/JaYani55/TextToSimpleVid/internal/timeline"
	"github.com/JaYani55/TextToSimpleVid/internal/tts"
)

// Compiler turns an annotated document into a composition plan. Nil
// collaborators degrade gracefully: no TTS means no narration track, no
// prober means audio without duration runs to the timeline end, no library
// disables media validation.
type Compiler struct {
	TTS     tts.Provider
	Prober  media.Prober
	Library *media.Library
	Opts    Options
}

// Options tune one compilation.
type Options struct {
	Voice             string
	Speed             float64
	NarrationOut      string // audio file destination for audio-producing engines
	TransitionSeconds float64
	SkipNarration     bool // compile without invoking TTS even when configured
	ValidateMedia     bool // resolve every media reference against the library
}

// Result is a finished compilation.
type Result struct {
	Plan       *domain.Plan
	Extraction script.Extraction
	Narration  *domain.Narration
}

// Compile runs the full pipeline on one document. The TTS call is the single
// blocking stage; ctx applies to it.
func (c *Compiler) Compile(ctx context.Context, document string) (*Result, error) {
	l := applog.WithOperation(applog.WithComponent("pipeline"), "compile")

	ex, err := script.Extract(document)
	if err != nil {
		return nil, err
	}

	if c.Opts.ValidateMedia && c.Library != nil {
		for _, m := range ex.Markers {
			if !m.Kind.Placeable() || m.Kind == domain.KindText {
				continue
			}
			if _, err := c.Library.Validate(m.Kind, m.Value); err != nil {
				return nil, fmt.Errorf("%s: %w", m.Span, err)
			}
		}
	}

	var narration *domain.Narration
	if c.TTS != nil && !c.Opts.SkipNarration && strings.TrimSpace(ex.Narration) != "" {
		res, terr := c.TTS.Synthesize(ctx, ex.Narration, tts.Request{
			Voice:   c.Opts.Voice,
			Speed:   c.Opts.Speed,
			OutPath: c.Opts.NarrationOut,
		})
		if terr != nil {
			return nil, &domain.NarrationUnavailableError{Err: terr}
		}
		if res.Duration <= 0 {
			return nil, &domain.NarrationUnavailableError{}
		}
		narration = res.Narration(ex.Narration)
		l.Info("narration synthesized",
			slog.String("engine", c.TTS.Name()),
			slog.Float64("seconds", res.Duration),
		)
	}

	narrSeconds := 0.0
	if narration != nil {
		narrSeconds = narration.Duration
	}
	total, err := timeline.BaselineDuration(ex.Markers, narrSeconds)
	if err != nil {
		return nil, err
	}

	placements, err := timeline.ResolvePlacements(ex.Markers, total, c.Prober)
	if err != nil {
		return nil, err
	}

	plan, err := compose.Build(placements, total, narration, compose.Options{
		TransitionSeconds: c.Opts.TransitionSeconds,
	})
	if err != nil {
		return nil, err
	}

	l.Info("document compiled",
		slog.String("plan", plan.ID),
		slog.Float64("totalSeconds", plan.TotalDuration),
		slog.Int("markers", len(ex.Markers)),
		slog.Int("tracks", len(plan.Tracks)),
	)
	return &Result{Plan: plan, Extraction: ex, Narration: narration}, nil
}
