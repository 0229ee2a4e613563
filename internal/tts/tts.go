/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tts synthesizes the narration voice-over. Engines implement the
// Provider interface; New selects one by name. The estimate engine predicts
// timing without audio and needs no network, which keeps compilation usable
// offline and in the job service.
package tts

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// Engine names accepted by New.
const (
	EngineEstimate   = "estimate"
	EngineElevenLabs = "elevenlabs"
)

// DefaultVoice is the ElevenLabs voice used when a request names none.
const DefaultVoice = "21m00Tcm4TlvDq8ikWAM"

// Provider synthesizes narration audio for a compiled document.
type Provider interface {
	// Name returns the engine name the provider answers to.
	Name() string
	// Synthesize renders text to speech. Engines that produce audio write
	// it to req.OutPath; estimate-only engines leave Result.AudioPath
	// empty and callers must cope with a plan that has timing but no
	// narration file.
	Synthesize(ctx context.Context, text string, req Request) (Result, error)
}

// Request carries per-synthesis parameters.
type Request struct {
	Voice   string  // engine-specific voice id; empty means the engine default
	Speed   float64 // playback speed ratio; 0 or 1 means unchanged
	OutPath string  // where audio-producing engines write the file
}

// Result is the outcome of one synthesis.
type Result struct {
	AudioPath string
	Duration  float64
	Segments  []domain.Segment
}

// Narration converts the result into the plan's narration record.
func (r Result) Narration(script string) *domain.Narration {
	return &domain.Narration{
		Script:    script,
		AudioPath: r.AudioPath,
		Duration:  r.Duration,
		Segments:  r.Segments,
	}
}

// Options configure engine construction. Only the ElevenLabs engine reads
// them today.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// New returns the provider for the named engine. An empty name selects the
// estimate engine.
func New(engine string, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineEstimate:
		return &Estimator{}, nil
	case EngineElevenLabs:
		return NewElevenLabs(opts), nil
	default:
		return nil, fmt.Errorf("unsupported tts engine %q", engine)
	}
}
