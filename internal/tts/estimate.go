/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tts

import (
	"context"
	"errors"
	"strings"
)

const (
	// charsPerSecond is the reading-speed heuristic behind duration
	// estimates, with minEstimateSeconds as the floor.
	charsPerSecond     = 20.0
	minEstimateSeconds = 3.0

	// wordsPerCue is the subtitle cue width used for segment grouping.
	wordsPerCue = 8
)

// Estimator predicts narration timing without synthesizing audio.
type Estimator struct{}

func (e *Estimator) Name() string { return EngineEstimate }

func (e *Estimator) Synthesize(_ context.Context, text string, req Request) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.New("empty narration script")
	}
	d := EstimateDuration(text)
	if req.Speed > 0 && req.Speed != 1 {
		d /= req.Speed
	}
	return Result{
		Duration: d,
		Segments: CueSegments(text, d, wordsPerCue),
	}, nil
}

// EstimateDuration predicts how long a script takes to speak.
func EstimateDuration(text string) float64 {
	d := float64(len(text)) / charsPerSecond
	if d < minEstimateSeconds {
		d = minEstimateSeconds
	}
	return d
}
