/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

const (
	defaultElevenBaseURL = "https://api.elevenlabs.io"
	elevenModelID        = "eleven_multilingual_v2"

	// maxRequestChars keeps each request inside the API's text limit.
	// Longer scripts are chunked at sentence boundaries and the audio
	// streams are appended; MPEG frames are self-delimiting, so players
	// and ffmpeg read the concatenation as one file.
	maxRequestChars = 4500
)

// ElevenLabs synthesizes narration through the ElevenLabs speech API. It
// uses the with-timestamps endpoint so segment times come from the actual
// alignment rather than a reading-speed guess.
type ElevenLabs struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewElevenLabs builds a client. Zero-value options fall back to the public
// API endpoint and a two minute timeout; synthesis of long scripts is slow.
func NewElevenLabs(opts Options) *ElevenLabs {
	c := &ElevenLabs{
		BaseURL:    opts.BaseURL,
		APIKey:     opts.APIKey,
		HTTPClient: opts.HTTPClient,
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultElevenBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	return c
}

func (c *ElevenLabs) Name() string { return EngineElevenLabs }

type elevenRequest struct {
	Text          string               `json:"text"`
	ModelID       string               `json:"model_id"`
	VoiceSettings *elevenVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

type elevenResponse struct {
	AudioBase64 string           `json:"audio_base64"`
	Alignment   *elevenAlignment `json:"alignment"`
}

type elevenAlignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds"`
}

func (c *ElevenLabs) Synthesize(ctx context.Context, text string, req Request) (Result, error) {
	if c.APIKey == "" {
		return Result{}, errors.New("elevenlabs api key is not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.New("empty narration script")
	}
	if req.OutPath == "" {
		return Result{}, errors.New("no output path for narration audio")
	}
	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	var (
		audio  []byte
		offset float64
		words  []domain.Segment
	)
	for _, chunk := range SplitText(text, maxRequestChars) {
		resp, err := c.speak(ctx, chunk, voice, req.Speed)
		if err != nil {
			return Result{}, err
		}
		raw, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
		if err != nil {
			return Result{}, fmt.Errorf("decode elevenlabs audio: %w", err)
		}
		audio = append(audio, raw...)

		chunkDur := 0.0
		if a := resp.Alignment; a != nil && len(a.EndTimes) > 0 {
			words = append(words, alignWords(a, offset)...)
			chunkDur = a.EndTimes[len(a.EndTimes)-1]
		}
		if chunkDur <= 0 {
			chunkDur = EstimateDuration(chunk)
		}
		offset += chunkDur
	}

	if err := os.WriteFile(req.OutPath, audio, 0o644); err != nil {
		return Result{}, fmt.Errorf("write narration audio: %w", err)
	}
	return Result{
		AudioPath: req.OutPath,
		Duration:  offset,
		Segments:  groupWords(words, wordsPerCue),
	}, nil
}

func (c *ElevenLabs) speak(ctx context.Context, text, voice string, speed float64) (*elevenResponse, error) {
	body := elevenRequest{Text: text, ModelID: elevenModelID}
	if speed > 0 && speed != 1 {
		body.VoiceSettings = &elevenVoiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Speed: speed}
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps", strings.TrimRight(c.BaseURL, "/"), voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("elevenlabs: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var out elevenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode elevenlabs response: %w", err)
	}
	return &out, nil
}

// alignWords folds the character-level alignment into word spans, shifting
// every time by offset so chunks line up on one clock.
func alignWords(a *elevenAlignment, offset float64) []domain.Segment {
	var out []domain.Segment
	var b strings.Builder
	var start, end float64
	flush := func() {
		if b.Len() == 0 {
			return
		}
		out = append(out, domain.Segment{Text: b.String(), Start: offset + start, End: offset + end})
		b.Reset()
	}
	for i, ch := range a.Characters {
		if i >= len(a.StartTimes) || i >= len(a.EndTimes) {
			break
		}
		if ch == " " || ch == "\n" || ch == "\t" {
			flush()
			continue
		}
		if b.Len() == 0 {
			start = a.StartTimes[i]
		}
		end = a.EndTimes[i]
		b.WriteString(ch)
	}
	flush()
	return out
}
