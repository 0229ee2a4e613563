/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a resolved composition plan into an ffmpeg filter
// graph and drives the encode through the ffmpeg-go bindings. BuildCommand
// compiles the complete argument list without touching ffmpeg, so callers
// and tests can inspect the command; Render executes it and needs the
// ffmpeg binary on PATH.
package render

import (
	"fmt"
	"log/slog"

	"github.com/JaYani55/TextToSimpleVid/internal/config"
	"github.com/JaYani55/TextToSimpleVid/internal/domain"
	applog "github.com/JaYani55/TextToSimpleVid/internal/log"
	"github.com/JaYani55/TextToSimpleVid/internal/styles"
)

// Visual overlays are scaled to this share of the canvas width, preserving
// aspect ratio.
const overlayWidthRatio = 0.8

// Options carry the canvas geometry and mix gains for one render. Zero
// values fall back to the render configuration defaults.
type Options struct {
	Width      int
	Height     int
	FPS        int
	Background domain.Color

	// Per-category mix gains, multiplied with each placement's volume.
	NarrationGain  float64
	BackgroundGain float64
	SFXGain        float64

	// Sheet resolves the styles of text placements; nil falls back to the
	// builtin presets.
	Sheet *styles.StyleSheet
	// Fonts supplies fontfile paths for drawtext; nil renders with the
	// ffmpeg default font.
	Fonts *styles.FontLibrary
}

// FromConfig maps the render configuration onto Options. The style sheet
// and font library are wired by the caller, which knows the workspace paths.
func FromConfig(rc config.RenderConfig) Options {
	bg, ok := domain.ParseColor(rc.Background)
	if !ok {
		bg = domain.Color{R: 50, G: 50, B: 50, A: 255}
	}
	return Options{
		Width:          rc.Width,
		Height:         rc.Height,
		FPS:            rc.FPS,
		Background:     bg,
		NarrationGain:  rc.NarrationGain,
		BackgroundGain: rc.BackgroundGain,
		SFXGain:        rc.SFXGain,
	}
}

func (o Options) withDefaults() Options {
	d := config.Defaults().Render
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.FPS <= 0 {
		o.FPS = d.FPS
	}
	if o.Background == (domain.Color{}) {
		o.Background = domain.Color{R: 50, G: 50, B: 50, A: 255}
	}
	if o.NarrationGain <= 0 {
		o.NarrationGain = d.NarrationGain
	}
	if o.BackgroundGain <= 0 {
		o.BackgroundGain = d.BackgroundGain
	}
	if o.SFXGain <= 0 {
		o.SFXGain = d.SFXGain
	}
	return o
}

// BuildCommand compiles the ffmpeg argument list that would render plan into
// outPath. Nothing is executed and no media file is opened.
func BuildCommand(plan *domain.Plan, outPath string, opts Options) ([]string, error) {
	out, err := buildOutput(plan, outPath, opts)
	if err != nil {
		return nil, err
	}
	return out.OverWriteOutput().GetArgs(), nil
}

// Render encodes the plan into outPath and blocks until ffmpeg finishes.
func Render(plan *domain.Plan, outPath string, opts Options) error {
	logger := applog.WithOperation(applog.WithComponent("render"), "render")
	out, err := buildOutput(plan, outPath, opts)
	if err != nil {
		return err
	}
	logger.Info("render start",
		slog.String("plan", plan.ID),
		slog.Float64("seconds", plan.TotalDuration),
		slog.String("out", outPath))
	if err := out.OverWriteOutput().Run(); err != nil {
		logger.Error("render failed", slog.Any("err", err))
		return fmt.Errorf("render video: %w", err)
	}
	logger.Info("render done", slog.String("out", outPath))
	return nil
}
