/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
	applog "github.com/JaYani55/TextToSimpleVid/internal/log"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetWeb emits the machine-readable artifacts: plan JSON and subtitles.
	PresetWeb PresetName = "web"
	// PresetStudio additionally emits the printable cue sheet.
	PresetStudio PresetName = "studio"
)

// BatchOptions controls batch export across multiple artifact formats.
//
// Path semantics:
//   - If OutDir is empty or relative, it is created under
//     <workspace>/exports/<preset>/.
//   - Artifacts use fixed names in OutDir: plan.json, narration.srt,
//     cuesheet.pdf.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: json, srt, pdf; empty means preset defaults
	OutDir  string
}

// Batch writes the plan's artifacts according to the given preset and
// returns the paths written. Subtitles are skipped with a warning when the
// plan has no narration, unless the srt format was requested explicitly.
func Batch(plan *domain.Plan, workspaceRoot string, opt BatchOptions) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "batch")
	if plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}

	explicit := len(opt.Formats) > 0
	formats := opt.Formats
	if !explicit {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
		if baseOut == "" {
			baseOut = "out"
		}
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(workspaceRoot, "exports", baseOut)
	}

	var written []string
	seen := map[string]bool{}
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case "json":
			out := filepath.Join(baseOut, "plan.json")
			if err := WritePlan(plan, out); err != nil {
				return written, fmt.Errorf("plan json: %w", err)
			}
			written = append(written, out)
		case "srt":
			if plan.Narration == nil && !explicit {
				l.Warn("skip srt: plan has no narration")
				continue
			}
			out := filepath.Join(baseOut, "narration.srt")
			if err := WriteSRT(plan.Narration, out); err != nil {
				return written, fmt.Errorf("srt: %w", err)
			}
			written = append(written, out)
		case "pdf":
			out := filepath.Join(baseOut, "cuesheet.pdf")
			if err := WriteCueSheetPDF(plan, out, PDFOptions{}); err != nil {
				return written, fmt.Errorf("cue sheet: %w", err)
			}
			written = append(written, out)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	l.Info("batch export done", slog.String("preset", string(opt.Preset)), slog.Int("files", len(written)), slog.String("dir", baseOut))
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"json", "srt"}
	case PresetStudio:
		return []string{"json", "srt", "pdf"}
	default:
		return []string{"json"}
	}
}
