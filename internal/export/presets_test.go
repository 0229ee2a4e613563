/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatchWebPreset(t *testing.T) {
	ws := t.TempDir()
	written, err := Batch(samplePlan(), ws, BatchOptions{Preset: PresetWeb})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 files, got %v", written)
	}
	base := filepath.Join(ws, "exports", "web")
	for _, name := range []string{"plan.json", "narration.srt"} {
		if _, err := os.Stat(filepath.Join(base, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, "cuesheet.pdf")); err == nil {
		t.Fatalf("web preset should not emit a cue sheet")
	}
}

func TestBatchStudioPreset(t *testing.T) {
	ws := t.TempDir()
	written, err := Batch(samplePlan(), ws, BatchOptions{Preset: PresetStudio})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected 3 files, got %v", written)
	}
	base := filepath.Join(ws, "exports", "studio")
	for _, name := range []string{"plan.json", "narration.srt", "cuesheet.pdf"} {
		if _, err := os.Stat(filepath.Join(base, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestBatchSkipsSRTWithoutNarration(t *testing.T) {
	ws := t.TempDir()
	plan := samplePlan()
	plan.Narration = nil
	plan.Tracks = plan.Tracks[1:] // drop the narration track too
	written, err := Batch(plan, ws, BatchOptions{Preset: PresetWeb})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "plan.json" {
		t.Fatalf("expected only plan.json, got %v", written)
	}
}

func TestBatchExplicitSRTWithoutNarrationFails(t *testing.T) {
	ws := t.TempDir()
	plan := samplePlan()
	plan.Narration = nil
	plan.Tracks = plan.Tracks[1:]
	if _, err := Batch(plan, ws, BatchOptions{Formats: []string{"srt"}}); err == nil {
		t.Fatalf("expected error for explicit srt without narration")
	}
}

func TestBatchUnknownFormat(t *testing.T) {
	if _, err := Batch(samplePlan(), t.TempDir(), BatchOptions{Formats: []string{"gif"}}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestBatchAbsoluteOutDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "absolute-target")
	written, err := Batch(samplePlan(), t.TempDir(), BatchOptions{Preset: PresetWeb, OutDir: out})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, w := range written {
		if filepath.Dir(w) != out {
			t.Fatalf("expected artifacts in %s, got %s", out, w)
		}
	}
}

func TestBatchDeduplicatesFormats(t *testing.T) {
	ws := t.TempDir()
	written, err := Batch(samplePlan(), ws, BatchOptions{Formats: []string{"json", "JSON", " json "}})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected deduplicated single artifact, got %v", written)
	}
}
