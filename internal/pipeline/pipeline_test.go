/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
	"github.com/JaYani55/TextToSimpleVid/internal/media"
	"github.com/JaYani55/TextToSimpleVid/internal/tts"
)

type fakeTTS struct {
	duration float64
	err      error
	spoken   string
}

func (f *fakeTTS) Name() string { return "fake" }

func (f *fakeTTS) Synthesize(_ context.Context, text string, req tts.Request) (tts.Result, error) {
	f.spoken = text
	if f.err != nil {
		return tts.Result{}, f.err
	}
	return tts.Result{
		AudioPath: req.OutPath,
		Duration:  f.duration,
		Segments:  tts.CueSegments(text, f.duration, 8),
	}, nil
}

type fixedProber float64

func (p fixedProber) MediaDuration(string) (float64, error) { return float64(p), nil }

func TestCompileProseOnlyDocument(t *testing.T) {
	engine := &fakeTTS{duration: 12.5}
	c := &Compiler{TTS: engine, Opts: Options{NarrationOut: filepath.Join(t.TempDir(), "n.mp3")}}

	res, err := c.Compile(context.Background(), "A quiet morning.\nBirds over the harbor.\n")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if engine.spoken != "A quiet morning. Birds over the harbor." {
		t.Fatalf("narration script = %q", engine.spoken)
	}
	plan := res.Plan
	if plan.TotalDuration != 12.5 {
		t.Fatalf("total = %v, want the narration duration", plan.TotalDuration)
	}
	if len(plan.Tracks) != 1 || plan.Tracks[0].Kind != domain.KindNarration {
		t.Fatalf("tracks = %+v, want exactly the narration track", plan.Tracks)
	}
	if plan.Narration == nil || plan.Narration.Duration != 12.5 {
		t.Fatalf("plan narration = %+v", plan.Narration)
	}
}

func TestCompileLoopAudioUnderGlobalDuration(t *testing.T) {
	doc := "[[video_duration: 20]]\n[[audiopath: bg.mp3, timestamp: 0, duration: loop, channel: 3]]\n"
	c := &Compiler{}
	res, err := c.Compile(context.Background(), doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	plan := res.Plan
	if plan.TotalDuration != 20 {
		t.Fatalf("total = %v, want 20", plan.TotalDuration)
	}
	if len(plan.Tracks) != 1 {
		t.Fatalf("tracks = %d, want 1", len(plan.Tracks))
	}
	p := plan.Tracks[0].Placements[0]
	if p.Kind != domain.KindAudio || p.Start != 0 || p.End != 20 || !p.Loop || p.Channel != 3 {
		t.Fatalf("placement = %+v", p)
	}
}

func TestCompileInvalidChannelCarriesOffset(t *testing.T) {
	doc := "Some prose first.\n[[imagepath: a.png, channel: -1]]\n"
	c := &Compiler{}
	_, err := c.Compile(context.Background(), doc)
	var bad *domain.InvalidChannelError
	if !errors.As(err, &bad) {
		t.Fatalf("err = %v, want InvalidChannelError", err)
	}
	if want := strings.Index(doc, "[["); bad.MarkerSpan().Offset != want {
		t.Fatalf("offset = %d, want %d", bad.MarkerSpan().Offset, want)
	}
}

func TestCompileUnresolvableDuration(t *testing.T) {
	c := &Compiler{}
	_, err := c.Compile(context.Background(), "")
	var unres *domain.UnresolvableDurationError
	if !errors.As(err, &unres) {
		t.Fatalf("err = %v, want UnresolvableDurationError", err)
	}
}

func TestCompileNarrationFailure(t *testing.T) {
	c := &Compiler{TTS: &fakeTTS{err: errors.New("api down")}}
	_, err := c.Compile(context.Background(), "Words to speak.")
	var unavailable *domain.NarrationUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want NarrationUnavailableError", err)
	}
	if !strings.Contains(err.Error(), "api down") {
		t.Fatalf("error %q does not carry the cause", err)
	}

	c = &Compiler{TTS: &fakeTTS{duration: 0}}
	if _, err := c.Compile(context.Background(), "Words."); !errors.As(err, &unavailable) {
		t.Fatalf("zero duration err = %v, want NarrationUnavailableError", err)
	}
}

func TestCompileSkipNarration(t *testing.T) {
	engine := &fakeTTS{duration: 99}
	c := &Compiler{TTS: engine, Opts: Options{SkipNarration: true}}
	doc := "Prose that would be spoken.\n[[video_duration: 5]]\n"
	res, err := c.Compile(context.Background(), doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if engine.spoken != "" {
		t.Fatalf("tts ran despite SkipNarration")
	}
	if res.Plan.Narration != nil || len(res.Plan.Tracks) != 0 {
		t.Fatalf("plan = %+v, want no narration and no tracks", res.Plan)
	}
	if res.Plan.TotalDuration != 5 {
		t.Fatalf("total = %v", res.Plan.TotalDuration)
	}
}

func TestCompileValidatesMedia(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.png"), []byte("img"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	lib := media.NewLibrary(root)

	c := &Compiler{Library: lib, Opts: Options{ValidateMedia: true}}
	doc := "[[video_duration: 10]]\n[[imagepath: a.png, timestamp: 0]]\n"
	if _, err := c.Compile(context.Background(), doc); err != nil {
		t.Fatalf("compile with valid media: %v", err)
	}

	doc = "[[video_duration: 10]]\n[[imagepath: missing.png, timestamp: 0]]\n"
	_, err := c.Compile(context.Background(), doc)
	if err == nil {
		t.Fatalf("want error for missing media")
	}
	if !strings.Contains(err.Error(), "missing.png") || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error %q should name the file and the line", err)
	}
}

func TestCompileProbesAudioDurations(t *testing.T) {
	doc := "[[video_duration: 30]]\n[[sfxpath: ding.wav, timestamp: 2]]\n"
	c := &Compiler{Prober: fixedProber(1.5)}
	res, err := c.Compile(context.Background(), doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	p := res.Plan.Tracks[0].Placements[0]
	if p.Start != 2 || p.End != 3.5 {
		t.Fatalf("sfx span = [%v, %v], want [2, 3.5]", p.Start, p.End)
	}
}

func TestCompileTextTrackIndependentOfNarration(t *testing.T) {
	engine := &fakeTTS{duration: 10}
	c := &Compiler{TTS: engine}
	doc := "Spoken prose here.\n[[text: On-screen caption, timestamp: 1, duration: 3]]\n"
	res, err := c.Compile(context.Background(), doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var textTrack *domain.Track
	for i := range res.Plan.Tracks {
		if res.Plan.Tracks[i].Kind == domain.KindText {
			textTrack = &res.Plan.Tracks[i]
		}
	}
	if textTrack == nil {
		t.Fatalf("no text track in %+v", res.Plan.Tracks)
	}
	if got := textTrack.Placements[0].Text; got != "On-screen caption" {
		t.Fatalf("text placement carries %q, want the literal", got)
	}
	if engine.spoken != "Spoken prose here." {
		t.Fatalf("narration script = %q, captions must not leak in", engine.spoken)
	}
}
