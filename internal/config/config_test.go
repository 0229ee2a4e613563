/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"testing"
)

func TestEnvOverridesBackendURL(t *testing.T) {
	old := os.Getenv(EnvBackendURL)
	_ = os.Setenv(EnvBackendURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvBackendURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesTTS(t *testing.T) {
	t.Setenv(EnvTTSEngine, "ElevenLabs")
	t.Setenv(EnvTTSVoice, "voice-abc")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TTS.Engine != "elevenlabs" {
		t.Fatalf("TTS.Engine = %q, want lowercased override", cfg.TTS.Engine)
	}
	if cfg.TTS.Voice != "voice-abc" {
		t.Fatalf("TTS.Voice = %q", cfg.TTS.Voice)
	}
}

func TestEnvOverridesMediaRoots(t *testing.T) {
	roots := "assets" + string(os.PathListSeparator) + "extra/media"
	t.Setenv(EnvMediaRoots, roots)
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Media.LibraryRoots) != 2 || cfg.Media.LibraryRoots[1] != "extra/media" {
		t.Fatalf("Media.LibraryRoots = %#v", cfg.Media.LibraryRoots)
	}
}

func TestMergeIncludesEnableServer(t *testing.T) {
	// Given a file config that sets enable_server, mergeInto should carry it through
	dst := Defaults()
	src := Defaults()
	src.General.EnableServer = true
	mergeInto(&dst, &src)
	if !dst.General.EnableServer {
		t.Fatalf("EnableServer was not merged from file config")
	}
}

func TestMergeIncludesTTSAndRender(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.TTS.Engine = "ELEVENLABS"
	src.TTS.Speed = 1.2
	src.Render.Width = 1280
	src.Render.Height = 720
	src.Render.TransitionSeconds = 0.25
	mergeInto(&dst, &src)
	if dst.TTS.Engine != "elevenlabs" || dst.TTS.Speed != 1.2 {
		t.Fatalf("tts fields not merged correctly: %#v", dst.TTS)
	}
	if dst.Render.Width != 1280 || dst.Render.Height != 720 || dst.Render.TransitionSeconds != 0.25 {
		t.Fatalf("render fields not merged correctly: %#v", dst.Render)
	}
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig // all zero: nothing should clobber defaults
	mergeInto(&dst, &src)
	def := Defaults()
	if dst.Render.Width != def.Render.Width || dst.TTS.Engine != def.TTS.Engine {
		t.Fatalf("zero-value file config clobbered defaults: %#v", dst)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/ttv.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/ttv.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "X:/ttv.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/ttv.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestAPIKeyEnvOverrideWinsOverKeyring(t *testing.T) {
	oldGet := keyringGet
	keyringGet = func(service, key string) (string, error) { return "from-keyring", nil }
	t.Cleanup(func() { keyringGet = oldGet })

	t.Setenv(EnvAPIKey, "from-env")
	got, err := APIKey()
	if err != nil {
		t.Fatalf("APIKey() error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("APIKey() = %q, want env override", got)
	}

	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyCompat, "")
	got, err = APIKey()
	if err != nil {
		t.Fatalf("APIKey() error: %v", err)
	}
	if got != "from-keyring" {
		t.Fatalf("APIKey() = %q, want keyring value", got)
	}
}

func TestSetAPIKeyRejectsEmpty(t *testing.T) {
	if err := SetAPIKey("   "); err == nil {
		t.Fatalf("SetAPIKey should reject blank keys")
	}
}
