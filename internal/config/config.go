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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal, so older binaries tolerate newer files.

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
	EnableServer   bool `yaml:"enable_server"`
}

// TTSConfig selects and tunes the speech synthesis engine used for narration.
// The ElevenLabs API key is never written here; it lives in the OS keychain
// (see APIKey/SetAPIKey) with an env override for CI.
type TTSConfig struct {
	Engine   string  `yaml:"engine"` // "estimate" | "elevenlabs"
	Voice    string  `yaml:"voice"`
	Speed    float64 `yaml:"speed"`
	BaseURL  string  `yaml:"base_url"`
	CacheDir string  `yaml:"cache_dir"`
}

// MediaConfig locates the asset library referenced by directive paths.
type MediaConfig struct {
	LibraryRoots []string `yaml:"library_roots"`
	ProbeCache   bool     `yaml:"probe_cache"`
}

// RenderConfig carries the output canvas and mixing defaults consumed by the
// renderer; the plan compiler itself never reads these.
type RenderConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	FPS               int     `yaml:"fps"`
	Background        string  `yaml:"background"`
	TransitionSeconds float64 `yaml:"transition_seconds"`
	NarrationGain     float64 `yaml:"narration_gain"`
	BackgroundGain    float64 `yaml:"background_gain"`
	SFXGain           float64 `yaml:"sfx_gain"`
	FontsDir          string  `yaml:"fonts_dir"`
	StylesDir         string  `yaml:"styles_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	TTS           TTSConfig     `yaml:"tts"`
	Media         MediaConfig   `yaml:"media"`
	Render        RenderConfig  `yaml:"render"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, EnableServer: false},
		TTS: TTSConfig{
			Engine:  "estimate",
			Voice:   "21m00Tcm4TlvDq8ikWAM",
			Speed:   1.0,
			BaseURL: "https://api.elevenlabs.io",
		},
		Media: MediaConfig{LibraryRoots: []string{"assets"}, ProbeCache: true},
		Render: RenderConfig{
			Width:             1920,
			Height:            1080,
			FPS:               30,
			Background:        "rgb(50,50,50)",
			TransitionSeconds: 0.5,
			NarrationGain:     1.0,
			BackgroundGain:    0.3,
			SFXGain:           0.8,
			FontsDir:          "fonts",
			StylesDir:         "styles",
		},
		Backend: BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "TTV_BACKEND_URL"
	EnvBackendTimeoutMs = "TTV_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "TTV_TLS_INSECURE"
	EnvTelemetryOptIn   = "TTV_TELEMETRY_OPT_IN"
	EnvEnableServer     = "TTV_ENABLE_SERVER"
	EnvTTSEngine        = "TTV_TTS_ENGINE"
	EnvTTSVoice         = "TTV_TTS_VOICE"
	EnvTTSBaseURL       = "TTV_TTS_BASE_URL"
	EnvMediaRoots       = "TTV_MEDIA_ROOTS"
	// EnvAPIKey overrides the keychain-held ElevenLabs key; the plain
	// ELEVENLABS_API_KEY form is honored too for compatibility.
	EnvAPIKey       = "TTV_ELEVENLABS_API_KEY"
	EnvAPIKeyCompat = "ELEVENLABS_API_KEY"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "TTV_LOG_LEVEL"
	EnvLogFormat = "TTV_LOG_FORMAT"
	EnvLogSource = "TTV_LOG_SOURCE"
	EnvLogFile   = "TTV_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "TextToSimpleVid"
	keyringToken   = "backend_token"
	keyringAPIKey  = "elevenlabs_api_key"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) {
	return keyringGet(service, key)
}
func (k *osKeyring) Set(service, key, value string) error {
	return keyringSet(service, key, value)
}
func (k *osKeyring) Delete(service, key string) error {
	return keyringDelete(service, key)
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "TextToSimpleVid")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "TextToSimpleVid")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "texttovid")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the backend token from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	// token from keyring
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// APIKey returns the ElevenLabs API key: env override first, then OS keychain.
// An empty result with nil error means no key is configured.
func APIKey() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKeyCompat)); v != "" {
		return v, nil
	}
	v, err := tokenStore.Get(keyringService, keyringAPIKey)
	if err != nil {
		return "", nil
	}
	return v, nil
}

// SetAPIKey stores the ElevenLabs API key in the OS keychain.
func SetAPIKey(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("api key is empty")
	}
	return tokenStore.Set(keyringService, keyringAPIKey, value)
}

// DeleteAPIKey removes the stored ElevenLabs API key.
func DeleteAPIKey() error {
	return tokenStore.Delete(keyringService, keyringAPIKey)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.EnableServer = src.General.EnableServer
	// tts
	if strings.TrimSpace(src.TTS.Engine) != "" {
		dst.TTS.Engine = strings.ToLower(strings.TrimSpace(src.TTS.Engine))
	}
	if strings.TrimSpace(src.TTS.Voice) != "" {
		dst.TTS.Voice = strings.TrimSpace(src.TTS.Voice)
	}
	if src.TTS.Speed > 0 {
		dst.TTS.Speed = src.TTS.Speed
	}
	if strings.TrimSpace(src.TTS.BaseURL) != "" {
		dst.TTS.BaseURL = strings.TrimSpace(src.TTS.BaseURL)
	}
	if strings.TrimSpace(src.TTS.CacheDir) != "" {
		dst.TTS.CacheDir = strings.TrimSpace(src.TTS.CacheDir)
	}
	// media
	if len(src.Media.LibraryRoots) > 0 {
		dst.Media.LibraryRoots = append([]string(nil), src.Media.LibraryRoots...)
	}
	dst.Media.ProbeCache = src.Media.ProbeCache
	// render
	if src.Render.Width > 0 {
		dst.Render.Width = src.Render.Width
	}
	if src.Render.Height > 0 {
		dst.Render.Height = src.Render.Height
	}
	if src.Render.FPS > 0 {
		dst.Render.FPS = src.Render.FPS
	}
	if strings.TrimSpace(src.Render.Background) != "" {
		dst.Render.Background = strings.TrimSpace(src.Render.Background)
	}
	if src.Render.TransitionSeconds > 0 {
		dst.Render.TransitionSeconds = src.Render.TransitionSeconds
	}
	if src.Render.NarrationGain > 0 {
		dst.Render.NarrationGain = src.Render.NarrationGain
	}
	if src.Render.BackgroundGain > 0 {
		dst.Render.BackgroundGain = src.Render.BackgroundGain
	}
	if src.Render.SFXGain > 0 {
		dst.Render.SFXGain = src.Render.SFXGain
	}
	if strings.TrimSpace(src.Render.FontsDir) != "" {
		dst.Render.FontsDir = strings.TrimSpace(src.Render.FontsDir)
	}
	if strings.TrimSpace(src.Render.StylesDir) != "" {
		dst.Render.StylesDir = strings.TrimSpace(src.Render.StylesDir)
	}
	// backend
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableServer)); v != "" {
		cfg.General.EnableServer = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTTSEngine)); v != "" {
		cfg.TTS.Engine = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTTSVoice)); v != "" {
		cfg.TTS.Voice = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTTSBaseURL)); v != "" {
		cfg.TTS.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMediaRoots)); v != "" {
		var roots []string
		for _, p := range strings.Split(v, string(os.PathListSeparator)) {
			if p = strings.TrimSpace(p); p != "" {
				roots = append(roots, p)
			}
		}
		if len(roots) > 0 {
			cfg.Media.LibraryRoots = roots
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "backend.base_url":
		if os.Getenv(EnvBackendURL) != "" {
			return EnvBackendURL, true
		}
	case "backend.timeout_ms":
		if os.Getenv(EnvBackendTimeoutMs) != "" {
			return EnvBackendTimeoutMs, true
		}
	case "backend.tls_insecure":
		if os.Getenv(EnvBackendTLSInsec) != "" {
			return EnvBackendTLSInsec, true
		}
	case "general.telemetry_opt_in":
		if os.Getenv(EnvTelemetryOptIn) != "" {
			return EnvTelemetryOptIn, true
		}
	case "general.enable_server":
		if os.Getenv(EnvEnableServer) != "" {
			return EnvEnableServer, true
		}
	case "tts.engine":
		if os.Getenv(EnvTTSEngine) != "" {
			return EnvTTSEngine, true
		}
	case "tts.voice":
		if os.Getenv(EnvTTSVoice) != "" {
			return EnvTTSVoice, true
		}
	case "tts.base_url":
		if os.Getenv(EnvTTSBaseURL) != "" {
			return EnvTTSBaseURL, true
		}
	case "media.library_roots":
		if os.Getenv(EnvMediaRoots) != "" {
			return EnvMediaRoots, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}

// EffectiveTimeout returns the backend timeout as a duration-like milliseconds string for http.Client.
func (b BackendConfig) EffectiveTimeout() string {
	if b.TimeoutMs <= 0 {
		return fmt.Sprintf("%dms", Defaults().Backend.TimeoutMs)
	}
	return fmt.Sprintf("%dms", b.TimeoutMs)
}
