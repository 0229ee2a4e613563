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
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// alignmentFor fabricates a character alignment where every character takes
// 0.1 seconds.
func alignmentFor(text string) *elevenAlignment {
	a := &elevenAlignment{}
	t := 0.0
	for _, r := range text {
		a.Characters = append(a.Characters, string(r))
		a.StartTimes = append(a.StartTimes, t)
		t += 0.1
		a.EndTimes = append(a.EndTimes, t)
	}
	return a
}

func TestElevenLabsSynthesize(t *testing.T) {
	const script = "Hello brave new world"
	fakeAudio := []byte("ID3FAKEAUDIO")

	var gotPath, gotKey string
	var gotReq elevenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := elevenResponse{
			AudioBase64: base64.StdEncoding.EncodeToString(fakeAudio),
			Alignment:   alignmentFor(script),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewElevenLabs(Options{BaseURL: srv.URL, APIKey: "secret", HTTPClient: srv.Client()})
	out := filepath.Join(t.TempDir(), "narration.mp3")
	res, err := c.Synthesize(context.Background(), script, Request{Voice: "voice123", OutPath: out})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if gotPath != "/v1/text-to-speech/voice123/with-timestamps" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("xi-api-key = %q", gotKey)
	}
	if gotReq.Text != script || gotReq.ModelID != elevenModelID {
		t.Fatalf("request body = %+v", gotReq)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != string(fakeAudio) {
		t.Fatalf("audio bytes = %q", data)
	}
	if res.AudioPath != out {
		t.Fatalf("audio path = %q", res.AudioPath)
	}

	// 21 characters at 0.1s each
	if res.Duration < 2.09 || res.Duration > 2.11 {
		t.Fatalf("duration = %v, want about 2.1", res.Duration)
	}
	if len(res.Segments) != 1 {
		t.Fatalf("segments = %+v, want one cue for four words", res.Segments)
	}
	seg := res.Segments[0]
	if seg.Text != script {
		t.Fatalf("cue text = %q", seg.Text)
	}
	if seg.Start != 0 || seg.End < 2.09 {
		t.Fatalf("cue span = [%v, %v]", seg.Start, seg.End)
	}
}

func TestElevenLabsDefaultsVoice(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		resp := elevenResponse{
			AudioBase64: base64.StdEncoding.EncodeToString([]byte("x")),
			Alignment:   alignmentFor("Hi"),
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewElevenLabs(Options{BaseURL: srv.URL, APIKey: "k"})
	out := filepath.Join(t.TempDir(), "n.mp3")
	if _, err := c.Synthesize(context.Background(), "Hi", Request{OutPath: out}); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !strings.Contains(gotPath, DefaultVoice) {
		t.Fatalf("path %q does not use the default voice", gotPath)
	}
}

func TestElevenLabsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewElevenLabs(Options{BaseURL: srv.URL, APIKey: "bad"})
	_, err := c.Synthesize(context.Background(), "Hi", Request{OutPath: filepath.Join(t.TempDir(), "n.mp3")})
	if err == nil {
		t.Fatalf("want error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error %q does not carry the status", err)
	}
}

func TestElevenLabsRequiresConfiguration(t *testing.T) {
	c := NewElevenLabs(Options{})
	if _, err := c.Synthesize(context.Background(), "Hi", Request{OutPath: "x.mp3"}); err == nil {
		t.Fatalf("want error without an api key")
	}

	c = NewElevenLabs(Options{APIKey: "k"})
	if _, err := c.Synthesize(context.Background(), "Hi", Request{}); err == nil {
		t.Fatalf("want error without an output path")
	}
}
