/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

func TestAllowedExt(t *testing.T) {
	cases := []struct {
		kind domain.MarkerKind
		path string
		want bool
	}{
		{domain.KindImage, "pic.png", true},
		{domain.KindImage, "PIC.PNG", true},
		{domain.KindImage, "clip.mp4", false},
		{domain.KindVideo, "clip.mp4", true},
		{domain.KindVideo, "clip.webm", false},
		{domain.KindAudio, "song.m4a", true},
		{domain.KindSFX, "ding.wav", true},
		{domain.KindSFX, "ding.pdf", false},
		{domain.KindText, "anything.xyz", true},
	}
	for _, c := range cases {
		if got := AllowedExt(c.kind, c.path); got != c.want {
			t.Fatalf("AllowedExt(%s, %q) = %v, want %v", c.kind, c.path, got, c.want)
		}
	}
}

func TestLibraryResolve(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootB, "bg.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rootA, "shared.png"), []byte("a"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rootB, "shared.png"), []byte("b"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	lib := NewLibrary(rootA, rootB)

	got, err := lib.Resolve("bg.mp3")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(rootB, "bg.mp3") {
		t.Fatalf("resolved = %q", got)
	}

	// first root wins for duplicates
	got, err = lib.Resolve("shared.png")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(rootA, "shared.png") {
		t.Fatalf("resolved = %q, want the first root's copy", got)
	}

	abs := filepath.Join(rootB, "bg.mp3")
	got, err = lib.Resolve(abs)
	if err != nil {
		t.Fatalf("resolve absolute: %v", err)
	}
	if got != abs {
		t.Fatalf("resolved = %q", got)
	}

	if _, err := lib.Resolve("missing.png"); err == nil {
		t.Fatalf("want error for missing file")
	} else if !strings.Contains(err.Error(), rootA) {
		t.Fatalf("error %q does not name the searched roots", err)
	}
}

func TestLibraryValidate(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "doc.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	lib := NewLibrary(root)
	_, err := lib.Validate(domain.KindImage, "doc.pdf")
	if err == nil {
		t.Fatalf("want extension error")
	}
	if !strings.Contains(err.Error(), ".png") {
		t.Fatalf("error %q does not list allowed extensions", err)
	}
}
