/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writePack(t *testing.T, path string, build func(zw *zip.Writer)) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	build(zw)
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}
}

func TestInstall_SkipsExistingAndTraversal(t *testing.T) {
	ws := t.TempDir()
	zpath := filepath.Join(ws, "pack.zip")
	writePack(t, zpath, func(zw *zip.Writer) {
		w, _ := zw.Create("../evil.txt")
		_, _ = w.Write([]byte("nope"))
		w2, _ := zw.Create("styles/good.yaml")
		_, _ = w2.Write([]byte(validStyleYAML))
	})

	// Pre-create the good file to exercise skip-existing
	target := filepath.Join(ws, "styles", "good.yaml")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir styles dir: %v", err)
	}
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatalf("precreate file: %v", err)
	}

	installed, err := Install(ws, zpath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 0 {
		t.Fatalf("expected 0 installed due to skip+traversal, got %d", installed)
	}
	if _, err := os.Stat(filepath.Join(ws, "evil.txt")); err == nil {
		t.Fatalf("evil.txt should not exist")
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "existing" {
		t.Fatalf("existing file should be untouched: %q %v", data, err)
	}
}

func TestInstall_PrefixesLooseEntriesAndValidatesStyles(t *testing.T) {
	ws := t.TempDir()
	zpath := filepath.Join(ws, "pack2.zip")
	writePack(t, zpath, func(zw *zip.Writer) {
		dh := &zip.FileHeader{Name: "styles/subdir/"}
		dh.SetMode(os.ModeDir | 0o755)
		_, _ = zw.CreateHeader(dh)

		// Loose entry gets prefixed under styles/ by the installer
		w, _ := zw.Create("top/lower.yaml")
		_, _ = w.Write([]byte(validStyleYAML))

		// Invalid style file should be extracted, rejected and removed
		w2, _ := zw.Create("styles/broken.yaml")
		_, _ = w2.Write([]byte("styles:\n  - name: bad\n    color: chartreuse\n"))
	})

	installed, err := Install(ws, zpath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 1 {
		t.Fatalf("expected installed=1, got %d", installed)
	}
	if _, err := os.Stat(filepath.Join(ws, "styles", "top", "lower.yaml")); err != nil {
		t.Fatalf("expected loose entry under styles/top: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws, "styles", "broken.yaml")); err == nil {
		t.Fatalf("invalid style file should have been removed")
	}
}

func TestInstall_FontsAreNotValidated(t *testing.T) {
	ws := t.TempDir()
	zpath := filepath.Join(ws, "pack3.zip")
	writePack(t, zpath, func(zw *zip.Writer) {
		w, _ := zw.Create("fonts/custom.ttf")
		_, _ = w.Write([]byte("binary font bytes"))
	})
	installed, err := Install(ws, zpath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 1 {
		t.Fatalf("expected installed=1, got %d", installed)
	}
	if _, err := os.Stat(filepath.Join(ws, "fonts", "custom.ttf")); err != nil {
		t.Fatalf("expected font installed: %v", err)
	}
}

func TestInstall_ErrorArgs(t *testing.T) {
	if _, err := Install("", ""); err == nil {
		t.Fatalf("expected error on empty args")
	}
	if _, err := Install(t.TempDir(), filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Fatalf("expected error on missing pack file")
	}
}
