/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package stylepack bundles a workspace's styles and fonts directories into a
// shareable .zip archive and installs such archives into another workspace.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "github.com/JaYani55/TextToSimpleVid/internal/log"
	"github.com/JaYani55/TextToSimpleVid/internal/styles"
)

// packDirs are the workspace subdirectories included in a pack.
var packDirs = []string{"styles", "fonts"}

// manifestName sits at the archive root for quick human inspection.
const manifestName = "stylepack.manifest.txt"

// Export zips the workspace's styles and fonts directories into a single
// .zip file. The produced archive preserves the directory structure and adds
// a manifest file at the root. Missing directories are created empty so an
// export always succeeds, even from a fresh workspace.
func Export(workspaceRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("workspace", workspaceRoot))
	if strings.TrimSpace(workspaceRoot) == "" {
		return errors.New("workspaceRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	for _, d := range packDirs {
		dir := filepath.Join(workspaceRoot, d)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("ensure %s dir: %w", d, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("TextToSimpleVid Style Pack\nCreated: %s\nWorkspace: %s\n\nContents mirror the workspace's /styles and /fonts directories.\n",
		time.Now().Format(time.RFC3339), workspaceRoot)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	for _, d := range packDirs {
		dir := filepath.Join(workspaceRoot, d)
		err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(workspaceRoot, path)
			if err != nil {
				return err
			}
			// Forward slashes inside the archive
			fw, err := zw.Create(filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			if _, err := io.Copy(fw, f); err != nil {
				return err
			}
			added++
			return nil
		})
		if err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return fmt.Errorf("build zip: %w", err)
		}
	}
	l.Info("style pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// Install extracts the given .zip pack into the workspace's styles and fonts
// directories. Existing files are not overwritten; if a file already exists,
// it is skipped. Extracted YAML style files must parse; invalid ones are
// removed and not counted. Returns the count of files installed.
func Install(workspaceRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("workspace", workspaceRoot))
	if strings.TrimSpace(workspaceRoot) == "" {
		return 0, errors.New("workspaceRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	for _, d := range packDirs {
		if err := os.MkdirAll(filepath.Join(workspaceRoot, d), 0o755); err != nil {
			return 0, fmt.Errorf("ensure %s dir: %w", d, err)
		}
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == manifestName {
			continue
		}
		// Entries outside styles/ or fonts/ are placed under styles/.
		targetRel := name
		if !hasPackPrefix(targetRel) {
			targetRel = filepath.ToSlash(filepath.Join("styles", targetRel))
		}
		targetPath := filepath.Join(workspaceRoot, filepath.FromSlash(targetRel))
		// Reject entries that resolve outside styles/ or fonts/ ("../" tricks)
		if rel, err := filepath.Rel(workspaceRoot, targetPath); err != nil || !hasPackPrefix(filepath.ToSlash(rel)) {
			l.Warn("skip entry outside pack dirs", slog.String("name", name))
			continue
		}
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		if isStyleFile(targetPath) {
			if _, err := styles.LoadFile(targetPath); err != nil {
				l.Warn("remove invalid style file", slog.String("path", targetPath), slog.Any("err", err))
				_ = os.Remove(targetPath)
				continue
			}
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

func hasPackPrefix(rel string) bool {
	for _, d := range packDirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}

func isStyleFile(path string) bool {
	if filepath.Base(filepath.Dir(path)) != "styles" && !strings.Contains(filepath.ToSlash(path), "/styles/") {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
