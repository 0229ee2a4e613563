/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "github.com/JaYani55/TextToSimpleVid/internal/log"
	"github.com/JaYani55/TextToSimpleVid/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// CacheDirName stores per-library ephemeral data under the library root.
	CacheDirName  = ".ttv"
	CacheFileName = "mediacache.sqlite"

	// schemaVersion tracks the local SQLite schema for the probe cache.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// CachePath returns the full path to the library's probe cache database file.
func CachePath(libraryRoot string) string {
	return filepath.Join(libraryRoot, CacheDirName, CacheFileName)
}

// Cache is a persistent ffprobe result cache keyed by path, invalidated when
// size or mtime change.
type Cache struct {
	db *sql.DB
}

// OpenCache ensures the per-library cache exists at .ttv/mediacache.sqlite,
// opens the database, enables WAL mode, and brings the schema up to date.
func OpenCache(libraryRoot string) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("media"), "cache_init").With(
		slog.String("root", libraryRoot),
	)
	if strings.TrimSpace(libraryRoot) == "" {
		return nil, errors.New("library root is required")
	}
	if err := os.MkdirAll(filepath.Join(libraryRoot, CacheDirName), 0o755); err != nil {
		l.Error("create .ttv dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .ttv dir: %w", err)
	}

	path := CachePath(libraryRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureCacheSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure cache schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("probe cache ready", slog.String("path", path))
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Lookup returns the cached duration for path when size and mtime still
// match.
func (c *Cache) Lookup(path string, size int64, mtime time.Time) (float64, bool) {
	var (
		gotSize  int64
		gotMtime string
		duration float64
	)
	err := c.db.QueryRow(`SELECT size, mtime, duration FROM probes WHERE path=?`, path).
		Scan(&gotSize, &gotMtime, &duration)
	if err != nil {
		return 0, false
	}
	if gotSize != size || gotMtime != mtime.UTC().Format(time.RFC3339Nano) {
		return 0, false
	}
	return duration, true
}

// Store records a probe result, replacing any stale entry for the path.
func (c *Cache) Store(path string, size int64, mtime time.Time, duration float64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.Exec(
		`INSERT INTO probes(path, size, mtime, duration, probed_at) VALUES(?,?,?,?,?)
		 ON CONFLICT(path) DO UPDATE SET size=excluded.size, mtime=excluded.mtime,
		 duration=excluded.duration, probed_at=excluded.probed_at`,
		path, size, mtime.UTC().Format(time.RFC3339Nano), duration, now,
	)
	if err != nil {
		return fmt.Errorf("store probe: %w", err)
	}
	return nil
}

// Prober wraps inner with the cache: hits skip ffprobe entirely, fresh
// results are stored. A failed cache write never fails the probe.
func (c *Cache) Prober(inner Prober) Prober {
	return &cachingProber{cache: c, inner: inner}
}

type cachingProber struct {
	cache *Cache
	inner Prober
}

func (p *cachingProber) MediaDuration(path string) (float64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if d, ok := p.cache.Lookup(path, st.Size(), st.ModTime()); ok {
		return d, nil
	}
	d, err := p.inner.MediaDuration(path)
	if err != nil {
		return 0, err
	}
	if serr := p.cache.Store(path, st.Size(), st.ModTime(), d); serr != nil {
		applog.WithComponent("media").Warn("probe cache write failed",
			slog.String("path", path), slog.Any("err", serr))
	}
	return d, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureCacheSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS probes (
			path      TEXT PRIMARY KEY,
			size      INTEGER NOT NULL,
			mtime     TEXT    NOT NULL,
			duration  REAL    NOT NULL,
			probed_at TEXT    NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure cache schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade; just log and continue
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_probes_probed_at ON probes(probed_at);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}
