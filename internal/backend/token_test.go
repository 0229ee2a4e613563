/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q, want alice", sub)
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("s3cret", tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("other", tok); err == nil {
		t.Fatal("token verified under wrong secret")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-token", "a.b.c", "%%%.###"} {
		if _, err := verifyToken("s3cret", tok); err == nil {
			t.Errorf("garbage token %q accepted", tok)
		}
	}
}

func TestWithAuth(t *testing.T) {
	handler := withAuth("s3cret", func(w http.ResponseWriter, r *http.Request, subject string) {
		w.Header().Set("X-Subject", subject)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status %d, want 401", rec.Code)
	}

	tok, err := signToken("s3cret", "bob", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Subject"); got != "bob" {
		t.Fatalf("subject = %q, want bob", got)
	}

	forged, err := signToken("other", "mallory", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: status %d, want 401", rec.Code)
	}
}

func TestParseVersion(t *testing.T) {
	cases := []struct {
		name    string
		want    int64
		wantErr bool
	}{
		{"0001_init.sql", 1, false},
		{"0002_search.sql", 2, false},
		{"10_late.sql", 10, false},
		{"init.sql", 0, true},
	}
	for _, tc := range cases {
		got, err := parseVersion(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseVersion(%q) accepted", tc.name)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("parseVersion(%q) = (%d, %v), want %d", tc.name, got, err, tc.want)
		}
	}
}
