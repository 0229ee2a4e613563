/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the compile-job API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server %s %s: %s: %s", method, u.Path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// FetchToken obtains a bearer token from the auth endpoint and stores it on
// the client for subsequent calls.
func (c *Client) FetchToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	req := map[string]any{"subject": subject}
	if ttl > 0 {
		req["ttl_seconds"] = int64(ttl.Seconds())
	}
	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", req, &resp); err != nil {
		return "", err
	}
	c.Token = resp.Token
	return resp.Token, nil
}

// Job is a minimal projection for listing.
type Job struct {
	ID            int64     `json:"id"`
	StableID      string    `json:"stable_id"`
	Title         string    `json:"title"`
	TotalDuration float64   `json:"total_duration"`
	CreatedAt     time.Time `json:"created_at"`
}

// JobEnvelope matches the server response when a document is compiled.
type JobEnvelope struct {
	ID            int64           `json:"id"`
	StableID      string          `json:"stable_id"`
	CreatedAt     string          `json:"created_at"`
	TotalDuration float64         `json:"total_duration"`
	Plan          json.RawMessage `json:"plan"`
}

// PlanEnvelope matches the server response for a stored plan.
type PlanEnvelope struct {
	StableID      string          `json:"stable_id"`
	Title         string          `json:"title"`
	TotalDuration float64         `json:"total_duration"`
	CreatedAt     string          `json:"created_at"`
	Plan          json.RawMessage `json:"plan"`
}

// CreateJob submits a document for compilation and returns the stored job
// with its resolved plan.
func (c *Client) CreateJob(ctx context.Context, document, title string) (*JobEnvelope, error) {
	var env JobEnvelope
	body := map[string]string{"document": document, "title": title}
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs", body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ListJobs returns the most recent compile jobs.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var list []Job
	if err := c.doJSON(ctx, http.MethodGet, "/api/jobs", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetPlan fetches the stored plan for a job by its stable id.
func (c *Client) GetPlan(ctx context.Context, stableID string) (*PlanEnvelope, error) {
	var env PlanEnvelope
	path := fmt.Sprintf("/api/jobs/%s/plan", url.PathEscape(stableID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// SearchNarration runs a full-text search over the narration scripts of
// stored jobs.
func (c *Client) SearchNarration(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	v := url.Values{}
	v.Set("q", text)
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var list []SearchResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/search?"+v.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
