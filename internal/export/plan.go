/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export serializes composition plans and their companion artifacts:
// schema-validated plan JSON, SRT subtitles from narration cues, and a
// printable PDF cue sheet.
package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// planSchema is the canonical draft-07 schema for the plan format. It ships
// inside the binary so validation needs no files on disk.
//
//go:embed plan.schema.json
var planSchema []byte

// PlanSchema returns the embedded plan JSON schema.
func PlanSchema() []byte { return append([]byte(nil), planSchema...) }

// ValidatePlanJSON checks raw plan JSON against the embedded schema and
// reports every violation in one error.
func ValidatePlanJSON(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(planSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		b.WriteString("plan does not conform to schema:")
		for _, e := range result.Errors() {
			b.WriteString("\n  - ")
			b.WriteString(e.String())
		}
		return fmt.Errorf("%s", b.String())
	}
	return nil
}

// MarshalPlan renders the plan as indented JSON and verifies the result
// against the schema before returning it.
func MarshalPlan(plan *domain.Plan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	data = append(data, '\n')
	if err := ValidatePlanJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}

// WritePlan writes the plan as schema-validated JSON to outPath. The write is
// transactional: data goes to a temp file in the target directory and is
// renamed over the destination, so a crash never leaves a torn plan file.
func WritePlan(plan *domain.Plan, outPath string) error {
	data, err := MarshalPlan(plan)
	if err != nil {
		return err
	}
	return atomicWrite(outPath, data)
}

// ReadPlan loads a plan JSON file, validating it against the schema before
// unmarshaling. Renders should load plans only through this so a hand-edited
// file fails loudly instead of producing a broken video.
func ReadPlan(path string) (*domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	if err := ValidatePlanJSON(data); err != nil {
		return nil, err
	}
	var plan domain.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return &plan, nil
}

// atomicWrite writes data to a temp file in the destination directory, syncs
// it, then renames it over the target.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFileSync writes data to a file and ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
