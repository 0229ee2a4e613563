/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// PDFOptions controls cue sheet rendering. Units are points (pt).
// Built-in Helvetica/Courier keep text vector without font embedding.
type PDFOptions struct {
	Title      string  // default "Composition Cue Sheet"
	PageWidth  float64 // default A4 width, 595.28pt
	PageHeight float64 // default A4 height, 841.89pt
	Margin     float64 // default 54pt
}

// WriteCueSheetPDF renders the plan as a printable cue sheet: narration
// summary first, then every track with its placements in timeline order.
func WriteCueSheetPDF(plan *domain.Plan, outPath string, opt PDFOptions) error {
	if plan == nil {
		return fmt.Errorf("plan is nil")
	}
	title := opt.Title
	if title == "" {
		title = "Composition Cue Sheet"
	}
	pageW := opt.PageWidth
	if pageW <= 0 {
		pageW = 595.28
	}
	pageH := opt.PageHeight
	if pageH <= 0 {
		pageH = 841.89
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 54
	}
	size := gofpdf.SizeType{Wd: pageW, Ht: pageH}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           size,
		OrientationStr: "",
	})
	pdf.SetTitle(title, false)
	pdf.SetAuthor("TextToSimpleVid", false)

	y := margin
	newPage := func() {
		pdf.AddPageFormat("", size)
		y = margin
	}
	ensure := func(need float64) {
		if y+need > pageH-margin {
			newPage()
		}
	}
	newPage()

	// Header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(margin, y, title)
	y += 10
	setDrawColor(pdf, domain.Color{R: 0, G: 0, B: 0, A: 255})
	pdf.SetLineWidth(0.6)
	pdf.Line(margin, y, pageW-margin, y)
	y += 16
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(margin, y, fmt.Sprintf("Plan %s    total %s    %d tracks", plan.ID, formatCue(plan.TotalDuration), len(plan.Tracks)))
	y += 24

	// Narration summary
	if n := plan.Narration; n != nil {
		ensure(60)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(margin, y, "Narration")
		y += 14
		pdf.SetFont("Helvetica", "", 9)
		line := fmt.Sprintf("%s spoken, %d cues", formatCue(n.Duration), len(n.Segments))
		if n.AudioPath != "" {
			line += "    " + n.AudioPath
		}
		pdf.Text(margin, y, line)
		y += 12
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetXY(margin, y)
		pdf.MultiCell(pageW-2*margin, 11, excerpt(n.Script, 400), "", "L", false)
		y = pdf.GetY() + 14
	}

	// Tracks, one block each, rows in timeline order
	for _, tr := range plan.Tracks {
		ensure(40)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(margin, y, trackHeading(tr))
		y += 13
		pdf.SetFont("Courier", "", 9)
		for _, pl := range tr.Placements {
			ensure(12)
			pdf.Text(margin, y, placementRow(pl))
			y += 11
		}
		y += 10
	}

	if !filepath.IsAbs(outPath) {
		if abs, err := filepath.Abs(outPath); err == nil {
			outPath = abs
		}
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func trackHeading(tr domain.Track) string {
	h := fmt.Sprintf("%s  ·  channel %d", tr.Kind, tr.Channel)
	if tr.Kind.Visual() {
		h += fmt.Sprintf("  ·  z%d", tr.ZOrder)
	}
	return h
}

func placementRow(pl domain.Placement) string {
	what := pl.Source
	if pl.Kind == domain.KindText {
		what = fmt.Sprintf("%q", pl.Text)
	}
	row := fmt.Sprintf("#%-3d %s - %s  %s", pl.ID, formatCue(pl.Start), formatCue(pl.End), excerpt(what, 60))
	if pl.Loop {
		row += "  [loop]"
	}
	if pl.Fade != nil {
		row += fmt.Sprintf("  [%s %s-%s]", pl.Fade.Kind, formatCue(pl.Fade.Start), formatCue(pl.Fade.End))
	}
	return row
}

// formatCue renders seconds as mm:ss.t for compact cue rows.
func formatCue(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	m := int(seconds) / 60
	return fmt.Sprintf("%02d:%04.1f", m, seconds-float64(m*60))
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func setDrawColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
