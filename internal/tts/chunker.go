/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tts

import (
	"strings"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// SplitText breaks a script into chunks of at most max bytes, preferring
// sentence boundaries, then commas, then single words. Chunks are packed
// greedily so short sentences share a chunk.
func SplitText(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if max <= 0 || len(text) <= max {
		return []string{text}
	}
	var out []string
	for _, sentence := range splitAfter(text, isSentenceEnd) {
		if len(sentence) <= max {
			out = pack(out, sentence, max)
			continue
		}
		for _, clause := range splitAfter(sentence, isComma) {
			if len(clause) <= max {
				out = pack(out, clause, max)
				continue
			}
			for _, word := range strings.Fields(clause) {
				out = pack(out, word, max)
			}
		}
	}
	return out
}

// CueSegments splits a script into subtitle cues of at most wordsPerCue
// words, spread evenly across the given duration. The last cue absorbs the
// rounding so the segments cover [0, total] exactly.
func CueSegments(text string, total float64, perCue int) []domain.Segment {
	words := strings.Fields(text)
	if len(words) == 0 || total <= 0 {
		return nil
	}
	if perCue <= 0 {
		perCue = wordsPerCue
	}
	n := (len(words) + perCue - 1) / perCue
	width := total / float64(n)
	segs := make([]domain.Segment, 0, n)
	for i := 0; i < n; i++ {
		lo := i * perCue
		hi := lo + perCue
		if hi > len(words) {
			hi = len(words)
		}
		start := float64(i) * width
		end := start + width
		if i == n-1 {
			end = total
		}
		segs = append(segs, domain.Segment{
			Text:  strings.Join(words[lo:hi], " "),
			Start: start,
			End:   end,
		})
	}
	return segs
}

func isSentenceEnd(b byte) bool { return b == '.' || b == '!' || b == '?' }
func isComma(b byte) bool       { return b == ',' }

// splitAfter splits s after every boundary byte that is followed by
// whitespace or the end of the string, keeping the boundary with the left
// part.
func splitAfter(s string, boundary func(byte) bool) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if !boundary(s[i]) {
			continue
		}
		if i+1 < len(s) && s[i+1] != ' ' && s[i+1] != '\n' && s[i+1] != '\t' {
			continue
		}
		if p := strings.TrimSpace(s[start : i+1]); p != "" {
			parts = append(parts, p)
		}
		start = i + 1
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// pack appends piece to the last chunk when it still fits, else starts a new
// chunk.
func pack(chunks []string, piece string, max int) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return chunks
	}
	if n := len(chunks); n > 0 && len(chunks[n-1])+1+len(piece) <= max {
		chunks[n-1] += " " + piece
		return chunks
	}
	return append(chunks, piece)
}

// groupWords folds word-level segments into cues of at most perCue words.
func groupWords(words []domain.Segment, perCue int) []domain.Segment {
	if len(words) == 0 {
		return nil
	}
	if perCue <= 0 {
		perCue = wordsPerCue
	}
	var out []domain.Segment
	for lo := 0; lo < len(words); lo += perCue {
		hi := lo + perCue
		if hi > len(words) {
			hi = len(words)
		}
		texts := make([]string, 0, hi-lo)
		for _, w := range words[lo:hi] {
			texts = append(texts, w.Text)
		}
		out = append(out, domain.Segment{
			Text:  strings.Join(texts, " "),
			Start: words[lo].Start,
			End:   words[hi-1].End,
		})
	}
	return out
}
