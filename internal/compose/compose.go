/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package compose assembles resolved placements into the final composition
// plan: placements are grouped into per-kind, per-channel tracks, visual
// tracks get a z-order rank, transition windows are attached, and the
// narration track is added when speech synthesis ran.
package compose

import (
	"sort"

	"github.com/google/uuid"

	"github.com/JaYani55/TextToSimpleVid/internal/domain"
)

// DefaultTransitionSeconds is the width of a transition window when the
// render configuration does not override it.
const DefaultTransitionSeconds = 0.5

// boundaryEps is the tolerance for treating two placements as adjacent when
// splitting a transition window across their shared boundary.
const boundaryEps = 1e-6

// Options tune plan assembly.
type Options struct {
	// TransitionSeconds is the full width of a transition window.
	// Zero means DefaultTransitionSeconds.
	TransitionSeconds float64
}

// Build assembles a plan from resolved placements. Track order in the result
// is deterministic: the narration track first, then the remaining audio
// tracks by kind and channel, then the visual tracks from bottom to top.
func Build(placements []domain.Placement, total float64, narration *domain.Narration, opts Options) (*domain.Plan, error) {
	if total <= 0 {
		return nil, &domain.UnresolvableDurationError{}
	}
	width := opts.TransitionSeconds
	if width <= 0 {
		width = DefaultTransitionSeconds
	}

	tracks := groupTracks(placements)
	rankVisuals(tracks)
	for i := range tracks {
		if tracks[i].Kind.Visual() {
			attachTransitions(tracks[i].Placements, width, total)
		}
	}

	plan := &domain.Plan{
		ID:            uuid.NewString(),
		TotalDuration: total,
	}
	if narration != nil {
		end := narration.Duration
		if end > total {
			end = total
		}
		n := *narration
		plan.Narration = &n
		plan.Tracks = append(plan.Tracks, domain.Track{
			Kind:    domain.KindNarration,
			Channel: 0,
			Placements: []domain.Placement{{
				ID:      nextID(placements),
				Kind:    domain.KindNarration,
				Source:  narration.AudioPath,
				Start:   0,
				End:     end,
				Opacity: 1,
				Volume:  1,
			}},
		})
	}
	for _, t := range tracks {
		if !t.Kind.Visual() {
			plan.Tracks = append(plan.Tracks, t)
		}
	}
	for _, t := range tracks {
		if t.Kind.Visual() {
			plan.Tracks = append(plan.Tracks, t)
		}
	}
	return plan, nil
}

// groupTracks splits placements into per-kind, per-channel tracks with the
// placements of each track ordered by start time, document order on ties.
func groupTracks(placements []domain.Placement) []domain.Track {
	type slot struct {
		kind    domain.MarkerKind
		channel int
	}
	byTrack := map[slot][]domain.Placement{}
	var order []slot
	for _, p := range placements {
		k := slot{p.Kind, p.Channel}
		if _, ok := byTrack[k]; !ok {
			order = append(order, k)
		}
		byTrack[k] = append(byTrack[k], p)
	}

	tracks := make([]domain.Track, 0, len(order))
	for _, k := range order {
		ps := byTrack[k]
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Start != ps[j].Start {
				return ps[i].Start < ps[j].Start
			}
			return ps[i].ID < ps[j].ID
		})
		tracks = append(tracks, domain.Track{Kind: k.kind, Channel: k.channel, Placements: ps})
	}
	return tracks
}

// rankVisuals sorts the visual tracks by channel, first appearance in the
// document on ties, and assigns ascending z-order ranks. A later track on the
// same channel renders above an earlier one.
func rankVisuals(tracks []domain.Track) {
	idx := make([]int, 0, len(tracks))
	for i, t := range tracks {
		if t.Kind.Visual() {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := tracks[idx[a]], tracks[idx[b]]
		if ta.Channel != tb.Channel {
			return ta.Channel < tb.Channel
		}
		return firstID(ta) < firstID(tb)
	})
	for rank, i := range idx {
		tracks[i].ZOrder = rank
	}
	sort.SliceStable(tracks, func(a, b int) bool {
		va, vb := tracks[a].Kind.Visual(), tracks[b].Kind.Visual()
		if va != vb {
			return !va
		}
		if !va {
			return false
		}
		return tracks[a].ZOrder < tracks[b].ZOrder
	})
}

func firstID(t domain.Track) int {
	min := int(^uint(0) >> 1)
	for _, p := range t.Placements {
		if p.ID < min {
			min = p.ID
		}
	}
	return min
}

// attachTransitions adds a fade window to the head of every placement that
// names a transition. When the previous placement on the track ends exactly
// at this one's start the window straddles the boundary symmetrically;
// otherwise it starts at the placement start. Windows are clamped so they
// never leave the involved placements or the timeline.
func attachTransitions(ps []domain.Placement, width, total float64) {
	for i := range ps {
		tr := ps[i].Transition
		if tr == "" || tr == domain.TransitionNone {
			continue
		}
		start := ps[i].Start
		lo, hi := start, start+width
		if i > 0 && adjacent(ps[i-1].End, start) {
			lo = start - width/2
			hi = start + width/2
			if lo < ps[i-1].Start {
				lo = ps[i-1].Start
			}
		}
		if lo < 0 {
			lo = 0
		}
		if hi > ps[i].End {
			hi = ps[i].End
		}
		if hi > total {
			hi = total
		}
		if hi <= lo {
			continue
		}
		ps[i].Fade = &domain.FadeWindow{Start: lo, End: hi, Kind: tr}
	}
}

func adjacent(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < boundaryEps
}

func nextID(placements []domain.Placement) int {
	next := 0
	for _, p := range placements {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}
