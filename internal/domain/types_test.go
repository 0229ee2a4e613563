package domain

import (
	"encoding/json"
	"testing"
)

func TestPlanJSONRoundTrip(t *testing.T) {
	p := Plan{
		ID:            "demo",
		TotalDuration: 20,
		Narration:     &Narration{Script: "Hello there.", Duration: 12.5},
		Tracks: []Track{
			{
				Kind:    KindImage,
				Channel: 1,
				ZOrder:  2,
				Placements: []Placement{
					{ID: 0, Kind: KindImage, Source: "a.png", Start: 0, End: 3, Channel: 1, Opacity: 1, Volume: 1},
				},
			},
		},
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Plan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != p.ID || got.TotalDuration != p.TotalDuration {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Tracks) != 1 || len(got.Tracks[0].Placements) != 1 {
		t.Fatalf("unexpected tracks structure: %+v", got)
	}
	if got.Tracks[0].Placements[0].Source != "a.png" {
		t.Fatalf("placement source lost: %+v", got.Tracks[0].Placements[0])
	}
}

func TestMarkerKindClassification(t *testing.T) {
	for _, k := range []MarkerKind{KindImage, KindVideo, KindText} {
		if !k.Visual() {
			t.Fatalf("%s should be visual", k)
		}
	}
	for _, k := range []MarkerKind{KindAudio, KindSFX, KindNarration} {
		if !k.Audible() {
			t.Fatalf("%s should be audible", k)
		}
	}
	if KindVideoDuration.Placeable() {
		t.Fatalf("video_duration must not be placeable")
	}
	if !KindSFX.Placeable() {
		t.Fatalf("sfxpath must be placeable")
	}
}

func TestPlanCloneIsIndependent(t *testing.T) {
	pos := &Position{Name: PositionTop}
	p := &Plan{
		ID:            "orig",
		TotalDuration: 10,
		Tracks: []Track{
			{Kind: KindText, Channel: 0, Placements: []Placement{
				{ID: 1, Kind: KindText, Text: "hi", Start: 0, End: 3, Opacity: 1, Volume: 1, Position: pos},
			}},
		},
	}
	cp := p.Clone()
	cp.Tracks[0].Placements[0].Text = "changed"
	cp.Tracks[0].Placements[0].Position.Name = PositionBottom
	if p.Tracks[0].Placements[0].Text != "hi" {
		t.Fatalf("clone shares placement storage")
	}
	if p.Tracks[0].Placements[0].Position.Name != PositionTop {
		t.Fatalf("clone shares position pointer")
	}
}

func TestMarkerTiming(t *testing.T) {
	ts := 5.0
	m := Marker{Kind: KindAudio, Attrs: AudioAttrs{Timestamp: &ts, Duration: &Duration{Loop: true}, Channel: 3}}
	gotTS, gotDur, ch := m.Timing()
	if gotTS == nil || *gotTS != 5.0 || gotDur == nil || !gotDur.Loop || ch != 3 {
		t.Fatalf("Timing() = %v %v %d", gotTS, gotDur, ch)
	}

	g := Marker{Kind: KindVideoDuration, Attrs: GlobalAttrs{}}
	if ts2, dur2, ch2 := g.Timing(); ts2 != nil || dur2 != nil || ch2 != 0 {
		t.Fatalf("global directive should have zero timing")
	}
}
