package milestone

import (
	"testing"
	"time"
)

var evalNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func playThresholds(values ...int64) []Threshold {
	var thresholds []Threshold
	for _, v := range values {
		thresholds = append(thresholds, Threshold{
			EntityType:    "global",
			MilestoneType: "plays",
			Value:         v,
			Name:          "Plays",
			Active:        true,
		})
	}
	return thresholds
}

func TestEvaluateEmitsOnlyNewlyCrossed(t *testing.T) {
	req := Request{
		UserID:        "u1",
		EntityType:    "global",
		MilestoneType: "plays",
		CurrentValue:  75,
		LastRecorded:  10,
	}

	crossed := Evaluate(req, playThresholds(10, 50, 100), evalNow)
	if len(crossed) != 1 {
		t.Fatalf("expected exactly one crossing, got %d", len(crossed))
	}
	if crossed[0].Value != 50 {
		t.Errorf("expected value 50, got %d", crossed[0].Value)
	}
	if !crossed[0].ReachedAt.Equal(evalNow) {
		t.Errorf("expected reachedAt pinned to now, got %v", crossed[0].ReachedAt)
	}
}

func TestEvaluateUnsortedThresholds(t *testing.T) {
	req := Request{UserID: "u1", EntityType: "global", MilestoneType: "plays", CurrentValue: 600}

	crossed := Evaluate(req, playThresholds(500, 10, 100), evalNow)
	if len(crossed) != 3 {
		t.Fatalf("expected 3 crossings, got %d", len(crossed))
	}
	for i, want := range []int64{10, 100, 500} {
		if crossed[i].Value != want {
			t.Errorf("crossing %d: expected %d, got %d", i, want, crossed[i].Value)
		}
	}
}

func TestEvaluateSkipsInactiveAndMismatched(t *testing.T) {
	thresholds := []Threshold{
		{EntityType: "global", MilestoneType: "plays", Value: 10, Name: "Plays", Active: false},
		{EntityType: "artist", MilestoneType: "plays", Value: 10, Name: "Artist Plays", Active: true},
		{EntityType: "global", MilestoneType: "minutes", Value: 10, Name: "Minutes", Active: true},
	}
	req := Request{UserID: "u1", EntityType: "global", MilestoneType: "plays", CurrentValue: 100}

	if crossed := Evaluate(req, thresholds, evalNow); len(crossed) != 0 {
		t.Errorf("expected no crossings, got %v", crossed)
	}
}

func TestEvaluateExactThresholdValue(t *testing.T) {
	req := Request{UserID: "u1", EntityType: "global", MilestoneType: "plays", CurrentValue: 50, LastRecorded: 50}
	if crossed := Evaluate(req, playThresholds(50), evalNow); len(crossed) != 0 {
		t.Errorf("a threshold equal to lastRecorded must never re-emit, got %v", crossed)
	}

	req.LastRecorded = 0
	crossed := Evaluate(req, playThresholds(50), evalNow)
	if len(crossed) != 1 {
		t.Errorf("currentValue == threshold should cross, got %v", crossed)
	}
}

func TestEvaluateBatchIndependentLastRecorded(t *testing.T) {
	items := []BatchItem{
		{
			Request:    Request{UserID: "u1", EntityType: "global", MilestoneType: "plays", CurrentValue: 150, LastRecorded: 100},
			Thresholds: playThresholds(100, 150),
		},
		{
			Request: Request{UserID: "u1", EntityType: "global", MilestoneType: "minutes", CurrentValue: 1200},
			Thresholds: []Threshold{
				{EntityType: "global", MilestoneType: "minutes", Value: 1000, Name: "Minutes", Active: true},
			},
		},
	}

	crossed, summaries := EvaluateBatch(items, evalNow)
	if len(crossed) != 2 {
		t.Fatalf("expected 2 crossings, got %d", len(crossed))
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summary entries, got %d", len(summaries))
	}
	if summaries[0].Name != "Plays" || summaries[0].Count != 1 {
		t.Errorf("unexpected first summary: %+v", summaries[0])
	}
	if summaries[1].Name != "Minutes" || summaries[1].Count != 1 {
		t.Errorf("unexpected second summary: %+v", summaries[1])
	}
}

func TestEvaluateBatchAggregatesByName(t *testing.T) {
	thresholds := []Threshold{
		{EntityType: "artist", MilestoneType: "plays", Value: 10, Name: "Artist Fan", Active: true},
	}
	items := []BatchItem{
		{Request: Request{UserID: "u1", EntityType: "artist", EntityID: "a1", MilestoneType: "plays", CurrentValue: 20}, Thresholds: thresholds},
		{Request: Request{UserID: "u1", EntityType: "artist", EntityID: "a2", MilestoneType: "plays", CurrentValue: 15}, Thresholds: thresholds},
	}

	_, summaries := EvaluateBatch(items, evalNow)
	if len(summaries) != 1 || summaries[0].Count != 2 {
		t.Errorf("expected one summary with count 2, got %v", summaries)
	}
}
