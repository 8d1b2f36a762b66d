package testutil

import (
	"errors"
	"testing"

	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/pkg/pearson"
)

func TestFindBlend(t *testing.T) {
	result, err := pearson.Solve([]pearson.Ingredient{{Name: "Corn", Percent: 9}, {Name: "Soybean meal", Percent: 44}}, 16, 100)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	results := []blend.Blend{
		{Name: "Blend A", Result: result},
		{Name: "Blend B", Err: errors.New("boom")},
	}

	tests := []struct {
		name     string
		search   string
		expected string
	}{
		{"find first", "Blend A", "Blend A"},
		{"find second", "Blend B", "Blend B"},
		{"not found", "Blend C", ""},
		{"empty name", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := FindBlend(results, tt.search)
			if tt.expected == "" {
				if found != nil {
					t.Errorf("FindBlend(%q) = %v, want nil", tt.search, found.Name)
				}
				return
			}
			if found == nil || found.Name != tt.expected {
				t.Errorf("FindBlend(%q) = %v, want %q", tt.search, found, tt.expected)
			}
		})
	}

	if found := FindBlend(results, "Blend A"); found != &results[0] {
		t.Error("FindBlend should return a pointer into the slice")
	}
}

func TestWeightOf(t *testing.T) {
	result, err := pearson.Solve([]pearson.Ingredient{{Name: "Corn", Percent: 9}, {Name: "Soybean meal", Percent: 44}}, 16, 100)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	solved := &blend.Blend{Name: "ok", Result: result}
	failed := &blend.Blend{Name: "failed", Err: errors.New("boom")}

	if w, ok := WeightOf(solved, "Corn"); !ok || !Close(w, 80) {
		t.Errorf("WeightOf(Corn) = %v, %v; want 80, true", w, ok)
	}
	if _, ok := WeightOf(solved, "Barley"); ok {
		t.Error("WeightOf should not find an unknown ingredient")
	}
	if _, ok := WeightOf(failed, "Corn"); ok {
		t.Error("WeightOf should not report weights of a failed blend")
	}
	if _, ok := WeightOf(nil, "Corn"); ok {
		t.Error("WeightOf(nil) should report false")
	}
}

func TestClose(t *testing.T) {
	if !Close(80.004, 80) {
		t.Error("expected values within tolerance to be close")
	}
	if Close(80.02, 80) {
		t.Error("expected values outside tolerance not to be close")
	}
}
