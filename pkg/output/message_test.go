package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/feed-blend/pkg/pearson"
)

func TestMessage(t *testing.T) {
	_, higher := pearson.Solve([]pearson.Ingredient{{Name: "A", Percent: 40}, {Name: "B", Percent: 50}}, 35, 100)
	_, lower := pearson.Solve([]pearson.Ingredient{{Name: "A", Percent: 20}, {Name: "B", Percent: 25}}, 35, 100)
	_, degenerate := pearson.Solve([]pearson.Ingredient{{Name: "A", Percent: 35}, {Name: "B", Percent: 35}}, 35, 100)
	_, count := pearson.Solve([]pearson.Ingredient{{Name: "A", Percent: 35}}, 35, 100)

	tests := []struct {
		name string
		err  error
		want string
		kind string
	}{
		{
			name: "all higher",
			err:  higher,
			want: "All selected feeds have higher protein content than the desired value. Please choose different feeds or adjust the desired protein content.",
			kind: KindUnsolvableBlend,
		},
		{
			name: "all lower",
			err:  lower,
			want: "All selected feeds have lower protein content than the desired value. Please choose different feeds or adjust the desired protein content.",
			kind: KindUnsolvableBlend,
		},
		{
			name: "degenerate",
			err:  degenerate,
			want: "Cannot compute blend: target equals every ingredient's value.",
			kind: KindDegenerateInput,
		},
		{
			name: "ingredient count",
			err:  count,
			want: "Select two or three feeds to blend.",
			kind: KindInvalidInput,
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "boom",
			kind: KindInternal,
		},
		{
			name: "nil",
			err:  nil,
			want: "",
			kind: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, expected %q", got, tt.want)
			}
			if got := ErrorKind(tt.err); got != tt.kind {
				t.Errorf("ErrorKind() = %q, expected %q", got, tt.kind)
			}
		})
	}
}

func TestNewErrorJSON(t *testing.T) {
	if NewErrorJSON(nil) != nil {
		t.Error("expected nil for nil error")
	}

	_, err := pearson.Solve([]pearson.Ingredient{{Name: "A", Percent: 40}, {Name: "B", Percent: 50}}, 35, 100)
	e := NewErrorJSON(err)
	if e.Kind != KindUnsolvableBlend || e.Direction != "higher" || e.Detail == "" {
		t.Errorf("unexpected error JSON %+v", e)
	}
}

func TestNewErrorJSONKeepsZeroTarget(t *testing.T) {
	_, err := pearson.Solve([]pearson.Ingredient{{Name: "A", Percent: 10}, {Name: "B", Percent: 20}}, 0, 100)
	data, jsonErr := json.Marshal(NewErrorJSON(err))
	if jsonErr != nil {
		t.Fatalf("Marshal() error = %v", jsonErr)
	}
	if !strings.Contains(string(data), `"target":0`) {
		t.Errorf("expected target 0 in %s", data)
	}
	if !strings.Contains(string(data), `"percents":[10,20]`) {
		t.Errorf("expected offending percents in %s", data)
	}
}
