package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/internal/config"
	"github.com/iwvelando/feed-blend/internal/server"
	"github.com/iwvelando/feed-blend/pkg/client"
	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/pearson"
	"go.uber.org/zap"
)

func TestParseFeed(t *testing.T) {
	tests := []struct {
		input   string
		want    config.Ingredient
		wantErr bool
	}{
		{input: "Corn=9", want: config.Ingredient{Name: "Corn", Percent: 9}},
		{input: " Soybean meal = 44.5 ", want: config.Ingredient{Name: "Soybean meal", Percent: 44.5}},
		{input: "Mix=A=12%", want: config.Ingredient{Name: "Mix=A", Percent: 12}},
		{input: "Corn", wantErr: true},
		{input: "=9", wantErr: true},
		{input: "Corn=lots", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseFeed(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseFeed(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseFeed(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("parseFeed(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestFeedListSet(t *testing.T) {
	var feeds feedList
	for _, v := range []string{"Feed 1=30", "Feed 2=40"} {
		if err := feeds.Set(v); err != nil {
			t.Fatalf("Set(%q) error = %v", v, err)
		}
	}
	if len(feeds) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(feeds))
	}
	if feeds.String() != "Feed 1=30,Feed 2=40" {
		t.Fatalf("unexpected String() %q", feeds.String())
	}
	if err := feeds.Set("broken"); err == nil {
		t.Fatal("expected error for malformed feed")
	}
}

func TestAdHocConfiguration(t *testing.T) {
	feeds := feedList{{Name: "Feed 1", Percent: 30}, {Name: "Feed 2", Percent: 40}}
	base := &config.Configuration{
		Logging: config.LoggingConfig{Level: "debug"},
		Output:  config.OutputConfig{Format: constants.OutputFormatCSV},
		Unit:    "lb",
		Blends:  []config.Blend{{Name: "ignored"}},
	}

	conf := adHocConfiguration(base, feeds, 35, 100, "")
	if conf.Logging.Level != "debug" || conf.Output.Format != constants.OutputFormatCSV {
		t.Fatalf("expected base logging and output, got %+v", conf)
	}
	if len(conf.Blends) != 1 || conf.Blends[0].Name != "command line" {
		t.Fatalf("expected single command line blend, got %+v", conf.Blends)
	}
	if conf.UnitFor(conf.Blends[0]) != "lb" {
		t.Fatalf("expected base unit, got %s", conf.UnitFor(conf.Blends[0]))
	}

	conf = adHocConfiguration(nil, feeds, 35, 100, "t")
	if conf.Unit != "t" {
		t.Fatalf("expected unit override, got %s", conf.Unit)
	}

	results := blend.GetBlends(zap.NewNop(), *conf)
	if len(results) != 1 || !results[0].Solved() {
		t.Fatalf("expected solved blend, got %+v", results)
	}
	if w, _ := results[0].Result.Weight("Feed 1"); w != 50 {
		t.Fatalf("expected Feed 1 weight 50, got %v", w)
	}
}

func TestGetRemoteBlends(t *testing.T) {
	srv := httptest.NewServer(server.NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil))
	defer srv.Close()

	conf := config.Configuration{
		Unit: "lb",
		Blends: []config.Blend{
			{
				Target:      35,
				FinalWeight: 100,
				Ingredients: []config.Ingredient{{Name: "Feed 1", Percent: 30}, {Name: "Feed 2", Percent: 40}},
			},
			{
				Name:        "too rich",
				Target:      10,
				FinalWeight: 100,
				Ingredients: []config.Ingredient{{Name: "A", Percent: 20}, {Name: "B", Percent: 30}},
			},
			{
				Name:        "single",
				Target:      10,
				FinalWeight: 100,
				Ingredients: []config.Ingredient{{Name: "A", Percent: 20}},
			},
		},
	}

	results, err := getRemoteBlends(context.Background(), zap.NewNop(), client.New(srv.URL), conf)
	if err != nil {
		t.Fatalf("getRemoteBlends() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Name != "blend 1" || !results[0].Solved() {
		t.Fatalf("expected first blend solved, got %+v", results[0])
	}
	if results[0].Result.Unit != "lb" {
		t.Fatalf("expected unit lb, got %s", results[0].Result.Unit)
	}
	if !errors.Is(results[1].Err, pearson.ErrUnsolvableBlend) {
		t.Fatalf("expected unsolvable blend, got %v", results[1].Err)
	}
	if results[2].Err == nil {
		t.Fatal("expected invalid input error for single ingredient")
	}
	if blend.Failed(results) != 2 {
		t.Fatalf("expected 2 failed blends, got %d", blend.Failed(results))
	}
}

func TestGetRemoteBlendsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	conf := config.Configuration{Blends: []config.Blend{{
		Target:      35,
		FinalWeight: 100,
		Ingredients: []config.Ingredient{{Name: "Feed 1", Percent: 30}, {Name: "Feed 2", Percent: 40}},
	}}}

	_, err := getRemoteBlends(context.Background(), zap.NewNop(), client.New(srv.URL), conf)
	if err == nil {
		t.Fatal("expected error when the server does not serve the blend API")
	}
	if !strings.Contains(err.Error(), "remote server unavailable") {
		t.Fatalf("expected the version check to fail first, got %v", err)
	}
}
