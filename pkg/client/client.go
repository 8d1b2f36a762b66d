// Package client calls a running feed-blend server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iwvelando/feed-blend/pkg/output"
	"github.com/iwvelando/feed-blend/pkg/pearson"
)

const defaultTimeout = 30 * time.Second

// Request is the body of a blend request.
type Request struct {
	Ingredients []pearson.Ingredient `json:"ingredients"`
	Target      float64              `json:"target"`
	FinalWeight float64              `json:"finalWeight"`
	Unit        string               `json:"unit,omitempty"`
}

// Response is a solved blend as returned by the server.
type Response struct {
	output.BlendJSON
	ID       string `json:"id,omitempty"`
	Duration string `json:"duration"`
}

// Result rebuilds the solver result from the response.
func (r *Response) Result() *pearson.BlendResult {
	res := &pearson.BlendResult{
		Target:      r.Target,
		FinalWeight: r.FinalWeight,
		Unit:        r.Unit,
		Blend:       make([]pearson.IngredientWeight, 0, len(r.Weights)),
		Weights:     make(map[string]float64, len(r.Weights)),
		Trace:       append([]string(nil), r.Trace...),
	}
	for _, w := range r.Weights {
		res.Blend = append(res.Blend, pearson.IngredientWeight{
			Name:    w.Name,
			Percent: w.Percent,
			Diff:    w.Diff,
			Part:    w.Part,
			Nominal: w.Nominal,
			Weight:  w.Weight,
		})
		res.Weights[w.Name] += w.Weight
		res.TotalParts += w.Diff
	}
	return res
}

// APIError is returned for failed requests that do not map to a solver
// error.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	Error string `json:"error"`
	*output.ErrorJSON
}

// Client talks to the blend API of one server.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Blend solves req on the server. Unsolvable and degenerate blends come back
// as *pearson.UnsolvableBlendError and *pearson.DegenerateInputError.
func (c *Client) Blend(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/blend")
	if err != nil {
		return nil, fmt.Errorf("blend request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode blend response: %w", err)
	}
	return &out, nil
}

// Version returns the version string reported by the server.
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("version request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", decodeError(resp)
	}

	var out map[string]string
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("failed to decode version response: %w", err)
	}
	return out["version"], nil
}

func decodeError(resp *resty.Response) error {
	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Error == "" {
		return &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}

	if resp.StatusCode() == http.StatusUnprocessableEntity && body.ErrorJSON != nil {
		switch body.Kind {
		case output.KindUnsolvableBlend:
			return &pearson.UnsolvableBlendError{
				Direction: parseDirection(body.Direction),
				Target:    body.Target,
				Percents:  body.Percents,
			}
		case output.KindDegenerateInput:
			return &pearson.DegenerateInputError{Target: body.Target, Percents: body.Percents}
		}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: body.Error}
	if body.ErrorJSON != nil {
		apiErr.Kind = body.Kind
	}
	return apiErr
}

func parseDirection(s string) pearson.Direction {
	switch s {
	case pearson.AllHigher.String():
		return pearson.AllHigher
	case pearson.AllLower.String():
		return pearson.AllLower
	}
	return 0
}
