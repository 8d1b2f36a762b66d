// Package output provides utilities for formatting and displaying blend results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/format"
	"github.com/iwvelando/feed-blend/pkg/pearson"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Write renders blends in the named output format.
func Write(w io.Writer, outputFormat string, blends []blend.Blend) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, blends)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, blends)
	case constants.OutputFormatJSON:
		return JSONFormat(w, blends)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table
// followed by the calculation steps of every blend.
func PrettyFormat(w io.Writer, blends []blend.Blend) {
	for i, b := range blends {
		fmt.Fprintf(w, "--- Results for blend %s ---\n", b.Name)
		fmt.Fprintf(w, "Target: %s, final weight: %s\n", format.Percent(b.Target), format.Weight(b.FinalWeight, b.Unit))

		if !b.Solved() {
			fmt.Fprintf(w, "Error: %s\n", Message(b.Err))
		} else {
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetTitle("Feeding Ratios")
			t.Style().Format.Footer = text.FormatDefault
			t.AppendHeader(table.Row{"FEED", "PROTEIN", "SHARE", "WEIGHT"})
			for _, iw := range b.Result.Blend {
				t.AppendRow(table.Row{
					iw.Name,
					format.Percent(iw.Percent),
					format.Share(iw.Weight, b.Result.FinalWeight),
					format.Weight(iw.Weight, b.Unit),
				})
			}
			t.AppendFooter(table.Row{"TOTAL", "", "", format.Weight(b.Result.Sum(), b.Unit)})
			t.Render()

			fmt.Fprintf(w, "Calculation Steps:\n")
			for n, line := range b.Result.Trace {
				fmt.Fprintf(w, "%2d. %s\n", n+1, line)
			}
		}

		if len(blends) > 1 && i < len(blends)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat outputs one comma-separated row per ingredient of every blend.
// Blends that fail produce a single row carrying the error.
func CsvFormat(w io.Writer, blends []blend.Blend) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"blend", "ingredient", "percent", "diff", "part", "nominal", "weight", "unit", "error",
	}); err != nil {
		return err
	}

	for _, b := range blends {
		if !b.Solved() {
			if err := writer.Write([]string{b.Name, "", "", "", "", "", "", b.Unit, Message(b.Err)}); err != nil {
				return err
			}
			continue
		}
		for _, iw := range b.Result.Blend {
			if err := writer.Write([]string{
				b.Name,
				iw.Name,
				formatFloat(iw.Percent),
				formatFloat(iw.Diff),
				strconv.FormatFloat(iw.Part, 'f', 4, 64),
				strconv.FormatFloat(iw.Nominal, 'f', 2, 64),
				strconv.FormatFloat(iw.Weight, 'f', 2, 64),
				b.Unit,
				"",
			}); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns CsvFormat output as a string.
func CsvString(blends []blend.Blend) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, blends); err != nil {
		return ""
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BlendJSON is the JSON shape of one blend.
type BlendJSON struct {
	Name        string           `json:"name"`
	Target      float64          `json:"target"`
	FinalWeight float64          `json:"finalWeight"`
	Unit        string           `json:"unit"`
	Weights     []WeightJSON     `json:"weights,omitempty"`
	Total       float64          `json:"total,omitempty"`
	Trace       []string         `json:"trace,omitempty"`
	Error       *ErrorJSON       `json:"error,omitempty"`
	Ingredients []IngredientJSON `json:"ingredients"`
}

// IngredientJSON is a blend input.
type IngredientJSON struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// WeightJSON is one computed ingredient weight.
type WeightJSON struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Diff    float64 `json:"diff"`
	Part    float64 `json:"part"`
	Nominal float64 `json:"nominal"`
	Weight  float64 `json:"weight"`
}

// ErrorJSON describes why a blend failed. Target and Percents are the
// offending values of unsolvable or degenerate blends.
type ErrorJSON struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail"`
	Direction string    `json:"direction,omitempty"`
	Target    float64   `json:"target"`
	Percents  []float64 `json:"percents,omitempty"`
}

// NewErrorJSON builds the JSON error description for a solver error.
func NewErrorJSON(err error) *ErrorJSON {
	if err == nil {
		return nil
	}
	e := &ErrorJSON{
		Kind:    ErrorKind(err),
		Message: Message(err),
		Detail:  err.Error(),
	}
	var unsolvable *pearson.UnsolvableBlendError
	var degenerate *pearson.DegenerateInputError
	switch {
	case errors.As(err, &unsolvable):
		e.Direction = unsolvable.Direction.String()
		e.Target = unsolvable.Target
		e.Percents = append([]float64(nil), unsolvable.Percents...)
	case errors.As(err, &degenerate):
		e.Target = degenerate.Target
		e.Percents = append([]float64(nil), degenerate.Percents...)
	}
	return e
}

// ToJSON converts a blend into its JSON shape.
func ToJSON(b blend.Blend) BlendJSON {
	out := BlendJSON{
		Name:        b.Name,
		Target:      b.Target,
		FinalWeight: b.FinalWeight,
		Unit:        b.Unit,
		Ingredients: make([]IngredientJSON, 0, len(b.Ingredients)),
	}
	for _, ing := range b.Ingredients {
		out.Ingredients = append(out.Ingredients, IngredientJSON{Name: ing.Name, Percent: ing.Percent})
	}

	if !b.Solved() {
		out.Error = NewErrorJSON(b.Err)
		return out
	}

	for _, iw := range b.Result.Blend {
		out.Weights = append(out.Weights, WeightJSON{
			Name:    iw.Name,
			Percent: iw.Percent,
			Diff:    iw.Diff,
			Part:    iw.Part,
			Nominal: iw.Nominal,
			Weight:  iw.Weight,
		})
	}
	out.Total = b.Result.Sum()
	out.Trace = append([]string(nil), b.Result.Trace...)
	return out
}

// JSONFormat outputs every blend as an indented JSON array.
func JSONFormat(w io.Writer, blends []blend.Blend) error {
	out := make([]BlendJSON, 0, len(blends))
	for _, b := range blends {
		out = append(out, ToJSON(b))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
