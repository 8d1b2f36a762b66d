package pearson

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsolvableBlend matches any *UnsolvableBlendError.
	ErrUnsolvableBlend = errors.New("unsolvable blend")

	// ErrDegenerateInput matches any *DegenerateInputError.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrIngredientCount is returned when fewer than two or more than three
	// ingredients are supplied.
	ErrIngredientCount = errors.New("ingredient count must be 2 or 3")

	// ErrInvalidValue is returned for NaN or infinite inputs and for a
	// negative final weight.
	ErrInvalidValue = errors.New("invalid value")
)

// Direction tells on which side of the target every ingredient sits when a
// blend cannot be solved.
type Direction int

const (
	// AllHigher means every ingredient is richer than the target.
	AllHigher Direction = iota + 1
	// AllLower means every ingredient is poorer than the target.
	AllLower
)

func (d Direction) String() string {
	switch d {
	case AllHigher:
		return "higher"
	case AllLower:
		return "lower"
	default:
		return "unknown"
	}
}

// UnsolvableBlendError reports a target that is not bracketed by the
// ingredient percentages.
type UnsolvableBlendError struct {
	Direction Direction
	Target    float64
	Percents  []float64
}

func (e *UnsolvableBlendError) Error() string {
	return fmt.Sprintf("unsolvable blend: all ingredients have %s nutrient content than the target %s (%s)",
		e.Direction, formatNumber(e.Target), joinNumbers(e.Percents))
}

// Is lets errors.Is(err, ErrUnsolvableBlend) match.
func (e *UnsolvableBlendError) Is(target error) bool {
	return target == ErrUnsolvableBlend
}

// DegenerateInputError reports a target equal to every ingredient's
// percentage, where the sum of differences is zero.
type DegenerateInputError struct {
	Target   float64
	Percents []float64
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input: target %s equals every ingredient's value (%s)",
		formatNumber(e.Target), joinNumbers(e.Percents))
}

// Is lets errors.Is(err, ErrDegenerateInput) match.
func (e *DegenerateInputError) Is(target error) bool {
	return target == ErrDegenerateInput
}

func joinNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}
