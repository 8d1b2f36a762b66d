package output

import (
	"errors"

	"github.com/iwvelando/feed-blend/pkg/pearson"
)

// Message turns a solver error into the text shown to the person filling in
// the blend.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var unsolvable *pearson.UnsolvableBlendError
	if errors.As(err, &unsolvable) {
		return "All selected feeds have " + unsolvable.Direction.String() +
			" protein content than the desired value. Please choose different feeds or adjust the desired protein content."
	}
	if errors.Is(err, pearson.ErrDegenerateInput) {
		return "Cannot compute blend: target equals every ingredient's value."
	}
	if errors.Is(err, pearson.ErrIngredientCount) {
		return "Select two or three feeds to blend."
	}
	return err.Error()
}

// ErrorKind names the class of a solver error for machine consumers.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pearson.ErrUnsolvableBlend):
		return KindUnsolvableBlend
	case errors.Is(err, pearson.ErrDegenerateInput):
		return KindDegenerateInput
	case errors.Is(err, pearson.ErrIngredientCount), errors.Is(err, pearson.ErrInvalidValue):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// Error kinds reported by ErrorKind.
const (
	KindUnsolvableBlend = "unsolvable_blend"
	KindDegenerateInput = "degenerate_input"
	KindInvalidInput    = "invalid_input"
	KindInternal        = "internal"
)
