// Package delta turns four-way window predictions into per-variant
// alternate-minus-reference feature deltas.
package delta

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ShapeError reports predictions that do not line up with the variant count,
// which means the rows and the predictor output fell out of step.
type ShapeError struct {
	Rows     int // number of prediction rows received
	Variants int // number of variants
	Row      int // index of a row with the wrong width, -1 if the count is wrong
	Width    int // width of that row
	Features int // width of the first row
}

func (e *ShapeError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("prediction row %d has %d features, want %d", e.Row, e.Width, e.Features)
	}
	return fmt.Sprintf("got %d prediction rows for %d variants, want %d", e.Rows, e.Variants, 4*e.Variants)
}

// Aggregate splits predictions into the four blocks of n rows produced by
// the window builder (ref+, ref-, alt+, alt-), averages each allele over
// both strands and returns alt - ref for every variant in order.
func Aggregate(predictions [][]float64, n int) ([][]float64, error) {
	if n < 0 || len(predictions) != 4*n {
		return nil, &ShapeError{Rows: len(predictions), Variants: n, Row: -1}
	}
	if n == 0 {
		return [][]float64{}, nil
	}

	width := len(predictions[0])
	for k, row := range predictions {
		if len(row) != width {
			return nil, &ShapeError{Rows: len(predictions), Variants: n, Row: k, Width: len(row), Features: width}
		}
	}

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		ref := make([]float64, width)
		floats.AddTo(ref, predictions[i], predictions[n+i])
		floats.Scale(0.5, ref)

		alt := make([]float64, width)
		floats.AddTo(alt, predictions[2*n+i], predictions[3*n+i])
		floats.Scale(0.5, alt)

		floats.Sub(alt, ref)
		out[i] = alt
	}
	return out, nil
}
