// Package predict runs a sequence model over window batches.
package predict

import (
	"context"
	"fmt"
)

// Predictor maps a batch of sequences to one feature vector per sequence.
// Implementations must return exactly len(seqs) rows of len(Features()) values.
type Predictor interface {
	Features() []string
	Predict(ctx context.Context, seqs []string) ([][]float64, error)
}

// Func adapts a plain function into a Predictor.
type Func struct {
	Names []string
	Fn    func(ctx context.Context, seqs []string) ([][]float64, error)
}

func (f Func) Features() []string { return f.Names }

func (f Func) Predict(ctx context.Context, seqs []string) ([][]float64, error) {
	return f.Fn(ctx, seqs)
}

// FeatureNames returns p's feature names, or feature_0..feature_{width-1}
// when p does not name them.
func FeatureNames(p Predictor, width int) []string {
	if names := p.Features(); len(names) > 0 {
		return names
	}
	names := make([]string, width)
	for i := range names {
		names[i] = fmt.Sprintf("feature_%d", i)
	}
	return names
}
