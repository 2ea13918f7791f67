package predict

import "context"

// Composition is a model-free baseline predictor scoring base composition.
// It is useful as a smoke test of the pipeline and as a covariate.
type Composition struct{}

var compositionFeatures = []string{"gc_content", "cpg_density", "purine_fraction"}

func (Composition) Features() []string {
	return compositionFeatures
}

func (Composition) Predict(ctx context.Context, seqs []string) ([][]float64, error) {
	out := make([][]float64, len(seqs))
	for i, s := range seqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = composition(s)
	}
	return out, nil
}

func composition(s string) []float64 {
	if len(s) == 0 {
		return []float64{0, 0, 0}
	}
	var gc, cpg, purine int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'G', 'g':
			gc++
			purine++
		case 'C', 'c':
			gc++
			if i+1 < len(s) && (s[i+1] == 'G' || s[i+1] == 'g') {
				cpg++
			}
		case 'A', 'a':
			purine++
		}
	}
	n := float64(len(s))
	return []float64{float64(gc) / n, float64(cpg) / n, float64(purine) / n}
}
