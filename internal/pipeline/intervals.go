package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/interval"
)

// Interval kinds.
const (
	KindAll      = "all"
	KindDefined  = "defined"
	KindUnmasked = "unmasked"
)

// Intervals computes the merged intervals of the given kind over the
// loaded genome.
func (r *Runner) Intervals(kind string) ([]interval.Interval, error) {
	g, err := r.LoadGenome()
	if err != nil {
		return nil, err
	}

	var ivs []interval.Interval
	switch kind {
	case KindAll:
		ivs = interval.All(g)
	case KindDefined:
		ivs = interval.Defined(g)
	case KindUnmasked:
		ivs = interval.Unmasked(g)
	default:
		return nil, fmt.Errorf("unknown interval kind %q", kind)
	}

	r.logger.Info("computed intervals",
		zap.String("kind", kind),
		zap.Int("count", len(ivs)))
	return ivs, nil
}
