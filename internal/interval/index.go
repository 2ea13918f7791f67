package interval

import "sort"

// Index answers coverage queries over a merged interval set using
// binary search on sorted, non-overlapping slices per chromosome.
// It is built once and never modified.
type Index struct {
	byChrom map[string][]Interval
	total   int64
}

// NewIndex builds an index. The input is merged first, so it may
// contain overlapping or unsorted intervals.
func NewIndex(intervals []Interval) *Index {
	idx := &Index{byChrom: make(map[string][]Interval)}
	for _, iv := range Merge(intervals) {
		idx.byChrom[iv.Chrom] = append(idx.byChrom[iv.Chrom], iv)
		idx.total += int64(iv.Len())
	}
	return idx
}

// find returns the interval on chrom with the greatest Start <= pos.
func (idx *Index) find(chrom string, pos int) (Interval, bool) {
	ivs := idx.byChrom[chrom]
	// First index with Start > pos; the candidate is the one before it.
	hi := sort.Search(len(ivs), func(i int) bool {
		return ivs[i].Start > pos
	})
	if hi == 0 {
		return Interval{}, false
	}
	return ivs[hi-1], true
}

// Contains reports whether pos lies inside an interval.
func (idx *Index) Contains(chrom string, pos int) bool {
	iv, ok := idx.find(chrom, pos)
	return ok && pos < iv.End
}

// Covers reports whether [start, end) lies entirely inside one interval.
// Because the set is maximal, a range spanning two intervals is never covered.
func (idx *Index) Covers(chrom string, start, end int) bool {
	if end <= start {
		return false
	}
	iv, ok := idx.find(chrom, start)
	return ok && end <= iv.End
}

// Chromosome returns the merged intervals of one chromosome.
func (idx *Index) Chromosome(chrom string) []Interval {
	return idx.byChrom[chrom]
}

// TotalLength returns the number of bases covered.
func (idx *Index) TotalLength() int64 {
	return idx.total
}
