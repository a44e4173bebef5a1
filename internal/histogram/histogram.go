package histogram

import (
	"fmt"
	"sort"
	"strings"
)

// Histogram is a simple counter over fixed bins. The caller supplies the
// interior bin boundaries; values below the first boundary land in an
// implicit underflow bin and values at or above the last boundary land in
// an implicit overflow bin.
type Histogram struct {
	boundaries []float64
	// counts has len(boundaries)+1 entries: counts[0] is the underflow
	// bin, counts[i] covers [boundaries[i-1], boundaries[i]), and the
	// final entry is the overflow bin.
	counts []int
}

// New creates a histogram from sorted bin boundaries. At least one boundary
// is required.
func New(boundaries []float64) *Histogram {
	if len(boundaries) == 0 {
		panic("histogram: at least one bin boundary is required")
	}
	if !sort.Float64sAreSorted(boundaries) {
		panic("histogram: bin boundaries must be sorted")
	}
	return &Histogram{
		boundaries: append([]float64(nil), boundaries...),
		counts:     make([]int, len(boundaries)+1),
	}
}

// Add counts the value into its bin.
func (h *Histogram) Add(value float64) {
	// Index of the first boundary greater than value; bin i holds values
	// in [boundaries[i-1], boundaries[i]).
	idx := sort.Search(len(h.boundaries), func(i int) bool {
		return h.boundaries[i] > value
	})
	h.counts[idx]++
}

// Count returns the number of values added to bin i, where bin 0 is the
// underflow bin and the last bin is the overflow bin.
func (h *Histogram) Count(i int) int {
	return h.counts[i]
}

// NumBins returns the total number of bins including underflow and
// overflow.
func (h *Histogram) NumBins() int {
	return len(h.counts)
}

// Total returns the number of values added.
func (h *Histogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// String renders the histogram one bin per line, for example with
// boundaries [0, 1, 2, 3]:
//
//	< 0 = 2
//	[0 - 1) = 5
//	[1 - 2) = 3
//	[2 - 3) = 7
//	> 3 = 2
//
// The underflow and overflow lines are omitted when empty.
func (h *Histogram) String() string {
	var sb strings.Builder

	if h.counts[0] > 0 {
		fmt.Fprintf(&sb, "< %g = %d\n", h.boundaries[0], h.counts[0])
	}
	for i := 1; i < len(h.boundaries); i++ {
		fmt.Fprintf(&sb, "[%g - %g) = %d\n", h.boundaries[i-1], h.boundaries[i], h.counts[i])
	}
	last := len(h.counts) - 1
	if h.counts[last] > 0 {
		fmt.Fprintf(&sb, "> %g = %d\n", h.boundaries[len(h.boundaries)-1], h.counts[last])
	}
	return sb.String()
}
