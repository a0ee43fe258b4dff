package reservation

import (
	"sort"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
)

// Block groups the reservations of one amenity/day that share a bit-identical
// (start, end) pair. This models block-style scheduling where the ruleset
// defines fixed slots. Overlapping-but-different ranges are never merged;
// those are the simultaneity rule's concern, not grouping's.
type Block struct {
	Start        timeofday.Minutes
	End          timeofday.Minutes
	Reservations []*Reservation
}

// BuildBlocks partitions reservations into display blocks sorted ascending by
// start (then end). Every reservation lands in exactly one block and blocks'
// (start, end) pairs are pairwise distinct.
func BuildBlocks(reservations []*Reservation) []Block {
	type key struct {
		start timeofday.Minutes
		end   timeofday.Minutes
	}

	grouped := map[key][]*Reservation{}
	for _, r := range reservations {
		k := key{start: r.Slot().Start(), end: r.Slot().End()}
		grouped[k] = append(grouped[k], r)
	}

	blocks := make([]Block, 0, len(grouped))
	for k, rs := range grouped {
		blocks = append(blocks, Block{Start: k.start, End: k.end, Reservations: rs})
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Start != blocks[j].Start {
			return blocks[i].Start < blocks[j].Start
		}
		return blocks[i].End < blocks[j].End
	})
	return blocks
}
