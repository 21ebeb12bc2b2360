package main

// undetermined is the catch-all destination for unmatched and ambiguous
// reads.
const undetermined = "Undetermined"

// Accumulator collects the run's counters. It is owned by the driving loop,
// mutated once per read during routing, and read-only once the loop ends.
type Accumulator struct {
	Total         int
	Demultiplexed int
	Fuzzy         int
	Clashes       int // reads within threshold of more than one index
	PerDest       map[string]int
	FuzzyIDs      []string // identifiers of fuzzy-matched reads, in read order
}

func NewAccumulator() *Accumulator {
	return &Accumulator{PerDest: map[string]int{undetermined: 0}}
}
