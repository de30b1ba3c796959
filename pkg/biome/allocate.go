package biome

import (
	"fmt"
	"math"
)

// genEdge is the allocator's working state for one boundary loop position.
type genEdge struct {
	length float64
	// req is the assigned requirement index, or -1.
	req int
	// lengthToStart is the unassigned length from this position up to the
	// start of the next run. Only meaningful while unassigned.
	lengthToStart float64
	// runStart and runEnd bound the run an assigned position belongs to.
	runStart, runEnd int
}

type allocState struct {
	edges []genEdge
	reqs  []Requirement
	total float64
}

func newAllocState(lengths []float64, reqs []Requirement) *allocState {
	s := &allocState{edges: make([]genEdge, len(lengths)), reqs: reqs}
	for _, l := range lengths {
		s.total += l
	}
	for i, l := range lengths {
		s.edges[i] = genEdge{length: l, req: -1, lengthToStart: s.total, runStart: -1, runEnd: -1}
	}
	return s
}

func (s *allocState) clone() *allocState {
	c := *s
	c.edges = append([]genEdge(nil), s.edges...)
	return &c
}

func (s *allocState) next(i int) int { return (i + 1) % len(s.edges) }
func (s *allocState) prev(i int) int { return (i - 1 + len(s.edges)) % len(s.edges) }

func (s *allocState) assigned(i int) bool { return s.edges[i].req >= 0 }

func (s *allocState) unassignedLength() float64 {
	total := 0.0
	for _, e := range s.edges {
		if e.req < 0 {
			total += e.length
		}
	}
	return total
}

// place marks positions from start forward for requirement q until the run
// reaches its minimum length, then refreshes the room ahead of every
// unassigned position leading up to it.
func (s *allocState) place(q, start int) error {
	need := s.reqs[q].MinLength
	i, acc := start, 0.0
	var marked []int
	for {
		if s.assigned(i) {
			return fmt.Errorf("place %q at %d: position %d already holds %q", s.reqs[q].ID, start, i, s.reqs[s.edges[i].req].ID)
		}
		marked = append(marked, i)
		acc += s.edges[i].length
		if acc >= need {
			break
		}
		i = s.next(i)
		if i == start {
			return fmt.Errorf("place %q at %d: loop too short", s.reqs[q].ID, start)
		}
	}
	end := marked[len(marked)-1]
	for _, m := range marked {
		s.edges[m].req = q
		s.edges[m].lengthToStart = 0
		s.edges[m].runStart = start
		s.edges[m].runEnd = end
	}
	s.backfill(start)
	return nil
}

// backfill rewrites lengthToStart for the unassigned positions before start,
// walking backward until the previous run.
func (s *allocState) backfill(start int) {
	acc := 0.0
	for i := s.prev(start); i != start && !s.assigned(i); i = s.prev(i) {
		acc += s.edges[i].length
		s.edges[i].lengthToStart = acc
	}
}

// refresh backfills ahead of every run.
func (s *allocState) refresh() {
	for i, e := range s.edges {
		if e.req >= 0 && e.runStart == i {
			s.backfill(i)
		}
	}
}

// unassign clears every position of the run starting at start and returns
// its end.
func (s *allocState) unassign(start int) int {
	end := s.edges[start].runEnd
	for i := start; ; i = s.next(i) {
		s.edges[i].req = -1
		s.edges[i].runStart = -1
		s.edges[i].runEnd = -1
		if i == end {
			break
		}
	}
	return end
}

// makeSpace frees length of contiguous unassigned room from index onward.
// Runs in the way are pushed forward; no walk may reach capIndex, which
// keeps a run from being pushed around the loop into itself. The state is
// left partially modified on failure, so callers run it on a clone.
func (s *allocState) makeSpace(index, capIndex int, length float64) bool {
	acc := 0.0
	for j, first := index, true; ; first = false {
		if !first && j == capIndex {
			return false
		}
		if s.assigned(j) {
			if !s.pushRun(j, capIndex) {
				return false
			}
			continue
		}
		acc += s.edges[j].length
		if acc >= length {
			return true
		}
		j = s.next(j)
	}
}

// pushRun moves the run starting at start one position forward. The freed
// head leaves the run; when what remains is shorter than its requirement's
// minimum, the tail regrows into room made after the run's end.
func (s *allocState) pushRun(start, capIndex int) bool {
	e := s.edges[start]
	q := e.req
	remaining := -s.edges[start].length
	for i := start; ; i = s.next(i) {
		remaining += s.edges[i].length
		if i == e.runEnd {
			break
		}
	}

	after := s.next(e.runEnd)
	newStart := s.next(start)
	if start == e.runEnd {
		newStart = after
	}
	if need := s.reqs[q].MinLength - remaining; need > 0 {
		if after == capIndex {
			return false
		}
		s.unassign(start)
		if !s.makeSpace(after, capIndex, need) {
			return false
		}
	} else {
		s.unassign(start)
	}
	if err := s.place(q, newStart); err != nil {
		return false
	}
	s.refresh()
	return true
}

// pushAndPlace makes room for q at index and places it there as one
// transaction against s.
func (s *allocState) pushAndPlace(q, index int) (*allocState, bool) {
	work := s.clone()
	if !work.makeSpace(index, index, s.reqs[q].MinLength) {
		return s, false
	}
	if err := work.place(q, index); err != nil {
		return s, false
	}
	return work, true
}

// tryPlace places one run of q, preferring a start with enough natural room
// ahead of it.
func (s *allocState) tryPlace(q int, rng Rand) (*allocState, bool) {
	minLen := s.reqs[q].MinLength
	var natural, free []int
	for i, e := range s.edges {
		if e.req >= 0 {
			continue
		}
		free = append(free, i)
		if e.lengthToStart > minLen {
			natural = append(natural, i)
		}
	}
	if len(natural) > 0 {
		start := natural[rng.Intn(len(natural))]
		if err := s.place(q, start); err != nil {
			return s, false
		}
		return s, true
	}
	if len(free) == 0 {
		return s, false
	}
	return s.pushAndPlace(q, free[rng.Intn(len(free))])
}

// Allocate assigns runs of the requirements onto a circular boundary loop
// whose positions have the given arc lengths. The first len(reqs) attempts
// place each requirement once in declared order; requirements still below
// their MinCount come next, then remaining attempts pick a random
// requirement that still fits. At most maxBiomeCount placements are
// attempted, so at most that many runs exist.
func Allocate(lengths []float64, reqs []Requirement, maxBiomeCount int, rng Rand) (*Allocation, error) {
	s, _, err := allocate(lengths, reqs, maxBiomeCount, rng)
	if err != nil {
		return nil, err
	}
	return s.result(), nil
}

// allocate runs the placement loop and also returns the requirement of
// every successful placement in the order it happened.
func allocate(lengths []float64, reqs []Requirement, maxBiomeCount int, rng Rand) (*allocState, []int, error) {
	if err := checkRequirements(reqs); err != nil {
		return nil, nil, err
	}

	total, required, count := 0.0, 0.0, 0
	for _, l := range lengths {
		total += l
	}
	smallest := math.Inf(1)
	for _, r := range reqs {
		required += float64(r.MinCount) * r.MinLength
		count += r.MinCount
		smallest = math.Min(smallest, r.MinLength)
	}
	if required > total {
		return nil, nil, infeasible(required-total, "required length %.3f exceeds boundary length %.3f", required, total)
	}
	if count > maxBiomeCount {
		return nil, nil, infeasible(0, "%d required runs exceed max biome count %d", count, maxBiomeCount)
	}

	s := newAllocState(lengths, reqs)
	if len(lengths) == 0 {
		return s, nil, nil
	}

	placed := make([]int, len(reqs))
	var order []int
	for attempt := 0; attempt < maxBiomeCount; attempt++ {
		remaining := s.unassignedLength()
		runs, _ := outstanding(reqs, placed)
		if runs == 0 && remaining < smallest {
			break
		}

		q := nextRequirement(attempt, reqs, placed, remaining, rng)
		if q < 0 {
			break
		}

		var ok bool
		s, ok = s.tryPlace(q, rng)
		if ok {
			placed[q]++
			order = append(order, q)
		}

		runs, need := outstanding(reqs, placed)
		if rest := s.unassignedLength(); need > rest {
			return nil, nil, infeasible(need-rest, "%d required runs need %.3f but %.3f is unassigned", runs, need, rest)
		}
	}

	if runs, need := outstanding(reqs, placed); runs > 0 {
		return nil, nil, infeasible(0, "%d required runs (%.3f) left unplaced after %d attempts", runs, need, maxBiomeCount)
	}
	return s, order, nil
}

// nextRequirement picks the requirement for one attempt, or -1 when none
// fits in the remaining length.
func nextRequirement(attempt int, reqs []Requirement, placed []int, remaining float64, rng Rand) int {
	if attempt < len(reqs) {
		return attempt
	}
	for i, r := range reqs {
		if placed[i] < r.MinCount {
			return i
		}
	}
	var fits []int
	for i, r := range reqs {
		if r.MinLength <= remaining {
			fits = append(fits, i)
		}
	}
	if len(fits) == 0 {
		return -1
	}
	return fits[rng.Intn(len(fits))]
}

// outstanding counts the runs still needed to reach every MinCount and
// their summed minimum length.
func outstanding(reqs []Requirement, placed []int) (int, float64) {
	runs, need := 0, 0.0
	for i, r := range reqs {
		if k := r.MinCount - placed[i]; k > 0 {
			runs += k
			need += float64(k) * r.MinLength
		}
	}
	return runs, need
}
