package ir

// Pool is an insertion-ordered string interning table: each unique string
// is stored exactly once, pool order
// reflects first insertion, and indices are stable until a pass (e.g. the
// optimizer's string-deduplication pass) deliberately rewrites them.
type Pool struct {
	strings []string
	index   map[string]int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{index: map[string]int{}}
}

// Intern returns the stable index for s, inserting it if not already
// present. Every call counts toward a builder's total_strings statistic
// regardless of whether it was a fresh insertion.
func (p *Pool) Intern(s string) int {
	if idx, ok := p.index[s]; ok {
		return idx
	}
	idx := len(p.strings)
	p.strings = append(p.strings, s)
	p.index[s] = idx
	return idx
}

// Get returns the string at idx.
func (p *Pool) Get(idx int) string {
	return p.strings[idx]
}

// Len returns the number of unique strings in the pool.
func (p *Pool) Len() int { return len(p.strings) }

// Strings returns the pool contents in insertion order. Callers must treat
// the result as read-only.
func (p *Pool) Strings() []string { return p.strings }

// TotalBytes sums the UTF-8 byte length of every unique string in the
// pool, used for the builder's total_bytes statistic.
func (p *Pool) TotalBytes() int {
	n := 0
	for _, s := range p.strings {
		n += len(s)
	}
	return n
}

// Rebuild replaces the pool contents with newStrings, a deduplicated and
// possibly reordered view produced by the optimizer's string-deduplication
// pass. It returns a mapping from old index to new index so callers can
// rewrite every reference in the IR.
func (p *Pool) Rebuild(newStrings []string) []int {
	remap := make([]int, len(p.strings))
	newIndex := map[string]int{}
	for i, s := range newStrings {
		newIndex[s] = i
	}
	for oldIdx, s := range p.strings {
		remap[oldIdx] = newIndex[s]
	}
	p.strings = newStrings
	p.index = newIndex
	return remap
}
