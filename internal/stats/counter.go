package stats

import "sort"

// LabelCount is one row of a frequency table.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Counter counts labels and remembers the order they were first seen in, so
// that ties sort deterministically for a fixed input order.
type Counter struct {
	index   map[string]int
	entries []LabelCount
}

func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Inc adds one to label.
func (c *Counter) Inc(label string) {
	c.Add(label, 1)
}

// Add adds n to label, registering it on first use.
func (c *Counter) Add(label string, n int) {
	if i, ok := c.index[label]; ok {
		c.entries[i].Count += n
		return
	}
	c.index[label] = len(c.entries)
	c.entries = append(c.entries, LabelCount{Label: label, Count: n})
}

// Get returns the count for label, or 0.
func (c *Counter) Get(label string) int {
	if i, ok := c.index[label]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Len is the number of distinct labels.
func (c *Counter) Len() int {
	return len(c.entries)
}

// Entries returns a copy of all entries in first-seen order.
func (c *Counter) Entries() []LabelCount {
	out := make([]LabelCount, len(c.entries))
	copy(out, c.entries)
	return out
}

// Top returns up to n entries by descending count. Equal counts keep
// first-seen order. n <= 0 returns every entry.
func (c *Counter) Top(n int) []LabelCount {
	ordered := c.Entries()
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count > ordered[j].Count
	})
	if n > 0 && len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}
