// Package index keeps the in-memory line and page bookkeeping of a
// document.
//
// The total line count changes only by deltas; it is never recomputed from
// the pages. Per-page counts are kept alongside so that a page emptied by
// joins still counts as a page until the document is rebuilt.
package index

// Index tracks line counts per page and for the whole document.
type Index struct {
	capacity int
	pages    []int
	total    int
	current  int
}

// New returns the index of a fresh document: one page holding one empty line.
func New(pageCapacity int) *Index {
	x := &Index{capacity: pageCapacity}
	x.Reset([]int{1})
	return x
}

// PageCapacity returns the lines-per-page limit.
func (x *Index) PageCapacity() int { return x.capacity }

// Total returns the number of lines in the document.
func (x *Index) Total() int { return x.total }

// NumPages returns the number of pages.
func (x *Index) NumPages() int { return len(x.pages) }

// Current returns the resident page index.
func (x *Index) Current() int { return x.current }

// SetCurrent records the resident page.
func (x *Index) SetCurrent(p int) { x.current = p }

// PageLines returns the line count of page p.
func (x *Index) PageLines(p int) int { return x.pages[p] }

// IsLast reports whether p is the last page.
func (x *Index) IsLast(p int) bool { return p == len(x.pages)-1 }

// MultiPage reports whether the document spans more than one page.
func (x *Index) MultiPage() bool { return len(x.pages) > 1 }

// Apply adds delta lines to the current page.
func (x *Index) Apply(delta int) {
	x.pages[x.current] += delta
	x.total += delta
}

// SetPageLines replaces the line count of page p.
func (x *Index) SetPageLines(p, n int) {
	x.total += n - x.pages[p]
	x.pages[p] = n
}

// AddPage appends a page of n lines and returns its index.
func (x *Index) AddPage(n int) int {
	x.pages = append(x.pages, n)
	x.total += n
	return len(x.pages) - 1
}

// Resize truncates or extends the page list to n pages. New pages hold
// one line each.
func (x *Index) Resize(n int) {
	n = max(n, 1)
	for len(x.pages) > n {
		last := len(x.pages) - 1
		x.total -= x.pages[last]
		x.pages = x.pages[:last]
	}
	for len(x.pages) < n {
		x.AddPage(1)
	}
	x.current = min(x.current, n-1)
}

// Reset replaces all counts and makes page 0 current.
func (x *Index) Reset(counts []int) {
	if len(counts) == 0 {
		counts = []int{1}
	}
	x.pages = append(x.pages[:0], counts...)
	x.total = 0
	for _, n := range counts {
		x.total += n
	}
	x.current = 0
}

// FirstLine returns the document line number, from 0, of the first line
// of page p.
func (x *Index) FirstLine(p int) int {
	n := 0
	for _, c := range x.pages[:p] {
		n += c
	}
	return n
}

// Locate returns the page and row of document line n, from 0.
func (x *Index) Locate(n int) (page, row int, ok bool) {
	if n < 0 || n >= x.total {
		return 0, 0, false
	}
	for p, c := range x.pages {
		if n < c {
			return p, n, true
		}
		n -= c
	}
	return 0, 0, false
}
