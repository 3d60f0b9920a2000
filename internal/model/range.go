package model

// PageRange is a half-open range [First, Limit) of 1-based page indices.
// It is the output of ResolvePageRange and is always a subset of [1, n].
type PageRange struct {
	// First is the first page to process.
	First int

	// Limit is one past the last page to process.
	Limit int

	// Total is the document's page count the range was resolved against.
	Total int

	// Clamped reports whether the requested bounds had to be adjusted to fit
	// the document.
	Clamped bool
}

// ResolvePageRange turns optional 1-based inclusive bounds into a safe range
// over a document of n pages (n >= 0).
//
// Missing bounds default to the whole document. Out-of-range requests are
// clamped rather than rejected: start is clamped to [1, n+1], end to
// [start, n]. A start past the last page yields an empty range.
func ResolvePageRange(start, end *int, n int) PageRange {
	if n < 0 {
		n = 0
	}

	first := 1
	if start != nil {
		first = *start
	}
	firstClamped := clamp(first, 1, n+1)

	last := n
	if end != nil {
		last = *end
	}
	// last >= n is checked first so that a huge end cannot overflow last+1.
	limit := n + 1
	if last < n {
		limit = clamp(last+1, firstClamped, n+1)
	}

	clamped := firstClamped != first
	if end != nil && (last > n || last+1 < firstClamped) {
		clamped = true
	}

	return PageRange{
		First:   firstClamped,
		Limit:   limit,
		Total:   n,
		Clamped: clamped,
	}
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	return r.Limit - r.First
}

// Empty reports whether the range contains no pages.
func (r PageRange) Empty() bool {
	return r.Len() <= 0
}

// Contains reports whether page is inside the range.
func (r PageRange) Contains(page int) bool {
	return page >= r.First && page < r.Limit
}

// Last returns the last page of the range, or 0 when the range is empty.
func (r PageRange) Last() int {
	if r.Empty() {
		return 0
	}
	return r.Limit - 1
}

// Pages returns the page indices of the range in ascending order.
func (r PageRange) Pages() []int {
	if r.Empty() {
		return nil
	}
	pages := make([]int, 0, r.Len())
	for i := r.First; i < r.Limit; i++ {
		pages = append(pages, i)
	}
	return pages
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
