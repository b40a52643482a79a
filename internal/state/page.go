package state

// Slice returns the 1-based page of entries and the total page count.
// An empty list has zero pages. Pages outside 1..total yield an empty,
// non-nil slice. A non-positive size puts everything on one page.
func Slice(entries []Entry, page, size int) ([]Entry, int) {
	n := len(entries)
	if n == 0 {
		return []Entry{}, 0
	}
	if size <= 0 {
		size = n
	}
	total := (n + size - 1) / size
	if page < 1 || page > total {
		return []Entry{}, total
	}
	start := (page - 1) * size
	end := min(start+size, n)
	out := make([]Entry, end-start)
	copy(out, entries[start:end])
	return out, total
}

// ClampPage keeps page within 1..total, returning 1 when there are no pages.
func ClampPage(page, total int) int {
	if total < 1 || page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
