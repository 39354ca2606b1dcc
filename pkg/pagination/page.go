package pagination

// PageCount returns the number of pages needed for total items at size
// items per page, never less than 1.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return max(1, (total+size-1)/size)
}

// ClampPage restricts page to [1, pageCount].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	return min(max(page, 1), pageCount)
}

// Slice returns the items on the given 1-based page. Pages past the end
// yield an empty slice.
func Slice[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	start := (max(page, 1) - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}
