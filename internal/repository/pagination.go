package repository

// Page represents a simple limit/offset window for listing operations.
// I keep it intentionally small; advanced filtering belongs to higher layers.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries a slice of items and the total count in the store.
// I return the total so clients can compute pagination without an extra round trip.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Window clamps p to a sequence of length total and returns the half-open
// [start, end) bounds. Stores that page in memory share it.
func (p Page) Window(total int) (start, end int) {
	start = p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end = total
	if p.Limit > 0 && p.Limit < total-start {
		end = start + p.Limit
	}
	return start, end
}
