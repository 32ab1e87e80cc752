package utils

import (
	"errors"
	"strconv"
	"strings"
)

// PageSize is the number of posts on every feed page.
const PageSize = 10

// Paginator splits Total items into pages of PageSize.
type Paginator struct {
	Total    int64
	PageSize int
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T
	Number     int
	NumPages   int
	TotalCount int64
}

// NumPages is never below 1, an empty collection has one empty page.
func (p Paginator) NumPages() int {
	size := int64(p.size())
	if p.Total <= 0 {
		return 1
	}
	return int((p.Total + size - 1) / size)
}

// Resolve parses a raw page parameter. Non-numeric and non-positive values give
// page 1, values past the end give the last page, integers too large for int included.
func (p Paginator) Resolve(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return p.NumPages()
	}
	if err != nil || n < 1 {
		return 1
	}
	if last := p.NumPages(); n > last {
		return last
	}
	return n
}

// Offset returns the row offset of page number n.
func (p Paginator) Offset(n int) int {
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.size()
}

func (p Paginator) size() int {
	if p.PageSize <= 0 {
		return PageSize
	}
	return p.PageSize
}

// NewPage wraps items fetched for page n.
func NewPage[T any](p Paginator, n int, items []T) Page[T] {
	return Page[T]{Items: items, Number: n, NumPages: p.NumPages(), TotalCount: p.Total}
}

// Paginate slices an in-memory collection the same way the database-backed feeds do.
func Paginate[T any](items []T, pageSize int, raw string) Page[T] {
	p := Paginator{Total: int64(len(items)), PageSize: pageSize}
	n := p.Resolve(raw)
	start := p.Offset(n)
	end := start + p.size()
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return NewPage(p, n, items[start:end])
}

func (pg Page[T]) HasPrevious() bool { return pg.Number > 1 }

func (pg Page[T]) HasNext() bool { return pg.Number < pg.NumPages }

func (pg Page[T]) HasOtherPages() bool { return pg.NumPages > 1 }

func (pg Page[T]) PreviousPageNumber() int {
	if pg.HasPrevious() {
		return pg.Number - 1
	}
	return pg.Number
}

func (pg Page[T]) NextPageNumber() int {
	if pg.HasNext() {
		return pg.Number + 1
	}
	return pg.Number
}

// PageRange lists 1..NumPages for rendering page links.
func (pg Page[T]) PageRange() []int {
	r := make([]int, pg.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
