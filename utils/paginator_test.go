package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateThirteenItems(t *testing.T) {
	items := numbers(13)

	first := Paginate(items, PageSize, "")
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.NumPages)
	assert.EqualValues(t, 13, first.TotalCount)
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasNext())
	assert.Equal(t, 2, first.NextPageNumber())

	second := Paginate(items, PageSize, "2")
	assert.Equal(t, []int{11, 12, 13}, second.Items)
	assert.True(t, second.HasPrevious())
	assert.False(t, second.HasNext())
	assert.Equal(t, 1, second.PreviousPageNumber())
	assert.Equal(t, []int{1, 2}, second.PageRange())
}

func TestPaginateOutOfRangeParams(t *testing.T) {
	items := numbers(25)

	cases := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-4":  1,
		"3":   3,
		"99":  3,
		"1.5": 1,
		" 2 ": 2,
		"+2":  2,
	}
	for raw, want := range cases {
		page := Paginate(items, PageSize, raw)
		assert.Equal(t, want, page.Number, "page param %q", raw)
	}

	last := Paginate(items, PageSize, "99")
	assert.Equal(t, []int{21, 22, 23, 24, 25}, last.Items)

	// values that do not fit in an int
	assert.Equal(t, 3, Paginate(items, PageSize, "99999999999999999999").Number)
	assert.Equal(t, 1, Paginate(items, PageSize, "-99999999999999999999").Number)

	overflow := Paginate(numbers(13), PageSize, "99999999999999999999")
	assert.Equal(t, 2, overflow.Number)
	assert.Equal(t, []int{11, 12, 13}, overflow.Items)
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate([]int{}, PageSize, "5")
	require.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasOtherPages())
}

func TestPaginatorOffsets(t *testing.T) {
	p := Paginator{Total: 31, PageSize: 10}
	assert.Equal(t, 4, p.NumPages())
	assert.Equal(t, 0, p.Offset(1))
	assert.Equal(t, 30, p.Offset(p.Resolve("4")))
	assert.Equal(t, p.Resolve("7"), p.Resolve("4"))

	assert.Equal(t, PageSize, Paginator{Total: 1}.size())
}

func TestPaginateIsDeterministic(t *testing.T) {
	items := numbers(42)
	assert.Equal(t, Paginate(items, PageSize, "3"), Paginate(items, PageSize, "3"))
}
