package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	p := ParsePagination(url.Values{"page": {"3"}, "limit": {"10"}})
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)

	p = ParsePagination(url.Values{"page": {"-1"}, "limit": {"1000"}})
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset)

	p = ParsePagination(url.Values{"limit": {"abc"}})
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Pagination{Limit: 10, Page: 2}
	p.ComputeMeta(25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestOrderStatus(t *testing.T) {
	assert.Equal(t, "completed", OrderStatus(url.Values{"status": {" Completed "}}))
	assert.Equal(t, "", OrderStatus(url.Values{"status": {"refunded"}}))
	assert.Equal(t, "", OrderStatus(url.Values{}))
}
