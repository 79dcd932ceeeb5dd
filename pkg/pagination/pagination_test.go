package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query   string
		page    int
		perPage int
	}{
		{"", 1, DefaultPerPage},
		{"?page=3&per_page=50", 3, 50},
		{"?page=0&per_page=0", 1, DefaultPerPage},
		{"?page=-2&per_page=101", 1, DefaultPerPage},
		{"?page=abc&per_page=xyz", 1, DefaultPerPage},
		{"?per_page=100", 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
		})
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	first := Slice(items, Params{Page: 1, PerPage: 2})
	assert.Equal(t, []int{1, 2}, first.Items)
	assert.Equal(t, 5, first.TotalCount)
	assert.Equal(t, 3, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	last := Slice(items, Params{Page: 3, PerPage: 2})
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
}

func TestSlice_PastTheEnd(t *testing.T) {
	r := Slice([]string{"a"}, Params{Page: 4, PerPage: 10})
	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)
	assert.Equal(t, 1, r.TotalPages)
}

func TestSlice_Empty(t *testing.T) {
	r := Slice([]string(nil), Params{})
	assert.NotNil(t, r.Items)
	assert.Equal(t, 0, r.TotalPages)
	assert.Equal(t, DefaultPerPage, r.PerPage)
	assert.False(t, r.HasNext)
}

func TestSlice_CopiesWindow(t *testing.T) {
	items := []int{1, 2, 3}
	r := Slice(items, Params{Page: 1, PerPage: 2})
	r.Items[0] = 99
	assert.Equal(t, 1, items[0])
}
