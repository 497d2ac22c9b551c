package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	testCases := []struct {
		name                    string
		limit, offset, returned int
		total                   int64
		want                    Pagination
	}{
		{
			name: "first page", limit: 10, offset: 0, returned: 10, total: 25,
			want: Pagination{Page: 1, PageSize: 10, TotalPages: 3, TotalItems: 25, HasMore: true, From: 1, To: 10},
		},
		{
			name: "last page", limit: 10, offset: 20, returned: 5, total: 25,
			want: Pagination{Page: 3, PageSize: 10, TotalPages: 3, TotalItems: 25, From: 21, To: 25},
		},
		{
			name: "past the end", limit: 10, offset: 30, returned: 0, total: 25,
			want: Pagination{Page: 4, PageSize: 10, TotalPages: 3, TotalItems: 25},
		},
		{
			name: "no limit", limit: 0, offset: 0, returned: 4, total: 4,
			want: Pagination{Page: 1, PageSize: 4, TotalPages: 1, TotalItems: 4, From: 1, To: 4},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, &tc.want, NewPagination(tc.limit, tc.offset, tc.returned, tc.total))
		})
	}
}
