package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes an offset/limit window over total items. returned
// is the number of items actually in the window.
func NewPagination(limit, offset, returned int, total int64) *Pagination {
	if limit <= 0 {
		limit = returned
	}
	p := &Pagination{
		PageSize:   limit,
		TotalItems: total,
	}
	if limit > 0 {
		p.Page = offset/limit + 1
		p.TotalPages = (total + int64(limit) - 1) / int64(limit)
	}
	if returned > 0 {
		p.From = offset + 1
		p.To = offset + returned
	}
	p.HasMore = int64(offset+returned) < total
	return p
}
