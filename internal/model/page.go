package model

// PagingInfo describes the position of a page inside a listing.
type PagingInfo struct {
	CurrentPage   int   `json:"currentPage"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
}

// PageRequest carries normalized paging parameters. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the row offset for SQL LIMIT/OFFSET queries.
func (p PageRequest) Offset() int { return p.Page * p.Size }

// NormalizePage clamps raw paging query values to sane bounds.
func NormalizePage(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return PageRequest{Page: page, Size: size}
}
