package rosepress

// Page sizes match the public listing grid and the admin table.
const (
	PublicPageSize = 6
	AdminPageSize  = 10
)

// Sort orders accepted by PostQuery. Anything else falls back to SortDesc.
const (
	SortDesc = "desc"
	SortAsc  = "asc"
)

// PostQuery is the filter state behind the post listing: search text,
// category, sort order and page number. The zero value selects the first
// page of all posts, newest first.
type PostQuery struct {
	Search     string
	TitleOnly  bool  // restrict Search to titles; the public listing also matches content
	CategoryID int64 // zero means no category filter
	Sort       string
	Page       int
	PageSize   int
}

// normalized returns a copy with the page clamped to >= 1, the page size
// defaulted, and the sort order reduced to asc/desc.
func (q PostQuery) normalized() PostQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = PublicPageSize
	}
	if q.Sort != SortAsc {
		q.Sort = SortDesc
	}
	return q
}

// Offset returns the zero-indexed row offset for the query's page.
func (q PostQuery) Offset() int {
	q = q.normalized()
	return (q.Page - 1) * q.PageSize
}

// TotalPages returns the number of pages needed for total rows at the
// given page size: ceil(total / pageSize). Zero rows means zero pages.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
