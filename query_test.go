package rosepress

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{13, 6, 3},
		{13, 10, 2},
		{100, 10, 10},
		{5, 0, 0},
		{-1, 6, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestQueryOffset(t *testing.T) {
	tests := []struct {
		page, pageSize, want int
	}{
		{1, 6, 0},
		{2, 6, 6},
		{3, 6, 12},
		{0, 6, 0},  // page clamped to 1
		{-5, 6, 0}, // page clamped to 1
		{2, 0, PublicPageSize},
	}

	for _, tt := range tests {
		q := PostQuery{Page: tt.page, PageSize: tt.pageSize}
		if got := q.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tt.page, tt.pageSize, got, tt.want)
		}
	}
}

func TestQueryNormalized(t *testing.T) {
	q := PostQuery{Sort: "bogus"}.normalized()
	if q.Sort != SortDesc {
		t.Errorf("Sort = %q, want %q", q.Sort, SortDesc)
	}
	if q.Page != 1 {
		t.Errorf("Page = %d, want 1", q.Page)
	}
	if q.PageSize != PublicPageSize {
		t.Errorf("PageSize = %d, want %d", q.PageSize, PublicPageSize)
	}

	q = PostQuery{Sort: SortAsc, Page: 3, PageSize: 10}.normalized()
	if q.Sort != SortAsc || q.Page != 3 || q.PageSize != 10 {
		t.Errorf("valid query changed by normalized: %+v", q)
	}
}
