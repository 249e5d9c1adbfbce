package core

import (
	"errors"
	"testing"
)

func TestParseSortField(t *testing.T) {
	for _, ok := range []string{"transactionDate", "amount", "createdAt", "description", "id"} {
		if _, err := ParseSortField(ok); err != nil {
			t.Fatalf("%q should be accepted: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "balance; DROP TABLE", "date"} {
		if _, err := ParseSortField(bad); !errors.Is(err, ErrInvalidSortField) {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestNewPageRequest(t *testing.T) {
	cases := []struct {
		number, size         int
		wantNumber, wantSize int
	}{
		{0, 10, 0, 10},
		{-3, 0, 0, DefaultPageSize},
		{2, 500, 2, MaxPageSize},
	}
	for _, tc := range cases {
		got := NewPageRequest(tc.number, tc.size)
		if got.Number != tc.wantNumber || got.Size != tc.wantSize {
			t.Fatalf("NewPageRequest(%d, %d) = %+v", tc.number, tc.size, got)
		}
	}

	if off := NewPageRequest(3, 20).Offset(); off != 60 {
		t.Fatalf("offset = %d, want 60", off)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 23, NewPageRequest(0, 10))
	if p.TotalPages != 3 || p.TotalElements != 23 {
		t.Fatalf("unexpected page math: %+v", p)
	}

	empty := NewPage[int](nil, 0, NewPageRequest(0, 10))
	if empty.Content == nil {
		t.Fatal("content must serialize as [] rather than null")
	}
	if empty.TotalPages != 0 {
		t.Fatalf("empty result should have zero pages, got %d", empty.TotalPages)
	}
}
