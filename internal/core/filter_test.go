package core

import (
	"errors"
	"testing"
)

func TestParseSearchField(t *testing.T) {
	cases := []struct {
		in   string
		want SearchField
		ok   bool
	}{
		{"", SearchNote, true},
		{"note", SearchNote, true},
		{"category", SearchCategory, true},
		{"subcategory", SearchSubcategory, true},
		{"amount", "", false},
		{"Note", "", false},
	}
	for _, tc := range cases {
		got, err := ParseSearchField(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
		} else if !errors.Is(err, ErrInvalidSearchField) {
			t.Fatalf("%q expected ErrInvalidSearchField, got %v", tc.in, err)
		}
	}
}

func TestWhereComposesInOrder(t *testing.T) {
	f := Where(DateRange("2024-01-01", "2024-01-31"), CategoryIs("food"))
	if len(f) != 3 {
		t.Fatalf("expected 3 predicates, got %d", len(f))
	}
	if f[0].Operator != OpGreaterEqual || f[1].Operator != OpLessEqual || f[2].Column != ColumnCategory {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if got := Where(CategoryIs("")); len(got) != 0 {
		t.Fatalf("empty category should add nothing, got %+v", got)
	}
}

func TestBulkDeleteFilter(t *testing.T) {
	cases := []struct {
		name     string
		b        BulkDelete
		want     int
		loneOnly bool
	}{
		{"no filters wipes", BulkDelete{}, 0, false},
		{"full range", BulkDelete{StartDate: "2024-01-01", EndDate: "2024-01-02"}, 2, false},
		{"lone start is dropped", BulkDelete{StartDate: "2024-01-01"}, 0, true},
		{"lone end with category", BulkDelete{EndDate: "2024-01-01", Category: "food"}, 1, true},
		{"range and category", BulkDelete{StartDate: "a", EndDate: "b", Category: "food"}, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(tc.b.Filter()); got != tc.want {
				t.Fatalf("expected %d predicates, got %d", tc.want, got)
			}
			if tc.b.HasLoneBound() != tc.loneOnly {
				t.Fatalf("HasLoneBound = %v", tc.b.HasLoneBound())
			}
		})
	}
}
