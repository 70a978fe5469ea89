package posts

import (
	"testing"
	"time"
)

func sortFixture() []*Post {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	return []*Post{
		{Title: "a", Votes: 3, Created: base.Add(-3 * time.Hour), Expires: base.Add(21 * time.Hour)},
		{Title: "b", Votes: 1, Created: base.Add(-1 * time.Hour), Expires: base.Add(23 * time.Hour)},
		{Title: "c", Votes: 5, Created: base.Add(-2 * time.Hour), Expires: base.Add(22 * time.Hour)},
	}
}

func titles(items []*Post) string {
	res := ""
	for _, p := range items {
		res += p.Title
	}
	return res
}

func TestSort(t *testing.T) {
	cases := []struct {
		opt      SortOption
		expected string
	}{
		{Top, "cab"},
		{Undiscovered, "bac"},
		{JustAdded, "bca"},
		{LastCall, "acb"},
	}

	for _, tc := range cases {
		items := sortFixture()
		Sort(items, tc.opt)
		if fact := titles(items); fact != tc.expected {
			t.Errorf("%s: expected order %q but was %q", tc.opt, tc.expected, fact)
		}
	}
}

func TestSortStable(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []*Post{
		{Title: "first", Votes: 2, Created: base},
		{Title: "second", Votes: 2, Created: base},
	}

	Sort(items, Top)

	if items[0].Title != "first" || items[1].Title != "second" {
		t.Fatal("equal votes must keep insertion order")
	}
}

func TestSortUnknownOptionKeepsOrder(t *testing.T) {
	items := sortFixture()
	Sort(items, SortOption("BOGUS"))

	if fact := titles(items); fact != "abc" {
		t.Fatalf("unknown option must not reorder, got %q", fact)
	}
}
