package posts

import "sort"

type SortOption string

const (
	Top          SortOption = "TOP"
	Undiscovered SortOption = "UNDISCOVERED"
	JustAdded    SortOption = "JUST_ADDED"
	LastCall     SortOption = "LAST_CALL"
)

// Sort orders a live post slice in place. Stable, so posts that
// compare equal keep their repository order.
func Sort(items []*Post, opt SortOption) {
	switch opt {
	case Top:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Votes > items[j].Votes
		})
	case Undiscovered:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Votes < items[j].Votes
		})
	case JustAdded:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Created.After(items[j].Created)
		})
	case LastCall:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Expires.Before(items[j].Expires)
		})
	}
}
