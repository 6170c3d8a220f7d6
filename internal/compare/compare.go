// Package compare matches the same product across shops and orders the offers.
package compare

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// SortKey selects the ordering applied to comparable listings.
type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByRating   SortKey = "rating"
	SortByDistance SortKey = "distance"
)

// ParseSortKey normalizes a query value. Unknown keys yield "".
func ParseSortKey(value string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(value))); key {
	case SortByPrice, SortByRating, SortByDistance:
		return key
	default:
		return ""
	}
}

// Matchable exposes the identity and display name used for duplicate matching.
type Matchable interface {
	MatchID() uuid.UUID
	MatchName() string
}

// Listing exposes the attributes offers are ranked by.
type Listing interface {
	ListingPrice() int64
	ListingRating() int
	ListingDistanceKm() float64
}

// NormalizeName is the comparison form of a product name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindMatchingProducts returns every entry whose name equals name ignoring case
// and surrounding whitespace, except excludeID. Input order is preserved.
func FindMatchingProducts[T Matchable](name string, all []T, excludeID uuid.UUID) []T {
	target := NormalizeName(name)
	out := make([]T, 0)
	if target == "" {
		return out
	}
	for _, item := range all {
		if item.MatchID() == excludeID {
			continue
		}
		if NormalizeName(item.MatchName()) == target {
			out = append(out, item)
		}
	}
	return out
}

// ApplySorting returns a stably sorted copy: price ascending, rating
// descending or distance ascending. Unknown keys keep the input order.
func ApplySorting[T Listing](listings []T, key SortKey) []T {
	out := make([]T, len(listings))
	copy(out, listings)

	var less func(i, j int) bool
	switch key {
	case SortByPrice:
		less = func(i, j int) bool { return out[i].ListingPrice() < out[j].ListingPrice() }
	case SortByRating:
		less = func(i, j int) bool { return out[i].ListingRating() > out[j].ListingRating() }
	case SortByDistance:
		less = func(i, j int) bool { return out[i].ListingDistanceKm() < out[j].ListingDistanceKm() }
	default:
		return out
	}
	sort.SliceStable(out, less)
	return out
}
