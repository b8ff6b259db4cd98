package ledger

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"guestlist/internal/models"
)

type filterKind int

const (
	filterAll filterKind = iota
	filterStaff
	filterLink
)

// AttributionFilter narrows a guest listing to one attribution source.
// It replaces the legacy "all" / "<userId>" / "ext:<linkId>" string
// encoding with a tagged value.
type AttributionFilter struct {
	kind filterKind
	id   string
}

func AllGuests() AttributionFilter {
	return AttributionFilter{kind: filterAll}
}

func ByStaff(userID string) AttributionFilter {
	return AttributionFilter{kind: filterStaff, id: userID}
}

func ByLink(linkID string) AttributionFilter {
	return AttributionFilter{kind: filterLink, id: linkID}
}

// ParseAttributionFilter accepts the query-string encoding still used by
// the UI: "all", "ext:<linkID>", or a staff user id.
func ParseAttributionFilter(s string) AttributionFilter {
	switch {
	case s == "" || s == "all":
		return AllGuests()
	case strings.HasPrefix(s, "ext:"):
		return ByLink(strings.TrimPrefix(s, "ext:"))
	default:
		return ByStaff(s)
	}
}

func (f AttributionFilter) Matches(g models.Guest) bool {
	switch f.kind {
	case filterStaff:
		return g.CreatedBy == f.id
	case filterLink:
		return g.LinkID == f.id
	default:
		return true
	}
}

// Apply returns the guests matching the filter, preserving input order.
func (f AttributionFilter) Apply(guests []models.Guest) []models.Guest {
	if f.kind == filterAll {
		return guests
	}
	out := make([]models.Guest, 0, len(guests))
	for _, g := range guests {
		if f.Matches(g) {
			out = append(out, g)
		}
	}
	return out
}

type SortOrder int

const (
	// SortByCreated is the stable default: chronological by creation time.
	SortByCreated SortOrder = iota
	// SortByName sorts alphabetically under Korean-aware, case-insensitive
	// collation. The operator base is Korean-speaking, so Hangul names
	// must order correctly next to Latin ones.
	SortByName
)

func ParseSortOrder(s string) SortOrder {
	if s == "name" {
		return SortByName
	}
	return SortByCreated
}

// SortGuests orders the slice in place. Both orders are stable so that
// repeated refreshes render identically for identical input.
func SortGuests(guests []models.Guest, order SortOrder) {
	switch order {
	case SortByName:
		c := collate.New(language.Korean, collate.IgnoreCase)
		sort.SliceStable(guests, func(i, j int) bool {
			return c.CompareString(guests[i].Name, guests[j].Name) < 0
		})
	default:
		sort.SliceStable(guests, func(i, j int) bool {
			return guests[i].CreatedAt.Before(guests[j].CreatedAt)
		})
	}
}
