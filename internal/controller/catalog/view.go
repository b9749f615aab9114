package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/abhishek622/moviestream/pkg/model"
)

// SortKey selects the ordering of a catalog view.
type SortKey string

const (
	SortByRating = SortKey("rating")
	SortByName   = SortKey("name")
	SortByDate   = SortKey("date")
)

// ParseSortKey accepts the canonical keys and the column names the list
// pages historically used. An empty string means SortByRating.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rating":
		return SortByRating, nil
	case "name", "title":
		return SortByName, nil
	case "date", "release_date", "first_air_date":
		return SortByDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// epoch stands in for a missing date, so undated titles rank as 1970-01-01.
var epoch = time.Unix(0, 0).UTC()

// View filters all by query and genre and orders the survivors by key.
// Titles are kept when their name contains query (case-insensitive) and,
// unless genre is model.GenreAll, when genre is one of their genres. Sorting
// is stable. The input is not modified.
func View(all []model.Title, query, genre string, key SortKey) []model.Title {
	q := strings.ToLower(query)
	out := make([]model.Title, 0, len(all))
	for _, t := range all {
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) {
			continue
		}
		if genre != model.GenreAll && !t.HasGenre(genre) {
			continue
		}
		out = append(out, t)
	}

	switch key {
	case SortByRating:
		slices.SortStableFunc(out, func(a, b model.Title) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		})
	case SortByName:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b model.Title) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortByDate:
		slices.SortStableFunc(out, func(a, b model.Title) int {
			return dateOrEpoch(b).Compare(dateOrEpoch(a))
		})
	}
	return out
}

func dateOrEpoch(t model.Title) time.Time {
	if d, ok := t.Date(); ok {
		return d
	}
	return epoch
}
