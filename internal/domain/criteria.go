package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AdrielSA/backend-test/pkg/pagination"
)

// SortBy selects the ordering of a movie listing.
type SortBy int

const (
	SortByCreatedAt SortBy = iota
	SortByTitle
	SortByYear
	SortByRating
)

var sortByNames = map[SortBy]string{
	SortByCreatedAt: "CreatedAt",
	SortByTitle:     "Title",
	SortByYear:      "Year",
	SortByRating:    "Rating",
}

// SortByNames lists the accepted names in declaration order.
func SortByNames() []string {
	return []string{"Title", "Year", "Rating", "CreatedAt"}
}

// String returns the name used in requests and cache keys.
func (s SortBy) String() string {
	if name, ok := sortByNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SortBy(%d)", int(s))
}

// Valid reports whether s is a recognised ordering.
func (s SortBy) Valid() bool {
	_, ok := sortByNames[s]
	return ok
}

// ParseSortBy accepts a name case-insensitively. Empty means CreatedAt.
func ParseSortBy(name string) (SortBy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SortByCreatedAt, nil
	}
	for s, n := range sortByNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown sortBy %q", name)
}

func (s SortBy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SortBy) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSortBy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// FilterCriteria describes one movie listing request.
type FilterCriteria struct {
	Search       string `json:"search"`
	SortBy       SortBy `json:"sortBy"`
	IsDescending bool   `json:"isDescending"`
	pagination.Params
}

// DefaultFilterCriteria returns no search, CreatedAt ascending, page 1 of 10.
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{SortBy: SortByCreatedAt, Params: pagination.DefaultParams()}
}

// SearchTerm is the trimmed search; empty means no filter.
func (c FilterCriteria) SearchTerm() string {
	return strings.TrimSpace(c.Search)
}
