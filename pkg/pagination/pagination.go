package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// Params holds the page window of a list request.
type Params struct {
	PageNumber int `json:"pageNumber" validate:"gte=1"`
	PageSize   int `json:"pageSize" validate:"gte=1,lte=100"`
}

// DefaultParams returns page 1 with the default page size.
func DefaultParams() Params {
	return Params{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize}
}

// Offset returns the number of items skipped before this page. It saturates
// at math.MaxInt for page numbers whose offset does not fit in an int.
func (p Params) Offset() int {
	if p.PageNumber <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.PageNumber-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.PageNumber - 1) * p.PageSize
}

// FromRequest reads pageNumber and pageSize from the query string, keeping
// defaults for absent values. Non-numeric values are invalid input; range
// checks are left to validation.
func FromRequest(r *http.Request) (Params, error) {
	p := DefaultParams()
	q := r.URL.Query()

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"pageNumber", &p.PageNumber},
		{"pageSize", &p.PageSize},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", f.name))
		}
		*f.dst = v
	}

	return p, nil
}

// PagedResult is one page of a filtered result set. TotalCount counts the
// whole filtered set, not the page.
type PagedResult[T any] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"totalCount"`
	PageNumber  int  `json:"pageNumber"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// NewPagedResult builds a PagedResult and its derived fields. A nil items
// slice is replaced with an empty one so it encodes as [].
func NewPagedResult[T any](items []T, totalCount int, p Params) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (totalCount + p.PageSize - 1) / p.PageSize
	}

	return &PagedResult[T]{
		Items:       items,
		TotalCount:  totalCount,
		PageNumber:  p.PageNumber,
		PageSize:    p.PageSize,
		TotalPages:  totalPages,
		HasPrevious: p.PageNumber > 1,
		HasNext:     p.PageNumber < totalPages,
	}
}
