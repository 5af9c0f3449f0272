// Package filter holds the browse filter state shared by the components of a
// listing page and serializes it into the query parameters of the browse
// endpoints.
package filter

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Sort keys accepted by the browse endpoints.
const (
	SortRecommended = "recommended"
	SortRating      = "rating"
	SortReviews     = "reviews"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortNewest      = "newest"
)

// MaxLimit is the largest page size the browse endpoints are asked for.
const MaxLimit = 100

// Query parameter names.
const (
	ParamPage          = "page"
	ParamLimit         = "limit"
	ParamCategory      = "category"
	ParamSubcategories = "subcategories"
	ParamMinRating     = "minRating"
	ParamSearch        = "search"
	ParamSort          = "sort"
	ParamServiceArea   = "serviceArea"
	ParamMinPrice      = "minPrice"
	ParamMaxPrice      = "maxPrice"
)

// State is an immutable snapshot of the browse filters. The zero value is the
// default state: no category, no search, recommended order, no bounds.
// Use the With* methods to derive a changed copy.
type State struct {
	Category      string   `json:"category,omitempty" validate:"omitempty,max=64"`
	Subcategories []string `json:"subcategories,omitempty" validate:"omitempty,dive,required,max=64"`
	Search        string   `json:"search,omitempty" validate:"max=200"`
	Sort          string   `json:"sort,omitempty" validate:"omitempty,oneof=recommended rating reviews price_asc price_desc newest"`
	MinPrice      *float64 `json:"minPrice,omitempty" validate:"omitempty,finite,gte=0"`
	MaxPrice      *float64 `json:"maxPrice,omitempty" validate:"omitempty,finite,gte=0"`
	MinRating     *float64 `json:"minRating,omitempty" validate:"omitempty,finite,gte=0,lte=5"`
	City          string   `json:"city,omitempty" validate:"max=100"`
}

// SortKey returns the effective sort key.
func (s State) SortKey() string {
	if s.Sort == "" {
		return SortRecommended
	}
	return s.Sort
}

// IsDefault reports whether no filter is active.
func (s State) IsDefault() bool {
	return s.Key() == State{}.Key()
}

// Query serializes the state into browse query parameters. page and limit are
// always present; every other parameter is appended only when it differs from
// its default so that default-state requests stay clean.
func (s State) Query(page, limit int) url.Values {
	q := url.Values{}
	q.Set(ParamPage, strconv.Itoa(page))
	q.Set(ParamLimit, strconv.Itoa(limit))

	if c := strings.TrimSpace(s.Category); c != "" {
		q.Set(ParamCategory, c)
	}
	if subs := s.normalizedSubcategories(); len(subs) > 0 {
		q.Set(ParamSubcategories, strings.Join(subs, ","))
	}
	if s.MinRating != nil && *s.MinRating > 0 {
		q.Set(ParamMinRating, formatFloat(*s.MinRating))
	}
	if search := strings.TrimSpace(s.Search); search != "" {
		q.Set(ParamSearch, search)
	}
	if key := s.SortKey(); key != SortRecommended {
		q.Set(ParamSort, key)
	}
	if city := strings.TrimSpace(s.City); city != "" {
		q.Set(ParamServiceArea, city)
	}
	if s.MinPrice != nil {
		q.Set(ParamMinPrice, formatFloat(*s.MinPrice))
	}
	if s.MaxPrice != nil {
		q.Set(ParamMaxPrice, formatFloat(*s.MaxPrice))
	}
	return q
}

// Key returns a canonical serialization of the state. Two states with the same
// effective filters produce the same key regardless of how they were built.
// It is the encoded filter query without paging, so it never fails.
func (s State) Key() string {
	q := s.Query(1, 0)
	q.Del(ParamPage)
	q.Del(ParamLimit)
	return q.Encode()
}

// WithCategory returns a copy with the category replaced. Changing the category
// clears the subcategory selection.
func (s State) WithCategory(category string) State {
	out := s.clone()
	if out.Category != category {
		out.Subcategories = nil
	}
	out.Category = category
	return out
}

// WithSubcategories returns a copy with the subcategory selection replaced.
func (s State) WithSubcategories(subs ...string) State {
	out := s.clone()
	out.Subcategories = append([]string(nil), subs...)
	return out
}

// WithSearch returns a copy with the search text replaced.
func (s State) WithSearch(search string) State {
	out := s.clone()
	out.Search = search
	return out
}

// WithSort returns a copy with the sort key replaced.
func (s State) WithSort(sortKey string) State {
	out := s.clone()
	out.Sort = sortKey
	return out
}

// WithCity returns a copy with the service area replaced.
func (s State) WithCity(city string) State {
	out := s.clone()
	out.City = city
	return out
}

// WithPriceRange returns a copy with the price bounds replaced. nil clears a bound.
func (s State) WithPriceRange(minPrice, maxPrice *float64) State {
	out := s.clone()
	out.MinPrice = copyFloat(minPrice)
	out.MaxPrice = copyFloat(maxPrice)
	return out
}

// WithMinRating returns a copy with the minimum rating replaced. nil clears it.
func (s State) WithMinRating(rating *float64) State {
	out := s.clone()
	out.MinRating = copyFloat(rating)
	return out
}

func (s State) clone() State {
	out := s
	out.Subcategories = append([]string(nil), s.Subcategories...)
	out.MinPrice = copyFloat(s.MinPrice)
	out.MaxPrice = copyFloat(s.MaxPrice)
	out.MinRating = copyFloat(s.MinRating)
	return out
}

func (s State) normalizedSubcategories() []string {
	if len(s.Subcategories) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s.Subcategories))
	out := make([]string, 0, len(s.Subcategories))
	for _, sub := range s.Subcategories {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		if _, ok := seen[sub]; ok {
			continue
		}
		seen[sub] = struct{}{}
		out = append(out, sub)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Float returns a pointer to v, for building optional bounds.
func Float(v float64) *float64 {
	return &v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
