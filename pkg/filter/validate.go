package filter

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidFilter is returned when a filter state fails validation.
var ErrInvalidFilter = errors.New("invalid filter")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// finite rejects +Inf, -Inf and NaN.
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the state against the browse API constraints.
func (s State) Validate() error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidFilter, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
		return fmt.Errorf("%w: minPrice %s exceeds maxPrice %s",
			ErrInvalidFilter, formatFloat(*s.MinPrice), formatFloat(*s.MaxPrice))
	}
	return nil
}

// FromQuery parses browse query parameters back into a state. Unknown
// parameters are ignored. page and limit are returned separately; they
// default to 1 and defaultLimit when missing or not positive.
func FromQuery(q url.Values, defaultLimit int) (State, int, int, error) {
	page := positiveInt(q.Get(ParamPage), 1)
	limit := positiveInt(q.Get(ParamLimit), defaultLimit)

	s := State{
		Category: strings.TrimSpace(q.Get(ParamCategory)),
		Search:   q.Get(ParamSearch),
		Sort:     q.Get(ParamSort),
		City:     q.Get(ParamServiceArea),
	}
	if subs := q.Get(ParamSubcategories); subs != "" {
		s.Subcategories = State{Subcategories: strings.Split(subs, ",")}.normalizedSubcategories()
	}

	var err error
	if s.MinRating, err = optionalFloat(q, ParamMinRating); err != nil {
		return State{}, 0, 0, err
	}
	if s.MinPrice, err = optionalFloat(q, ParamMinPrice); err != nil {
		return State{}, 0, 0, err
	}
	if s.MaxPrice, err = optionalFloat(q, ParamMaxPrice); err != nil {
		return State{}, 0, 0, err
	}

	if err := s.Validate(); err != nil {
		return State{}, 0, 0, err
	}
	return s, page, limit, nil
}

func optionalFloat(q url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, name, err)
	}
	return &v, nil
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
