// Package filters turns table search input into API filter expressions and
// keeps the input state that feeds them.
package filters

import (
	"math"
	"strconv"
	"strings"

	"github.com/BradenHooton/admintable/internal/models"
)

// BuildPostFilters matches posts whose title or content contains the trimmed
// search, case-insensitively. A blank search yields the empty filter.
func BuildPostFilters(search string) models.PostFilters {
	term := strings.TrimSpace(search)
	if term == "" {
		return models.PostFilters{}
	}

	return models.PostFilters{
		Or: []models.PostFilters{
			{Title: containsInsensitive(term)},
			{Content: containsInsensitive(term)},
		},
	}
}

// BuildAgeCondition maps an operator to its IntFilter. An empty or unknown
// operator yields nil.
func BuildAgeCondition(op models.AgeOperator, value int) *models.IntFilter {
	v := value
	switch op {
	case models.AgeOpEq:
		return &models.IntFilter{Equals: &v}
	case models.AgeOpGte:
		return &models.IntFilter{Gte: &v}
	case models.AgeOpGt:
		return &models.IntFilter{Gt: &v}
	case models.AgeOpLte:
		return &models.IntFilter{Lte: &v}
	case models.AgeOpLt:
		return &models.IntFilter{Lt: &v}
	default:
		return nil
	}
}

// BuildUserFilters combines the search and age inputs. The search matches
// name, email or phone. The age leaf is only added for a whole number in the
// accepted range; anything else is dropped without error. When both are
// present the age leaf comes first in the AND.
func BuildUserFilters(search string, op models.AgeOperator, val models.AgeInput) models.UserFilters {
	var searchLeaf *models.UserFilters
	if term := strings.TrimSpace(search); term != "" {
		searchLeaf = &models.UserFilters{
			Or: []models.UserFilters{
				{Name: containsInsensitive(term)},
				{Email: containsInsensitive(term)},
				{Phone: containsInsensitive(term)},
			},
		}
	}

	var ageLeaf *models.UserFilters
	if op != models.AgeOpNone && val.Present() {
		if age, ok := parseAge(val); ok {
			if cond := BuildAgeCondition(op, age); cond != nil {
				ageLeaf = &models.UserFilters{Age: cond}
			}
		}
	}

	switch {
	case ageLeaf != nil && searchLeaf != nil:
		return models.UserFilters{And: []models.UserFilters{*ageLeaf, *searchLeaf}}
	case ageLeaf != nil:
		return *ageLeaf
	case searchLeaf != nil:
		return *searchLeaf
	default:
		return models.UserFilters{}
	}
}

// IsAgeFilterComplete reports whether both an operator and a value are set.
// It does not check the range.
func IsAgeFilterComplete(op models.AgeOperator, val models.AgeInput) bool {
	return op != models.AgeOpNone && val.Present()
}

// parseAge accepts whole numbers within [MinUserAge, MaxUserAge].
func parseAge(val models.AgeInput) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < models.MinUserAge || f > models.MaxUserAge {
		return 0, false
	}
	return int(f), true
}

func containsInsensitive(term string) *models.StringFilter {
	t := term
	return &models.StringFilter{ContainsInsensitive: &t}
}
