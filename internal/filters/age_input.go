package filters

import (
	"math"
	"strconv"
	"strings"

	"github.com/BradenHooton/admintable/internal/models"
)

// AgeRangeNotice is shown whenever typed age input had to be corrected.
const AgeRangeNotice = "Valid age input is 0-150"

// NormalizeAgeInput applies the age field's input rules before the value
// reaches the filter state. Blank input clears the value. Non-numeric input
// is rejected with ok=false so the caller keeps its previous value. Values
// outside the accepted range are clamped and reported with AgeRangeNotice.
func NormalizeAgeInput(raw string) (val models.AgeInput, notice string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", "", false
	}

	switch {
	case f > models.MaxUserAge:
		return models.AgeInput(strconv.Itoa(models.MaxUserAge)), AgeRangeNotice, true
	case f < models.MinUserAge:
		return models.AgeInput(strconv.Itoa(models.MinUserAge)), AgeRangeNotice, true
	}
	return models.AgeInput(s), "", true
}
