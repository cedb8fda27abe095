package domain

// Category is the banded classification of a risk score.
type Category string

const (
	CategoryLow      Category = "Low"
	CategoryMedium   Category = "Medium"
	CategoryHigh     Category = "High"
	CategoryCritical Category = "Critical"
)

// Score computes impact x likelihood. Inputs are clamped or defaulted to
// [1,5] before they reach this function, so the result is always in [1,25].
func Score(impact, likelihood int) int { return impact * likelihood }

// CategoryFor maps a risk score onto the fixed bands of the 5x5 matrix.
func CategoryFor(score int) Category {
	switch {
	case score <= 4:
		return CategoryLow
	case score <= 8:
		return CategoryMedium
	case score <= 12:
		return CategoryHigh
	default:
		return CategoryCritical
	}
}

// Color returns the display color used for a category on the matrix.
func Color(c Category) string {
	switch c {
	case CategoryLow:
		return "green"
	case CategoryMedium:
		return "yellow"
	case CategoryHigh:
		return "orange"
	default:
		return "red"
	}
}
