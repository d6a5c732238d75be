package lesson

// AgeCategory is the coarse developmental bucket a learner's age falls into.
type AgeCategory string

const (
	EarlyChildhood AgeCategory = "early_childhood"
	Youth          AgeCategory = "youth"
	YoungAdult     AgeCategory = "young_adult"
	Midlife        AgeCategory = "midlife"
	WisdomYears    AgeCategory = "wisdom_years"
)

// AgeCategories lists every category in ascending age order.
var AgeCategories = []AgeCategory{EarlyChildhood, Youth, YoungAdult, Midlife, WisdomYears}

// Categorize buckets an age. Thresholds are inclusive upper bounds.
func Categorize(age int) AgeCategory {
	switch {
	case age <= 7:
		return EarlyChildhood
	case age <= 17:
		return Youth
	case age <= 35:
		return YoungAdult
	case age <= 65:
		return Midlife
	default:
		return WisdomYears
	}
}

func (c AgeCategory) Valid() bool {
	switch c {
	case EarlyChildhood, Youth, YoungAdult, Midlife, WisdomYears:
		return true
	default:
		return false
	}
}

// AgeRange is the inclusive band of ages the service accepts.
type AgeRange struct {
	Min int
	Max int
}

func DefaultAgeRange() AgeRange { return AgeRange{Min: 2, Max: 102} }

func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}
