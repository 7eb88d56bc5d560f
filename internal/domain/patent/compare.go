package patent

import "strings"

// CompareValues orders two field values with Sentinel (or empty) ranking
// below every real value.  Two unavailable values are equal.  Real values
// compare lexicographically, which orders both ISO-8601 and YYYYMMDD dates.
func CompareValues(a, b string) int {
	aa, ba := IsAvailable(a), IsAvailable(b)
	switch {
	case !aa && !ba:
		return 0
	case !aa:
		return -1
	case !ba:
		return 1
	}
	return strings.Compare(a, b)
}

// CompareDocNumbers is CompareValues for document numbers: when both values
// are all digits they compare numerically, so "200" ranks above "99".
func CompareDocNumbers(a, b string) int {
	if IsAvailable(a) && IsAvailable(b) && isDigits(a) && isDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	}
	return CompareValues(a, b)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

//Personal.AI order the ending
