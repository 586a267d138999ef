package professional

import "strings"

var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// NormalizeCUIT strips separators and returns the canonical XX-XXXXXXXX-X
// form. ok is false when the digits or the check digit are wrong.
func NormalizeCUIT(raw string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.' || r == ' ':
			return -1
		}
		return 'x'
	}, raw)
	if len(digits) != 11 || strings.ContainsRune(digits, 'x') {
		return "", false
	}

	sum := 0
	for i, w := range cuitWeights {
		sum += int(digits[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		return "", false
	}
	if int(digits[10]-'0') != check {
		return "", false
	}
	return digits[:2] + "-" + digits[2:10] + "-" + digits[10:], true
}
