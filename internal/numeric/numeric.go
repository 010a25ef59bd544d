// Package numeric converts between user typed text and numbers with the
// coercion rules the calculator form has always applied.
package numeric

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?)$`)

// ParsePercentage reads the leading integer of s, the way percentages have
// always been summed: surrounding junk after the digits is ignored ("40%" is
// 40, "12.9" is 12) and input without a leading integer is NaN.
func ParsePercentage(s string) float64 {
	s = strings.TrimLeftFunc(s, isSpace)

	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	radix := 10.0
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		radix = 16
		s = s[2:]
	}

	value := 0.0
	digits := 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || float64(d) >= radix {
			break
		}
		value = value*radix + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * value
}

// ToNumber converts the whole of s to a number. Blank input is 0, anything
// that is not entirely a numeric literal is NaN.
func ToNumber(s string) float64 {
	s = strings.TrimFunc(s, isSpace)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadix(s[2:], base)
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// FormatNumber renders a number the way it is stored back into the form when
// the application, not the user, produces a percentage.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		// Exponents carry no leading zero: 1e-7, not 1e-07.
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseRadix(s string, base int) float64 {
	value := 0.0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || d >= base {
			return math.NaN()
		}
		value = value*float64(base) + float64(d)
	}
	return value
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return -1
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}
