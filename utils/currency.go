package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrencyINR formats an amount with Indian digit grouping.
// Example: 123456.5 -> "Rs. 1,23,456.50"
func FormatCurrencyINR(amount float64) string {
	neg := amount < 0
	amount = math.Abs(amount)

	formatted := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// The last three digits stand alone, everything before them groups
	// in pairs (lakh/crore style).
	var groups []string
	if len(integerPart) > 3 {
		head := integerPart[:len(integerPart)-3]
		groups = append(groups, integerPart[len(integerPart)-3:])
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
	} else {
		groups = []string{integerPart}
	}

	out := "Rs. " + strings.Join(groups, ",") + "." + decimalPart
	if neg {
		out = "-" + out
	}
	return out
}
