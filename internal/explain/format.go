package explain

import (
	"fmt"
	"strings"
)

// FormatINR renders an amount with two decimals and Indian digit grouping,
// e.g. 263225 -> "₹2,63,225.00".
func FormatINR(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	parts := strings.SplitN(fmt.Sprintf("%.2f", amount), ".", 2)
	out := "₹" + groupIndian(parts[0]) + "." + parts[1]
	if negative && out != "₹0.00" {
		out = "-" + out
	}
	return out
}

// groupIndian keeps the last three digits together and pairs the rest.
func groupIndian(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	rest := s[:n-3]
	for len(rest) > 2 {
		result = rest[len(rest)-2:] + "," + result
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		result = rest + "," + result
	}
	return result
}
