// Package money formats rupee amounts for notifications and CLI output.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// INR formats an amount as a rupee string with two decimal places and Indian
// digit grouping (1,23,456.78).
func INR(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)

	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(whole))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// groupIndian inserts commas Indian-style: last three digits, then pairs.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	head := digits[:n-3]
	tail := digits[n-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
