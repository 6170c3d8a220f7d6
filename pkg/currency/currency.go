// Package currency converts stored USD cents into the INR amounts shown to users.
// Conversion is lossy and presentation-only.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// USDToINRRate is the fixed display exchange rate.
var USDToINRRate = decimal.RequireFromString("91.8")

var hundred = decimal.NewFromInt(100)

// USDCentsToINR converts minor USD units into rupees.
func USDCentsToINR(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred).Mul(USDToINRRate)
}

// INRToUSDCents converts a rupee amount back to USD cents, rounded half up.
func INRToUSDCents(rupees decimal.Decimal) int64 {
	return rupees.Div(USDToINRRate).Mul(hundred).Round(0).IntPart()
}

// FormatINR renders cents as whole rupees with Indian digit grouping, e.g. ₹1,23,456.
func FormatINR(cents int64) string {
	rupees := USDCentsToINR(cents).Round(0)
	sign := ""
	if rupees.IsNegative() {
		sign = "-"
		rupees = rupees.Abs()
	}
	return sign + "₹" + groupIndian(rupees.String())
}

// groupIndian groups the last three digits, then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
