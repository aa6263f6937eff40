// Package format renders quantities, budgets and fractions for human output.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/open-logistics/pkg/constants"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := groupThousands(math.Abs(amount), 2)
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Quantity returns an inventory quantity with thousands separators and two
// decimals, dropping the decimals for whole numbers (e.g., "1,150" or "57.50").
func Quantity(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	abs := math.Abs(amount)
	if abs == math.Trunc(abs) {
		return sign + groupThousands(abs, 0)
	}
	return sign + groupThousands(abs, 2)
}

// Percent renders a fraction in [0, 1] as a percentage (e.g., 0.875 -> "87.5%").
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*constants.PercentageMultiplier)
}

func groupThousands(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
