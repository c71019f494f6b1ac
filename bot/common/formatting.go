package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount formats a money amount with two decimals and thousand separators
func FormatAmount(amount decimal.Decimal) string {
	str := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(str, ".")

	n := len(whole)
	var result strings.Builder
	if amount.IsNegative() {
		result.WriteRune('-')
	}
	for i, digit := range whole {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	result.WriteRune('.')
	result.WriteString(cents)

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// ShortID returns the first block of a UUID for compact display
func ShortID(id string) string {
	if head, _, found := strings.Cut(id, "-"); found {
		return head
	}
	return id
}
