package utils

import (
	"fmt"
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// zeroDecimal currencies are charged in whole units by Stripe.
var zeroDecimal = map[string]bool{
	"jpy": true,
	"krw": true,
	"vnd": true,
	"clp": true,
}

// FormatMoney renders minor units with thousand separators, e.g. 123450 usd -> "$1,234.50".
func FormatMoney(cents int64, currency string) string {
	cur := strings.ToLower(strings.TrimSpace(currency))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	prefix, ok := currencySymbols[cur]
	if !ok {
		prefix = strings.ToUpper(cur) + " "
	}
	if zeroDecimal[cur] {
		return sign + prefix + formatThousand(cents)
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, prefix, formatThousand(cents/100), cents%100)
}

// ParseMoneyToCents parses "1,234.5" or "$1234.50" into minor units.
func ParseMoneyToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("invalid amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("invalid amount: too many decimals")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	return w*100 + f, nil
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
