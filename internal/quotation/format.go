package quotation

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"THB": "฿",
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
	"GBP": "£",
}

// Formatter renders amounts and dates for one locale.
type Formatter struct {
	lang     string
	currency string
	printer  *message.Printer
}

// NewFormatter returns a formatter for the locale and ISO currency code. Codes that are not
// ISO 4217 are printed verbatim in upper case.
func NewFormatter(lang, code string) Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return Formatter{
		lang:     strings.ToLower(lang),
		currency: normalizeCurrency(code),
		printer:  message.NewPrinter(tag),
	}
}

func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String()
	}
	return code
}

// Amount formats whole currency units with locale digit grouping, e.g. "฿502,900".
func (f Formatter) Amount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := f.printer.Sprintf("%d", amount)
	if symbol, ok := currencySymbols[f.currency]; ok {
		return sign + symbol + digits
	}
	if f.currency == "" {
		return sign + digits
	}
	return sign + f.currency + " " + digits
}

// Discount formats a reduction as a negative figure regardless of the stored sign.
func (f Formatter) Discount(amount int64) string {
	if amount < 0 {
		amount = -amount
	}
	return f.Amount(-amount)
}

// Number formats a plain count with grouping.
func (f Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Date formats a calendar date. Thai documents use the Buddhist era year.
func (f Formatter) Date(t time.Time) string {
	switch f.lang {
	case "th":
		return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year()+543)
	default:
		return t.Format("2 Jan 2006")
	}
}
