package quotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatterAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang     string
		currency string
		amount   int64
		want     string
	}{
		{lang: "en", currency: "THB", amount: 502_900, want: "฿502,900"},
		{lang: "th", currency: "thb", amount: 1_246_550, want: "฿1,246,550"},
		{lang: "en", currency: "USD", amount: -1_500, want: "-$1,500"},
		{lang: "en", currency: "SGD", amount: 999, want: "SGD 999"},
		{lang: "en", currency: " usd ", amount: 2_000, want: "$2,000"},
		{lang: "en", currency: "zzq", amount: 5, want: "ZZQ 5"},
		{lang: "en", currency: "", amount: 12_000, want: "12,000"},
		{lang: "not a tag", currency: "THB", amount: 0, want: "฿0"},
	}
	for _, tc := range tests {
		got := NewFormatter(tc.lang, tc.currency).Amount(tc.amount)
		assert.Equal(t, tc.want, got, "lang=%s currency=%s amount=%d", tc.lang, tc.currency, tc.amount)
	}
}

func TestFormatterDiscountAlwaysNegative(t *testing.T) {
	t.Parallel()

	f := NewFormatter("en", "THB")
	assert.Equal(t, "-฿20,000", f.Discount(20_000))
	assert.Equal(t, "-฿20,000", f.Discount(-20_000))
}

func TestFormatterDate(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "19 Oct 2026", NewFormatter("en", "THB").Date(day))
	assert.Equal(t, "19/10/2569", NewFormatter("th", "THB").Date(day))
}
