package pricing

import (
	"sort"

	"github.com/venuequote/api/internal/domain"
)

type addonTotals struct {
	charges   int64
	discounts int64
	malformed []string
}

// aggregateAddons splits the selection into a positive charge total and a negative discount
// total. Zero and malformed amounts are skipped.
func aggregateAddons(selection domain.AddonSelection) addonTotals {
	var totals addonTotals
	for id, addon := range selection {
		if addon.Malformed {
			totals.malformed = append(totals.malformed, id)
			continue
		}
		switch {
		case addon.Amount > 0:
			totals.charges += addon.Amount
		case addon.Amount < 0:
			totals.discounts += addon.Amount
		}
	}
	sort.Strings(totals.malformed)
	return totals
}
