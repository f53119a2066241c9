package pricing

import "github.com/venuequote/api/internal/domain"

type minimumSpendResult struct {
	minimum   int64
	met       bool
	shortfall int64
}

// minimumSpend is advisory: it never blocks the total, it only tells the caller whether the
// add-on charges reach the package floor.
func minimumSpend(p profile, pkg domain.Package, chargeTotal int64) minimumSpendResult {
	if !minimumSpendProfiles[p] {
		return minimumSpendResult{met: true}
	}
	minimum := pkg.MinSpend
	if minimum < 0 {
		minimum = 0
	}
	if chargeTotal >= minimum {
		return minimumSpendResult{minimum: minimum, met: true}
	}
	return minimumSpendResult{minimum: minimum, shortfall: minimum - chargeTotal}
}
