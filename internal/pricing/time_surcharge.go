package pricing

import "github.com/venuequote/api/internal/domain"

func timeSurcharge(p profile, pkg domain.Package, settings domain.Settings, period string) int64 {
	switch timeRules[p] {
	case timePeriodTable:
		if slot, ok := pkg.Period(period); ok {
			return slot.Surcharge
		}
		return 0
	default:
		if period == domain.PeriodFullDay {
			return settings.FullDaySurcharge
		}
		return 0
	}
}
