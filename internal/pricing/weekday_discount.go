package pricing

import "github.com/venuequote/api/internal/domain"

func weekdayDiscount(p profile, pkg domain.Package, settings domain.Settings, day domain.DayType) int64 {
	if day != domain.DayTypeWeekday {
		return 0
	}
	if weekdayRules[p] == weekdayTopTierFlat {
		return settings.TopTierWeekdayDiscount
	}
	if pkg.WeekdayDiscountEligible {
		return settings.WeekdayDiscount
	}
	return 0
}
