package pricing

import "github.com/venuequote/api/internal/domain"

// resolveBasePrice picks the package price for the requested day type. Photo packages always
// use the flat price.
func resolveBasePrice(p profile, pkg domain.Package, day domain.DayType) int64 {
	if p == profilePhoto || pkg.DayPrices == nil {
		return pkg.Price
	}
	if day == domain.DayTypeWeekday {
		return pkg.DayPrices.Weekday
	}
	return pkg.DayPrices.Weekend
}
