package pricing

import "github.com/venuequote/api/internal/domain"

// profile is the (event type × budget tier) variant a request prices under. Each rule looks
// up its behaviour for the profile in its own table below.
type profile int

const (
	profileWeddingStandard profile = iota
	profileWeddingTopTier
	profilePhoto
	profileEvent
)

func (p profile) String() string {
	switch p {
	case profileWeddingStandard:
		return "wedding_standard"
	case profileWeddingTopTier:
		return "wedding_top_tier"
	case profilePhoto:
		return "photo"
	case profileEvent:
		return "event"
	}
	return "unknown"
}

func resolveProfile(eventType domain.EventType, pkg domain.Package, settings domain.Settings) profile {
	switch eventType {
	case domain.EventTypePhoto:
		return profilePhoto
	case domain.EventTypeEvent:
		return profileEvent
	}
	if settings.IsTopTier(pkg.BudgetTier) {
		return profileWeddingTopTier
	}
	return profileWeddingStandard
}

// flatRateProfiles price the package alone: no add-ons, guests, time or day adjustments.
var flatRateProfiles = map[profile]bool{
	profilePhoto: true,
}

// baseInSubtotal is false where billing is minimum-spend driven.
var baseInSubtotal = map[profile]bool{
	profileWeddingStandard: true,
	profileWeddingTopTier:  true,
	profilePhoto:           true,
	profileEvent:           false,
}

type capacityRegime int

const (
	capacityNone capacityRegime = iota
	capacityTierLimit
	capacityPackageMax
)

var capacityRegimes = map[profile]capacityRegime{
	profileWeddingStandard: capacityTierLimit,
	profileWeddingTopTier:  capacityPackageMax,
	profilePhoto:           capacityPackageMax,
	profileEvent:           capacityNone,
}

type timeRule int

const (
	timeFlatFullDay timeRule = iota
	timePeriodTable
)

var timeRules = map[profile]timeRule{
	profileWeddingStandard: timeFlatFullDay,
	profileWeddingTopTier:  timePeriodTable,
	profilePhoto:           timeFlatFullDay,
	profileEvent:           timeFlatFullDay,
}

type weekdayRule int

const (
	weekdayByEligibility weekdayRule = iota
	weekdayTopTierFlat
)

var weekdayRules = map[profile]weekdayRule{
	profileWeddingStandard: weekdayByEligibility,
	profileWeddingTopTier:  weekdayTopTierFlat,
	profilePhoto:           weekdayByEligibility,
	profileEvent:           weekdayByEligibility,
}

var minimumSpendProfiles = map[profile]bool{
	profileEvent: true,
}
