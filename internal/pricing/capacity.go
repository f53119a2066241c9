package pricing

import "github.com/venuequote/api/internal/domain"

type guestSurcharge struct {
	ceiling       int
	extraGuests   int
	unitPrice     int64
	cost          int64
	missingConfig bool
}

func capacitySurcharge(p profile, pkg domain.Package, settings domain.Settings, addons domain.AddonCatalog, req domain.BookingRequest) guestSurcharge {
	regime := capacityRegimes[p]
	if regime == capacityNone {
		return guestSurcharge{}
	}
	ceiling, unit, ok := guestAllowance(regime, pkg, settings, addons, req.Addons)
	if !ok {
		return guestSurcharge{missingConfig: true}
	}
	out := guestSurcharge{ceiling: ceiling, unitPrice: unit}
	if req.GuestCount > ceiling {
		out.extraGuests = req.GuestCount - ceiling
		out.cost = int64(out.extraGuests) * unit
	}
	return out
}

// guestAllowance resolves the ceiling and per-guest overage price for a regime. ok is false
// when the regime applies but its configuration is absent.
func guestAllowance(regime capacityRegime, pkg domain.Package, settings domain.Settings, addons domain.AddonCatalog, selection domain.AddonSelection) (int, int64, bool) {
	switch regime {
	case capacityTierLimit:
		limit, ok := settings.CapacityLimits[pkg.BudgetTier]
		if !ok || limit.GuestLimit <= 0 {
			return 0, 0, false
		}
		return limit.GuestLimit, limit.ExtraGuestPrice, true
	case capacityPackageMax:
		if pkg.MaxCapacity <= 0 {
			return 0, 0, false
		}
		return pkg.MaxCapacity, perGuestFoodPrice(addons, selection, settings.DefaultExtraGuestPrice), true
	}
	return 0, 0, false
}

// perGuestFoodPrice returns the highest catalog price among selected per-guest food add-ons,
// or fallback when none is selected.
func perGuestFoodPrice(addons domain.AddonCatalog, selection domain.AddonSelection, fallback int64) int64 {
	var best int64
	found := false
	for id, addon := range selection {
		if addon.Amount <= 0 {
			continue
		}
		def, ok := addons.Find(id)
		if !ok || !def.Food || def.Billing != domain.BillingPerGuest {
			continue
		}
		if !found || def.Price > best {
			best = def.Price
			found = true
		}
	}
	if !found {
		return fallback
	}
	return best
}

// CapacityCeiling reports how many guests the package price includes for the request, using
// the same regime the engine bills with.
func CapacityCeiling(cat Catalog, req domain.BookingRequest) (int, bool) {
	pkg, ok := cat.Package(req.EventType, req.PackageID)
	if !ok {
		return 0, false
	}
	settings := cat.Settings()
	p := resolveProfile(req.EventType, pkg, settings)
	ceiling, _, ok := guestAllowance(capacityRegimes[p], pkg, settings, cat.Addons(req.EventType), req.Addons.Normalize())
	return ceiling, ok
}
