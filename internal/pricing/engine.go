// Package pricing implements the venue quote rules. Everything here is a pure function of a
// booking request and a catalog snapshot: no I/O, no shared state, no rounding outside VAT.
package pricing

import "github.com/venuequote/api/internal/domain"

// Catalog is the read-only catalog view the engine prices against.
type Catalog interface {
	Package(eventType domain.EventType, id string) (domain.Package, bool)
	Settings() domain.Settings
	Addons(eventType domain.EventType) domain.AddonCatalog
}

// Calculate prices a booking request. Input problems are recovered locally and reported as
// notices; the result is always safe to render.
func Calculate(cat Catalog, req domain.BookingRequest) domain.Quote {
	req.Addons = req.Addons.Normalize()
	if req.GuestCount < 0 {
		req.GuestCount = 0
	}
	settings := cat.Settings()
	quote := domain.Quote{
		Request:   req,
		Currency:  settings.Currency,
		LineItems: []domain.LineItem{},
	}

	pkg, ok := cat.Package(req.EventType, req.PackageID)
	if !ok {
		quote.Breakdown = domain.PricingBreakdown{IsMinimumMet: true}
		quote.Notices = append(quote.Notices, domain.Notice{Code: domain.NoticeMissingPackage, Subject: req.PackageID})
		return quote
	}
	quote.Package = &pkg

	p := resolveProfile(req.EventType, pkg, settings)
	base := resolveBasePrice(p, pkg, req.DayType)

	// Malformed input is reported even when the profile ignores add-ons.
	totals := aggregateAddons(req.Addons)
	for _, id := range totals.malformed {
		quote.Notices = append(quote.Notices, domain.Notice{Code: domain.NoticeMalformedAddonAmount, Subject: id})
	}

	if flatRateProfiles[p] {
		b := domain.PricingBreakdown{
			BasePrice:               base,
			SubtotalBeforeDiscounts: base,
			Subtotal:                base,
			IsMinimumMet:            true,
		}
		b.VAT = vatAmount(b.Subtotal, settings.VATRate)
		b.Total = b.Subtotal + b.VAT
		quote.Breakdown = b
		return quote
	}

	addonCatalog := cat.Addons(req.EventType)

	guests := capacitySurcharge(p, pkg, settings, addonCatalog, req)
	if guests.missingConfig {
		quote.Notices = append(quote.Notices, domain.Notice{Code: domain.NoticeMissingCapacityConfig, Subject: pkg.ID})
	}
	surcharge := timeSurcharge(p, pkg, settings, req.Period)
	discount := weekdayDiscount(p, pkg, settings, req.DayType)
	spend := minimumSpend(p, pkg, totals.charges)

	b := domain.PricingBreakdown{
		BasePrice:           base,
		AddonChargeTotal:    totals.charges,
		AddonDiscountTotal:  totals.discounts,
		ExtraGuestCount:     guests.extraGuests,
		ExtraGuestUnitPrice: guests.unitPrice,
		ExtraGuestCost:      guests.cost,
		TimeSurcharge:       surcharge,
		WeekdayDiscount:     discount,
		MinimumSpend:        spend.minimum,
		IsMinimumMet:        spend.met,
		Shortfall:           spend.shortfall,
	}

	var billedBase int64
	if baseInSubtotal[p] {
		billedBase = base
	}
	b.SubtotalBeforeDiscounts = billedBase + b.AddonChargeTotal + b.AddonDiscountTotal + b.ExtraGuestCost + b.TimeSurcharge
	b.Subtotal = b.SubtotalBeforeDiscounts - b.WeekdayDiscount
	b.VAT = vatAmount(b.Subtotal, settings.VATRate)
	b.Total = b.Subtotal + b.VAT
	b.TotalDiscounts = b.WeekdayDiscount + b.AddonDiscountDisplay()

	quote.Breakdown = b
	quote.LineItems = lineItems(addonCatalog, req)
	return quote
}
