package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/venuequote/api/internal/domain"
)

const (
	tierMid = domain.BudgetTier("500k_1m")
	tierTop = domain.BudgetTier("over_1m")
	tierLow = domain.BudgetTier("under_500k")
)

func testSettings() domain.Settings {
	return domain.Settings{
		Currency:               "THB",
		VATRate:                decimal.RequireFromString("0.07"),
		WeekdayDiscount:        20_000,
		TopTierWeekdayDiscount: 50_000,
		FullDaySurcharge:       10_000,
		DefaultExtraGuestPrice: 1_200,
		TopBudgetTier:          tierTop,
		CapacityLimits: map[domain.BudgetTier]domain.CapacityLimit{
			tierMid: {GuestLimit: 400, ExtraGuestPrice: 800},
		},
	}
}

func testPackages() []domain.Package {
	return []domain.Package{
		{
			ID:                      "w-classic",
			Name:                    "Classic Ballroom",
			EventType:               domain.EventTypeWedding,
			BudgetTier:              tierMid,
			DayPrices:               &domain.DayPrices{Weekday: 450_000, Weekend: 520_000},
			WeekdayDiscountEligible: true,
			Periods: []domain.TimePeriod{
				{ID: domain.PeriodMorning, Label: "Morning"},
				{ID: domain.PeriodEvening, Label: "Evening"},
				{ID: domain.PeriodFullDay, Label: "Full day"},
			},
		},
		{
			ID:         "w-garden",
			Name:       "Garden Terrace",
			EventType:  domain.EventTypeWedding,
			BudgetTier: tierLow,
			Price:      280_000,
		},
		{
			ID:          "w-grand",
			Name:        "Grand Riverside",
			EventType:   domain.EventTypeWedding,
			BudgetTier:  tierTop,
			Price:       1_200_000,
			MaxCapacity: 300,
			Periods: []domain.TimePeriod{
				{ID: domain.PeriodMorning, Label: "Morning"},
				{ID: domain.PeriodAfternoon, Label: "Afternoon", Surcharge: 8_000},
				{ID: domain.PeriodFullDay, Label: "Full day", Surcharge: 15_000},
			},
		},
		{
			ID:                      "e-hall",
			Name:                    "Function Hall",
			EventType:               domain.EventTypeEvent,
			Price:                   30_000,
			MinSpend:                100_000,
			WeekdayDiscountEligible: true,
		},
		{
			ID:          "p-garden",
			Name:        "Garden Portraits",
			EventType:   domain.EventTypePhoto,
			Price:       15_000,
			MaxCapacity: 20,
		},
	}
}

func testAddons() map[domain.EventType]domain.AddonCatalog {
	return map[domain.EventType]domain.AddonCatalog{
		domain.EventTypeWedding: {
			{
				ID:   "food",
				Name: "Food & beverage",
				Items: []domain.AddonDefinition{
					{ID: "buffet-thai", Name: "Thai buffet", Price: 650, Billing: domain.BillingPerGuest, Unit: "guest", Food: true},
					{ID: "buffet-intl", Name: "International buffet", Price: 900, Billing: domain.BillingPerGuest, Unit: "guest", Food: true},
					{ID: "chinese-table", Name: "Chinese banquet", Price: 9_000, Billing: domain.BillingPerGuest, Unit: "table of 10", Food: true},
					{ID: "welcome-drink", Name: "Welcome drink", Price: 120, Billing: domain.BillingPerGuest, Unit: "guest"},
				},
			},
			{
				ID:   "extras",
				Name: "Extras",
				Items: []domain.AddonDefinition{
					{ID: "flowers", Name: "Floral arch", Price: 25_000, Billing: domain.BillingFlat},
					{ID: "champagne", Name: "Champagne", Price: 1_500, Billing: domain.BillingPerUnit, Unit: "bottle"},
					{ID: "early-bird", Name: "Early bird promotion", Price: 10_000, Billing: domain.BillingDiscount},
				},
			},
		},
		domain.EventTypeEvent: {
			{
				ID:   "catering",
				Name: "Catering",
				Items: []domain.AddonDefinition{
					{ID: "coffee-break", Name: "Coffee break", Price: 150, Billing: domain.BillingPerGuest, Unit: "guest", Food: true},
					{ID: "stage", Name: "Stage & lighting", Price: 60_000, Billing: domain.BillingFlat},
				},
			},
		},
	}
}

func testCatalog() domain.CatalogSnapshot {
	return domain.NewCatalogSnapshot(testSettings(), testPackages(), testAddons())
}

func addons(amounts map[string]int64) domain.AddonSelection {
	out := make(domain.AddonSelection, len(amounts))
	for id, amount := range amounts {
		out[id] = domain.SelectedAddon{Amount: amount}
	}
	return out
}
