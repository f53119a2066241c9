package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuequote/api/internal/domain"
)

func TestCalculate_WeddingMidTierWeekdayWithExtraGuests(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType:  domain.EventTypeWedding,
		PackageID:  "w-classic",
		GuestCount: 450,
		DayType:    domain.DayTypeWeekday,
		Period:     domain.PeriodMorning,
	})

	b := quote.Breakdown
	assert.Equal(t, int64(450_000), b.BasePrice)
	assert.Equal(t, 50, b.ExtraGuestCount)
	assert.Equal(t, int64(800), b.ExtraGuestUnitPrice)
	assert.Equal(t, int64(40_000), b.ExtraGuestCost)
	assert.Equal(t, int64(20_000), b.WeekdayDiscount)
	assert.Equal(t, int64(490_000), b.SubtotalBeforeDiscounts)
	assert.Equal(t, int64(470_000), b.Subtotal)
	assert.Equal(t, int64(32_900), b.VAT)
	assert.Equal(t, int64(502_900), b.Total)
	assert.True(t, b.IsMinimumMet)
	assert.Zero(t, b.Shortfall)
	assert.Empty(t, quote.Notices)
	require.NotNil(t, quote.Package)
	assert.Equal(t, "w-classic", quote.Package.ID)
	assert.Equal(t, "THB", quote.Currency)
}

func TestCalculate_EventMinimumSpendShortfall(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType:  domain.EventTypeEvent,
		PackageID:  "e-hall",
		Addons:     addons(map[string]int64{"stage": 60_000}),
		GuestCount: 80,
		DayType:    domain.DayTypeWeekend,
		Period:     domain.PeriodEvening,
	})

	b := quote.Breakdown
	assert.Equal(t, int64(30_000), b.BasePrice, "base is still resolved")
	assert.Equal(t, int64(60_000), b.AddonChargeTotal)
	assert.Equal(t, int64(100_000), b.MinimumSpend)
	assert.False(t, b.IsMinimumMet)
	assert.Equal(t, int64(40_000), b.Shortfall)
	assert.Equal(t, int64(60_000), b.SubtotalBeforeDiscounts)
	assert.Equal(t, int64(4_200), b.VAT)
	assert.Equal(t, int64(64_200), b.Total)
	assert.Zero(t, b.ExtraGuestCost, "event category has no capacity surcharge")
}

func TestCalculate_EventMinimumSpendUsesChargesOnly(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType: domain.EventTypeEvent,
		PackageID: "e-hall",
		Addons:    addons(map[string]int64{"stage": 60_000, "coffee-break": 45_000, "promo": -10_000}),
		DayType:   domain.DayTypeWeekend,
	})

	b := quote.Breakdown
	assert.Equal(t, int64(105_000), b.AddonChargeTotal)
	assert.True(t, b.IsMinimumMet)
	assert.Zero(t, b.Shortfall)
	assert.Equal(t, int64(95_000), b.SubtotalBeforeDiscounts)
}

func TestCalculate_TopTierFullDayWeekday(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType:  domain.EventTypeWedding,
		PackageID:  "w-grand",
		GuestCount: 200,
		DayType:    domain.DayTypeWeekday,
		Period:     domain.PeriodFullDay,
	})

	b := quote.Breakdown
	assert.Equal(t, int64(15_000), b.TimeSurcharge)
	assert.Equal(t, int64(50_000), b.WeekdayDiscount)
	assert.Equal(t, int64(1_215_000), b.SubtotalBeforeDiscounts)
	assert.Equal(t, int64(1_165_000), b.Subtotal)
	assert.Equal(t, int64(81_550), b.VAT)
	assert.Equal(t, int64(1_246_550), b.Total)
}

func TestCalculate_TopTierDiscountTakesPrecedenceOverEligibility(t *testing.T) {
	pkgs := testPackages()
	for i := range pkgs {
		if pkgs[i].ID == "w-grand" {
			pkgs[i].WeekdayDiscountEligible = true
		}
	}
	cat := domain.NewCatalogSnapshot(testSettings(), pkgs, testAddons())

	quote := Calculate(cat, domain.BookingRequest{
		EventType: domain.EventTypeWedding,
		PackageID: "w-grand",
		DayType:   domain.DayTypeWeekday,
	})
	assert.Equal(t, int64(50_000), quote.Breakdown.WeekdayDiscount)
}

func TestCalculate_PhotoIsFlatRate(t *testing.T) {
	days := []domain.DayType{domain.DayTypeWeekday, domain.DayTypeWeekend}
	periods := []string{domain.PeriodMorning, domain.PeriodFullDay, ""}
	guests := []int{0, 20, 75}

	for _, day := range days {
		for _, period := range periods {
			for _, count := range guests {
				quote := Calculate(testCatalog(), domain.BookingRequest{
					EventType:  domain.EventTypePhoto,
					PackageID:  "p-garden",
					Addons:     addons(map[string]int64{"flowers": 25_000}),
					GuestCount: count,
					DayType:    day,
					Period:     period,
				})
				b := quote.Breakdown
				assert.Equal(t, int64(16_050), b.Total, "day=%s period=%s guests=%d", day, period, count)
				assert.Zero(t, b.AddonChargeTotal)
				assert.Zero(t, b.ExtraGuestCost)
				assert.Empty(t, quote.LineItems)
			}
		}
	}
}

func TestCalculate_PhotoReportsMalformedAddons(t *testing.T) {
	selection := addons(map[string]int64{"flowers": 25_000})
	selection["stage"] = domain.SelectedAddon{Malformed: true}

	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType: domain.EventTypePhoto,
		PackageID: "p-garden",
		Addons:    selection,
		DayType:   domain.DayTypeWeekday,
	})

	assert.Equal(t, int64(16_050), quote.Breakdown.Total)
	assert.Zero(t, quote.Breakdown.AddonChargeTotal)
	require.Len(t, quote.Notices, 1)
	assert.Equal(t, domain.NoticeMalformedAddonAmount, quote.Notices[0].Code)
	assert.Equal(t, "stage", quote.Notices[0].Subject)
}

func TestCalculate_MissingPackageReturnsZeroBreakdown(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType:  domain.EventTypeWedding,
		PackageID:  "does-not-exist",
		Addons:     addons(map[string]int64{"flowers": 25_000}),
		GuestCount: 100,
		DayType:    domain.DayTypeWeekday,
	})

	assert.Equal(t, domain.PricingBreakdown{IsMinimumMet: true}, quote.Breakdown)
	assert.Nil(t, quote.Package)
	require.Len(t, quote.Notices, 1)
	assert.Equal(t, domain.NoticeMissingPackage, quote.Notices[0].Code)
	assert.Equal(t, "does-not-exist", quote.Notices[0].Subject)
	assert.NotNil(t, quote.LineItems)
}

func TestCalculate_PackageLookupIsScopedToEventType(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType: domain.EventTypeEvent,
		PackageID: "w-classic",
	})
	require.Len(t, quote.Notices, 1)
	assert.Equal(t, domain.NoticeMissingPackage, quote.Notices[0].Code)
}

func TestCalculate_MalformedAddonIgnored(t *testing.T) {
	selection := addons(map[string]int64{"flowers": 25_000})
	selection["champagne"] = domain.SelectedAddon{Malformed: true}

	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType: domain.EventTypeWedding,
		PackageID: "w-garden",
		Addons:    selection,
		DayType:   domain.DayTypeWeekend,
	})

	assert.Equal(t, int64(25_000), quote.Breakdown.AddonChargeTotal)
	require.Len(t, quote.Notices, 2)
	assert.Equal(t, domain.NoticeMalformedAddonAmount, quote.Notices[0].Code)
	assert.Equal(t, "champagne", quote.Notices[0].Subject)
	require.Len(t, quote.LineItems, 1)
	assert.Equal(t, "flowers", quote.LineItems[0].ID)
}

func TestCalculate_MissingCapacityConfig(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType:  domain.EventTypeWedding,
		PackageID:  "w-garden",
		GuestCount: 900,
		DayType:    domain.DayTypeWeekend,
	})

	b := quote.Breakdown
	assert.Zero(t, b.ExtraGuestCount)
	assert.Zero(t, b.ExtraGuestUnitPrice)
	assert.Zero(t, b.ExtraGuestCost)
	assert.Equal(t, int64(280_000), b.Subtotal)
	require.Len(t, quote.Notices, 1)
	assert.Equal(t, domain.NoticeMissingCapacityConfig, quote.Notices[0].Code)
}

func TestCalculate_TopTierExtraGuestPriceUsesHighestFoodAddon(t *testing.T) {
	tests := []struct {
		name     string
		selected map[string]int64
		wantUnit int64
	}{
		{name: "no food selected uses default", selected: nil, wantUnit: 1_200},
		{name: "single food add-on", selected: map[string]int64{"buffet-thai": 650 * 320}, wantUnit: 650},
		{name: "maximum wins over sum", selected: map[string]int64{"buffet-thai": 650 * 320, "buffet-intl": 900 * 320}, wantUnit: 900},
		{name: "non-food per-guest ignored", selected: map[string]int64{"welcome-drink": 120 * 320}, wantUnit: 1_200},
		{name: "flat add-on ignored", selected: map[string]int64{"flowers": 25_000}, wantUnit: 1_200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			quote := Calculate(testCatalog(), domain.BookingRequest{
				EventType:  domain.EventTypeWedding,
				PackageID:  "w-grand",
				Addons:     addons(tc.selected),
				GuestCount: 320,
				DayType:    domain.DayTypeWeekend,
				Period:     domain.PeriodMorning,
			})
			b := quote.Breakdown
			assert.Equal(t, 20, b.ExtraGuestCount)
			assert.Equal(t, tc.wantUnit, b.ExtraGuestUnitPrice)
			assert.Equal(t, 20*tc.wantUnit, b.ExtraGuestCost)
		})
	}
}

func TestCalculate_GuestsWithinCeilingCostNothing(t *testing.T) {
	for _, guests := range []int{0, 399, 400} {
		quote := Calculate(testCatalog(), domain.BookingRequest{
			EventType:  domain.EventTypeWedding,
			PackageID:  "w-classic",
			GuestCount: guests,
			DayType:    domain.DayTypeWeekend,
		})
		assert.Zero(t, quote.Breakdown.ExtraGuestCount, "guests=%d", guests)
		assert.Zero(t, quote.Breakdown.ExtraGuestCost, "guests=%d", guests)
	}
}

func TestCalculate_NegativeGuestCountTreatedAsZero(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType:  domain.EventTypeWedding,
		PackageID:  "w-classic",
		GuestCount: -5,
		DayType:    domain.DayTypeWeekend,
	})
	assert.Equal(t, 0, quote.Request.GuestCount)
	assert.Zero(t, quote.Breakdown.ExtraGuestCost)
}

func TestCalculate_TimeSurcharge(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		eventTy domain.EventType
		period  string
		want    int64
	}{
		{name: "standard full day uses flat surcharge", pkg: "w-classic", eventTy: domain.EventTypeWedding, period: domain.PeriodFullDay, want: 10_000},
		{name: "standard morning has none", pkg: "w-classic", eventTy: domain.EventTypeWedding, period: domain.PeriodMorning, want: 0},
		{name: "label is not matched", pkg: "w-classic", eventTy: domain.EventTypeWedding, period: "Full day", want: 0},
		{name: "event full day uses flat surcharge", pkg: "e-hall", eventTy: domain.EventTypeEvent, period: domain.PeriodFullDay, want: 10_000},
		{name: "top tier afternoon from table", pkg: "w-grand", eventTy: domain.EventTypeWedding, period: domain.PeriodAfternoon, want: 8_000},
		{name: "top tier morning from table", pkg: "w-grand", eventTy: domain.EventTypeWedding, period: domain.PeriodMorning, want: 0},
		{name: "top tier unknown period", pkg: "w-grand", eventTy: domain.EventTypeWedding, period: "midnight", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			quote := Calculate(testCatalog(), domain.BookingRequest{
				EventType: tc.eventTy,
				PackageID: tc.pkg,
				DayType:   domain.DayTypeWeekend,
				Period:    tc.period,
			})
			assert.Equal(t, tc.want, quote.Breakdown.TimeSurcharge)
		})
	}
}

func TestCalculate_WeekdayDiscountRule(t *testing.T) {
	tests := []struct {
		name string
		pkg  string
		day  domain.DayType
		want int64
	}{
		{name: "eligible weekday", pkg: "w-classic", day: domain.DayTypeWeekday, want: 20_000},
		{name: "eligible weekend", pkg: "w-classic", day: domain.DayTypeWeekend, want: 0},
		{name: "ineligible weekday", pkg: "w-garden", day: domain.DayTypeWeekday, want: 0},
		{name: "top tier weekday", pkg: "w-grand", day: domain.DayTypeWeekday, want: 50_000},
		{name: "top tier weekend", pkg: "w-grand", day: domain.DayTypeWeekend, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			quote := Calculate(testCatalog(), domain.BookingRequest{
				EventType: domain.EventTypeWedding,
				PackageID: tc.pkg,
				DayType:   tc.day,
			})
			assert.Equal(t, tc.want, quote.Breakdown.WeekdayDiscount)
		})
	}
}

func TestCalculate_AddonDiscountsNettedOnceAndReportedForDisplay(t *testing.T) {
	quote := Calculate(testCatalog(), domain.BookingRequest{
		EventType: domain.EventTypeWedding,
		PackageID: "w-classic",
		Addons:    addons(map[string]int64{"flowers": 25_000, "early-bird": -10_000}),
		DayType:   domain.DayTypeWeekday,
		Period:    domain.PeriodMorning,
	})

	b := quote.Breakdown
	assert.Equal(t, int64(25_000), b.AddonChargeTotal)
	assert.Equal(t, int64(-10_000), b.AddonDiscountTotal)
	assert.Equal(t, int64(10_000), b.AddonDiscountDisplay())
	assert.Equal(t, int64(465_000), b.SubtotalBeforeDiscounts)
	assert.Equal(t, int64(445_000), b.Subtotal)
	assert.Equal(t, int64(30_000), b.TotalDiscounts)
}

func TestCalculate_Idempotent(t *testing.T) {
	cat := testCatalog()
	req := domain.BookingRequest{
		EventType:  domain.EventTypeWedding,
		PackageID:  "w-grand",
		Addons:     addons(map[string]int64{"buffet-intl": 900 * 310, "early-bird": -10_000, "mystery": 400}),
		GuestCount: 310,
		DayType:    domain.DayTypeWeekday,
		Period:     domain.PeriodAfternoon,
	}

	first := Calculate(cat, req)
	second := Calculate(cat, req)
	require.Equal(t, first, second)
}

func TestCalculate_TotalInvariants(t *testing.T) {
	cat := testCatalog()
	packages := map[domain.EventType][]string{
		domain.EventTypeWedding: {"w-classic", "w-garden", "w-grand"},
		domain.EventTypeEvent:   {"e-hall"},
		domain.EventTypePhoto:   {"p-garden"},
	}
	selections := []domain.AddonSelection{
		nil,
		addons(map[string]int64{"flowers": 25_000}),
		addons(map[string]int64{"early-bird": -10_000, "buffet-thai": 650 * 350}),
		addons(map[string]int64{"stage": 60_000, "coffee-break": 150 * 120}),
	}

	for eventType, ids := range packages {
		for _, id := range ids {
			for _, day := range []domain.DayType{domain.DayTypeWeekday, domain.DayTypeWeekend} {
				for _, selection := range selections {
					for _, guests := range []int{0, 150, 350, 420} {
						quote := Calculate(cat, domain.BookingRequest{
							EventType:  eventType,
							PackageID:  id,
							Addons:     selection,
							GuestCount: guests,
							DayType:    day,
							Period:     domain.PeriodFullDay,
						})
						b := quote.Breakdown
						settings := cat.Settings()
						pkg, _ := cat.Package(eventType, id)

						require.Equal(t, b.Subtotal+b.VAT, b.Total)
						require.Equal(t, vatAmount(b.Subtotal, settings.VATRate), b.VAT)
						if b.Subtotal >= 0 {
							require.GreaterOrEqual(t, b.VAT, int64(0))
						}

						discounted := day == domain.DayTypeWeekday && (settings.IsTopTier(pkg.BudgetTier) || pkg.WeekdayDiscountEligible) && eventType != domain.EventTypePhoto
						require.Equal(t, discounted, b.WeekdayDiscount > 0, "%s/%s/%s", eventType, id, day)

						if b.ExtraGuestCost > 0 {
							ceiling, ok := CapacityCeiling(cat, quote.Request)
							require.True(t, ok)
							require.Greater(t, guests, ceiling)
							require.Equal(t, int64(guests-ceiling)*b.ExtraGuestUnitPrice, b.ExtraGuestCost)
						}

						if eventType == domain.EventTypeEvent {
							require.Equal(t, b.AddonChargeTotal >= pkg.MinSpend, b.IsMinimumMet)
							want := pkg.MinSpend - b.AddonChargeTotal
							if want < 0 {
								want = 0
							}
							require.Equal(t, want, b.Shortfall)
						} else {
							require.True(t, b.IsMinimumMet)
							require.Zero(t, b.Shortfall)
						}
					}
				}
			}
		}
	}
}

func TestVATAmountRounding(t *testing.T) {
	rate := decimal.RequireFromString("0.07")
	tests := []struct {
		subtotal int64
		want     int64
	}{
		{subtotal: 0, want: 0},
		{subtotal: 7, want: 0},
		{subtotal: 50, want: 4},
		{subtotal: 470_000, want: 32_900},
		{subtotal: 15_000, want: 1_050},
		{subtotal: 1_234_567, want: 86_420},
		{subtotal: -50, want: -3},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, vatAmount(tc.subtotal, rate), "subtotal=%d", tc.subtotal)
	}
}

func TestCapacityCeiling(t *testing.T) {
	cat := testCatalog()

	ceiling, ok := CapacityCeiling(cat, domain.BookingRequest{EventType: domain.EventTypeWedding, PackageID: "w-classic"})
	assert.True(t, ok)
	assert.Equal(t, 400, ceiling)

	ceiling, ok = CapacityCeiling(cat, domain.BookingRequest{EventType: domain.EventTypePhoto, PackageID: "p-garden"})
	assert.True(t, ok)
	assert.Equal(t, 20, ceiling)

	_, ok = CapacityCeiling(cat, domain.BookingRequest{EventType: domain.EventTypeEvent, PackageID: "e-hall"})
	assert.False(t, ok)

	_, ok = CapacityCeiling(cat, domain.BookingRequest{EventType: domain.EventTypeWedding, PackageID: "missing"})
	assert.False(t, ok)
}
