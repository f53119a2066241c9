package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venuequote/api/internal/domain"
)

type stubCatalogProvider struct {
	mu       sync.Mutex
	snapshot domain.CatalogSnapshot
	err      error
	calls    int
}

func (s *stubCatalogProvider) Snapshot(context.Context) (domain.CatalogSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return domain.CatalogSnapshot{}, s.err
	}
	return s.snapshot, nil
}

func (s *stubCatalogProvider) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *stubCatalogProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type logEntry struct {
	event  string
	fields map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) log(_ context.Context, event string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{event: event, fields: fields})
}

func (r *recordingLogger) find(event string) (logEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.event == event {
			return entry, true
		}
	}
	return logEntry{}, false
}

type stubPublisher struct {
	events []QuotationGeneratedEvent
	err    error
}

func (s *stubPublisher) PublishQuotationGenerated(_ context.Context, event QuotationGeneratedEvent) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.events = append(s.events, event)
	return "msg-1", nil
}

type mapTranslator map[string]string

func (m mapTranslator) T(_ string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testSnapshot() domain.CatalogSnapshot {
	settings := domain.Settings{
		Currency:               "THB",
		VATRate:                decimal.RequireFromString("0.07"),
		WeekdayDiscount:        20_000,
		TopTierWeekdayDiscount: 50_000,
		FullDaySurcharge:       10_000,
		DefaultExtraGuestPrice: 1_200,
		TopBudgetTier:          "over_1m",
		CapacityLimits: map[domain.BudgetTier]domain.CapacityLimit{
			"500k_1m": {GuestLimit: 400, ExtraGuestPrice: 800},
		},
	}
	packages := []domain.Package{
		{
			ID:                      "w-classic",
			Name:                    "Classic Ballroom",
			EventType:               domain.EventTypeWedding,
			BudgetTier:              "500k_1m",
			DayPrices:               &domain.DayPrices{Weekday: 450_000, Weekend: 520_000},
			WeekdayDiscountEligible: true,
			Periods:                 []domain.TimePeriod{{ID: domain.PeriodEvening, Label: "Evening"}},
		},
		{ID: "w-garden", Name: "Garden", EventType: domain.EventTypeWedding, BudgetTier: "under_500k", Price: 280_000},
		{ID: "e-hall", Name: "Function Hall", EventType: domain.EventTypeEvent, Price: 30_000, MinSpend: 100_000},
		{ID: "p-garden", Name: "Photo Garden", EventType: domain.EventTypePhoto, Price: 15_000, MaxCapacity: 20},
	}
	addons := map[domain.EventType]domain.AddonCatalog{
		domain.EventTypeWedding: {{
			ID:   "catering",
			Name: "Catering",
			Items: []domain.AddonDefinition{
				{ID: "buffet-thai", Name: "Thai buffet", Price: 650, Billing: domain.BillingPerGuest, Unit: "per guest", Food: true},
				{ID: "flowers", Name: "Floral arch", Price: 25_000, Billing: domain.BillingFlat},
			},
		}},
		domain.EventTypeEvent: {{
			ID:    "production",
			Name:  "Production",
			Items: []domain.AddonDefinition{{ID: "stage", Name: "Stage", Price: 60_000, Billing: domain.BillingFlat}},
		}},
	}
	return domain.NewCatalogSnapshot(settings, packages, addons)
}
