// Package catalog loads pricing catalog snapshots from a YAML file or from Firestore.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/venuequote/api/internal/domain"
)

// ErrInvalidCatalog is returned when catalog data is present but cannot be used for pricing.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

type fileRecord struct {
	Settings settingsRecord                   `yaml:"settings"`
	Packages []packageRecord                  `yaml:"packages"`
	Addons   map[string][]addonCategoryRecord `yaml:"addons"`
}

type settingsRecord struct {
	Currency               string                         `yaml:"currency" firestore:"currency"`
	VATRate                any                            `yaml:"vat_rate" firestore:"vatRate"`
	WeekdayDiscount        int64                          `yaml:"weekday_discount" firestore:"weekdayDiscount"`
	TopTierWeekdayDiscount int64                          `yaml:"top_tier_weekday_discount" firestore:"topTierWeekdayDiscount"`
	FullDaySurcharge       int64                          `yaml:"full_day_surcharge" firestore:"fullDaySurcharge"`
	DefaultExtraGuestPrice int64                          `yaml:"default_extra_guest_price" firestore:"defaultExtraGuestPrice"`
	TopBudgetTier          string                         `yaml:"top_budget_tier" firestore:"topBudgetTier"`
	CapacityLimits         map[string]capacityLimitRecord `yaml:"capacity_limits" firestore:"capacityLimits"`
}

type capacityLimitRecord struct {
	GuestLimit      int   `yaml:"guest_limit" firestore:"guestLimit"`
	ExtraGuestPrice int64 `yaml:"extra_guest_price" firestore:"extraGuestPrice"`
}

type dayPricesRecord struct {
	Weekday int64 `yaml:"weekday" firestore:"weekday"`
	Weekend int64 `yaml:"weekend" firestore:"weekend"`
}

type periodRecord struct {
	ID        string `yaml:"id" firestore:"id"`
	Label     string `yaml:"label" firestore:"label"`
	Surcharge int64  `yaml:"surcharge" firestore:"surcharge"`
}

type packageRecord struct {
	ID                      string           `yaml:"id" firestore:"id"`
	Name                    string           `yaml:"name" firestore:"name"`
	EventType               string           `yaml:"event_type" firestore:"eventType"`
	BudgetTier              string           `yaml:"budget_tier" firestore:"budgetTier"`
	Price                   int64            `yaml:"price" firestore:"price"`
	DayPrices               *dayPricesRecord `yaml:"day_prices" firestore:"dayPrices"`
	MinCapacity             int              `yaml:"min_capacity" firestore:"minCapacity"`
	MaxCapacity             int              `yaml:"max_capacity" firestore:"maxCapacity"`
	MinSpend                int64            `yaml:"min_spend" firestore:"minSpend"`
	WeekdayDiscountEligible bool             `yaml:"weekday_discount_eligible" firestore:"weekdayDiscountEligible"`
	Periods                 []periodRecord   `yaml:"periods" firestore:"periods"`
}

type addonRecord struct {
	ID      string `yaml:"id" firestore:"id"`
	Name    string `yaml:"name" firestore:"name"`
	Price   int64  `yaml:"price" firestore:"price"`
	Billing string `yaml:"billing" firestore:"billing"`
	Unit    string `yaml:"unit" firestore:"unit"`
	Food    bool   `yaml:"food" firestore:"food"`
}

type addonCategoryRecord struct {
	ID        string        `yaml:"id" firestore:"id"`
	Name      string        `yaml:"name" firestore:"name"`
	EventType string        `yaml:"-" firestore:"eventType"`
	SortOrder int           `yaml:"-" firestore:"sortOrder"`
	Items     []addonRecord `yaml:"items" firestore:"items"`
}

// buildSnapshot validates decoded records and assembles an immutable snapshot.
func buildSnapshot(settings settingsRecord, packages []packageRecord, categories []addonCategoryRecord) (domain.CatalogSnapshot, error) {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	domainSettings, err := settings.toDomain()
	if err != nil {
		report("%v", err)
	}

	seen := make(map[string]bool, len(packages))
	domainPackages := make([]domain.Package, 0, len(packages))
	for i, rec := range packages {
		pkg, err := rec.toDomain()
		if err != nil {
			report("packages[%d]: %v", i, err)
			continue
		}
		key := string(pkg.EventType) + "/" + pkg.ID
		if seen[key] {
			report("packages[%d]: duplicate id %q for %s", i, pkg.ID, pkg.EventType)
			continue
		}
		seen[key] = true
		domainPackages = append(domainPackages, pkg)
	}

	addons := make(map[domain.EventType]domain.AddonCatalog)
	addonIDs := make(map[string]bool)
	for _, rec := range categories {
		eventType, ok := domain.ParseEventType(rec.EventType)
		if !ok {
			report("addon category %q: unknown event type %q", rec.ID, rec.EventType)
			continue
		}
		category := domain.AddonCategory{
			ID:    strings.TrimSpace(rec.ID),
			Name:  strings.TrimSpace(rec.Name),
			Items: make([]domain.AddonDefinition, 0, len(rec.Items)),
		}
		for _, item := range rec.Items {
			def, err := item.toDomain()
			if err != nil {
				report("addon category %q: %v", rec.ID, err)
				continue
			}
			key := string(eventType) + "/" + def.ID
			if addonIDs[key] {
				report("addon category %q: duplicate add-on id %q", rec.ID, def.ID)
				continue
			}
			addonIDs[key] = true
			category.Items = append(category.Items, def)
		}
		addons[eventType] = append(addons[eventType], category)
	}

	if len(problems) > 0 {
		return domain.CatalogSnapshot{}, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return domain.NewCatalogSnapshot(domainSettings, domainPackages, addons), nil
}

func (r settingsRecord) toDomain() (domain.Settings, error) {
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		return domain.Settings{}, errors.New("settings: currency is required")
	}
	rate, err := parseRate(r.VATRate)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settings: vat rate: %w", err)
	}
	limits := make(map[domain.BudgetTier]domain.CapacityLimit, len(r.CapacityLimits))
	for tier, limit := range r.CapacityLimits {
		limits[domain.BudgetTier(strings.TrimSpace(tier))] = domain.CapacityLimit{
			GuestLimit:      limit.GuestLimit,
			ExtraGuestPrice: limit.ExtraGuestPrice,
		}
	}
	return domain.Settings{
		Currency:               currency,
		VATRate:                rate,
		WeekdayDiscount:        r.WeekdayDiscount,
		TopTierWeekdayDiscount: r.TopTierWeekdayDiscount,
		FullDaySurcharge:       r.FullDaySurcharge,
		DefaultExtraGuestPrice: r.DefaultExtraGuestPrice,
		TopBudgetTier:          domain.BudgetTier(strings.TrimSpace(r.TopBudgetTier)),
		CapacityLimits:         limits,
	}, nil
}

// parseRate accepts the VAT rate as a decimal string or a number.
func parseRate(raw any) (decimal.Decimal, error) {
	var rate decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, errors.New("missing")
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse %q: %w", v, err)
		}
		rate = d
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("not a number: %v", v)
		}
		rate = decimal.NewFromFloat(v)
	case int:
		rate = decimal.NewFromInt(int64(v))
	case int64:
		rate = decimal.NewFromInt(v)
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", raw)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s is outside [0, 1)", rate)
	}
	return rate, nil
}

func (r packageRecord) toDomain() (domain.Package, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return domain.Package{}, errors.New("id is required")
	}
	eventType, ok := domain.ParseEventType(r.EventType)
	if !ok {
		return domain.Package{}, fmt.Errorf("package %q: unknown event type %q", id, r.EventType)
	}
	if r.Price < 0 || r.MinSpend < 0 {
		return domain.Package{}, fmt.Errorf("package %q: amounts must not be negative", id)
	}
	if eventType == domain.EventTypePhoto {
		// Photo sessions are billed at the flat price only.
		if r.Price == 0 {
			return domain.Package{}, fmt.Errorf("package %q: photo packages require a flat price", id)
		}
		if r.DayPrices != nil {
			return domain.Package{}, fmt.Errorf("package %q: photo packages do not support day prices", id)
		}
	}
	pkg := domain.Package{
		ID:                      id,
		Name:                    strings.TrimSpace(r.Name),
		EventType:               eventType,
		BudgetTier:              domain.BudgetTier(strings.TrimSpace(r.BudgetTier)),
		Price:                   r.Price,
		MinCapacity:             r.MinCapacity,
		MaxCapacity:             r.MaxCapacity,
		MinSpend:                r.MinSpend,
		WeekdayDiscountEligible: r.WeekdayDiscountEligible,
	}
	if r.DayPrices != nil {
		pkg.DayPrices = &domain.DayPrices{Weekday: r.DayPrices.Weekday, Weekend: r.DayPrices.Weekend}
	}
	for _, period := range r.Periods {
		pkg.Periods = append(pkg.Periods, domain.TimePeriod{
			ID:        strings.TrimSpace(period.ID),
			Label:     strings.TrimSpace(period.Label),
			Surcharge: period.Surcharge,
		})
	}
	return pkg, nil
}

func (r addonRecord) toDomain() (domain.AddonDefinition, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return domain.AddonDefinition{}, errors.New("add-on id is required")
	}
	billing := domain.BillingKind(strings.ToLower(strings.TrimSpace(r.Billing)))
	switch billing {
	case domain.BillingFlat, domain.BillingPerGuest, domain.BillingPerUnit, domain.BillingDiscount:
	case "":
		billing = domain.BillingFlat
	default:
		return domain.AddonDefinition{}, fmt.Errorf("add-on %q: unknown billing %q", id, r.Billing)
	}
	return domain.AddonDefinition{
		ID:      id,
		Name:    strings.TrimSpace(r.Name),
		Price:   r.Price,
		Billing: billing,
		Unit:    strings.TrimSpace(r.Unit),
		Food:    r.Food,
	}, nil
}

func sortCategories(categories []addonCategoryRecord) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].ID < categories[j].ID
	})
}
