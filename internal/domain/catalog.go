package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DayPrices holds split weekday/weekend pricing for packages that define it.
type DayPrices struct {
	Weekday int64 `json:"weekday"`
	Weekend int64 `json:"weekend"`
}

// TimePeriod is a bookable time slot on a package. Label is display-only.
type TimePeriod struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Surcharge int64  `json:"surcharge,omitempty"`
}

// Package describes a bookable venue package.
type Package struct {
	ID                      string       `json:"id"`
	Name                    string       `json:"name"`
	EventType               EventType    `json:"eventType"`
	BudgetTier              BudgetTier   `json:"budgetTier,omitempty"`
	Price                   int64        `json:"price"`
	DayPrices               *DayPrices   `json:"dayPrices,omitempty"`
	MinCapacity             int          `json:"minCapacity,omitempty"`
	MaxCapacity             int          `json:"maxCapacity,omitempty"`
	MinSpend                int64        `json:"minSpend,omitempty"`
	WeekdayDiscountEligible bool         `json:"weekdayDiscountEligible"`
	Periods                 []TimePeriod `json:"periods,omitempty"`
}

// Period looks up a time period by id.
func (p Package) Period(id string) (TimePeriod, bool) {
	for _, period := range p.Periods {
		if period.ID == id {
			return period, true
		}
	}
	return TimePeriod{}, false
}

// BillingKind describes how an add-on amount relates to its unit price.
type BillingKind string

const (
	BillingFlat     BillingKind = "flat"
	BillingPerGuest BillingKind = "per_guest"
	BillingPerUnit  BillingKind = "per_unit"
	BillingDiscount BillingKind = "discount"
)

// AddonDefinition is a catalog entry the customer can select.
type AddonDefinition struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Price   int64       `json:"price"`
	Billing BillingKind `json:"billing"`
	Unit    string      `json:"unit,omitempty"`
	Food    bool        `json:"food,omitempty"`
}

// PerTableOfTen reports whether the unit label denotes tables seating ten guests.
func (d AddonDefinition) PerTableOfTen() bool {
	unit := strings.ToLower(d.Unit)
	return strings.Contains(unit, "table") && strings.Contains(unit, "10")
}

// AddonCategory groups add-on definitions for display.
type AddonCategory struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Items []AddonDefinition `json:"items"`
}

// AddonCatalog is the categorised add-on list for one event type.
type AddonCatalog []AddonCategory

// Find returns the definition with the given id.
func (c AddonCatalog) Find(id string) (AddonDefinition, bool) {
	for _, category := range c {
		for _, item := range category.Items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return AddonDefinition{}, false
}

// CapacityLimit is the guest allowance for a non-top wedding budget tier.
type CapacityLimit struct {
	GuestLimit      int   `json:"guestLimit"`
	ExtraGuestPrice int64 `json:"extraGuestPrice"`
}

// Settings are global pricing parameters.
type Settings struct {
	Currency               string                       `json:"currency"`
	VATRate                decimal.Decimal              `json:"vatRate"`
	WeekdayDiscount        int64                        `json:"weekdayDiscount"`
	TopTierWeekdayDiscount int64                        `json:"topTierWeekdayDiscount"`
	FullDaySurcharge       int64                        `json:"fullDaySurcharge"`
	DefaultExtraGuestPrice int64                        `json:"defaultExtraGuestPrice"`
	TopBudgetTier          BudgetTier                   `json:"topBudgetTier,omitempty"`
	CapacityLimits         map[BudgetTier]CapacityLimit `json:"capacityLimits,omitempty"`
}

// IsTopTier reports whether tier is the configured top budget tier.
func (s Settings) IsTopTier(tier BudgetTier) bool {
	return s.TopBudgetTier != "" && tier == s.TopBudgetTier
}

// CatalogSnapshot is an immutable, point-in-time view of the catalog. It satisfies the
// lookups the pricing engine needs.
type CatalogSnapshot struct {
	settings Settings
	packages map[EventType]map[string]Package
	addons   map[EventType]AddonCatalog
}

// NewCatalogSnapshot copies the inputs into a snapshot.
func NewCatalogSnapshot(settings Settings, packages []Package, addons map[EventType]AddonCatalog) CatalogSnapshot {
	limits := make(map[BudgetTier]CapacityLimit, len(settings.CapacityLimits))
	for tier, limit := range settings.CapacityLimits {
		limits[tier] = limit
	}
	settings.CapacityLimits = limits

	byType := make(map[EventType]map[string]Package)
	for _, pkg := range packages {
		if byType[pkg.EventType] == nil {
			byType[pkg.EventType] = make(map[string]Package)
		}
		pkg.Periods = append([]TimePeriod(nil), pkg.Periods...)
		if pkg.DayPrices != nil {
			prices := *pkg.DayPrices
			pkg.DayPrices = &prices
		}
		byType[pkg.EventType][pkg.ID] = pkg
	}

	addonCopy := make(map[EventType]AddonCatalog, len(addons))
	for eventType, catalog := range addons {
		cloned := make(AddonCatalog, 0, len(catalog))
		for _, category := range catalog {
			category.Items = append([]AddonDefinition(nil), category.Items...)
			cloned = append(cloned, category)
		}
		addonCopy[eventType] = cloned
	}

	return CatalogSnapshot{settings: settings, packages: byType, addons: addonCopy}
}

// Package resolves a package by event type and id.
func (c CatalogSnapshot) Package(eventType EventType, id string) (Package, bool) {
	pkg, ok := c.packages[eventType][id]
	return pkg, ok
}

// Packages lists the packages for an event type ordered by id.
func (c CatalogSnapshot) Packages(eventType EventType) []Package {
	out := make([]Package, 0, len(c.packages[eventType]))
	for _, pkg := range c.packages[eventType] {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Settings returns the global pricing settings.
func (c CatalogSnapshot) Settings() Settings {
	return c.settings
}

// Addons returns the add-on catalog for an event type.
func (c CatalogSnapshot) Addons(eventType EventType) AddonCatalog {
	return c.addons[eventType]
}
