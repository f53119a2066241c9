package pricing

import (
	"sort"

	"github.com/venuequote/api/internal/domain"
)

// lineItems lists the selected add-ons in catalog order, followed by ids the catalog does not
// know, sorted by id.
func lineItems(catalog domain.AddonCatalog, req domain.BookingRequest) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(req.Addons))
	seen := make(map[string]struct{}, len(req.Addons))

	for _, category := range catalog {
		for _, def := range category.Items {
			addon, ok := req.Addons[def.ID]
			if !ok || addon.Amount == 0 {
				continue
			}
			if _, dup := seen[def.ID]; dup {
				continue
			}
			seen[def.ID] = struct{}{}
			items = append(items, definedLineItem(def, addon, req.GuestCount))
		}
	}

	var unknown []string
	for id, addon := range req.Addons {
		if _, ok := seen[id]; ok || addon.Amount == 0 {
			continue
		}
		unknown = append(unknown, id)
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		addon := req.Addons[id]
		items = append(items, domain.LineItem{
			ID:          id,
			Name:        id,
			UnitPrice:   abs(addon.Amount),
			Quantity:    1,
			TotalAmount: abs(addon.Amount),
			IsDiscount:  addon.Amount < 0,
		})
	}
	return items
}

func definedLineItem(def domain.AddonDefinition, addon domain.SelectedAddon, guests int) domain.LineItem {
	amount := abs(addon.Amount)
	item := domain.LineItem{
		ID:          def.ID,
		Name:        def.Name,
		UnitPrice:   def.Price,
		TotalAmount: amount,
		IsDiscount:  addon.Amount < 0 || def.Billing == domain.BillingDiscount,
	}
	if item.Name == "" {
		item.Name = def.ID
	}

	switch def.Billing {
	case domain.BillingPerGuest:
		item.Quantity = guests
		if def.PerTableOfTen() {
			item.Quantity = (guests + 9) / 10
		}
	case domain.BillingPerUnit:
		item.Quantity = 1
		if def.Price > 0 {
			if q := int((2*amount + def.Price) / (2 * def.Price)); q > 1 {
				item.Quantity = q
			}
		}
	default:
		item.Quantity = addon.Quantity
		if item.Quantity < 1 {
			item.Quantity = 1
		}
	}
	if item.UnitPrice == 0 {
		item.UnitPrice = amount
	}
	return item
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
