package domain

// PricingBreakdown captures every intermediate and final figure of a quote. It is derived,
// never persisted, and recomputed on each request.
type PricingBreakdown struct {
	BasePrice               int64 `json:"basePrice"`
	AddonChargeTotal        int64 `json:"addonChargeTotal"`
	AddonDiscountTotal      int64 `json:"addonDiscountTotal"`
	ExtraGuestCount         int   `json:"extraGuestCount"`
	ExtraGuestUnitPrice     int64 `json:"extraGuestUnitPrice"`
	ExtraGuestCost          int64 `json:"extraGuestCost"`
	TimeSurcharge           int64 `json:"timeSurcharge"`
	WeekdayDiscount         int64 `json:"weekdayDiscount"`
	SubtotalBeforeDiscounts int64 `json:"subtotalBeforeDiscounts"`
	Subtotal                int64 `json:"subtotal"`
	VAT                     int64 `json:"vat"`
	Total                   int64 `json:"total"`

	// TotalDiscounts is the display figure: weekday discount plus the absolute add-on
	// discount. The add-on part is already netted into SubtotalBeforeDiscounts.
	TotalDiscounts int64 `json:"totalDiscounts"`

	MinimumSpend int64 `json:"minimumSpend"`
	IsMinimumMet bool  `json:"isMinimumMet"`
	Shortfall    int64 `json:"shortfall"`
}

// AddonDiscountDisplay returns the add-on discount as a positive amount.
func (b PricingBreakdown) AddonDiscountDisplay() int64 {
	if b.AddonDiscountTotal < 0 {
		return -b.AddonDiscountTotal
	}
	return b.AddonDiscountTotal
}

// LineItem is a normalised selected add-on for summary and document rendering.
type LineItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	TotalAmount int64  `json:"totalAmount"`
	IsDiscount  bool   `json:"isDiscount"`
}

// NoticeCode identifies a condition the engine recovered from.
type NoticeCode string

const (
	NoticeMissingPackage        NoticeCode = "missing_package"
	NoticeMalformedAddonAmount  NoticeCode = "malformed_addon_amount"
	NoticeMissingCapacityConfig NoticeCode = "missing_capacity_config"
)

// Notice reports a locally recovered input problem.
type Notice struct {
	Code    NoticeCode `json:"code"`
	Subject string     `json:"subject,omitempty"`
}

// Quote bundles the engine outputs shared by every consumer.
type Quote struct {
	Request   BookingRequest   `json:"request"`
	Package   *Package         `json:"package,omitempty"`
	Currency  string           `json:"currency"`
	Breakdown PricingBreakdown `json:"breakdown"`
	LineItems []LineItem       `json:"lineItems"`
	Notices   []Notice         `json:"notices,omitempty"`
}
