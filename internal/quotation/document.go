// Package quotation turns a priced quote into a customer-facing quotation document. It never
// computes prices itself: every figure comes from the breakdown it is handed.
package quotation

import (
	"errors"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/venuequote/api/internal/domain"
)

const defaultValidity = 14 * 24 * time.Hour

// Translator looks up localized labels.
type Translator interface {
	T(lang, key string) string
}

// Customer identifies who the quotation is prepared for.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// PackageSummary is the package reference printed on the document.
type PackageSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Line is one add-on row of the document.
type Line struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unitPrice"`
	Amount        int64  `json:"amount"`
	UnitPriceText string `json:"unitPriceText"`
	AmountText    string `json:"amountText"`
	IsDiscount    bool   `json:"isDiscount"`
}

// SummaryRow is one labelled figure of the totals block.
type SummaryRow struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
	Text   string `json:"text"`
}

// NoticeText is a localized notice.
type NoticeText struct {
	Code    domain.NoticeCode `json:"code"`
	Subject string            `json:"subject,omitempty"`
	Message string            `json:"message"`
}

// Document is a rendered quotation.
type Document struct {
	Number         string                  `json:"number"`
	Locale         string                  `json:"locale"`
	Title          string                  `json:"title"`
	IssuedAt       time.Time               `json:"issuedAt"`
	ValidUntil     time.Time               `json:"validUntil"`
	IssuedText     string                  `json:"issuedText"`
	ValidUntilText string                  `json:"validUntilText"`
	Issuer         string                  `json:"issuer"`
	Customer       Customer                `json:"customer"`
	EventType      domain.EventType        `json:"eventType"`
	EventTypeLabel string                  `json:"eventTypeLabel"`
	Package        PackageSummary          `json:"package"`
	GuestCount     int                     `json:"guestCount"`
	GuestsIncluded int                     `json:"guestsIncluded,omitempty"`
	DayType        domain.DayType          `json:"dayType,omitempty"`
	PeriodLabel    string                  `json:"periodLabel,omitempty"`
	Currency       string                  `json:"currency"`
	Lines          []Line                  `json:"lines"`
	Summary        []SummaryRow            `json:"summary"`
	Breakdown      domain.PricingBreakdown `json:"breakdown"`
	Notices        []NoticeText            `json:"notices,omitempty"`
	HTML           string                  `json:"html"`
}

// Input is everything Build needs besides the builder's own configuration.
type Input struct {
	Quote          domain.Quote
	GuestsIncluded int
	Customer       Customer
	Locale         string
}

// ErrNoPackage is returned when the quote does not reference a catalog package.
var ErrNoPackage = errors.New("quotation: quote has no package")

// Builder assembles quotation documents.
type Builder struct {
	translator Translator
	issuer     string
	validity   time.Duration
	now        func() time.Time
	newNumber  func(time.Time) string
	strict     *bluemonday.Policy
	renderer   *renderer
}

// BuilderDeps configures NewBuilder.
type BuilderDeps struct {
	Translator Translator
	IssuerName string
	Validity   time.Duration
	Now        func() time.Time
	NewNumber  func(time.Time) string
}

// NewBuilder constructs a Builder.
func NewBuilder(deps BuilderDeps) (*Builder, error) {
	if deps.Translator == nil {
		return nil, errors.New("quotation builder: translator is required")
	}
	validity := deps.Validity
	if validity <= 0 {
		validity = defaultValidity
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newNumber := deps.NewNumber
	if newNumber == nil {
		newNumber = NewNumber
	}
	return &Builder{
		translator: deps.Translator,
		issuer:     strings.TrimSpace(deps.IssuerName),
		validity:   validity,
		now:        func() time.Time { return now().UTC() },
		newNumber:  newNumber,
		strict:     bluemonday.StrictPolicy(),
		renderer:   newRenderer(),
	}, nil
}

// NewNumber returns a sortable quotation number of the form Q-<ULID>.
func NewNumber(at time.Time) string {
	return "Q-" + ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// Build renders the document for the quote.
func (b *Builder) Build(in Input) (Document, error) {
	quote := in.Quote
	if quote.Package == nil {
		return Document{}, ErrNoPackage
	}
	lang := in.Locale
	t := func(key string) string { return b.translator.T(lang, key) }
	f := NewFormatter(lang, quote.Currency)

	issued := b.now()
	doc := Document{
		Number:         b.newNumber(issued),
		Locale:         lang,
		Title:          t("quotation.title"),
		IssuedAt:       issued,
		ValidUntil:     issued.Add(b.validity),
		Issuer:         b.issuer,
		Customer:       b.sanitizeCustomer(in.Customer),
		EventType:      quote.Request.EventType,
		EventTypeLabel: t("event_type." + string(quote.Request.EventType)),
		Package:        PackageSummary{ID: quote.Package.ID, Name: b.plain(quote.Package.Name)},
		GuestCount:     quote.Request.GuestCount,
		GuestsIncluded: in.GuestsIncluded,
		DayType:        quote.Request.DayType,
		Currency:       quote.Currency,
		Breakdown:      quote.Breakdown,
		Lines:          make([]Line, 0, len(quote.LineItems)),
	}
	doc.IssuedText = f.Date(doc.IssuedAt)
	doc.ValidUntilText = f.Date(doc.ValidUntil)
	if period, ok := quote.Package.Period(quote.Request.Period); ok {
		doc.PeriodLabel = period.Label
	} else {
		doc.PeriodLabel = quote.Request.Period
	}

	for _, item := range quote.LineItems {
		line := Line{
			ID:            item.ID,
			Label:         b.plain(item.Name),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Amount:        item.TotalAmount,
			UnitPriceText: f.Amount(item.UnitPrice),
			AmountText:    f.Amount(item.TotalAmount),
			IsDiscount:    item.IsDiscount,
		}
		if item.IsDiscount {
			line.AmountText = f.Discount(item.TotalAmount)
		}
		doc.Lines = append(doc.Lines, line)
	}

	doc.Summary = summaryRows(quote, t, f)

	for _, notice := range quote.Notices {
		doc.Notices = append(doc.Notices, NoticeText{
			Code:    notice.Code,
			Subject: notice.Subject,
			Message: t("notice." + string(notice.Code)),
		})
	}

	rendered, err := b.renderer.render(doc, t, f)
	if err != nil {
		return Document{}, err
	}
	doc.HTML = rendered
	return doc, nil
}

func (b *Builder) sanitizeCustomer(c Customer) Customer {
	return Customer{
		Name:  b.plain(c.Name),
		Email: b.plain(c.Email),
		Phone: b.plain(c.Phone),
		// Notes are markdown; they are sanitised after rendering.
		Notes: strings.TrimSpace(c.Notes),
	}
}

// plain strips markup from free text, leaving readable characters unescaped.
func (b *Builder) plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(b.strict.Sanitize(s)))
}

func summaryRows(quote domain.Quote, t func(string) string, f Formatter) []SummaryRow {
	b := quote.Breakdown
	rows := make([]SummaryRow, 0, 10)
	add := func(key string, amount int64, text string) {
		rows = append(rows, SummaryRow{Key: key, Label: t("quotation." + key), Amount: amount, Text: text})
	}

	// Event venue fees stay off the bill; the note in the document explains why.
	if quote.Request.EventType != domain.EventTypeEvent {
		add("base_price", b.BasePrice, f.Amount(b.BasePrice))
	}
	if b.AddonChargeTotal != 0 {
		add("addons", b.AddonChargeTotal, f.Amount(b.AddonChargeTotal))
	}
	if b.AddonDiscountTotal != 0 {
		add("addon_discounts", b.AddonDiscountTotal, f.Discount(b.AddonDiscountTotal))
	}
	if b.ExtraGuestCost != 0 {
		text := f.Number(b.ExtraGuestCount) + " × " + f.Amount(b.ExtraGuestUnitPrice) + " = " + f.Amount(b.ExtraGuestCost)
		add("extra_guests", b.ExtraGuestCost, text)
	}
	if b.TimeSurcharge != 0 {
		add("time_surcharge", b.TimeSurcharge, f.Amount(b.TimeSurcharge))
	}
	if b.WeekdayDiscount != 0 {
		add("weekday_discount", -b.WeekdayDiscount, f.Discount(b.WeekdayDiscount))
	}
	add("subtotal", b.Subtotal, f.Amount(b.Subtotal))
	add("vat", b.VAT, f.Amount(b.VAT))
	add("total", b.Total, f.Amount(b.Total))
	if b.TotalDiscounts != 0 {
		add("total_discounts", b.TotalDiscounts, f.Amount(b.TotalDiscounts))
	}
	if b.MinimumSpend > 0 {
		add("minimum_spend", b.MinimumSpend, f.Amount(b.MinimumSpend))
	}
	return rows
}
