package services

import (
	"context"
	"time"

	"github.com/venuequote/api/internal/domain"
)

// CatalogProvider supplies immutable catalog snapshots for pricing.
type CatalogProvider interface {
	Snapshot(ctx context.Context) (domain.CatalogSnapshot, error)
}

// QuotationGeneratedEvent is emitted after a quotation document is issued so downstream
// workers can deliver it to the customer.
type QuotationGeneratedEvent struct {
	QuotationNumber string           `json:"quotationNumber"`
	EventType       domain.EventType `json:"eventType"`
	PackageID       string           `json:"packageId"`
	Total           int64            `json:"total"`
	Currency        string           `json:"currency"`
	CustomerEmail   string           `json:"customerEmail,omitempty"`
	Locale          string           `json:"locale,omitempty"`
	IssuedAt        time.Time        `json:"issuedAt"`
}

// QuotationPublisher publishes quotation lifecycle events.
type QuotationPublisher interface {
	PublishQuotationGenerated(ctx context.Context, event QuotationGeneratedEvent) (string, error)
}

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}
