package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/venuequote/api/internal/domain"
	"github.com/venuequote/api/internal/pricing"
)

const meterName = "github.com/venuequote/api/internal/services"

var (
	// ErrQuoteInvalidInput signals a booking request the engine cannot price, such as an
	// unknown event type.
	ErrQuoteInvalidInput = errors.New("quote: invalid input")
	// ErrCatalogUnavailable is returned when no catalog snapshot can be loaded.
	ErrCatalogUnavailable = errors.New("quote: catalog unavailable")
)

// QuoteService prices booking requests against the current catalog snapshot. It is the only
// entry point into the pricing engine for both the live summary and quotation documents.
type QuoteService struct {
	catalog CatalogProvider
	logger  func(context.Context, string, map[string]any)

	calculated metric.Int64Counter
	unmet      metric.Int64Counter
}

// QuoteServiceDeps configures NewQuoteService.
type QuoteServiceDeps struct {
	Catalog CatalogProvider
	Meter   metric.Meter
	Logger  func(context.Context, string, map[string]any)
}

// PricedQuote is a quote plus catalog-derived facts consumers display alongside it.
type PricedQuote struct {
	Quote domain.Quote
	// GuestsIncluded is the capacity ceiling the package price covers; zero when the
	// package has no capacity regime.
	GuestsIncluded int
}

// NewQuoteService constructs a QuoteService.
func NewQuoteService(deps QuoteServiceDeps) (*QuoteService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("quote service: catalog provider is required")
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	calculated, err := meter.Int64Counter("quotes.calculated",
		metric.WithDescription("Number of booking requests priced"))
	if err != nil {
		return nil, fmt.Errorf("quote service: register counter: %w", err)
	}
	unmet, err := meter.Int64Counter("quotes.minimum_spend_unmet",
		metric.WithDescription("Quotes whose add-on spend is below the package minimum"))
	if err != nil {
		return nil, fmt.Errorf("quote service: register counter: %w", err)
	}

	return &QuoteService{
		catalog:    deps.Catalog,
		logger:     logger,
		calculated: calculated,
		unmet:      unmet,
	}, nil
}

// Quote prices the request. Recoverable input problems are reported as notices on the
// quote; only requests that cannot be interpreted at all return ErrQuoteInvalidInput.
func (s *QuoteService) Quote(ctx context.Context, req domain.BookingRequest) (domain.Quote, error) {
	priced, err := s.Price(ctx, req)
	if err != nil {
		return domain.Quote{}, err
	}
	return priced.Quote, nil
}

// Price is Quote plus the guest allowance used by quotation documents.
func (s *QuoteService) Price(ctx context.Context, req domain.BookingRequest) (PricedQuote, error) {
	req, err := normalizeBookingRequest(req)
	if err != nil {
		return PricedQuote{}, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.logger(ctx, "quote.catalog_unavailable", map[string]any{"error": err.Error()})
		return PricedQuote{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	quote := pricing.Calculate(snapshot, req)
	included, _ := pricing.CapacityCeiling(snapshot, quote.Request)

	attrs := metric.WithAttributes(attribute.String("event_type", string(req.EventType)))
	s.calculated.Add(ctx, 1, attrs)
	if !quote.Breakdown.IsMinimumMet {
		s.unmet.Add(ctx, 1, attrs)
	}

	fields := map[string]any{
		"eventType": string(req.EventType),
		"packageId": req.PackageID,
		"total":     quote.Breakdown.Total,
	}
	if len(quote.Notices) > 0 {
		codes := make([]string, 0, len(quote.Notices))
		for _, notice := range quote.Notices {
			codes = append(codes, string(notice.Code))
		}
		fields["notices"] = codes
	}
	s.logger(ctx, "quote.calculated", fields)

	return PricedQuote{Quote: quote, GuestsIncluded: included}, nil
}

func normalizeBookingRequest(req domain.BookingRequest) (domain.BookingRequest, error) {
	eventType, ok := domain.ParseEventType(string(req.EventType))
	if !ok {
		return req, fmt.Errorf("%w: unknown event type %q", ErrQuoteInvalidInput, req.EventType)
	}
	req.EventType = eventType
	req.PackageID = strings.TrimSpace(req.PackageID)
	req.Period = strings.TrimSpace(req.Period)

	req.DayType = domain.DayType(strings.ToLower(strings.TrimSpace(string(req.DayType))))
	if req.DayType != "" && !req.DayType.Valid() {
		return req, fmt.Errorf("%w: unknown day type %q", ErrQuoteInvalidInput, req.DayType)
	}
	if req.GuestCount < 0 {
		return req, fmt.Errorf("%w: guest count must not be negative", ErrQuoteInvalidInput)
	}
	return req, nil
}
