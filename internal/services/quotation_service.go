package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/venuequote/api/internal/domain"
	"github.com/venuequote/api/internal/quotation"
)

// ErrQuotationInvalidInput signals a quotation command that cannot produce a document.
var ErrQuotationInvalidInput = errors.New("quotation: invalid input")

// GenerateQuotationCommand carries the booking selection plus the customer details printed on
// the document.
type GenerateQuotationCommand struct {
	Request  domain.BookingRequest
	Customer quotation.Customer
	Locale   string
}

// QuotationService prices a booking and issues a quotation document for it.
type QuotationService struct {
	quotes    *QuoteService
	builder   *quotation.Builder
	publisher QuotationPublisher
	logger    func(context.Context, string, map[string]any)

	generated metric.Int64Counter
}

// QuotationServiceDeps configures NewQuotationService. Publisher is optional.
type QuotationServiceDeps struct {
	Quotes    *QuoteService
	Builder   *quotation.Builder
	Publisher QuotationPublisher
	Meter     metric.Meter
	Logger    func(context.Context, string, map[string]any)
}

// NewQuotationService constructs a QuotationService.
func NewQuotationService(deps QuotationServiceDeps) (*QuotationService, error) {
	if deps.Quotes == nil {
		return nil, errors.New("quotation service: quote service is required")
	}
	if deps.Builder == nil {
		return nil, errors.New("quotation service: document builder is required")
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	generated, err := meter.Int64Counter("quotations.generated",
		metric.WithDescription("Number of quotation documents issued"))
	if err != nil {
		return nil, fmt.Errorf("quotation service: register counter: %w", err)
	}
	return &QuotationService{
		quotes:    deps.Quotes,
		builder:   deps.Builder,
		publisher: deps.Publisher,
		logger:    logger,
		generated: generated,
	}, nil
}

// Generate prices the request and renders the quotation. The document is returned even when
// announcing it downstream fails; the failure is only logged.
func (s *QuotationService) Generate(ctx context.Context, cmd GenerateQuotationCommand) (quotation.Document, error) {
	customer, err := normalizeCustomer(cmd.Customer)
	if err != nil {
		return quotation.Document{}, err
	}

	priced, err := s.quotes.Price(ctx, cmd.Request)
	if err != nil {
		return quotation.Document{}, err
	}
	if priced.Quote.Package == nil {
		return quotation.Document{}, fmt.Errorf("%w: package %q not found", ErrQuotationInvalidInput, priced.Quote.Request.PackageID)
	}

	doc, err := s.builder.Build(quotation.Input{
		Quote:          priced.Quote,
		GuestsIncluded: priced.GuestsIncluded,
		Customer:       customer,
		Locale:         cmd.Locale,
	})
	if err != nil {
		if errors.Is(err, quotation.ErrNoPackage) {
			return quotation.Document{}, fmt.Errorf("%w: %v", ErrQuotationInvalidInput, err)
		}
		return quotation.Document{}, fmt.Errorf("quotation service: build document: %w", err)
	}

	s.generated.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", string(doc.EventType))))
	s.logger(ctx, "quotation.generated", map[string]any{
		"quotationNumber": doc.Number,
		"eventType":       string(doc.EventType),
		"packageId":       doc.Package.ID,
		"total":           doc.Breakdown.Total,
	})

	s.publish(ctx, doc)
	return doc, nil
}

func (s *QuotationService) publish(ctx context.Context, doc quotation.Document) {
	if s.publisher == nil {
		return
	}
	event := QuotationGeneratedEvent{
		QuotationNumber: doc.Number,
		EventType:       doc.EventType,
		PackageID:       doc.Package.ID,
		Total:           doc.Breakdown.Total,
		Currency:        doc.Currency,
		CustomerEmail:   doc.Customer.Email,
		Locale:          doc.Locale,
		IssuedAt:        doc.IssuedAt,
	}
	messageID, err := s.publisher.PublishQuotationGenerated(ctx, event)
	if err != nil {
		s.logger(ctx, "quotation.publish_failed", map[string]any{
			"quotationNumber": doc.Number,
			"error":           err.Error(),
		})
		return
	}
	s.logger(ctx, "quotation.published", map[string]any{
		"quotationNumber": doc.Number,
		"messageId":       messageID,
	})
}

func normalizeCustomer(c quotation.Customer) (quotation.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return c, fmt.Errorf("%w: customer name is required", ErrQuotationInvalidInput)
	}
	if c.Email != "" {
		addr, err := mail.ParseAddress(c.Email)
		if err != nil {
			return c, fmt.Errorf("%w: invalid customer email", ErrQuotationInvalidInput)
		}
		c.Email = addr.Address
	}
	return c, nil
}
