package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/venuequote/api/internal/domain"
	"github.com/venuequote/api/internal/platform/httpx"
	"github.com/venuequote/api/internal/platform/requestctx"
	"github.com/venuequote/api/internal/quotation"
	"github.com/venuequote/api/internal/services"
)

// QuotePricer prices booking requests.
type QuotePricer interface {
	Quote(ctx context.Context, req domain.BookingRequest) (domain.Quote, error)
}

// QuotationIssuer issues quotation documents.
type QuotationIssuer interface {
	Generate(ctx context.Context, cmd services.GenerateQuotationCommand) (quotation.Document, error)
}

// Translator looks up localized labels.
type Translator interface {
	T(lang, key string) string
}

// QuoteHandlers serves the live price summary and quotation documents.
type QuoteHandlers struct {
	quotes     QuotePricer
	quotations QuotationIssuer
	translator Translator
	locales    LocaleResolver

	middlewares         []func(http.Handler) http.Handler
	documentMiddlewares []func(http.Handler) http.Handler
}

// QuoteOption customises QuoteHandlers.
type QuoteOption func(*QuoteHandlers)

// WithQuotePricer injects the pricing service.
func WithQuotePricer(svc QuotePricer) QuoteOption {
	return func(h *QuoteHandlers) {
		h.quotes = svc
	}
}

// WithQuotationIssuer injects the quotation document service.
func WithQuotationIssuer(svc QuotationIssuer) QuoteOption {
	return func(h *QuoteHandlers) {
		h.quotations = svc
	}
}

// WithQuoteTranslator sets the translator used for notice messages.
func WithQuoteTranslator(t Translator) QuoteOption {
	return func(h *QuoteHandlers) {
		h.translator = t
	}
}

// WithQuoteLocaleResolver sets the resolver applied to an explicit locale in a document request.
func WithQuoteLocaleResolver(resolver LocaleResolver) QuoteOption {
	return func(h *QuoteHandlers) {
		h.locales = resolver
	}
}

// WithQuoteMiddlewares applies middleware to every quote route.
func WithQuoteMiddlewares(mw ...func(http.Handler) http.Handler) QuoteOption {
	return func(h *QuoteHandlers) {
		h.middlewares = append(h.middlewares, mw...)
	}
}

// WithDocumentMiddlewares applies middleware to the quotation document route only.
func WithDocumentMiddlewares(mw ...func(http.Handler) http.Handler) QuoteOption {
	return func(h *QuoteHandlers) {
		h.documentMiddlewares = append(h.documentMiddlewares, mw...)
	}
}

// NewQuoteHandlers constructs quote handlers.
func NewQuoteHandlers(opts ...QuoteOption) *QuoteHandlers {
	h := &QuoteHandlers{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers quote endpoints.
func (h *QuoteHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	for _, mw := range h.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Post("/summary", h.summary)
	r.With(nonNil(h.documentMiddlewares)...).Post("/document", h.document)
}

type noticePayload struct {
	Code    domain.NoticeCode `json:"code"`
	Subject string            `json:"subject,omitempty"`
	Message string            `json:"message,omitempty"`
}

type summaryResponse struct {
	EventType domain.EventType        `json:"eventType"`
	PackageID string                  `json:"packageId"`
	Currency  string                  `json:"currency"`
	Breakdown domain.PricingBreakdown `json:"breakdown"`
	LineItems []domain.LineItem       `json:"lineItems"`
	Notices   []noticePayload         `json:"notices"`
}

func (h *QuoteHandlers) summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quotes_unavailable", "quote service is not configured", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxQuoteBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req domain.BookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_json", "request body must be a booking request object"))
		return
	}

	quote, err := h.quotes.Quote(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	lineItems := quote.LineItems
	if lineItems == nil {
		lineItems = []domain.LineItem{}
	}
	httpx.WriteJSON(w, http.StatusOK, summaryResponse{
		EventType: quote.Request.EventType,
		PackageID: quote.Request.PackageID,
		Currency:  quote.Currency,
		Breakdown: quote.Breakdown,
		LineItems: lineItems,
		Notices:   h.notices(requestctx.Locale(ctx), quote.Notices),
	})
}

func (h *QuoteHandlers) notices(lang string, notices []domain.Notice) []noticePayload {
	out := make([]noticePayload, 0, len(notices))
	for _, notice := range notices {
		payload := noticePayload{Code: notice.Code, Subject: notice.Subject}
		if h.translator != nil {
			payload.Message = h.translator.T(lang, "notice."+string(notice.Code))
		}
		out = append(out, payload)
	}
	return out
}

type documentRequest struct {
	domain.BookingRequest
	Customer quotation.Customer `json:"customer"`
	Locale   string             `json:"locale,omitempty"`
}

func (h *QuoteHandlers) document(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotations == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quotations_unavailable", "quotation service is not configured", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxQuoteBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req documentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_json", "request body must be a quotation request object"))
		return
	}

	locale := requestctx.Locale(ctx)
	if explicit := strings.TrimSpace(req.Locale); explicit != "" && h.locales != nil {
		locale = h.locales.Resolve(explicit)
	}

	doc, err := h.quotations.Generate(ctx, services.GenerateQuotationCommand{
		Request:  req.BookingRequest,
		Customer: req.Customer,
		Locale:   locale,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if doc.Locale != "" {
		w.Header().Set("Content-Language", doc.Locale)
	}
	httpx.WriteJSON(w, http.StatusCreated, doc)
}

func nonNil(mws []func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
