package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/venuequote/api/internal/platform/idempotency"
	"github.com/venuequote/api/internal/quotation"
	"github.com/venuequote/api/internal/services"
)

func TestSimpleRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	limiter := newSimpleRateLimiter(2, time.Minute, func() time.Time { return now })

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow("203.0.113.9"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, retry := limiter.Allow("203.0.113.9")
	if ok {
		t.Fatal("third request should be throttled")
	}
	if retry != time.Minute {
		t.Fatalf("expected retry after one minute, got %v", retry)
	}
	if ok, _ := limiter.Allow("198.51.100.7"); !ok {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(61 * time.Second)
	if ok, _ := limiter.Allow("203.0.113.9"); !ok {
		t.Fatal("window should reset")
	}
	if _, exists := limiter.store["198.51.100.7"]; exists {
		t.Fatal("expired entries should be pruned")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	if newSimpleRateLimiter(0, time.Minute, nil) != nil {
		t.Fatal("zero limit should disable the limiter")
	}
	var limiter *simpleRateLimiter
	if ok, _ := limiter.Allow("x"); !ok {
		t.Fatal("nil limiter allows everything")
	}
}

func TestQuoteRoutesRateLimited(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	limiter := newSimpleRateLimiter(1, time.Minute, func() time.Time { return now.Add(30 * time.Second) })
	limiter.store["192.0.2.1"] = rateEntry{count: 1, reset: now.Add(time.Minute)}

	quoteHandlers := NewQuoteHandlers(
		WithQuotePricer(&stubQuotePricer{}),
		WithQuoteTranslator(stubTranslator{}),
		WithQuoteMiddlewares(rateLimitMiddleware(limiter)),
	)
	router := NewRouter(WithQuoteRoutes(quoteHandlers.Routes))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/summary", strings.NewReader(`{"eventType":"wedding"}`))
	req.RemoteAddr = "192.0.2.1:51234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}
	var body map[string]any
	decodeBody(t, rr, &body)
	if body["error"] != "rate_limited" {
		t.Fatalf("unexpected error payload %v", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/quotes/summary", strings.NewReader(`{"eventType":"wedding"}`))
	req.RemoteAddr = "192.0.2.2:51234"
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

type countingIssuer struct {
	calls int
}

func (c *countingIssuer) Generate(_ context.Context, cmd services.GenerateQuotationCommand) (quotation.Document, error) {
	c.calls++
	return quotation.Document{Number: fmt.Sprintf("Q-%04d", c.calls), Locale: cmd.Locale}, nil
}

func TestQuoteDocumentIdempotentReplay(t *testing.T) {
	issuer := &countingIssuer{}
	quoteHandlers := NewQuoteHandlers(
		WithQuotationIssuer(issuer),
		WithQuoteTranslator(stubTranslator{}),
		WithDocumentMiddlewares(idempotency.Middleware(idempotency.NewMemoryStore())),
	)
	router := NewRouter(
		WithMiddlewares(LocaleMiddleware(stubLocaleResolver{})),
		WithQuoteRoutes(quoteHandlers.Routes),
	)

	body := `{"eventType":"wedding","packageId":"w-classic","customer":{"name":"Somchai"}}`
	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/document", strings.NewReader(body))
		req.Header.Set(idempotency.HeaderKey, key)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	first := send("booking-42")
	second := send("booking-42")
	third := send("booking-43")

	if issuer.calls != 2 {
		t.Fatalf("expected two documents issued, got %d", issuer.calls)
	}
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("unexpected statuses %d %d", first.Code, second.Code)
	}
	if second.Header().Get(idempotency.HeaderReplay) != "true" {
		t.Fatal("expected replayed response")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("expected identical document, got %s vs %s", second.Body.String(), first.Body.String())
	}
	var doc quotation.Document
	decodeBody(t, third, &doc)
	if doc.Number != "Q-0002" {
		t.Fatalf("expected a fresh document for a new key, got %q", doc.Number)
	}
}
