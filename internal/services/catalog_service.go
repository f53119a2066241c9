package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/venuequote/api/internal/domain"
)

// CatalogService exposes read-only catalog views for the selection wizard.
type CatalogService struct {
	catalog CatalogProvider
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(catalog CatalogProvider) (*CatalogService, error) {
	if catalog == nil {
		return nil, errors.New("catalog service: catalog provider is required")
	}
	return &CatalogService{catalog: catalog}, nil
}

// Packages lists the packages for an event type, optionally restricted to one budget tier.
func (s *CatalogService) Packages(ctx context.Context, eventType domain.EventType, tier domain.BudgetTier) ([]domain.Package, error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrQuoteInvalidInput, eventType)
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	all := snapshot.Packages(eventType)
	if tier == "" {
		return all, nil
	}
	out := make([]domain.Package, 0, len(all))
	for _, pkg := range all {
		if pkg.BudgetTier == tier {
			out = append(out, pkg)
		}
	}
	return out, nil
}

// Addons returns the categorised add-on catalog for an event type.
func (s *CatalogService) Addons(ctx context.Context, eventType domain.EventType) (domain.AddonCatalog, error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrQuoteInvalidInput, eventType)
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	addons := snapshot.Addons(eventType)
	if addons == nil {
		addons = domain.AddonCatalog{}
	}
	return addons, nil
}

// Settings returns the global pricing settings.
func (s *CatalogService) Settings(ctx context.Context) (domain.Settings, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return snapshot.Settings(), nil
}

func (s *CatalogService) snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return snapshot, nil
}
