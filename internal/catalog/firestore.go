package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/venuequote/api/internal/domain"
	pfirestore "github.com/venuequote/api/internal/platform/firestore"
)

const (
	catalogDocument         = "current"
	packagesCollection      = "packages"
	addonCategoryCollection = "addon_categories"
)

// FirestoreProvider reads the catalog from Firestore. The layout is
//
//	{collection}/current                        settings fields
//	{collection}/current/packages/{id}          one document per package
//	{collection}/current/addon_categories/{id}  categories with embedded items
type FirestoreProvider struct {
	provider   *pfirestore.Provider
	collection string
}

// NewFirestoreProvider constructs a Firestore-backed catalog provider.
func NewFirestoreProvider(provider *pfirestore.Provider, collection string) (*FirestoreProvider, error) {
	if provider == nil {
		return nil, errors.New("catalog firestore provider: firestore provider is required")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, errors.New("catalog firestore provider: collection is required")
	}
	return &FirestoreProvider{provider: provider, collection: collection}, nil
}

// Snapshot loads settings, packages and add-on categories into one snapshot.
func (p *FirestoreProvider) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	client, err := p.provider.Client(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, err
	}
	root := client.Collection(p.collection).Doc(catalogDocument)

	settingsDoc, err := root.Get(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, pfirestore.WrapError("catalog.settings.get", err)
	}
	var settings settingsRecord
	if err := settingsDoc.DataTo(&settings); err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("%w: decode settings: %v", ErrInvalidCatalog, err)
	}

	packageDocs, err := root.Collection(packagesCollection).Documents(ctx).GetAll()
	if err != nil {
		return domain.CatalogSnapshot{}, pfirestore.WrapError("catalog.packages.list", err)
	}
	packages := make([]packageRecord, 0, len(packageDocs))
	for _, doc := range packageDocs {
		var rec packageRecord
		if err := doc.DataTo(&rec); err != nil {
			return domain.CatalogSnapshot{}, fmt.Errorf("%w: decode package %s: %v", ErrInvalidCatalog, doc.Ref.ID, err)
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = doc.Ref.ID
		}
		packages = append(packages, rec)
	}

	categoryDocs, err := root.Collection(addonCategoryCollection).Documents(ctx).GetAll()
	if err != nil {
		return domain.CatalogSnapshot{}, pfirestore.WrapError("catalog.addon_categories.list", err)
	}
	categories := make([]addonCategoryRecord, 0, len(categoryDocs))
	for _, doc := range categoryDocs {
		var rec addonCategoryRecord
		if err := doc.DataTo(&rec); err != nil {
			return domain.CatalogSnapshot{}, fmt.Errorf("%w: decode addon category %s: %v", ErrInvalidCatalog, doc.Ref.ID, err)
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = doc.Ref.ID
		}
		categories = append(categories, rec)
	}
	sortCategories(categories)

	return buildSnapshot(settings, packages, categories)
}
