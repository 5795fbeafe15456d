package repository

import (
	"context"

	"portfolio-cms/internal/domains/content/model"
)

// ContentRepository is the relational store boundary for both record
// variants. Every write is a single-statement, all-or-nothing operation.
type ContentRepository interface {
	GetByID(ctx context.Context, variant model.Variant, id string) (*model.ContentRecord, error)
	GetBySlug(ctx context.Context, variant model.Variant, slug string) (*model.ContentRecord, error)
	List(ctx context.Context, variant model.Variant, filter model.ListFilter) ([]model.ContentRecord, error)
	Create(ctx context.Context, variant model.Variant, rec *model.ContentRecord) error
	Update(ctx context.Context, variant model.Variant, rec *model.ContentRecord) error
	Delete(ctx context.Context, variant model.Variant, id string) error

	// SlugTaken reports whether another record of the variant owns slug.
	// excludeID may be empty (create path). This is the friendly fast path;
	// the unique constraint on slug is the actual guarantee.
	SlugTaken(ctx context.Context, variant model.Variant, slug, excludeID string) (bool, error)

	// AllAssetURLs returns every hero and gallery URL referenced by any
	// persisted record of the variant. Used by the orphan sweep.
	AllAssetURLs(ctx context.Context, variant model.Variant) ([]string, error)
}
