package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/xuri/excelize/v2"

	"portfolio-cms/internal/domains/content/model"
)

// ContentService coordinates the full save pipeline for a record variant:
// validate, materialize new assets, diff against the persisted record, write
// the row, then release anything the edit made stale.
type ContentService interface {
	Create(ctx context.Context, variant model.Variant, sub model.Submission) (*model.ContentRecord, error)
	Update(ctx context.Context, variant model.Variant, id string, sub model.Submission) (*model.ContentRecord, error)
	Delete(ctx context.Context, variant model.Variant, id string) error
	Get(ctx context.Context, variant model.Variant, id string) (*model.ContentRecord, error)
	GetBySlug(ctx context.Context, variant model.Variant, slug string) (*model.ContentRecord, error)
	List(ctx context.Context, variant model.Variant, filter model.ListFilter) ([]model.ContentRecord, error)
}

// AssetStorage is the remote asset host boundary.
type AssetStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	RemoveBatch(ctx context.Context, keys []string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// KeyFor resolves the deletable key behind an issued URL. ok is false for
	// URLs the host never issued; those are never deleted.
	KeyFor(assetURL string) (string, bool)
}

// ImageValidator checks and re-encodes incoming image bytes before upload.
type ImageValidator interface {
	Validate(data []byte) (string, error)
	Normalize(data []byte) ([]byte, string, string, error)
}

// Enqueuer is the slice of asynq.Client the coordinator needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportService renders project records into a downloadable workbook.
type ExportService interface {
	ExportProjects(ctx context.Context) (*excelize.File, error)
}
