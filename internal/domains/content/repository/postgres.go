package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"portfolio-cms/internal/domains/content/model"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const pgUniqueViolation = "23505"

const recordColumns = `id, slug, title, summary, description, hero_url, gallery,
	technologies, tags, deliverables, metrics, live_url, source_url,
	status, is_featured, featured_order, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) ContentRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByID(ctx context.Context, variant model.Variant, id string) (*model.ContentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, recordColumns, variant.Table())
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetBySlug(ctx context.Context, variant model.Variant, slug string) (*model.ContentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, recordColumns, variant.Table())
	return r.scanOne(r.pool.QueryRow(ctx, query, slug))
}

func (r *postgresRepository) List(ctx context.Context, variant model.Variant, filter model.ListFilter) ([]model.ContentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, recordColumns, variant.Table())

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argIndex))
		args = append(args, filter.Tag)
		argIndex++
	}
	if filter.Featured {
		conditions = append(conditions, "is_featured = true")
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY is_featured DESC, featured_order ASC NULLS LAST, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", variant.Table(), err)
	}
	defer rows.Close()

	records := []model.ContentRecord{}
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func (r *postgresRepository) Create(ctx context.Context, variant model.Variant, rec *model.ContentRecord) error {
	gallery, metrics, err := marshalJSONFields(rec)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, slug, title, summary, description, hero_url, gallery,
			technologies, tags, deliverables, metrics, live_url, source_url,
			status, is_featured, featured_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
		RETURNING created_at, updated_at`, variant.Table())

	err = r.pool.QueryRow(ctx, query,
		rec.ID, rec.Slug, rec.Title, rec.Summary, rec.Description,
		nullable(rec.HeroURL), gallery,
		pq.Array(rec.Technologies), pq.Array(rec.Tags), pq.Array(rec.Deliverables),
		metrics, nullable(rec.LiveURL), nullable(rec.SourceURL),
		string(rec.Status), rec.IsFeatured, rec.FeaturedOrder,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return mapWriteError(err, variant)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, variant model.Variant, rec *model.ContentRecord) error {
	gallery, metrics, err := marshalJSONFields(rec)
	if err != nil {
		return err
	}

	// Last-writer-wins by id: all fields including the finalized hero URL
	// and gallery array go out in one statement.
	query := fmt.Sprintf(`
		UPDATE %s SET
			slug = $2, title = $3, summary = $4, description = $5,
			hero_url = $6, gallery = $7, technologies = $8, tags = $9,
			deliverables = $10, metrics = $11, live_url = $12, source_url = $13,
			status = $14, is_featured = $15, featured_order = $16, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`, variant.Table())

	err = r.pool.QueryRow(ctx, query,
		rec.ID, rec.Slug, rec.Title, rec.Summary, rec.Description,
		nullable(rec.HeroURL), gallery,
		pq.Array(rec.Technologies), pq.Array(rec.Tags), pq.Array(rec.Deliverables),
		metrics, nullable(rec.LiveURL), nullable(rec.SourceURL),
		string(rec.Status), rec.IsFeatured, rec.FeaturedOrder,
	).Scan(&rec.UpdatedAt)

	if err != nil {
		return mapWriteError(err, variant)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, variant model.Variant, id string) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, variant.Table()), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", variant, id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) SlugTaken(ctx context.Context, variant model.Variant, slug, excludeID string) (bool, error) {
	if excludeID == "" {
		excludeID = uuid.Nil.String()
	}

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1 AND id <> $2)`, variant.Table())

	var taken bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("slug lookup: %w", err)
	}
	return taken, nil
}

func (r *postgresRepository) AllAssetURLs(ctx context.Context, variant model.Variant) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(hero_url, ''), gallery FROM %s`, variant.Table())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("collect asset urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var heroURL string
		var galleryJSON []byte
		if err := rows.Scan(&heroURL, &galleryJSON); err != nil {
			return nil, fmt.Errorf("scan asset urls: %w", err)
		}
		if heroURL != "" {
			urls = append(urls, heroURL)
		}
		var gallery []model.GalleryItem
		if len(galleryJSON) > 0 {
			if err := json.Unmarshal(galleryJSON, &gallery); err != nil {
				return nil, fmt.Errorf("decode gallery: %w", err)
			}
		}
		for _, item := range gallery {
			urls = append(urls, item.URL)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return urls, nil
}

// ------------------------------------------------------------------
// helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresRepository) scanOne(row rowScanner) (*model.ContentRecord, error) {
	rec, err := r.scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepository) scanRecord(row rowScanner) (*model.ContentRecord, error) {
	var (
		rec           model.ContentRecord
		heroURL       *string
		liveURL       *string
		sourceURL     *string
		status        string
		galleryJSON   []byte
		metricsJSON   []byte
		technologies  pq.StringArray
		tags          pq.StringArray
		deliverables  pq.StringArray
		featuredOrder *int32
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(
		&rec.ID, &rec.Slug, &rec.Title, &rec.Summary, &rec.Description,
		&heroURL, &galleryJSON,
		&technologies, &tags, &deliverables,
		&metricsJSON, &liveURL, &sourceURL,
		&status, &rec.IsFeatured, &featuredOrder,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if heroURL != nil {
		rec.HeroURL = *heroURL
	}
	if liveURL != nil {
		rec.LiveURL = *liveURL
	}
	if sourceURL != nil {
		rec.SourceURL = *sourceURL
	}
	rec.Status = model.Status(status)
	rec.Technologies = technologies
	rec.Tags = tags
	rec.Deliverables = deliverables
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt

	if featuredOrder != nil {
		n := int(*featuredOrder)
		rec.FeaturedOrder = &n
	}

	rec.Gallery = []model.GalleryItem{}
	if len(galleryJSON) > 0 {
		if err := json.Unmarshal(galleryJSON, &rec.Gallery); err != nil {
			return nil, fmt.Errorf("decode gallery: %w", err)
		}
	}
	rec.Metrics = []model.Metric{}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &rec.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
	}

	return &rec, nil
}

func marshalJSONFields(rec *model.ContentRecord) ([]byte, []byte, error) {
	gallery := rec.Gallery
	if gallery == nil {
		gallery = []model.GalleryItem{}
	}
	galleryJSON, err := json.Marshal(gallery)
	if err != nil {
		return nil, nil, fmt.Errorf("encode gallery: %w", err)
	}

	metrics := rec.Metrics
	if metrics == nil {
		metrics = []model.Metric{}
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("encode metrics: %w", err)
	}

	return galleryJSON, metricsJSON, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapWriteError surfaces the slug unique constraint as ErrSlugTaken so the
// coordinator can turn it into a field-scoped conflict. The constraint is
// the real uniqueness guarantee; the pre-check only exists for a friendlier
// error.
func mapWriteError(err error, variant model.Variant) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return model.ErrSlugTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	return fmt.Errorf("write %s: %w", variant.Table(), err)
}
