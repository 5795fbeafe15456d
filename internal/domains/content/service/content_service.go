package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"portfolio-cms/internal/config"
	"portfolio-cms/internal/domains/content/model"
	"portfolio-cms/internal/domains/content/repository"
	types "portfolio-cms/internal/shared"
	"portfolio-cms/pkg/cache"
	"portfolio-cms/pkg/logger"
)

const cacheTTL = 5 * time.Minute

type contentService struct {
	repo     repository.ContentRepository
	uploader *assetUploader
	store    AssetStorage
	cache    cache.Cache
	queue    Enqueuer
	cfg      config.UploadConfig
}

func NewContentService(
	repo repository.ContentRepository,
	store AssetStorage,
	processor ImageValidator,
	cacheClient cache.Cache,
	queue Enqueuer,
	cfg config.UploadConfig,
) ContentService {
	return &contentService{
		repo:     repo,
		uploader: newAssetUploader(store, processor),
		store:    store,
		cache:    cacheClient,
		queue:    queue,
		cfg:      cfg,
	}
}

// Create runs the save pipeline for a brand-new record. Nothing is persisted
// and nothing survives on the asset host unless every stage succeeds.
func (s *contentService) Create(ctx context.Context, variant model.Variant, sub model.Submission) (*model.ContentRecord, error) {
	// 1) Schema checks and field grammar. Pure; failure means zero side
	// effects so far.
	draft, fields := sub.Normalize()
	if fields != nil {
		return nil, &model.ValidationError{Fields: fields}
	}
	if fileFields := s.uploader.validateFiles(sub.HeroFile, sub.GalleryFiles); fileFields != nil {
		return nil, &model.ValidationError{Fields: fileFields}
	}

	// 2) Friendly slug pre-check. The unique constraint still backstops the
	// race window.
	taken, err := s.repo.SlugTaken(ctx, variant, draft.Slug, "")
	if err != nil {
		return nil, &model.PersistenceError{Err: err}
	}
	if taken {
		return nil, slugConflict()
	}

	recordID := uuid.New()

	// 3) Materialize new assets, each upload under its own deadline. A
	// partial batch is rolled back before the error is surfaced.
	result := s.uploader.uploadAll(ctx, variant, recordID.String(), sub.HeroFile, sub.GalleryFiles, s.cfg.CreateTimeout)
	if result.Err != nil {
		s.uploader.rollback(result.Uploaded)
		return nil, &model.UploadError{Err: result.Err}
	}

	// 4) Assemble and persist. A rejected write unwinds this request's
	// uploads; the database never references an object that does not exist.
	rec := buildRecord(recordID, variant, draft, result)
	if err := s.repo.Create(ctx, variant, rec); err != nil {
		s.uploader.rollback(result.Uploaded)
		if errors.Is(err, model.ErrSlugTaken) {
			return nil, slugConflict()
		}
		return nil, &model.PersistenceError{Err: err}
	}

	s.invalidate(ctx, variant, rec, nil)
	return rec, nil
}

// Update edits an existing record. New uploads happen before the write; stale
// assets are released only after the write committed, through the background
// queue, so a failure mid-pipeline never orphans the persisted record.
func (s *contentService) Update(ctx context.Context, variant model.Variant, id string, sub model.Submission) (*model.ContentRecord, error) {
	draft, fields := sub.Normalize()
	if fields != nil {
		return nil, &model.ValidationError{Fields: fields}
	}
	if fileFields := s.uploader.validateFiles(sub.HeroFile, sub.GalleryFiles); fileFields != nil {
		return nil, &model.ValidationError{Fields: fileFields}
	}

	existing, err := s.repo.GetByID(ctx, variant, id)
	if err != nil {
		return nil, err
	}

	if draft.Slug != existing.Slug {
		taken, err := s.repo.SlugTaken(ctx, variant, draft.Slug, id)
		if err != nil {
			return nil, &model.PersistenceError{Err: err}
		}
		if taken {
			return nil, slugConflict()
		}
	}

	result := s.uploader.uploadAll(ctx, variant, id, sub.HeroFile, sub.GalleryFiles, s.cfg.EditTimeout)
	if result.Err != nil {
		s.uploader.rollback(result.Uploaded)
		return nil, &model.UploadError{Err: result.Err}
	}

	diff := DiffGallery(existing.Gallery, draft.KeptGallery)

	rec := buildRecord(existing.ID, variant, draft, result)
	rec.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, variant, rec); err != nil {
		s.uploader.rollback(result.Uploaded)
		if errors.Is(err, model.ErrSlugTaken) {
			return nil, slugConflict()
		}
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, &model.PersistenceError{Err: err}
	}

	// Committed. Anything the edit dropped is now unreferenced and safe to
	// release in the background.
	stale := diff.RemovedURLs
	if existing.HeroURL != "" && existing.HeroURL != rec.HeroURL {
		stale = append(stale, existing.HeroURL)
	}
	s.enqueueCleanup(variant, stale)

	s.invalidate(ctx, variant, rec, existing)
	return rec, nil
}

// Delete removes the row, then hands the record's whole asset folder to the
// worker for removal.
func (s *contentService) Delete(ctx context.Context, variant model.Variant, id string) error {
	rec, err := s.repo.GetByID(ctx, variant, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, variant, id); err != nil {
		return err
	}

	payload, err := json.Marshal(model.DeleteRecordAssetsPayload{
		Variant:  string(variant),
		RecordID: id,
	})
	if err == nil {
		_, err = s.queue.Enqueue(
			asynq.NewTask(types.TypeDeleteRecordAssets, payload),
			asynq.Queue(types.QueueContent),
			asynq.MaxRetry(5),
		)
	}
	if err != nil {
		// Deliberately non-fatal: the row is gone, the sweep reclaims the
		// folder later.
		logger.Error("failed to enqueue record asset removal", err, map[string]interface{}{
			"variant": string(variant),
			"id":      id,
		})
	}

	s.invalidate(ctx, variant, rec, nil)
	return nil
}

func (s *contentService) Get(ctx context.Context, variant model.Variant, id string) (*model.ContentRecord, error) {
	cacheKey := detailCacheKey(variant, id)

	var cached model.ContentRecord
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		return &cached, nil
	}

	rec, err := s.repo.GetByID(ctx, variant, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, rec, cacheTTL); err != nil {
		logger.Debug("cache set failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	return rec, nil
}

func (s *contentService) GetBySlug(ctx context.Context, variant model.Variant, slug string) (*model.ContentRecord, error) {
	cacheKey := slugCacheKey(variant, slug)

	var cached model.ContentRecord
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		return &cached, nil
	}

	rec, err := s.repo.GetBySlug(ctx, variant, slug)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, rec, cacheTTL); err != nil {
		logger.Debug("cache set failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	return rec, nil
}

func (s *contentService) List(ctx context.Context, variant model.Variant, filter model.ListFilter) ([]model.ContentRecord, error) {
	cacheKey := listCacheKey(variant, filter)

	var cached []model.ContentRecord
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		return cached, nil
	}

	records, err := s.repo.List(ctx, variant, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, records, cacheTTL); err != nil {
		logger.Debug("cache set failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	return records, nil
}

// ------------------------------------------------------------------

// buildRecord merges the draft with the batch's issued URLs. Final gallery
// order: kept entries in submission order, then new uploads in submission
// order.
func buildRecord(id uuid.UUID, variant model.Variant, draft *model.Draft, result uploadResult) *model.ContentRecord {
	heroURL := draft.HeroURL
	if result.Hero != nil {
		heroURL = result.Hero.URL
	}

	gallery := append([]model.GalleryItem{}, draft.KeptGallery...)
	for _, ref := range result.Gallery {
		gallery = append(gallery, model.GalleryItem{URL: ref.URL, Caption: ref.Caption})
	}

	return &model.ContentRecord{
		ID:            id,
		Slug:          draft.Slug,
		Title:         draft.Title,
		Summary:       draft.Summary,
		Description:   draft.Description,
		HeroURL:       heroURL,
		Gallery:       gallery,
		Technologies:  draft.Technologies,
		Tags:          draft.Tags,
		Deliverables:  draft.Deliverables,
		Metrics:       draft.Metrics,
		LiveURL:       draft.LiveURL,
		SourceURL:     draft.SourceURL,
		Status:        draft.Status,
		IsFeatured:    draft.IsFeatured,
		FeaturedOrder: draft.FeaturedOrder,
	}
}

// enqueueCleanup hands stale URLs to the worker. Enqueue failures are logged
// and swallowed; the scheduled sweep is the safety net.
func (s *contentService) enqueueCleanup(variant model.Variant, urls []string) {
	if len(urls) == 0 {
		return
	}

	payload, err := json.Marshal(model.CleanupAssetsPayload{
		Variant: string(variant),
		URLs:    urls,
	})
	if err == nil {
		_, err = s.queue.Enqueue(
			asynq.NewTask(types.TypeCleanupAssets, payload),
			asynq.Queue(types.QueueContent),
			asynq.MaxRetry(5),
		)
	}
	if err != nil {
		logger.Error("failed to enqueue stale asset cleanup", err, map[string]interface{}{
			"variant": string(variant),
			"count":   len(urls),
		})
	}
}

// invalidate drops the record's cache entries after a committed write. prev
// carries the pre-edit record so a renamed slug loses its old entry too.
func (s *contentService) invalidate(ctx context.Context, variant model.Variant, rec *model.ContentRecord, prev *model.ContentRecord) {
	keys := []string{
		detailCacheKey(variant, rec.ID.String()),
		slugCacheKey(variant, rec.Slug),
	}
	if prev != nil && prev.Slug != rec.Slug {
		keys = append(keys, slugCacheKey(variant, prev.Slug))
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Debug("cache delete failed", map[string]interface{}{"error": err.Error()})
	}
	if err := s.cache.DeletePattern(ctx, listCachePattern(variant)); err != nil {
		logger.Debug("cache pattern delete failed", map[string]interface{}{"error": err.Error()})
	}
}

func slugConflict() *model.ConflictError {
	return &model.ConflictError{Field: "slug", Message: "this slug is already in use"}
}

func detailCacheKey(variant model.Variant, id string) string {
	return fmt.Sprintf("content:%s:id:%s", variant, id)
}

func slugCacheKey(variant model.Variant, slug string) string {
	return fmt.Sprintf("content:%s:slug:%s", variant, slug)
}

func listCacheKey(variant model.Variant, filter model.ListFilter) string {
	return fmt.Sprintf("content:%s:list:%s:%s:%t", variant, filter.Status, filter.Tag, filter.Featured)
}

func listCachePattern(variant model.Variant) string {
	return fmt.Sprintf("content:%s:list:*", variant)
}
