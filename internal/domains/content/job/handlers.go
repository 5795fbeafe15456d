package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"portfolio-cms/internal/domains/content/model"
	"portfolio-cms/internal/domains/content/repository"
	"portfolio-cms/internal/domains/content/service"
	"portfolio-cms/pkg/logger"
)

// Handlers processes the content queue tasks: post-commit stale asset
// cleanup, deleted-record folder removal and the scheduled orphan sweep.
type Handlers struct {
	repo  repository.ContentRepository
	store service.AssetStorage
}

func NewHandlers(repo repository.ContentRepository, store service.AssetStorage) *Handlers {
	return &Handlers{repo: repo, store: store}
}

// HandleCleanupAssets deletes the stale URLs a committed edit left behind.
// Failures are logged, not retried: the record no longer references these
// objects, so the orphan sweep reclaims anything missed here.
func (h *Handlers) HandleCleanupAssets(ctx context.Context, t *asynq.Task) error {
	var payload model.CleanupAssetsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("cleanup payload: %w", err)
	}

	removed := 0
	for _, url := range payload.URLs {
		key, ok := h.store.KeyFor(url)
		if !ok {
			// External URL, never ours to delete.
			continue
		}
		if err := h.store.Remove(ctx, key); err != nil {
			logger.Error("stale asset removal failed", err, map[string]interface{}{
				"variant": payload.Variant,
				"key":     key,
			})
			continue
		}
		removed++
	}

	logger.Info("stale asset cleanup finished", map[string]interface{}{
		"variant":   payload.Variant,
		"submitted": len(payload.URLs),
		"removed":   removed,
	})
	return nil
}

// HandleDeleteRecordAssets removes every object under a deleted record's
// folder. Retried on failure; deletion is idempotent.
func (h *Handlers) HandleDeleteRecordAssets(ctx context.Context, t *asynq.Task) error {
	var payload model.DeleteRecordAssetsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("delete-record payload: %w", err)
	}

	prefix := fmt.Sprintf("%s/%s/", model.Variant(payload.Variant).Folder(), payload.RecordID)
	keys, err := h.store.ListKeys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := h.store.RemoveBatch(ctx, keys); err != nil {
		return fmt.Errorf("remove %s: %w", prefix, err)
	}

	logger.Info("record asset folder removed", map[string]interface{}{
		"prefix": prefix,
		"count":  len(keys),
	})
	return nil
}

// HandleOrphanSweep reconciles the bucket against the database: any stored
// object no persisted record references gets deleted. This is the safety net
// for crashed rollbacks and failed cleanup tasks.
func (h *Handlers) HandleOrphanSweep(ctx context.Context, t *asynq.Task) error {
	for _, variant := range []model.Variant{model.VariantProject, model.VariantExperiment} {
		if err := h.sweepVariant(ctx, variant); err != nil {
			return fmt.Errorf("sweep %s: %w", variant, err)
		}
	}
	return nil
}

func (h *Handlers) sweepVariant(ctx context.Context, variant model.Variant) error {
	urls, err := h.repo.AllAssetURLs(ctx, variant)
	if err != nil {
		return err
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if key, ok := h.store.KeyFor(url); ok {
			referenced[key] = struct{}{}
		}
	}

	keys, err := h.store.ListKeys(ctx, variant.Folder()+"/")
	if err != nil {
		return err
	}

	var orphans []string
	for _, key := range keys {
		if _, ok := referenced[key]; !ok {
			orphans = append(orphans, key)
		}
	}
	if len(orphans) == 0 {
		return nil
	}

	if err := h.store.RemoveBatch(ctx, orphans); err != nil {
		return err
	}

	logger.Info("orphan sweep removed unreferenced assets", map[string]interface{}{
		"variant": string(variant),
		"count":   len(orphans),
	})
	return nil
}
