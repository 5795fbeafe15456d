package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"portfolio-cms/internal/domains/content/model"
	"portfolio-cms/pkg/logger"
)

// assetUploader materializes a save request's pending files on the asset
// host. One instance per service; it is stateless.
type assetUploader struct {
	store     AssetStorage
	processor ImageValidator
}

func newAssetUploader(store AssetStorage, processor ImageValidator) *assetUploader {
	return &assetUploader{store: store, processor: processor}
}

// galleryUpload pairs an issued asset with the caption submitted alongside
// its file.
type galleryUpload struct {
	model.AssetRef
	Caption string
}

// uploadResult is what a finished batch hands back to the coordinator.
// Uploaded always lists every object that made it to the host, even when
// Err is set, so the caller can roll the batch back.
type uploadResult struct {
	Hero     *model.AssetRef
	Gallery  []galleryUpload
	Uploaded []model.AssetRef
	Err      error
}

// validateFiles runs format and size checks on every pending file before any
// byte leaves the process. Returns per-field messages on failure.
func (u *assetUploader) validateFiles(hero *model.UploadFile, gallery []model.UploadFile) model.FieldErrors {
	fields := model.FieldErrors{}

	if hero != nil {
		if _, err := u.processor.Validate(hero.Data); err != nil {
			fields["heroImage"] = err.Error()
		}
	}
	for i, file := range gallery {
		if _, err := u.processor.Validate(file.Data); err != nil {
			if _, seen := fields["gallery"]; !seen {
				fields["gallery"] = fmt.Sprintf("file %d (%s): %v", i+1, file.Name, err)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// uploadAll pushes the hero and gallery files for one save request. The hero
// goes up concurrently with the gallery; gallery files are sequential so
// their stored order matches submission order. Each file gets its own
// timeout; the first failure cancels the rest of the batch.
func (u *assetUploader) uploadAll(ctx context.Context, variant model.Variant, recordID string, hero *model.UploadFile, gallery []model.UploadFile, perFileTimeout time.Duration) uploadResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type heroOutcome struct {
		ref *model.AssetRef
		err error
	}
	heroCh := make(chan heroOutcome, 1)

	go func() {
		if hero == nil {
			heroCh <- heroOutcome{}
			return
		}
		ref, err := u.uploadOne(ctx, variant, recordID, *hero, perFileTimeout)
		heroCh <- heroOutcome{ref: ref, err: err}
	}()

	var result uploadResult
	for _, file := range gallery {
		ref, err := u.uploadOne(ctx, variant, recordID, file, perFileTimeout)
		if err != nil {
			result.Err = fmt.Errorf("gallery file %s: %w", file.Name, err)
			cancel()
			break
		}
		result.Gallery = append(result.Gallery, galleryUpload{AssetRef: *ref, Caption: file.Caption})
		result.Uploaded = append(result.Uploaded, *ref)
	}

	heroRes := <-heroCh
	if heroRes.ref != nil {
		result.Hero = heroRes.ref
		result.Uploaded = append(result.Uploaded, *heroRes.ref)
	}
	if heroRes.err != nil && result.Err == nil {
		result.Err = fmt.Errorf("hero image: %w", heroRes.err)
	}

	return result
}

func (u *assetUploader) uploadOne(ctx context.Context, variant model.Variant, recordID string, file model.UploadFile, timeout time.Duration) (*model.AssetRef, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, contentType, ext, err := u.processor.Normalize(file.Data)
	if err != nil {
		return nil, err
	}

	// The extension follows what Normalize actually encoded, not the
	// uploaded file name.
	key := fmt.Sprintf("%s/%s/%s.%s", variant.Folder(), recordID, uuid.New().String(), ext)
	url, err := u.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}

	return &model.AssetRef{URL: url, Key: key}, nil
}

// rollback deletes every object in refs, best effort. Failures are logged
// and swallowed; the scheduled sweep picks up anything left behind.
func (u *assetUploader) rollback(refs []model.AssetRef) {
	if len(refs) == 0 {
		return
	}

	// Detached from the request context: rollback must run even when the
	// upload deadline already expired.
	ctx := context.Background()
	for _, ref := range refs {
		if err := u.store.Remove(ctx, ref.Key); err != nil {
			logger.Error("rollback: failed to remove uploaded asset", err, map[string]interface{}{
				"key": ref.Key,
			})
		}
	}
}
