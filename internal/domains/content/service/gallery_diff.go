package service

import "portfolio-cms/internal/domains/content/model"

// GalleryDiff partitions a persisted gallery against the client's kept list.
type GalleryDiff struct {
	// Kept is the surviving gallery in submission order, captions included.
	Kept []model.GalleryItem
	// RemovedURLs are persisted entries the client dropped.
	RemovedURLs []string
}

// DiffGallery computes what survives an edit and what became stale.
//
// Every submitted kept entry survives, including URLs that never appeared in
// the persisted gallery (external links the client pasted in). Removal is
// decided only for persisted entries: any persisted URL absent from the kept
// set is stale. The function is pure and order-preserving on Kept.
func DiffGallery(persisted, kept []model.GalleryItem) GalleryDiff {
	keptSet := make(map[string]struct{}, len(kept))
	for _, item := range kept {
		keptSet[item.URL] = struct{}{}
	}

	diff := GalleryDiff{Kept: append([]model.GalleryItem{}, kept...)}
	for _, item := range persisted {
		if _, ok := keptSet[item.URL]; !ok {
			diff.RemovedURLs = append(diff.RemovedURLs, item.URL)
		}
	}
	return diff
}
