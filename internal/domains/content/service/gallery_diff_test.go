package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio-cms/internal/domains/content/model"
)

func gallery(urls ...string) []model.GalleryItem {
	items := make([]model.GalleryItem, len(urls))
	for i, u := range urls {
		items[i] = model.GalleryItem{URL: u}
	}
	return items
}

func TestDiffGallery(t *testing.T) {
	t.Run("dropped entries become stale", func(t *testing.T) {
		persisted := gallery("a", "b", "c")
		kept := gallery("a", "c")

		diff := DiffGallery(persisted, kept)

		assert.Equal(t, kept, diff.Kept)
		assert.Equal(t, []string{"b"}, diff.RemovedURLs)
	})

	t.Run("kept order follows submission, not persistence", func(t *testing.T) {
		persisted := gallery("a", "b")
		kept := gallery("b", "a")

		diff := DiffGallery(persisted, kept)

		assert.Equal(t, []string{"b", "a"}, []string{diff.Kept[0].URL, diff.Kept[1].URL})
		assert.Empty(t, diff.RemovedURLs)
	})

	t.Run("unknown kept urls survive and are never removed", func(t *testing.T) {
		persisted := gallery("a")
		kept := gallery("a", "https://elsewhere.example.com/x.jpg")

		diff := DiffGallery(persisted, kept)

		assert.Len(t, diff.Kept, 2)
		assert.Empty(t, diff.RemovedURLs)
	})

	t.Run("empty kept removes everything", func(t *testing.T) {
		diff := DiffGallery(gallery("a", "b"), nil)

		assert.Empty(t, diff.Kept)
		assert.Equal(t, []string{"a", "b"}, diff.RemovedURLs)
	})

	t.Run("idempotent on identical lists", func(t *testing.T) {
		persisted := []model.GalleryItem{
			{URL: "a", Caption: "old caption"},
		}
		kept := []model.GalleryItem{
			{URL: "a", Caption: "new caption"},
		}

		diff := DiffGallery(persisted, kept)

		// Same URL is a keep even when the caption changed; the new caption
		// wins.
		assert.Equal(t, "new caption", diff.Kept[0].Caption)
		assert.Empty(t, diff.RemovedURLs)
	})
}
