package main

import (
	"github.com/hibiken/asynq"

	contentJob "portfolio-cms/internal/domains/content/job"
	types "portfolio-cms/internal/shared"
	"portfolio-cms/pkg/container"
)

// HandlerRegistry holds every job handler the worker serves.
type HandlerRegistry struct {
	content *contentJob.Handlers
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		content: contentJob.NewHandlers(c.ContentRepo, c.AssetStore),
	}
}

// RegisterHandlers binds task types to their handlers.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(types.TypeCleanupAssets, h.content.HandleCleanupAssets)
	mux.HandleFunc(types.TypeDeleteRecordAssets, h.content.HandleDeleteRecordAssets)
	mux.HandleFunc(types.TypeOrphanSweep, h.content.HandleOrphanSweep)
}
