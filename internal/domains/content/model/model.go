package model

import (
	"time"

	"github.com/google/uuid"
)

// Variant distinguishes the two content record kinds. They share shape but
// live in separate tables and bucket folders.
type Variant string

const (
	VariantProject    Variant = "project"
	VariantExperiment Variant = "experiment"
)

// Table returns the relational table backing the variant.
func (v Variant) Table() string {
	if v == VariantExperiment {
		return "experiments"
	}
	return "projects"
}

// Folder returns the asset-host folder prefix for the variant.
func (v Variant) Folder() string {
	return v.Table()
}

// Status is the record lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// GalleryItem is one ordered gallery entry. Caption may be empty.
type GalleryItem struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Metric is a display metric, e.g. "Monthly users | 12k".
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ContentRecord is a persisted Project or Experiment case study. The record
// exclusively owns the assets referenced by HeroURL and Gallery; no asset is
// shared across records.
type ContentRecord struct {
	ID           uuid.UUID     `json:"id"`
	Slug         string        `json:"slug"`
	Title        string        `json:"title"`
	Summary      string        `json:"summary"`
	Description  string        `json:"description"`
	HeroURL      string        `json:"heroUrl,omitempty"`
	Gallery      []GalleryItem `json:"gallery"`
	Technologies []string      `json:"technologies"`
	Tags         []string      `json:"tags"`
	Deliverables []string      `json:"deliverables"`
	Metrics      []Metric      `json:"metrics"`
	LiveURL      string        `json:"liveUrl,omitempty"`
	SourceURL    string        `json:"sourceUrl,omitempty"`
	Status       Status        `json:"status"`
	IsFeatured   bool          `json:"isFeatured"`
	// FeaturedOrder is meaningful only while IsFeatured is true.
	FeaturedOrder *int      `json:"featuredOrder,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UploadFile is a pending binary received from the form boundary. Caption is
// aligned positionally for gallery files and unused for the hero.
type UploadFile struct {
	Name    string
	Data    []byte
	Caption string
}

// AssetRef pairs an issued URL with the storage key the host accepts for
// deletion.
type AssetRef struct {
	URL string
	Key string
}

// ListFilter narrows list queries.
type ListFilter struct {
	Status   string
	Tag      string
	Featured bool
}
