package model

import (
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"portfolio-cms/internal/shared/fieldparse"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Submission is the raw field set from the form boundary. Multi-line fields
// keep their submitted text; Normalize applies the field grammar.
type Submission struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Summary       string `json:"summary"`
	Description   string `json:"description"`
	Technologies  string `json:"technologies"`
	Tags          string `json:"tags"`
	Deliverables  string `json:"deliverables"`
	Metrics       string `json:"metrics"`
	LiveURL       string `json:"liveUrl"`
	SourceURL     string `json:"sourceUrl"`
	Status        string `json:"status"`
	Featured      string `json:"isFeatured"`
	FeaturedOrder string `json:"featuredOrder"`
	HeroURL       string `json:"heroUrl"`
	GalleryKept   string `json:"existingGallery"`

	HeroFile     *UploadFile  `json:"-"`
	GalleryFiles []UploadFile `json:"-"`
}

// Draft is a validated, normalized payload ready for reconciliation.
type Draft struct {
	Title         string
	Slug          string
	Summary       string
	Description   string
	Technologies  []string
	Tags          []string
	Deliverables  []string
	Metrics       []Metric
	LiveURL       string
	SourceURL     string
	Status        Status
	IsFeatured    bool
	FeaturedOrder *int
	// HeroURL is the kept (or externally supplied) hero reference.
	// Empty means no hero, unless a new hero file is uploaded.
	HeroURL     string
	KeptGallery []GalleryItem
}

// featured: the flag is true iff the field was submitted non-empty.
func (s Submission) featured() bool {
	return strings.TrimSpace(s.Featured) != ""
}

func (s Submission) validate() FieldErrors {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Title,
			validation.Required.Error("title is required"),
			validation.Length(3, 160).Error("title must be 3-160 characters"),
		),
		validation.Field(&s.Slug,
			validation.Required.Error("slug is required"),
			validation.Match(slugPattern).Error("slug may only contain lowercase letters, digits and hyphens"),
		),
		validation.Field(&s.Summary,
			validation.Required.Error("summary is required"),
			validation.Length(10, 500).Error("summary must be 10-500 characters"),
		),
		validation.Field(&s.LiveURL,
			validation.When(strings.TrimSpace(s.LiveURL) != "", is.URL.Error("live url must be a valid URL")),
		),
		validation.Field(&s.SourceURL,
			validation.When(strings.TrimSpace(s.SourceURL) != "", is.URL.Error("source url must be a valid URL")),
		),
		validation.Field(&s.HeroURL,
			validation.When(strings.TrimSpace(s.HeroURL) != "", is.URL.Error("hero image must be a valid URL")),
		),
		validation.Field(&s.Status,
			validation.In("", string(StatusDraft), string(StatusPublished), string(StatusArchived)).
				Error("status must be DRAFT, PUBLISHED or ARCHIVED"),
		),
		validation.Field(&s.FeaturedOrder,
			validation.When(s.featured() && strings.TrimSpace(s.FeaturedOrder) != "",
				validation.Match(digitsPattern).Error("featured order must be a non-negative integer"),
			),
		),
	)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validation.Errors); ok {
		fields := make(FieldErrors, len(verrs))
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
		return fields
	}
	return FieldErrors{"_form": err.Error()}
}

// Normalize schema-checks the submission and coerces it into a Draft.
// Pure: no side effects. On failure the per-field error map is returned and
// the Draft is nil.
func (s Submission) Normalize() (*Draft, FieldErrors) {
	if fields := s.validate(); fields != nil {
		return nil, fields
	}

	d := &Draft{
		Title:        strings.TrimSpace(s.Title),
		Slug:         strings.TrimSpace(s.Slug),
		Summary:      strings.TrimSpace(s.Summary),
		Description:  strings.TrimSpace(s.Description),
		Technologies: fieldparse.List(s.Technologies),
		Tags:         fieldparse.List(s.Tags),
		Deliverables: fieldparse.Lines(s.Deliverables),
		LiveURL:      strings.TrimSpace(s.LiveURL),
		SourceURL:    strings.TrimSpace(s.SourceURL),
		HeroURL:      strings.TrimSpace(s.HeroURL),
		Status:       StatusDraft,
	}

	if s.Status != "" {
		d.Status = Status(s.Status)
	}

	for _, pair := range fieldparse.Pairs(s.Metrics) {
		d.Metrics = append(d.Metrics, Metric{Label: pair.Primary, Value: pair.Secondary})
	}

	for _, pair := range fieldparse.Pairs(s.GalleryKept) {
		d.KeptGallery = append(d.KeptGallery, GalleryItem{URL: pair.Primary, Caption: pair.Secondary})
	}

	d.IsFeatured = s.featured()
	// Clearing the feature flag always clears ordering, regardless of what
	// was submitted alongside it.
	if d.IsFeatured {
		if raw := strings.TrimSpace(s.FeaturedOrder); raw != "" {
			n, _ := strconv.Atoi(raw)
			d.FeaturedOrder = &n
		}
	}

	return d, nil
}
