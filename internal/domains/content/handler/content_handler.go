package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-cms/internal/domains/content/model"
	"portfolio-cms/internal/domains/content/service"
	"portfolio-cms/internal/shared/response"
	"portfolio-cms/internal/shared/utils"
)

// ContentHandler serves the admin console endpoints for one record variant.
// The same handler is mounted twice, once per variant.
type ContentHandler struct {
	service service.ContentService
	export  service.ExportService
}

func NewContentHandler(svc service.ContentService, export service.ExportService) *ContentHandler {
	return &ContentHandler{service: svc, export: export}
}

// Create handles POST /:variant. Multipart form: scalar fields plus an
// optional heroImage file and any number of gallery files.
func (h *ContentHandler) Create(variant model.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := parseSubmission(c)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		rec, err := h.service.Create(c.Request.Context(), variant, *sub)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, rec)
	}
}

// Update handles PUT /:variant/:id.
func (h *ContentHandler) Update(variant model.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !utils.IsValidUUID(id) {
			response.BadRequest(c, "invalid record id")
			return
		}

		sub, err := parseSubmission(c)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		rec, err := h.service.Update(c.Request.Context(), variant, id, *sub)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, rec)
	}
}

// Delete handles DELETE /:variant/:id. Asset removal happens in the
// background after the row is gone.
func (h *ContentHandler) Delete(variant model.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !utils.IsValidUUID(id) {
			response.BadRequest(c, "invalid record id")
			return
		}

		if err := h.service.Delete(c.Request.Context(), variant, id); err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"deleted": id})
	}
}

// Get handles GET /:variant/:id. Accepts a UUID or, as a convenience for the
// public site, a slug.
func (h *ContentHandler) Get(variant model.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var (
			rec *model.ContentRecord
			err error
		)
		if utils.IsValidUUID(id) {
			rec, err = h.service.Get(c.Request.Context(), variant, id)
		} else {
			rec, err = h.service.GetBySlug(c.Request.Context(), variant, id)
		}
		if err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, rec)
	}
}

// List handles GET /:variant with optional status, tag and featured filters.
func (h *ContentHandler) List(variant model.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := model.ListFilter{
			Status:   c.Query("status"),
			Tag:      c.Query("tag"),
			Featured: c.Query("featured") == "true",
		}

		records, err := h.service.List(c.Request.Context(), variant, filter)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, records)
	}
}

// ExportProjects handles GET /projects/export and streams an xlsx workbook.
func (h *ContentHandler) ExportProjects(c *gin.Context) {
	f, err := h.export.ExportProjects(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "export failed, please try again")
		return
	}

	filename := fmt.Sprintf("projects_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// ------------------------------------------------------------------

const maxMultipartMemory = 32 << 20

// parseSubmission reads the multipart form into a Submission. File contents
// are buffered here; everything downstream works on bytes.
func parseSubmission(c *gin.Context) (*model.Submission, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	sub := &model.Submission{
		Title:         c.PostForm("title"),
		Slug:          c.PostForm("slug"),
		Summary:       c.PostForm("summary"),
		Description:   c.PostForm("description"),
		Technologies:  c.PostForm("technologies"),
		Tags:          c.PostForm("tags"),
		Deliverables:  c.PostForm("deliverables"),
		Metrics:       c.PostForm("metrics"),
		LiveURL:       c.PostForm("liveUrl"),
		SourceURL:     c.PostForm("sourceUrl"),
		Status:        c.PostForm("status"),
		Featured:      c.PostForm("isFeatured"),
		FeaturedOrder: c.PostForm("featuredOrder"),
		HeroURL:       c.PostForm("heroUrl"),
		GalleryKept:   c.PostForm("existingGallery"),
	}

	if fh, err := c.FormFile("heroImage"); err == nil {
		file, err := readUpload(fh, "")
		if err != nil {
			return nil, err
		}
		sub.HeroFile = file
	}

	captions := c.PostFormArray("galleryCaptions")
	form := c.Request.MultipartForm
	if form != nil {
		for i, fh := range form.File["gallery"] {
			caption := ""
			if i < len(captions) {
				caption = captions[i]
			}
			file, err := readUpload(fh, caption)
			if err != nil {
				return nil, err
			}
			sub.GalleryFiles = append(sub.GalleryFiles, *file)
		}
	}

	return sub, nil
}

func readUpload(fh *multipart.FileHeader, caption string) (*model.UploadFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("cannot read upload %s: %w", fh.Filename, err)
	}

	return &model.UploadFile{Name: fh.Filename, Data: data, Caption: caption}, nil
}

// writeServiceError maps the pipeline's error taxonomy onto HTTP. Upload and
// persistence failures deliberately return a generic retryable message; the
// details are in the server log.
func writeServiceError(c *gin.Context, err error) {
	var (
		validationErr  *model.ValidationError
		conflictErr    *model.ConflictError
		uploadErr      *model.UploadError
		persistenceErr *model.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		response.UnprocessableEntity(c, "validation failed", validationErr.Fields)
	case errors.As(err, &conflictErr):
		response.ErrorWithDetails(c, http.StatusConflict, "CONFLICT", conflictErr.Message,
			model.FieldErrors{conflictErr.Field: conflictErr.Message})
	case errors.As(err, &uploadErr):
		response.ErrorResponse(c, http.StatusInternalServerError, "UPLOAD_FAILED",
			"image upload failed, nothing was saved, please try again")
	case errors.As(err, &persistenceErr):
		response.ErrorResponse(c, http.StatusInternalServerError, "SAVE_FAILED",
			"saving failed, nothing was changed, please try again")
	case errors.Is(err, model.ErrNotFound):
		response.NotFound(c, "record not found")
	default:
		response.InternalServerError(c, "unexpected error")
	}
}
