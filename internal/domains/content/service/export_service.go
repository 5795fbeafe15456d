package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"portfolio-cms/internal/domains/content/model"
	"portfolio-cms/internal/domains/content/repository"
)

type exportService struct {
	repo repository.ContentRepository
}

func NewExportService(repo repository.ContentRepository) ExportService {
	return &exportService{repo: repo}
}

var exportHeaders = []string{
	"ID", "Slug", "Title", "Summary", "Status", "Featured", "Featured Order",
	"Technologies", "Tags", "Live URL", "Source URL", "Gallery Size", "Updated At",
}

// ExportProjects renders every project row into a single-sheet workbook.
func (s *exportService) ExportProjects(ctx context.Context) (*excelize.File, error) {
	records, err := s.repo.List(ctx, model.VariantProject, model.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("load projects for export: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Projects"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, rec := range records {
		row := i + 2
		order := ""
		if rec.FeaturedOrder != nil {
			order = fmt.Sprintf("%d", *rec.FeaturedOrder)
		}

		values := []interface{}{
			rec.ID.String(), rec.Slug, rec.Title, rec.Summary, string(rec.Status),
			rec.IsFeatured, order,
			strings.Join(rec.Technologies, ", "), strings.Join(rec.Tags, ", "),
			rec.LiveURL, rec.SourceURL, len(rec.Gallery),
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f, nil
}
