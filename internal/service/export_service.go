package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tutorlink/tutorlink-api/internal/models"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
	"github.com/tutorlink/tutorlink-api/pkg/export"
)

// Export formats supported by the search export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type tutorSearcher interface {
	SearchTutors(ctx context.Context, req models.SearchRequest) (*models.TutorSearchResult, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportPayload is a rendered export ready to stream to the client.
type ExportPayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the current search result page as CSV or PDF.
type ExportService struct {
	search tutorSearcher
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(search tutorSearcher, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{search: search, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export runs the search for the given request and renders the result page.
func (s *ExportService) Export(ctx context.Context, req models.SearchRequest, format string) (*ExportPayload, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}

	result, err := s.search.SearchTutors(ctx, req)
	if err != nil {
		return nil, err
	}
	dataset := buildTutorDataset(result.Tutors)

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Tutor search results")
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("tutor-search-%s.%s", s.now().UTC().Format("20060102-150405"), format)
	return &ExportPayload{Filename: filename, ContentType: contentType, Data: payload}, nil
}

func buildTutorDataset(tutors []models.TutorSummary) export.Dataset {
	headers := []string{"ID", "User ID", "Subjects", "Experience (years)", "Rate Min", "Rate Max", "Rating", "Relevance"}
	rows := make([]map[string]string, 0, len(tutors))
	for _, tutor := range tutors {
		names := make([]string, 0, len(tutor.Subjects))
		for _, subject := range tutor.Subjects {
			names = append(names, fmt.Sprintf("%s (%s)", subject.SubjectName, subject.QualificationLevel))
		}
		row := map[string]string{
			"ID":                 tutor.ID,
			"User ID":            tutor.UserID,
			"Subjects":           strings.Join(names, "; "),
			"Experience (years)": strconv.Itoa(tutor.ExperienceYears),
			"Rate Min":           formatRate(tutor.HourlyRateMin),
			"Rate Max":           formatRate(tutor.HourlyRateMax),
			"Rating":             strconv.FormatFloat(tutor.Rating, 'f', 2, 64),
			"Relevance":          "",
		}
		if tutor.RelevanceScore != nil {
			row["Relevance"] = strconv.FormatFloat(*tutor.RelevanceScore, 'f', 2, 64)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatRate(rate *float64) string {
	if rate == nil {
		return ""
	}
	return strconv.FormatFloat(*rate, 'f', 2, 64)
}
