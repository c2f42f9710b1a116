package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutorlink/tutorlink-api/internal/models"
	"github.com/tutorlink/tutorlink-api/internal/service"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
	"github.com/tutorlink/tutorlink-api/pkg/response"
)

type searchService interface {
	SearchTutors(ctx context.Context, req models.SearchRequest) (*models.TutorSearchResult, error)
	GetSearchStatistics(ctx context.Context, req models.SearchRequest) (*models.SearchStatistics, error)
	GetFilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

// SearchHandler wires the tutor search engine to HTTP routes.
type SearchHandler struct {
	search  searchService
	export  *service.ExportService
	metrics *service.MetricsService
}

// NewSearchHandler constructs a SearchHandler. The export service may be nil
// when the export endpoint is disabled.
func NewSearchHandler(search searchService, export *service.ExportService, metrics *service.MetricsService) *SearchHandler {
	return &SearchHandler{search: search, export: export, metrics: metrics}
}

// parseSearchRequest extracts and bounds-checks search parameters. Values
// are list-valued when given either as repeated params or comma-separated.
func parseSearchRequest(c *gin.Context) models.SearchRequest {
	req := models.SearchRequest{
		Subjects:     queryList(c, "subjects"),
		Levels:       queryList(c, "levels"),
		Availability: queryList(c, "availability"),
		Keywords:     strings.TrimSpace(c.Query("keywords")),
		SortBy:       c.DefaultQuery("sortBy", models.SortByRelevance),
		SortOrder:    c.DefaultQuery("sortOrder", models.SortOrderDesc),
	}
	if raw := c.Query("minRate"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate >= 0 {
			req.MinRate = &rate
		}
	}
	if raw := c.Query("maxRate"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate >= 0 {
			req.MaxRate = &rate
		}
	}
	req.Page = 1
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page >= 1 {
		req.Page = page
	}
	req.Limit = 10
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && limit >= 1 && limit <= 50 {
		req.Limit = limit
	}
	return req
}

func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

// Search godoc
// @Summary Search tutors
// @Tags Search
// @Produce json
// @Param subjects query string false "Subject names (comma separated)"
// @Param levels query string false "Qualification levels (comma separated)"
// @Param keywords query string false "Free-text keywords"
// @Param availability query string false "Availability slots (comma separated)"
// @Param minRate query number false "Minimum hourly rate"
// @Param maxRate query number false "Maximum hourly rate"
// @Param sortBy query string false "relevance|experience|hourlyRateMin|hourlyRateMax|rating"
// @Param sortOrder query string false "asc|desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} response.Envelope
// @Router /search/tutors [get]
func (h *SearchHandler) Search(c *gin.Context) {
	req := parseSearchRequest(c)
	h.metrics.ObserveSearch(req.SortBy, req.Keywords != "")

	result, err := h.search.SearchTutors(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := result.Pagination
	response.JSON(c, http.StatusOK, result, &pagination)
}

// Statistics godoc
// @Summary Aggregate statistics for a tutor search
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search/tutors/statistics [get]
func (h *SearchHandler) Statistics(c *gin.Context) {
	req := parseSearchRequest(c)

	stats, err := h.search.GetSearchStatistics(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// FilterOptions godoc
// @Summary Available search filter values
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search/filters [get]
func (h *SearchHandler) FilterOptions(c *gin.Context) {
	options, err := h.search.GetFilterOptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Export godoc
// @Summary Export the current search result page
// @Tags Search
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /search/tutors/export [get]
func (h *SearchHandler) Export(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "export is disabled"))
		return
	}
	req := parseSearchRequest(c)
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	payload, err := h.export.Export(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+payload.Filename)
	c.Data(http.StatusOK, payload.ContentType, payload.Data)
}
