package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/tutorlink-api/internal/models"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
)

type mockSearchService struct {
	result   *models.TutorSearchResult
	stats    *models.SearchStatistics
	options  *models.FilterOptions
	err      error
	lastReq  models.SearchRequest
	searches int
}

func (m *mockSearchService) SearchTutors(_ context.Context, req models.SearchRequest) (*models.TutorSearchResult, error) {
	m.lastReq = req
	m.searches++
	return m.result, m.err
}

func (m *mockSearchService) GetSearchStatistics(_ context.Context, req models.SearchRequest) (*models.SearchStatistics, error) {
	m.lastReq = req
	return m.stats, m.err
}

func (m *mockSearchService) GetFilterOptions(_ context.Context) (*models.FilterOptions, error) {
	return m.options, m.err
}

func performRequest(route func(*gin.Engine), target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	route(router)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestSearchHandlerParsesQuery(t *testing.T) {
	svc := &mockSearchService{result: &models.TutorSearchResult{
		Pagination: models.NewPagination(2, 5, 25),
	}}
	h := NewSearchHandler(svc, nil, nil)

	w := performRequest(func(r *gin.Engine) { r.GET("/search/tutors", h.Search) },
		"/search/tutors?subjects=Mathematics,Physics&levels=A_LEVEL&keywords=experienced&minRate=20&maxRate=60&sortBy=rating&sortOrder=asc&page=2&limit=5")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Mathematics", "Physics"}, svc.lastReq.Subjects)
	assert.Equal(t, []string{"A_LEVEL"}, svc.lastReq.Levels)
	assert.Equal(t, "experienced", svc.lastReq.Keywords)
	require.NotNil(t, svc.lastReq.MinRate)
	assert.Equal(t, 20.0, *svc.lastReq.MinRate)
	require.NotNil(t, svc.lastReq.MaxRate)
	assert.Equal(t, 60.0, *svc.lastReq.MaxRate)
	assert.Equal(t, models.SortByRating, svc.lastReq.SortBy)
	assert.Equal(t, models.SortOrderAsc, svc.lastReq.SortOrder)
	assert.Equal(t, 2, svc.lastReq.Page)
	assert.Equal(t, 5, svc.lastReq.Limit)

	var envelope struct {
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 25, envelope.Pagination.Total)
	assert.Equal(t, 5, envelope.Pagination.TotalPages)
}

func TestSearchHandlerDefaults(t *testing.T) {
	svc := &mockSearchService{result: &models.TutorSearchResult{}}
	h := NewSearchHandler(svc, nil, nil)

	w := performRequest(func(r *gin.Engine) { r.GET("/search/tutors", h.Search) }, "/search/tutors")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.lastReq.Page)
	assert.Equal(t, 10, svc.lastReq.Limit)
	assert.Equal(t, models.SortByRelevance, svc.lastReq.SortBy)
	assert.Equal(t, models.SortOrderDesc, svc.lastReq.SortOrder)
	assert.Empty(t, svc.lastReq.Subjects)
}

func TestSearchHandlerRejectsInvalidBounds(t *testing.T) {
	svc := &mockSearchService{result: &models.TutorSearchResult{}}
	h := NewSearchHandler(svc, nil, nil)

	// Negative rate, zero page and oversized limit all fall back to defaults.
	w := performRequest(func(r *gin.Engine) { r.GET("/search/tutors", h.Search) },
		"/search/tutors?minRate=-5&page=0&limit=500")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastReq.MinRate)
	assert.Equal(t, 1, svc.lastReq.Page)
	assert.Equal(t, 10, svc.lastReq.Limit)
}

func TestSearchHandlerServiceError(t *testing.T) {
	svc := &mockSearchService{err: appErrors.ErrInternal}
	h := NewSearchHandler(svc, nil, nil)

	w := performRequest(func(r *gin.Engine) { r.GET("/search/tutors", h.Search) }, "/search/tutors")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInternal.Code, envelope.Error.Code)
}

func TestStatisticsHandler(t *testing.T) {
	svc := &mockSearchService{stats: &models.SearchStatistics{
		TotalResults:      3,
		AverageExperience: 3.33,
		PopularSubjects:   []models.SubjectCount{{Subject: "Mathematics", Count: 2}},
	}}
	h := NewSearchHandler(svc, nil, nil)

	w := performRequest(func(r *gin.Engine) { r.GET("/search/tutors/statistics", h.Statistics) },
		"/search/tutors/statistics?subjects=Mathematics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Mathematics"}, svc.lastReq.Subjects)

	var envelope struct {
		Data models.SearchStatistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.TotalResults)
	assert.Equal(t, 3.33, envelope.Data.AverageExperience)
}

func TestFilterOptionsHandler(t *testing.T) {
	svc := &mockSearchService{options: &models.FilterOptions{
		Subjects:            []string{"Chemistry"},
		QualificationLevels: []string{"GCSE"},
	}}
	h := NewSearchHandler(svc, nil, nil)

	w := performRequest(func(r *gin.Engine) { r.GET("/search/filters", h.FilterOptions) }, "/search/filters")

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.FilterOptions `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"Chemistry"}, envelope.Data.Subjects)
}

func TestExportHandlerDisabled(t *testing.T) {
	svc := &mockSearchService{}
	h := NewSearchHandler(svc, nil, nil)

	w := performRequest(func(r *gin.Engine) { r.GET("/search/tutors/export", h.Export) }, "/search/tutors/export")

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Zero(t, svc.searches)
}
