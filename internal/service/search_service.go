package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tutorlink/tutorlink-api/internal/models"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
)

// popularSubjectsLimit caps the popular-subjects list in statistics.
const popularSubjectsLimit = 10

type tutorSearchStore interface {
	Count(ctx context.Context, filter models.TutorSearchFilter) (int, error)
	FindPage(ctx context.Context, filter models.TutorSearchFilter, sort models.SearchSort, offset, limit int) ([]models.Tutor, error)
	Aggregate(ctx context.Context, filter models.TutorSearchFilter) (*models.TutorAggregates, error)
	AverageExperience(ctx context.Context, filter models.TutorSearchFilter) (float64, error)
	GroupBySubject(ctx context.Context, filter models.TutorSearchFilter, limit int) ([]models.SubjectCount, error)
	DistinctSubjects(ctx context.Context) ([]string, error)
	DistinctLevels(ctx context.Context) ([]string, error)
}

// SearchServiceConfig tunes paging bounds and cache TTLs.
type SearchServiceConfig struct {
	DefaultPageSize       int
	MaxPageSize           int
	FilterOptionsCacheTTL time.Duration
	StatisticsCacheTTL    time.Duration
}

// SearchService implements tutor search, relevance ranking, aggregate
// statistics and filter-option metadata over the tutor store.
type SearchService struct {
	store  tutorSearchStore
	cache  *CacheService
	logger *zap.Logger
	cfg    SearchServiceConfig
}

// NewSearchService constructs a SearchService.
func NewSearchService(store tutorSearchStore, cache *CacheService, cfg SearchServiceConfig, logger *zap.Logger) *SearchService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.FilterOptionsCacheTTL <= 0 {
		cfg.FilterOptionsCacheTTL = 10 * time.Minute
	}
	if cfg.StatisticsCacheTTL <= 0 {
		cfg.StatisticsCacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{store: store, cache: cache, logger: logger, cfg: cfg}
}

// normalize applies paging and sort defaults. The HTTP layer already
// bounds-checks input; this keeps the service safe when called directly.
func (s *SearchService) normalize(req models.SearchRequest) models.SearchRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultPageSize
	}
	if req.Limit > s.cfg.MaxPageSize {
		req.Limit = s.cfg.MaxPageSize
	}
	switch req.SortBy {
	case models.SortByRelevance, models.SortByExperience, models.SortByHourlyRateMin, models.SortByHourlyRateMax, models.SortByRating:
	default:
		req.SortBy = models.SortByRelevance
	}
	if strings.ToLower(req.SortOrder) == models.SortOrderAsc {
		req.SortOrder = models.SortOrderAsc
	} else {
		req.SortOrder = models.SortOrderDesc
	}
	return req
}

// SearchTutors runs the full search pipeline: predicate, count, sorted page
// query, then per-result relevance scoring with an in-memory re-rank when
// keyword search is active. Re-ranking is confined to the fetched page; it
// never re-queries or re-paginates the full result set.
func (s *SearchService) SearchTutors(ctx context.Context, req models.SearchRequest) (*models.TutorSearchResult, error) {
	req = s.normalize(req)
	filter := models.NewTutorSearchFilter(req)

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count tutors")
	}

	offset := (req.Page - 1) * req.Limit
	sortSpec := models.SearchSort{Key: req.SortBy, Descending: req.SortOrder != models.SortOrderAsc}
	tutors, err := s.store.FindPage(ctx, filter, sortSpec, offset, req.Limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query tutors")
	}

	summaries := make([]models.TutorSummary, len(tutors))
	for i := range tutors {
		summaries[i] = summarizeTutor(tutors[i])
	}

	if filter.HasKeywords() {
		for i := range tutors {
			score := relevanceScore(&tutors[i], filter.KeywordTerms)
			summaries[i].RelevanceScore = &score
		}
		if req.SortBy == models.SortByRelevance {
			ascending := req.SortOrder == models.SortOrderAsc
			sort.SliceStable(summaries, func(i, j int) bool {
				if ascending {
					return *summaries[i].RelevanceScore < *summaries[j].RelevanceScore
				}
				return *summaries[i].RelevanceScore > *summaries[j].RelevanceScore
			})
		}
	}

	return &models.TutorSearchResult{
		Tutors:     summaries,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
		Filters: models.AppliedFilters{
			Subjects:     req.Subjects,
			Levels:       req.Levels,
			Keywords:     filter.Keywords,
			Availability: req.Availability,
			MinRate:      req.MinRate,
			MaxRate:      req.MaxRate,
			SortBy:       req.SortBy,
			SortOrder:    req.SortOrder,
		},
	}, nil
}

// GetSearchStatistics computes aggregate metrics under the same predicate as
// SearchTutors. The four store queries are independent and run concurrently.
func (s *SearchService) GetSearchStatistics(ctx context.Context, req models.SearchRequest) (*models.SearchStatistics, error) {
	req = s.normalize(req)
	filter := models.NewTutorSearchFilter(req)

	cacheKey := statisticsCacheKey(filter)
	var cached models.SearchStatistics
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	var (
		total      int
		aggregates *models.TutorAggregates
		experience float64
		popular    []models.SubjectCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		aggregates, err = s.store.Aggregate(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		experience, err = s.store.AverageExperience(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		popular, err = s.store.GroupBySubject(gctx, filter, popularSubjectsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute search statistics")
	}

	stats := &models.SearchStatistics{
		TotalResults:      total,
		AverageExperience: roundTwoDecimals(experience),
		PopularSubjects:   popular,
	}
	if stats.PopularSubjects == nil {
		stats.PopularSubjects = []models.SubjectCount{}
	}
	if aggregates != nil {
		if aggregates.AverageRating != nil {
			stats.AverageRating = roundTwoDecimals(*aggregates.AverageRating)
		}
		stats.PriceRange = models.PriceRange{Min: aggregates.MinHourlyRate, Max: aggregates.MaxHourlyRate}
	}

	if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.StatisticsCacheTTL); err != nil {
		s.logger.Warn("statistics cache write failed", zap.Error(err))
	}
	return stats, nil
}

const filterOptionsCacheKey = "search:filter-options"

// GetFilterOptions lists distinct subjects and qualification levels across
// eligible tutors, for populating search dropdowns.
func (s *SearchService) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	var cached models.FilterOptions
	if hit, err := s.cache.Get(ctx, filterOptionsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	var subjects, levels []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subjects, err = s.store.DistinctSubjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		levels, err = s.store.DistinctLevels(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load filter options")
	}

	options := &models.FilterOptions{Subjects: subjects, QualificationLevels: levels}
	if options.Subjects == nil {
		options.Subjects = []string{}
	}
	if options.QualificationLevels == nil {
		options.QualificationLevels = []string{}
	}

	if err := s.cache.Set(ctx, filterOptionsCacheKey, options, s.cfg.FilterOptionsCacheTTL); err != nil {
		s.logger.Warn("filter options cache write failed", zap.Error(err))
	}
	return options, nil
}

func summarizeTutor(tutor models.Tutor) models.TutorSummary {
	return models.TutorSummary{
		ID:                    tutor.ID,
		UserID:                tutor.UserID,
		Bio:                   tutor.Bio,
		HourlyRateMin:         tutor.HourlyRateMin,
		HourlyRateMax:         tutor.HourlyRateMax,
		ProfileImageURL:       tutor.ProfileImageURL,
		Rating:                tutor.Rating,
		TotalStudents:         tutor.TotalStudents,
		LanguageProficiencies: []string(tutor.LanguageProficiencies),
		Availability:          []string(tutor.Availability),
		ExperienceYears:       tutor.MaxYearsExperience(),
		Subjects:              tutor.Subjects,
		Qualifications:        tutor.Qualifications,
	}
}

// statisticsCacheKey derives a stable key from the predicate fields.
func statisticsCacheKey(filter models.TutorSearchFilter) string {
	payload, err := json.Marshal(filter)
	if err != nil {
		return "search:stats:default"
	}
	return fmt.Sprintf("search:stats:%x", sha256.Sum256(payload))
}
