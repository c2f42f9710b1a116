package models

import "strings"

// Sort keys accepted by the search endpoint.
const (
	SortByRelevance     = "relevance"
	SortByExperience    = "experience"
	SortByHourlyRateMin = "hourlyRateMin"
	SortByHourlyRateMax = "hourlyRateMax"
	SortByRating        = "rating"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// SearchRequest captures a validated tutor search query.
type SearchRequest struct {
	Subjects     []string `json:"subjects,omitempty"`
	Levels       []string `json:"levels,omitempty"`
	Keywords     string   `json:"keywords,omitempty"`
	Availability []string `json:"availability,omitempty"`
	MinRate      *float64 `json:"min_rate,omitempty"`
	MaxRate      *float64 `json:"max_rate,omitempty"`
	SortBy       string   `json:"sort_by"`
	SortOrder    string   `json:"sort_order"`
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
}

// TutorSearchFilter is the predicate shared by the search, statistics and
// filter-options queries. The eligibility gate (active tutor, VERIFIED
// status, email-verified owner) is always applied by the store and is not
// part of this struct.
//
// Subjects and Levels form a nested conjunction: when both are present a
// single subject row must satisfy the name condition and the level condition
// simultaneously.
type TutorSearchFilter struct {
	Subjects     []string
	Levels       []string
	Availability []string
	MinRate      *float64
	MaxRate      *float64
	Keywords     string
	KeywordTerms []string
}

// HasKeywords reports whether keyword clauses participate in the predicate.
func (f TutorSearchFilter) HasKeywords() bool {
	return f.Keywords != "" && len(f.KeywordTerms) > 0
}

// NewTutorSearchFilter builds the shared predicate from a request.
func NewTutorSearchFilter(req SearchRequest) TutorSearchFilter {
	filter := TutorSearchFilter{
		Subjects:     req.Subjects,
		Levels:       req.Levels,
		Availability: req.Availability,
		MinRate:      req.MinRate,
		MaxRate:      req.MaxRate,
	}
	if keywords := strings.TrimSpace(req.Keywords); keywords != "" {
		filter.Keywords = keywords
		filter.KeywordTerms = strings.Fields(keywords)
	}
	return filter
}

// SearchSort describes the requested primary sort; fixed tie-breaks per key
// are applied by the store.
type SearchSort struct {
	Key        string
	Descending bool
}

// Pagination contains the derived page metadata returned with list responses.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// NewPagination derives page metadata from a total row count.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// TutorSummary is the transformed tutor record returned by search.
type TutorSummary struct {
	ID                    string               `json:"id"`
	UserID                string               `json:"user_id"`
	Bio                   *string              `json:"bio,omitempty"`
	HourlyRateMin         *float64             `json:"hourly_rate_min,omitempty"`
	HourlyRateMax         *float64             `json:"hourly_rate_max,omitempty"`
	ProfileImageURL       *string              `json:"profile_image_url,omitempty"`
	Rating                float64              `json:"rating"`
	TotalStudents         int                  `json:"total_students"`
	LanguageProficiencies []string             `json:"language_proficiencies"`
	Availability          []string             `json:"availability"`
	ExperienceYears       int                  `json:"experience_years"`
	Subjects              []TutorSubject       `json:"subjects"`
	Qualifications        []TutorQualification `json:"qualifications"`
	RelevanceScore        *float64             `json:"relevance_score,omitempty"`
}

// AppliedFilters echoes the filters a search page was produced with.
type AppliedFilters struct {
	Subjects     []string `json:"subjects,omitempty"`
	Levels       []string `json:"levels,omitempty"`
	Keywords     string   `json:"keywords,omitempty"`
	Availability []string `json:"availability,omitempty"`
	MinRate      *float64 `json:"min_rate,omitempty"`
	MaxRate      *float64 `json:"max_rate,omitempty"`
	SortBy       string   `json:"sort_by"`
	SortOrder    string   `json:"sort_order"`
}

// TutorSearchResult is a ranked page of tutors plus pagination metadata.
type TutorSearchResult struct {
	Tutors     []TutorSummary `json:"tutors"`
	Pagination Pagination     `json:"pagination"`
	Filters    AppliedFilters `json:"filters"`
}

// PriceRange carries aggregate hourly-rate bounds; nil when no rows matched.
type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// SubjectCount pairs a subject name with its occurrence count.
type SubjectCount struct {
	Subject string `db:"subject" json:"subject"`
	Count   int    `db:"count" json:"count"`
}

// SearchStatistics aggregates metrics over the matching tutor set.
type SearchStatistics struct {
	TotalResults      int            `json:"total_results"`
	AverageExperience float64        `json:"average_experience"`
	AverageRating     float64        `json:"average_rating"`
	PriceRange        PriceRange     `json:"price_range"`
	PopularSubjects   []SubjectCount `json:"popular_subjects"`
}

// TutorAggregates carries the numeric aggregates computed by the store.
type TutorAggregates struct {
	AverageRating *float64 `db:"avg_rating"`
	MinHourlyRate *float64 `db:"min_rate"`
	MaxHourlyRate *float64 `db:"max_rate"`
}

// FilterOptions lists the values available for search dropdowns.
type FilterOptions struct {
	Subjects            []string `json:"subjects"`
	QualificationLevels []string `json:"qualification_levels"`
}
