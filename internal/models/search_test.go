package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name              string
		page, limit, tot  int
		totalPages        int
		hasNext, hasPrev  bool
	}{
		{"middle page", 2, 5, 25, 5, true, true},
		{"first page", 1, 10, 25, 3, true, false},
		{"last page", 3, 10, 25, 3, false, true},
		{"exact division", 5, 5, 25, 5, false, true},
		{"empty set", 1, 10, 0, 0, false, false},
		{"page beyond total", 9, 10, 25, 3, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.tot)
			assert.Equal(t, tc.totalPages, p.TotalPages)
			assert.Equal(t, tc.hasNext, p.HasNextPage)
			assert.Equal(t, tc.hasPrev, p.HasPreviousPage)
		})
	}
}

func TestNewTutorSearchFilterKeywordSplitting(t *testing.T) {
	filter := NewTutorSearchFilter(SearchRequest{Keywords: "  maths   tutor  "})

	assert.Equal(t, "maths   tutor", filter.Keywords)
	assert.Equal(t, []string{"maths", "tutor"}, filter.KeywordTerms)
	assert.True(t, filter.HasKeywords())
}

func TestNewTutorSearchFilterBlankKeywords(t *testing.T) {
	filter := NewTutorSearchFilter(SearchRequest{Keywords: "   "})

	assert.Empty(t, filter.Keywords)
	assert.False(t, filter.HasKeywords())
}

func TestMaxYearsExperience(t *testing.T) {
	tutor := &Tutor{Subjects: []TutorSubject{
		{YearsExperience: 3},
		{YearsExperience: 7},
		{YearsExperience: 5},
	}}
	assert.Equal(t, 7, tutor.MaxYearsExperience())

	assert.Equal(t, 0, (&Tutor{}).MaxYearsExperience())
}
