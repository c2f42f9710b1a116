package repository

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/tutorlink-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock
}

func floatPtr(f float64) *float64 { return &f }

const eligibilityGate = "WHERE t.is_active = TRUE AND t.verification_status = 'VERIFIED' AND u.is_email_verified = TRUE"

func TestBuildWhereAlwaysAppliesEligibilityGate(t *testing.T) {
	where, args := buildWhere(models.TutorSearchFilter{})

	assert.Equal(t, " "+eligibilityGate, where)
	assert.Empty(t, args)
}

func TestBuildWhereNestedSubjectLevelConjunction(t *testing.T) {
	where, args := buildWhere(models.TutorSearchFilter{
		Subjects: []string{"Mathematics"},
		Levels:   []string{"A_LEVEL", "GCSE"},
	})

	// One EXISTS holds both conditions, so a single subject row must satisfy
	// name and level together.
	assert.Contains(t, where, "EXISTS (SELECT 1 FROM tutor_subjects s WHERE s.tutor_id = t.id AND s.subject_name = ANY($1) AND s.qualification_level = ANY($2))")
	assert.Equal(t, 1, strings.Count(where, "EXISTS (SELECT 1 FROM tutor_subjects"))
	assert.Len(t, args, 2)
}

func TestBuildWhereSubjectsOnly(t *testing.T) {
	where, args := buildWhere(models.TutorSearchFilter{Subjects: []string{"Physics"}})

	assert.Contains(t, where, "s.subject_name = ANY($1)")
	assert.NotContains(t, where, "qualification_level")
	assert.Len(t, args, 1)
}

func TestBuildWhereRateBoundsIndependent(t *testing.T) {
	where, args := buildWhere(models.TutorSearchFilter{MinRate: floatPtr(20)})
	assert.Contains(t, where, "t.hourly_rate_min >= $1")
	assert.NotContains(t, where, "hourly_rate_max")
	assert.Len(t, args, 1)

	where, args = buildWhere(models.TutorSearchFilter{MaxRate: floatPtr(80)})
	assert.Contains(t, where, "t.hourly_rate_max <= $1")
	assert.NotContains(t, where, "hourly_rate_min")
	assert.Len(t, args, 1)
}

func TestBuildWhereAvailabilityOverlap(t *testing.T) {
	where, args := buildWhere(models.TutorSearchFilter{Availability: []string{"WEEKENDS"}})

	assert.Contains(t, where, "t.availability && $1")
	assert.Len(t, args, 1)
}

func TestBuildWhereKeywordClauses(t *testing.T) {
	filter := models.NewTutorSearchFilter(models.SearchRequest{Keywords: "maths tutor"})
	where, args := buildWhere(filter)

	// The whole keyword string hits bio and qualifications; each term hits
	// subject names. All clauses are OR-joined in one group.
	assert.Contains(t, where, "t.bio ILIKE $1")
	assert.Contains(t, where, "q.qualification_name ILIKE $1 OR q.institution ILIKE $1")
	assert.Contains(t, where, "s.subject_name ILIKE $2")
	assert.Contains(t, where, "s.subject_name ILIKE $3")
	require.Len(t, args, 3)
	assert.Equal(t, "%maths tutor%", args[0])
	assert.Equal(t, "%maths%", args[1])
	assert.Equal(t, "%tutor%", args[2])
}

func TestBuildWhereBlankKeywordsIgnored(t *testing.T) {
	filter := models.NewTutorSearchFilter(models.SearchRequest{Keywords: "   "})
	where, args := buildWhere(filter)

	assert.Equal(t, " "+eligibilityGate, where)
	assert.Empty(t, args)
}

func TestOrderClauseMapping(t *testing.T) {
	cases := []struct {
		name string
		sort models.SearchSort
		want string
	}{
		{
			name: "relevance uses provisional rating order",
			sort: models.SearchSort{Key: models.SortByRelevance, Descending: true},
			want: " ORDER BY t.rating DESC, t.total_students DESC, t.created_at DESC",
		},
		{
			name: "experience sorts by max subject years",
			sort: models.SearchSort{Key: models.SortByExperience, Descending: true},
			want: " ORDER BY (SELECT COALESCE(MAX(s.years_experience), 0) FROM tutor_subjects s WHERE s.tutor_id = t.id) DESC, t.created_at DESC",
		},
		{
			name: "rate min ascending",
			sort: models.SearchSort{Key: models.SortByHourlyRateMin, Descending: false},
			want: " ORDER BY t.hourly_rate_min ASC, t.created_at DESC",
		},
		{
			name: "rate max descending",
			sort: models.SearchSort{Key: models.SortByHourlyRateMax, Descending: true},
			want: " ORDER BY t.hourly_rate_max DESC, t.created_at DESC",
		},
		{
			name: "rating with student tie-break",
			sort: models.SearchSort{Key: models.SortByRating, Descending: false},
			want: " ORDER BY t.rating ASC, t.total_students DESC, t.created_at DESC",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, orderClause(tc.sort))
		})
	}
}

func TestCount(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tutors t JOIN users u ON u.id = t.user_id " + eligibilityGate)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), models.TutorSearchFilter{})

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(assert.AnError)

	_, err := repo.Count(context.Background(), models.TutorSearchFilter{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "count tutors")
}

func tutorRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "bio", "hourly_rate_min", "hourly_rate_max",
		"profile_image_url", "is_active", "verification_status", "rating", "total_students",
		"language_proficiencies", "availability", "created_at", "updated_at",
		"owner_id", "owner_email", "owner_email_verified",
	}).AddRow(
		"tutor-1", "user-1", "Maths tutor", 25.0, 45.0,
		nil, true, "VERIFIED", 4.6, 12,
		"{English}", "{WEEKENDS}", now, now,
		"user-1", "tutor@example.com", true,
	)
}

func TestFindPageAttachesAssociations(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tutors t JOIN users u ON u.id = t.user_id "+eligibilityGate) +
		".*" + regexp.QuoteMeta("ORDER BY t.rating DESC, t.total_students DESC, t.created_at DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(tutorRows())

	mock.ExpectQuery(regexp.QuoteMeta("FROM tutor_subjects WHERE tutor_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tutor_id", "subject_name", "qualification_level", "proficiency_level",
			"years_experience", "hourly_rate", "exam_boards", "ib_subject_group", "ib_language",
		}).AddRow("sub-1", "tutor-1", "Mathematics", "A_LEVEL", "EXPERT", 6, 30.0, "{AQA}", nil, nil))

	mock.ExpectQuery(regexp.QuoteMeta("FROM tutor_qualifications WHERE tutor_id = ANY($1) AND verification_status = 'VERIFIED'")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tutor_id", "qualification_type", "qualification_name", "institution", "verification_status",
		}).AddRow("qual-1", "tutor-1", "DEGREE", "BSc Mathematics", "University of Leeds", "VERIFIED"))

	tutors, err := repo.FindPage(context.Background(), models.TutorSearchFilter{}, models.SearchSort{Key: models.SortByRelevance, Descending: true}, 0, 10)

	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, "tutor-1", tutors[0].ID)
	assert.Equal(t, "tutor@example.com", tutors[0].User.Email)
	require.Len(t, tutors[0].Subjects, 1)
	assert.Equal(t, "Mathematics", tutors[0].Subjects[0].SubjectName)
	require.Len(t, tutors[0].Qualifications, 1)
	assert.Equal(t, "BSc Mathematics", tutors[0].Qualifications[0].QualificationName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPageEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery("SELECT .+ FROM tutors t JOIN users u").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tutors, err := repo.FindPage(context.Background(), models.TutorSearchFilter{}, models.SearchSort{}, 0, 10)

	require.NoError(t, err)
	assert.NotNil(t, tutors)
	assert.Empty(t, tutors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregate(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(t.rating) AS avg_rating, MIN(t.hourly_rate_min) AS min_rate, MAX(t.hourly_rate_max) AS max_rate")).
		WillReturnRows(sqlmock.NewRows([]string{"avg_rating", "min_rate", "max_rate"}).AddRow(4.2, 18.0, 75.0))

	agg, err := repo.Aggregate(context.Background(), models.TutorSearchFilter{})

	require.NoError(t, err)
	require.NotNil(t, agg.AverageRating)
	assert.Equal(t, 4.2, *agg.AverageRating)
	assert.Equal(t, 18.0, *agg.MinHourlyRate)
	assert.Equal(t, 75.0, *agg.MaxHourlyRate)
}

func TestAggregateEmptySetKeepsNilBounds(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery("SELECT AVG").
		WillReturnRows(sqlmock.NewRows([]string{"avg_rating", "min_rate", "max_rate"}).AddRow(nil, nil, nil))

	agg, err := repo.Aggregate(context.Background(), models.TutorSearchFilter{})

	require.NoError(t, err)
	assert.Nil(t, agg.AverageRating)
	assert.Nil(t, agg.MinHourlyRate)
	assert.Nil(t, agg.MaxHourlyRate)
}

func TestAverageExperience(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(AVG(sub.years_experience), 0) FROM tutor_subjects sub")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3.3333))

	avg, err := repo.AverageExperience(context.Background(), models.TutorSearchFilter{})

	require.NoError(t, err)
	assert.InDelta(t, 3.3333, avg, 0.0001)
}

func TestGroupBySubjectAppendsLimitArg(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	minRate := 20.0
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY sub.subject_name ORDER BY count DESC LIMIT $2")).
		WithArgs(minRate, 10).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "count"}).
			AddRow("Mathematics", 5).
			AddRow("Physics", 2))

	counts, err := repo.GroupBySubject(context.Background(), models.TutorSearchFilter{MinRate: &minRate}, 10)

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "Mathematics", counts[0].Subject)
	assert.Equal(t, 5, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctSubjects(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT sub.subject_name FROM tutor_subjects sub")).
		WillReturnRows(sqlmock.NewRows([]string{"subject_name"}).AddRow("Chemistry").AddRow("Mathematics"))

	subjects, err := repo.DistinctSubjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Chemistry", "Mathematics"}, subjects)
}

func TestDistinctLevels(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewTutorSearchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT sub.qualification_level FROM tutor_subjects sub")).
		WillReturnRows(sqlmock.NewRows([]string{"qualification_level"}).AddRow("A_LEVEL").AddRow("GCSE"))

	levels, err := repo.DistinctLevels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A_LEVEL", "GCSE"}, levels)
}
