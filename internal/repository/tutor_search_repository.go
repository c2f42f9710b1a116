package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tutorlink/tutorlink-api/internal/models"
)

const tutorSearchColumns = `t.id, t.user_id, t.bio, t.hourly_rate_min, t.hourly_rate_max,
	t.profile_image_url, t.is_active, t.verification_status, t.rating, t.total_students,
	t.language_proficiencies, t.availability, t.created_at, t.updated_at,
	u.id AS owner_id, u.email AS owner_email, u.is_email_verified AS owner_email_verified`

const tutorSearchBase = "FROM tutors t JOIN users u ON u.id = t.user_id"

// TutorSearchRepository exposes the read-only query surface consumed by the
// search engine: count, paged find, aggregates, group-counts and distincts.
type TutorSearchRepository struct {
	db *sqlx.DB
}

// NewTutorSearchRepository constructs a TutorSearchRepository.
func NewTutorSearchRepository(db *sqlx.DB) *TutorSearchRepository {
	return &TutorSearchRepository{db: db}
}

// buildWhere renders the shared predicate. The eligibility gate is always
// present; every tutor-search-family query goes through this single builder
// so the gate cannot drift between search, statistics and filter options.
func buildWhere(filter models.TutorSearchFilter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(" WHERE t.is_active = TRUE AND t.verification_status = 'VERIFIED' AND u.is_email_verified = TRUE")
	var args []interface{}

	// Subjects and levels must hold on the same subject row.
	if len(filter.Subjects) > 0 || len(filter.Levels) > 0 {
		b.WriteString(" AND EXISTS (SELECT 1 FROM tutor_subjects s WHERE s.tutor_id = t.id")
		if len(filter.Subjects) > 0 {
			args = append(args, pq.Array(filter.Subjects))
			b.WriteString(fmt.Sprintf(" AND s.subject_name = ANY($%d)", len(args)))
		}
		if len(filter.Levels) > 0 {
			args = append(args, pq.Array(filter.Levels))
			b.WriteString(fmt.Sprintf(" AND s.qualification_level = ANY($%d)", len(args)))
		}
		b.WriteString(")")
	}

	if len(filter.Availability) > 0 {
		args = append(args, pq.Array(filter.Availability))
		b.WriteString(fmt.Sprintf(" AND t.availability && $%d", len(args)))
	}
	if filter.MinRate != nil {
		args = append(args, *filter.MinRate)
		b.WriteString(fmt.Sprintf(" AND t.hourly_rate_min >= $%d", len(args)))
	}
	if filter.MaxRate != nil {
		args = append(args, *filter.MaxRate)
		b.WriteString(fmt.Sprintf(" AND t.hourly_rate_max <= $%d", len(args)))
	}

	if filter.HasKeywords() {
		var clauses []string
		args = append(args, "%"+filter.Keywords+"%")
		whole := len(args)
		clauses = append(clauses, fmt.Sprintf("t.bio ILIKE $%d", whole))
		clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM tutor_qualifications q WHERE q.tutor_id = t.id AND (q.qualification_name ILIKE $%d OR q.institution ILIKE $%d))", whole, whole))
		for _, term := range filter.KeywordTerms {
			args = append(args, "%"+term+"%")
			clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM tutor_subjects s WHERE s.tutor_id = t.id AND s.subject_name ILIKE $%d)", len(args)))
		}
		b.WriteString(" AND (" + strings.Join(clauses, " OR ") + ")")
	}

	return b.String(), args
}

// orderClause maps a requested sort key to its ORDER BY with fixed
// tie-breaks. The relevance key produces a provisional rating order; the
// service re-sorts the fetched page in memory when keywords are present.
func orderClause(sort models.SearchSort) string {
	dir := "DESC"
	if !sort.Descending {
		dir = "ASC"
	}
	switch sort.Key {
	case models.SortByExperience:
		return fmt.Sprintf(" ORDER BY (SELECT COALESCE(MAX(s.years_experience), 0) FROM tutor_subjects s WHERE s.tutor_id = t.id) %s, t.created_at DESC", dir)
	case models.SortByHourlyRateMin:
		return fmt.Sprintf(" ORDER BY t.hourly_rate_min %s, t.created_at DESC", dir)
	case models.SortByHourlyRateMax:
		return fmt.Sprintf(" ORDER BY t.hourly_rate_max %s, t.created_at DESC", dir)
	case models.SortByRating:
		return fmt.Sprintf(" ORDER BY t.rating %s, t.total_students DESC, t.created_at DESC", dir)
	default:
		return " ORDER BY t.rating DESC, t.total_students DESC, t.created_at DESC"
	}
}

// Count returns the number of tutors matching the predicate.
func (r *TutorSearchRepository) Count(ctx context.Context, filter models.TutorSearchFilter) (int, error) {
	where, args := buildWhere(filter)
	query := "SELECT COUNT(*) " + tutorSearchBase + where

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count tutors: %w", err)
	}
	return total, nil
}

type tutorPageRow struct {
	models.Tutor
	OwnerID            string `db:"owner_id"`
	OwnerEmail         string `db:"owner_email"`
	OwnerEmailVerified bool   `db:"owner_email_verified"`
}

// FindPage returns one page of matching tutors with nested subjects and
// VERIFIED qualifications attached.
func (r *TutorSearchRepository) FindPage(ctx context.Context, filter models.TutorSearchFilter, sort models.SearchSort, offset, limit int) ([]models.Tutor, error) {
	where, args := buildWhere(filter)
	query := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d",
		tutorSearchColumns, tutorSearchBase, where, orderClause(sort), limit, offset)

	var rows []tutorPageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find tutor page: %w", err)
	}
	if len(rows) == 0 {
		return []models.Tutor{}, nil
	}

	tutors := make([]models.Tutor, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		tutor := row.Tutor
		tutor.User = models.TutorOwner{
			ID:              row.OwnerID,
			Email:           row.OwnerEmail,
			IsEmailVerified: row.OwnerEmailVerified,
		}
		tutor.Subjects = []models.TutorSubject{}
		tutor.Qualifications = []models.TutorQualification{}
		tutors[i] = tutor
		ids[i] = tutor.ID
	}

	if err := r.attachSubjects(ctx, tutors, ids); err != nil {
		return nil, err
	}
	if err := r.attachQualifications(ctx, tutors, ids); err != nil {
		return nil, err
	}
	return tutors, nil
}

func (r *TutorSearchRepository) attachSubjects(ctx context.Context, tutors []models.Tutor, ids []string) error {
	const query = `SELECT id, tutor_id, subject_name, qualification_level, proficiency_level,
		years_experience, hourly_rate, exam_boards, ib_subject_group, ib_language
		FROM tutor_subjects WHERE tutor_id = ANY($1) ORDER BY subject_name ASC`

	var subjects []models.TutorSubject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load tutor subjects: %w", err)
	}

	byTutor := make(map[string][]models.TutorSubject, len(tutors))
	for _, subject := range subjects {
		byTutor[subject.TutorID] = append(byTutor[subject.TutorID], subject)
	}
	for i := range tutors {
		if list, ok := byTutor[tutors[i].ID]; ok {
			tutors[i].Subjects = list
		}
	}
	return nil
}

func (r *TutorSearchRepository) attachQualifications(ctx context.Context, tutors []models.Tutor, ids []string) error {
	// Only verified credentials surface in search results.
	const query = `SELECT id, tutor_id, qualification_type, qualification_name, institution, verification_status
		FROM tutor_qualifications WHERE tutor_id = ANY($1) AND verification_status = 'VERIFIED'
		ORDER BY qualification_name ASC`

	var quals []models.TutorQualification
	if err := r.db.SelectContext(ctx, &quals, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load tutor qualifications: %w", err)
	}

	byTutor := make(map[string][]models.TutorQualification, len(tutors))
	for _, qual := range quals {
		byTutor[qual.TutorID] = append(byTutor[qual.TutorID], qual)
	}
	for i := range tutors {
		if list, ok := byTutor[tutors[i].ID]; ok {
			tutors[i].Qualifications = list
		}
	}
	return nil
}

// Aggregate computes rating and rate aggregates over the matching set. The
// rate bounds stay nil when no rows match.
func (r *TutorSearchRepository) Aggregate(ctx context.Context, filter models.TutorSearchFilter) (*models.TutorAggregates, error) {
	where, args := buildWhere(filter)
	query := "SELECT AVG(t.rating) AS avg_rating, MIN(t.hourly_rate_min) AS min_rate, MAX(t.hourly_rate_max) AS max_rate " + tutorSearchBase + where

	var agg models.TutorAggregates
	if err := r.db.GetContext(ctx, &agg, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate tutors: %w", err)
	}
	return &agg, nil
}

// AverageExperience returns the mean years_experience across every subject
// row of every matching tutor, 0 when no subject rows exist.
func (r *TutorSearchRepository) AverageExperience(ctx context.Context, filter models.TutorSearchFilter) (float64, error) {
	where, args := buildWhere(filter)
	query := "SELECT COALESCE(AVG(sub.years_experience), 0) FROM tutor_subjects sub WHERE sub.tutor_id IN (SELECT t.id " + tutorSearchBase + where + ")"

	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, args...); err != nil {
		return 0, fmt.Errorf("average experience: %w", err)
	}
	return avg, nil
}

// GroupBySubject counts the matching tutors' subject rows by subject name,
// descending, capped at limit.
func (r *TutorSearchRepository) GroupBySubject(ctx context.Context, filter models.TutorSearchFilter, limit int) ([]models.SubjectCount, error) {
	where, args := buildWhere(filter)
	args = append(args, limit)
	query := fmt.Sprintf("SELECT sub.subject_name AS subject, COUNT(*) AS count FROM tutor_subjects sub WHERE sub.tutor_id IN (SELECT t.id %s%s) GROUP BY sub.subject_name ORDER BY count DESC LIMIT $%d",
		tutorSearchBase, where, len(args))

	var counts []models.SubjectCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("group subjects: %w", err)
	}
	return counts, nil
}

// DistinctSubjects lists subject names offered by eligible tutors.
func (r *TutorSearchRepository) DistinctSubjects(ctx context.Context) ([]string, error) {
	where, args := buildWhere(models.TutorSearchFilter{})
	query := "SELECT DISTINCT sub.subject_name FROM tutor_subjects sub WHERE sub.tutor_id IN (SELECT t.id " + tutorSearchBase + where + ") ORDER BY sub.subject_name ASC"

	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("distinct subjects: %w", err)
	}
	return subjects, nil
}

// DistinctLevels lists qualification levels taught by eligible tutors.
func (r *TutorSearchRepository) DistinctLevels(ctx context.Context) ([]string, error) {
	where, args := buildWhere(models.TutorSearchFilter{})
	query := "SELECT DISTINCT sub.qualification_level FROM tutor_subjects sub WHERE sub.tutor_id IN (SELECT t.id " + tutorSearchBase + where + ") ORDER BY sub.qualification_level ASC"

	var levels []string
	if err := r.db.SelectContext(ctx, &levels, query, args...); err != nil {
		return nil, fmt.Errorf("distinct levels: %w", err)
	}
	return levels, nil
}
