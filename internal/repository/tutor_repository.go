package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tutorlink/tutorlink-api/internal/models"
)

// TutorRepository manages persistence for tutor profiles.
type TutorRepository struct {
	db *sqlx.DB
}

// NewTutorRepository constructs a TutorRepository.
func NewTutorRepository(db *sqlx.DB) *TutorRepository {
	return &TutorRepository{db: db}
}

const tutorColumns = `id, user_id, bio, hourly_rate_min, hourly_rate_max, profile_image_url,
	is_active, verification_status, rating, total_students, language_proficiencies, availability,
	created_at, updated_at`

// FindByID fetches a tutor profile with its subjects and qualifications.
// Unlike search results, the profile view includes unverified credentials.
func (r *TutorRepository) FindByID(ctx context.Context, id string) (*models.Tutor, error) {
	query := fmt.Sprintf("SELECT %s FROM tutors WHERE id = $1", tutorColumns)
	var tutor models.Tutor
	if err := r.db.GetContext(ctx, &tutor, query, id); err != nil {
		return nil, err
	}

	const subjectQuery = `SELECT id, tutor_id, subject_name, qualification_level, proficiency_level,
		years_experience, hourly_rate, exam_boards, ib_subject_group, ib_language
		FROM tutor_subjects WHERE tutor_id = $1 ORDER BY subject_name ASC`
	if err := r.db.SelectContext(ctx, &tutor.Subjects, subjectQuery, id); err != nil {
		return nil, fmt.Errorf("load subjects for tutor %s: %w", id, err)
	}

	const qualQuery = `SELECT id, tutor_id, qualification_type, qualification_name, institution, verification_status
		FROM tutor_qualifications WHERE tutor_id = $1 ORDER BY qualification_name ASC`
	if err := r.db.SelectContext(ctx, &tutor.Qualifications, qualQuery, id); err != nil {
		return nil, fmt.Errorf("load qualifications for tutor %s: %w", id, err)
	}

	return &tutor, nil
}

// ExistsByUserID checks whether a user already owns a tutor profile.
func (r *TutorRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM tutors WHERE user_id = $1 LIMIT 1", userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check tutor by user: %w", err)
	}
	return true, nil
}

// Create inserts a new tutor profile.
func (r *TutorRepository) Create(ctx context.Context, tutor *models.Tutor) error {
	if tutor.ID == "" {
		tutor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tutor.CreatedAt.IsZero() {
		tutor.CreatedAt = now
	}
	tutor.UpdatedAt = now
	if tutor.LanguageProficiencies == nil {
		tutor.LanguageProficiencies = pq.StringArray{}
	}
	if tutor.Availability == nil {
		tutor.Availability = pq.StringArray{}
	}

	const query = `INSERT INTO tutors (id, user_id, bio, hourly_rate_min, hourly_rate_max, profile_image_url,
		is_active, verification_status, rating, total_students, language_proficiencies, availability, created_at, updated_at)
		VALUES (:id, :user_id, :bio, :hourly_rate_min, :hourly_rate_max, :profile_image_url,
		:is_active, :verification_status, :rating, :total_students, :language_proficiencies, :availability, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tutor); err != nil {
		return fmt.Errorf("create tutor: %w", err)
	}
	return nil
}

// Update modifies an existing tutor profile.
func (r *TutorRepository) Update(ctx context.Context, tutor *models.Tutor) error {
	tutor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tutors SET bio = :bio, hourly_rate_min = :hourly_rate_min, hourly_rate_max = :hourly_rate_max,
		profile_image_url = :profile_image_url, is_active = :is_active, language_proficiencies = :language_proficiencies,
		availability = :availability, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, tutor); err != nil {
		return fmt.Errorf("update tutor: %w", err)
	}
	return nil
}

// Deactivate clears a tutor's active flag, removing them from search.
func (r *TutorRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE tutors SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate tutor: %w", err)
	}
	return nil
}

// ReplaceSubjects swaps a tutor's subject rows inside one transaction.
func (r *TutorRepository) ReplaceSubjects(ctx context.Context, tutorID string, subjects []models.TutorSubject) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace subjects: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM tutor_subjects WHERE tutor_id = $1", tutorID); err != nil {
		return fmt.Errorf("clear subjects for tutor %s: %w", tutorID, err)
	}

	const insert = `INSERT INTO tutor_subjects (id, tutor_id, subject_name, qualification_level, proficiency_level,
		years_experience, hourly_rate, exam_boards, ib_subject_group, ib_language)
		VALUES (:id, :tutor_id, :subject_name, :qualification_level, :proficiency_level,
		:years_experience, :hourly_rate, :exam_boards, :ib_subject_group, :ib_language)`
	for i := range subjects {
		if subjects[i].ID == "" {
			subjects[i].ID = uuid.NewString()
		}
		subjects[i].TutorID = tutorID
		if subjects[i].ExamBoards == nil {
			subjects[i].ExamBoards = pq.StringArray{}
		}
		if _, err := tx.NamedExecContext(ctx, insert, subjects[i]); err != nil {
			return fmt.Errorf("insert subject for tutor %s: %w", tutorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace subjects: %w", err)
	}
	return nil
}
