package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tutorlink/tutorlink-api/internal/models"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
)

type tutorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, tutor *models.Tutor) error
	Update(ctx context.Context, tutor *models.Tutor) error
	Deactivate(ctx context.Context, id string) error
	ReplaceSubjects(ctx context.Context, tutorID string, subjects []models.TutorSubject) error
}

// CreateTutorRequest represents payload for creating a tutor profile.
type CreateTutorRequest struct {
	UserID                string   `json:"user_id" validate:"required"`
	Bio                   *string  `json:"bio" validate:"omitempty,max=2000"`
	HourlyRateMin         *float64 `json:"hourly_rate_min" validate:"omitempty,gte=0"`
	HourlyRateMax         *float64 `json:"hourly_rate_max" validate:"omitempty,gte=0,gtefield=HourlyRateMin"`
	ProfileImageURL       *string  `json:"profile_image_url" validate:"omitempty,url"`
	LanguageProficiencies []string `json:"language_proficiencies" validate:"omitempty,dive,min=1"`
	Availability          []string `json:"availability" validate:"omitempty,dive,min=1"`
}

// UpdateTutorRequest represents payload for updating a tutor profile.
type UpdateTutorRequest struct {
	Bio                   *string  `json:"bio" validate:"omitempty,max=2000"`
	HourlyRateMin         *float64 `json:"hourly_rate_min" validate:"omitempty,gte=0"`
	HourlyRateMax         *float64 `json:"hourly_rate_max" validate:"omitempty,gte=0"`
	ProfileImageURL       *string  `json:"profile_image_url" validate:"omitempty,url"`
	LanguageProficiencies []string `json:"language_proficiencies" validate:"omitempty,dive,min=1"`
	Availability          []string `json:"availability" validate:"omitempty,dive,min=1"`
	IsActive              *bool    `json:"is_active"`
}

// SubjectPayload describes one subject entry when replacing a tutor's subjects.
type SubjectPayload struct {
	SubjectName        string   `json:"subject_name" validate:"required,max=100"`
	QualificationLevel string   `json:"qualification_level" validate:"required"`
	ProficiencyLevel   string   `json:"proficiency_level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED EXPERT"`
	YearsExperience    int      `json:"years_experience" validate:"gte=0"`
	HourlyRate         *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	ExamBoards         []string `json:"exam_boards"`
	IBSubjectGroup     *string  `json:"ib_subject_group"`
	IBLanguage         *string  `json:"ib_language"`
}

// ReplaceSubjectsRequest carries the full new subject list for a tutor.
type ReplaceSubjectsRequest struct {
	Subjects []SubjectPayload `json:"subjects" validate:"required,min=1,dive"`
}

// TutorService orchestrates tutor profile operations.
type TutorService struct {
	repo      tutorRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTutorService constructs a TutorService.
func NewTutorService(repo tutorRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TutorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns a tutor profile by id.
func (s *TutorService) Get(ctx context.Context, id string) (*models.Tutor, error) {
	tutor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	return tutor, nil
}

// Create registers a new tutor profile. New profiles start unverified and
// therefore invisible to search until reviewed.
func (s *TutorService) Create(ctx context.Context, req CreateTutorRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tutor payload")
	}

	exists, err := s.repo.ExistsByUserID(ctx, req.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check tutor uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already has a tutor profile")
	}

	tutor := &models.Tutor{
		UserID:                strings.TrimSpace(req.UserID),
		Bio:                   normalizeOptional(req.Bio),
		HourlyRateMin:         req.HourlyRateMin,
		HourlyRateMax:         req.HourlyRateMax,
		ProfileImageURL:       normalizeOptional(req.ProfileImageURL),
		IsActive:              true,
		VerificationStatus:    models.VerificationPending,
		LanguageProficiencies: pq.StringArray(req.LanguageProficiencies),
		Availability:          pq.StringArray(req.Availability),
	}
	if err := s.repo.Create(ctx, tutor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tutor")
	}
	s.invalidateSearchCaches(ctx)
	return tutor, nil
}

// Update modifies an existing tutor profile.
func (s *TutorService) Update(ctx context.Context, id string, req UpdateTutorRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tutor payload")
	}

	tutor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tutor.Bio = normalizeOptional(req.Bio)
	tutor.HourlyRateMin = req.HourlyRateMin
	tutor.HourlyRateMax = req.HourlyRateMax
	tutor.ProfileImageURL = normalizeOptional(req.ProfileImageURL)
	if req.LanguageProficiencies != nil {
		tutor.LanguageProficiencies = pq.StringArray(req.LanguageProficiencies)
	}
	if req.Availability != nil {
		tutor.Availability = pq.StringArray(req.Availability)
	}
	if req.IsActive != nil {
		tutor.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, tutor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tutor")
	}
	s.invalidateSearchCaches(ctx)
	return tutor, nil
}

// Deactivate removes a tutor from search without deleting the profile.
func (s *TutorService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate tutor")
	}
	s.invalidateSearchCaches(ctx)
	return nil
}

// ReplaceSubjects swaps a tutor's subject list.
func (s *TutorService) ReplaceSubjects(ctx context.Context, id string, req ReplaceSubjectsRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subjects payload")
	}
	for _, subject := range req.Subjects {
		if !validQualificationLevel(subject.QualificationLevel) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown qualification level "+subject.QualificationLevel)
		}
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	subjects := make([]models.TutorSubject, len(req.Subjects))
	for i, payload := range req.Subjects {
		subjects[i] = models.TutorSubject{
			SubjectName:        strings.TrimSpace(payload.SubjectName),
			QualificationLevel: models.QualificationLevel(payload.QualificationLevel),
			ProficiencyLevel:   models.ProficiencyLevel(payload.ProficiencyLevel),
			YearsExperience:    payload.YearsExperience,
			HourlyRate:         payload.HourlyRate,
			ExamBoards:         pq.StringArray(payload.ExamBoards),
			IBSubjectGroup:     normalizeOptional(payload.IBSubjectGroup),
			IBLanguage:         normalizeOptional(payload.IBLanguage),
		}
	}

	if err := s.repo.ReplaceSubjects(ctx, id, subjects); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace subjects")
	}
	s.invalidateSearchCaches(ctx)
	return s.Get(ctx, id)
}

// invalidateSearchCaches drops cached filter options and statistics after a
// profile write so dropdowns reflect the change before TTL expiry.
func (s *TutorService) invalidateSearchCaches(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "search:*"); err != nil {
		s.logger.Warn("search cache invalidation failed", zap.Error(err))
	}
}

func validQualificationLevel(level string) bool {
	for _, known := range models.QualificationLevels {
		if string(known) == level {
			return true
		}
	}
	return false
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
