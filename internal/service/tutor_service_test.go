package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorlink/tutorlink-api/internal/models"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
)

type mockTutorRepo struct {
	tutor       *models.Tutor
	findErr     error
	exists      bool
	existsErr   error
	createErr   error
	updateErr   error
	deactivated bool
	replaced    []models.TutorSubject
	replaceErr  error
}

func (m *mockTutorRepo) FindByID(_ context.Context, _ string) (*models.Tutor, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.tutor, nil
}

func (m *mockTutorRepo) ExistsByUserID(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockTutorRepo) Create(_ context.Context, tutor *models.Tutor) error {
	if m.createErr != nil {
		return m.createErr
	}
	tutor.ID = "new-tutor"
	return nil
}

func (m *mockTutorRepo) Update(_ context.Context, _ *models.Tutor) error {
	return m.updateErr
}

func (m *mockTutorRepo) Deactivate(_ context.Context, _ string) error {
	m.deactivated = true
	return nil
}

func (m *mockTutorRepo) ReplaceSubjects(_ context.Context, _ string, subjects []models.TutorSubject) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = subjects
	return nil
}

func newTestTutorService(repo *mockTutorRepo) *TutorService {
	return NewTutorService(repo, nil, nil, zap.NewNop())
}

func TestTutorServiceCreate(t *testing.T) {
	repo := &mockTutorRepo{}
	svc := newTestTutorService(repo)

	tutor, err := svc.Create(context.Background(), CreateTutorRequest{
		UserID: "user-1",
		Bio:    strPtr("  Friendly maths tutor  "),
	})

	require.NoError(t, err)
	assert.Equal(t, "new-tutor", tutor.ID)
	assert.True(t, tutor.IsActive)
	assert.Equal(t, models.VerificationPending, tutor.VerificationStatus)
	require.NotNil(t, tutor.Bio)
	assert.Equal(t, "Friendly maths tutor", *tutor.Bio)
}

func TestTutorServiceCreateValidation(t *testing.T) {
	svc := newTestTutorService(&mockTutorRepo{})

	_, err := svc.Create(context.Background(), CreateTutorRequest{})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTutorServiceCreateConflict(t *testing.T) {
	svc := newTestTutorService(&mockTutorRepo{exists: true})

	_, err := svc.Create(context.Background(), CreateTutorRequest{UserID: "user-1"})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestTutorServiceGetNotFound(t *testing.T) {
	svc := newTestTutorService(&mockTutorRepo{findErr: sql.ErrNoRows})

	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTutorServiceUpdate(t *testing.T) {
	repo := &mockTutorRepo{tutor: &models.Tutor{ID: "t1", IsActive: true}}
	svc := newTestTutorService(repo)

	inactive := false
	tutor, err := svc.Update(context.Background(), "t1", UpdateTutorRequest{
		Bio:      strPtr("Updated bio"),
		IsActive: &inactive,
	})

	require.NoError(t, err)
	assert.False(t, tutor.IsActive)
	require.NotNil(t, tutor.Bio)
	assert.Equal(t, "Updated bio", *tutor.Bio)
}

func TestTutorServiceDeactivate(t *testing.T) {
	repo := &mockTutorRepo{tutor: &models.Tutor{ID: "t1"}}
	svc := newTestTutorService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), "t1"))
	assert.True(t, repo.deactivated)
}

func TestTutorServiceReplaceSubjects(t *testing.T) {
	repo := &mockTutorRepo{tutor: &models.Tutor{ID: "t1"}}
	svc := newTestTutorService(repo)

	tutor, err := svc.ReplaceSubjects(context.Background(), "t1", ReplaceSubjectsRequest{
		Subjects: []SubjectPayload{
			{
				SubjectName:        " Mathematics ",
				QualificationLevel: "A_LEVEL",
				ProficiencyLevel:   "EXPERT",
				YearsExperience:    6,
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "t1", tutor.ID)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, "Mathematics", repo.replaced[0].SubjectName)
	assert.Equal(t, models.LevelALevel, repo.replaced[0].QualificationLevel)
}

func TestTutorServiceReplaceSubjectsUnknownLevel(t *testing.T) {
	svc := newTestTutorService(&mockTutorRepo{tutor: &models.Tutor{ID: "t1"}})

	_, err := svc.ReplaceSubjects(context.Background(), "t1", ReplaceSubjectsRequest{
		Subjects: []SubjectPayload{
			{
				SubjectName:        "Mathematics",
				QualificationLevel: "PHD_PLUS",
				ProficiencyLevel:   "EXPERT",
			},
		},
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "PHD_PLUS")
}
