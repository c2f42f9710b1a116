package models

import (
	"time"

	"github.com/lib/pq"
)

// VerificationStatus represents the review state of a tutor or qualification.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// ProficiencyLevel grades how strong a tutor is in a subject.
type ProficiencyLevel string

const (
	ProficiencyBeginner     ProficiencyLevel = "BEGINNER"
	ProficiencyIntermediate ProficiencyLevel = "INTERMEDIATE"
	ProficiencyAdvanced     ProficiencyLevel = "ADVANCED"
	ProficiencyExpert       ProficiencyLevel = "EXPERT"
)

// QualificationLevel enumerates the academic stages a subject can be taught
// at, spanning the UK, IB and BTEC systems.
type QualificationLevel string

const (
	LevelKS1                     QualificationLevel = "KS1"
	LevelKS2                     QualificationLevel = "KS2"
	LevelKS3                     QualificationLevel = "KS3"
	LevelGCSE                    QualificationLevel = "GCSE"
	LevelIGCSE                   QualificationLevel = "IGCSE"
	LevelASLevel                 QualificationLevel = "AS_LEVEL"
	LevelALevel                  QualificationLevel = "A_LEVEL"
	LevelBTECLevel1              QualificationLevel = "BTEC_LEVEL_1"
	LevelBTECLevel2              QualificationLevel = "BTEC_LEVEL_2"
	LevelBTECLevel3              QualificationLevel = "BTEC_LEVEL_3"
	LevelIBMYP                   QualificationLevel = "IB_MYP"
	LevelIBDPSL                  QualificationLevel = "IB_DP_SL"
	LevelIBDPHL                  QualificationLevel = "IB_DP_HL"
	LevelIBCP                    QualificationLevel = "IB_CP"
	LevelScottishNational5       QualificationLevel = "SCOTTISH_NATIONAL_5"
	LevelScottishHigher          QualificationLevel = "SCOTTISH_HIGHER"
	LevelScottishAdvancedHigher  QualificationLevel = "SCOTTISH_ADVANCED_HIGHER"
	LevelUndergraduate           QualificationLevel = "UNDERGRADUATE"
	LevelPostgraduate            QualificationLevel = "POSTGRADUATE"
	LevelAdultLearning           QualificationLevel = "ADULT_LEARNING"
)

// QualificationLevels lists every supported level in declaration order.
var QualificationLevels = []QualificationLevel{
	LevelKS1, LevelKS2, LevelKS3, LevelGCSE, LevelIGCSE,
	LevelASLevel, LevelALevel,
	LevelBTECLevel1, LevelBTECLevel2, LevelBTECLevel3,
	LevelIBMYP, LevelIBDPSL, LevelIBDPHL, LevelIBCP,
	LevelScottishNational5, LevelScottishHigher, LevelScottishAdvancedHigher,
	LevelUndergraduate, LevelPostgraduate, LevelAdultLearning,
}

// Tutor represents a tutor profile row with its nested associations.
type Tutor struct {
	ID                    string               `db:"id" json:"id"`
	UserID                string               `db:"user_id" json:"user_id"`
	Bio                   *string              `db:"bio" json:"bio,omitempty"`
	HourlyRateMin         *float64             `db:"hourly_rate_min" json:"hourly_rate_min,omitempty"`
	HourlyRateMax         *float64             `db:"hourly_rate_max" json:"hourly_rate_max,omitempty"`
	ProfileImageURL       *string              `db:"profile_image_url" json:"profile_image_url,omitempty"`
	IsActive              bool                 `db:"is_active" json:"is_active"`
	VerificationStatus    VerificationStatus   `db:"verification_status" json:"verification_status"`
	Rating                float64              `db:"rating" json:"rating"`
	TotalStudents         int                  `db:"total_students" json:"total_students"`
	LanguageProficiencies pq.StringArray       `db:"language_proficiencies" json:"language_proficiencies"`
	Availability          pq.StringArray       `db:"availability" json:"availability"`
	CreatedAt             time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time            `db:"updated_at" json:"updated_at"`
	User                  TutorOwner           `db:"-" json:"user"`
	Subjects              []TutorSubject       `db:"-" json:"subjects"`
	Qualifications        []TutorQualification `db:"-" json:"qualifications"`
}

// TutorOwner is the slice of the owning user surfaced alongside a tutor.
type TutorOwner struct {
	ID              string `db:"id" json:"id"`
	Email           string `db:"email" json:"email"`
	IsEmailVerified bool   `db:"is_email_verified" json:"is_email_verified"`
}

// TutorSubject represents one subject a tutor teaches at a given level.
type TutorSubject struct {
	ID                 string             `db:"id" json:"id"`
	TutorID            string             `db:"tutor_id" json:"-"`
	SubjectName        string             `db:"subject_name" json:"subject_name"`
	QualificationLevel QualificationLevel `db:"qualification_level" json:"qualification_level"`
	ProficiencyLevel   ProficiencyLevel   `db:"proficiency_level" json:"proficiency_level"`
	YearsExperience    int                `db:"years_experience" json:"years_experience"`
	HourlyRate         *float64           `db:"hourly_rate" json:"hourly_rate,omitempty"`
	ExamBoards         pq.StringArray     `db:"exam_boards" json:"exam_boards"`
	IBSubjectGroup     *string            `db:"ib_subject_group" json:"ib_subject_group,omitempty"`
	IBLanguage         *string            `db:"ib_language" json:"ib_language,omitempty"`
}

// TutorQualification represents an academic credential held by a tutor.
type TutorQualification struct {
	ID                 string             `db:"id" json:"id"`
	TutorID            string             `db:"tutor_id" json:"-"`
	QualificationType  string             `db:"qualification_type" json:"qualification_type"`
	QualificationName  string             `db:"qualification_name" json:"qualification_name"`
	Institution        string             `db:"institution" json:"institution"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
}

// MaxYearsExperience returns the highest years_experience across the tutor's
// subjects, 0 when the tutor has none.
func (t *Tutor) MaxYearsExperience() int {
	max := 0
	for _, subject := range t.Subjects {
		if subject.YearsExperience > max {
			max = subject.YearsExperience
		}
	}
	return max
}
