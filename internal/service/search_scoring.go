package service

import (
	"math"
	"strings"

	"github.com/tutorlink/tutorlink-api/internal/models"
)

// Keyword match weights and bonus caps for relevance scoring.
const (
	bioMatchWeight         = 10.0
	subjectMatchWeight     = 8.0
	subjectExactBonus      = 5.0
	qualificationWeight    = 5.0
	institutionWeight      = 3.0
	experienceBonusPerYear = 0.5
	experienceBonusCap     = 5.0
	ratingBonusFactor      = 2.0
)

// relevanceScore computes the ranking signal for one tutor against the
// whitespace-split keyword terms. Matching is case-insensitive substring
// matching; the exact-equality subject bonus stacks on top of the substring
// weight. The experience and rating bonuses are applied even when no term
// matches any field.
func relevanceScore(tutor *models.Tutor, terms []string) float64 {
	score := 0.0

	var bio string
	if tutor.Bio != nil {
		bio = strings.ToLower(*tutor.Bio)
	}

	for _, term := range terms {
		term = strings.ToLower(term)

		if bio != "" && strings.Contains(bio, term) {
			score += bioMatchWeight
		}

		for _, subject := range tutor.Subjects {
			name := strings.ToLower(subject.SubjectName)
			if strings.Contains(name, term) {
				score += subjectMatchWeight
			}
			if name == term {
				score += subjectExactBonus
			}
		}

		for _, qual := range tutor.Qualifications {
			if strings.Contains(strings.ToLower(qual.QualificationName), term) {
				score += qualificationWeight
			}
			if strings.Contains(strings.ToLower(qual.Institution), term) {
				score += institutionWeight
			}
		}
	}

	experienceBonus := float64(tutor.MaxYearsExperience()) * experienceBonusPerYear
	if experienceBonus > experienceBonusCap {
		experienceBonus = experienceBonusCap
	}
	score += experienceBonus
	score += tutor.Rating * ratingBonusFactor

	return roundTwoDecimals(score)
}

func roundTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
