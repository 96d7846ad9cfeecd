package httpserver

import (
	"time"

	"github.com/logictrix/resume-screener/internal/domain"
)

type summaryDTO struct {
	Filename       string    `json:"filename"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Qualification  string    `json:"qualification"`
	Experience     string    `json:"experience"`
	Skills         string    `json:"skills"`
	ProfessionalEv string    `json:"professional_evaluation"`
	PersonalEv     string    `json:"personal_evaluation"`
	PrimaryRole    string    `json:"primary_role"`
	TotalYears     float64   `json:"total_experience_years"`
	Categories     []string  `json:"categories"`
	CreatedAt      time.Time `json:"created_at"`
}

type matchDTO struct {
	Filename      string    `json:"filename"`
	Percentage    string    `json:"percentage_match"`
	Justification string    `json:"justification"`
	Lacking       string    `json:"lacking"`
	CreatedAt     time.Time `json:"created_at"`
}

type rowDTO struct {
	Summary summaryDTO `json:"summary"`
	Match   *matchDTO  `json:"match,omitempty"`
}

func toSummaryDTO(rec domain.ResumeSummary) summaryDTO {
	cats := make([]string, 0, len(rec.Categories))
	for _, c := range rec.Categories {
		cats = append(cats, string(c))
	}
	return summaryDTO{
		Filename:       rec.Filename,
		Name:           rec.Name,
		Email:          rec.Email,
		Phone:          rec.Phone,
		Qualification:  rec.Qualification,
		Experience:     rec.Experience,
		Skills:         rec.Skills,
		ProfessionalEv: rec.ProfessionalEv,
		PersonalEv:     rec.PersonalEv,
		PrimaryRole:    rec.PrimaryRole,
		TotalYears:     rec.TotalYears,
		Categories:     cats,
		CreatedAt:      rec.CreatedAt,
	}
}

func toMatchDTO(rec domain.MatchResult) matchDTO {
	return matchDTO{
		Filename:      rec.Filename,
		Percentage:    rec.Percentage,
		Justification: rec.Justification,
		Lacking:       rec.Lacking,
		CreatedAt:     rec.CreatedAt,
	}
}

func toRowDTO(row domain.ScreeningRow) rowDTO {
	out := rowDTO{Summary: toSummaryDTO(row.Summary)}
	if row.Match != nil {
		m := toMatchDTO(*row.Match)
		out.Match = &m
	}
	return out
}
