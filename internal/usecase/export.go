package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logictrix/resume-screener/internal/domain"
)

// ExportService lists archived screening rows and renders them as CSV.
type ExportService struct {
	Repo domain.ScreeningRepo
}

// NewExportService constructs an ExportService over the archive.
func NewExportService(repo domain.ScreeningRepo) ExportService {
	return ExportService{Repo: repo}
}

// List returns the session's records, summaries joined with their most
// recent match.
func (s ExportService) List(ctx domain.Context, session string) ([]domain.ScreeningRow, error) {
	rows, err := s.Repo.ListBySession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("op=export.List: %w", err)
	}
	return rows, nil
}

var csvHeader = []string{
	"Filename", "Name", "Email", "Phone", "Qualification", "Experience",
	"Skills", "Professional Evaluation", "Personal Evaluation", "Primary Role",
	"Total Experience (Years)", "Categories",
	"Percentage Match", "Justification", "Lacking",
}

// WriteCSV streams the session's rows as CSV. Categories join with ";"
// and multi-line fields flatten to " | " separated text.
func (s ExportService) WriteCSV(ctx domain.Context, session string, w io.Writer) error {
	rows, err := s.List(ctx, session)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("op=export.WriteCSV header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("op=export.WriteCSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("op=export.WriteCSV flush: %w", err)
	}
	return nil
}

func csvRecord(row domain.ScreeningRow) []string {
	sum := row.Summary
	cats := make([]string, 0, len(sum.Categories))
	for _, c := range sum.Categories {
		cats = append(cats, string(c))
	}
	rec := []string{
		sum.Filename,
		sum.Name,
		sum.Email,
		sum.Phone,
		sum.Qualification,
		flatten(sum.Experience),
		flatten(sum.Skills),
		flatten(sum.ProfessionalEv),
		flatten(sum.PersonalEv),
		sum.PrimaryRole,
		strconv.FormatFloat(sum.TotalYears, 'f', -1, 64),
		strings.Join(cats, ";"),
	}
	if row.Match != nil {
		rec = append(rec, row.Match.Percentage, flatten(row.Match.Justification), flatten(row.Match.Lacking))
	} else {
		rec = append(rec, "", "", "")
	}
	return rec
}

// flatten joins the lines of a multi-line field with " | " so each CSV
// cell stays single-line.
func flatten(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		out = append(out, ln)
	}
	return strings.Join(out, " | ")
}
