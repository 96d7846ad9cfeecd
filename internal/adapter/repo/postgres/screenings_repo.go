package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/logictrix/resume-screener/internal/domain"
)

// ScreeningRepo persists summaries and matches using a minimal pgx pool.
type ScreeningRepo struct{ Pool PgxPool }

// PgxPool is a minimal subset of pgxpool used by the repo for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewScreeningRepo constructs a ScreeningRepo with the given pool.
func NewScreeningRepo(p PgxPool) *ScreeningRepo { return &ScreeningRepo{Pool: p} }

// UpsertSummary stores or replaces the summary for (session, filename).
func (r *ScreeningRepo) UpsertSummary(ctx domain.Context, session string, rec domain.ResumeSummary) error {
	tracer := otel.Tracer("repo.screenings")
	ctx, span := tracer.Start(ctx, "screenings.UpsertSummary")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "resume_summaries"),
	)
	cats := make([]string, 0, len(rec.Categories))
	for _, c := range rec.Categories {
		cats = append(cats, string(c))
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	q := `INSERT INTO resume_summaries
		(session_id, filename, name, email, phone, qualification, experience, skills,
		 professional_ev, personal_ev, primary_role, total_years, categories, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (session_id, filename) DO UPDATE SET
		 name=EXCLUDED.name, email=EXCLUDED.email, phone=EXCLUDED.phone,
		 qualification=EXCLUDED.qualification, experience=EXCLUDED.experience,
		 skills=EXCLUDED.skills, professional_ev=EXCLUDED.professional_ev,
		 personal_ev=EXCLUDED.personal_ev, primary_role=EXCLUDED.primary_role,
		 total_years=EXCLUDED.total_years, categories=EXCLUDED.categories,
		 created_at=EXCLUDED.created_at`
	_, err := r.Pool.Exec(ctx, q, session, rec.Filename, rec.Name, rec.Email, rec.Phone,
		rec.Qualification, rec.Experience, rec.Skills, rec.ProfessionalEv, rec.PersonalEv,
		rec.PrimaryRole, rec.TotalYears, cats, createdAt)
	if err != nil {
		return fmt.Errorf("op=screenings.upsert_summary: %w", err)
	}
	return nil
}

// UpsertMatch stores or replaces the match for (session, filename, jdHash).
func (r *ScreeningRepo) UpsertMatch(ctx domain.Context, session, jdHash string, rec domain.MatchResult) error {
	tracer := otel.Tracer("repo.screenings")
	ctx, span := tracer.Start(ctx, "screenings.UpsertMatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "match_results"),
	)
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	q := `INSERT INTO match_results
		(session_id, filename, jd_hash, percentage, justification, lacking, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (session_id, filename, jd_hash) DO UPDATE SET
		 percentage=EXCLUDED.percentage, justification=EXCLUDED.justification,
		 lacking=EXCLUDED.lacking, created_at=EXCLUDED.created_at`
	_, err := r.Pool.Exec(ctx, q, session, rec.Filename, jdHash,
		rec.Percentage, rec.Justification, rec.Lacking, createdAt)
	if err != nil {
		return fmt.Errorf("op=screenings.upsert_match: %w", err)
	}
	return nil
}

// ListBySession returns all summaries of the session joined with the most
// recent match for each filename, ordered by filename.
func (r *ScreeningRepo) ListBySession(ctx domain.Context, session string) ([]domain.ScreeningRow, error) {
	tracer := otel.Tracer("repo.screenings")
	ctx, span := tracer.Start(ctx, "screenings.ListBySession")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "resume_summaries"),
	)
	q := `SELECT s.filename, s.name, s.email, s.phone, s.qualification, s.experience,
		 s.skills, s.professional_ev, s.personal_ev, s.primary_role, s.total_years,
		 s.categories, s.created_at,
		 m.percentage, m.justification, m.lacking, m.created_at
		FROM resume_summaries s
		LEFT JOIN LATERAL (
		 SELECT percentage, justification, lacking, created_at
		 FROM match_results
		 WHERE session_id = s.session_id AND filename = s.filename
		 ORDER BY created_at DESC
		 LIMIT 1
		) m ON TRUE
		WHERE s.session_id = $1
		ORDER BY s.filename`
	rows, err := r.Pool.Query(ctx, q, session)
	if err != nil {
		return nil, fmt.Errorf("op=screenings.list: %w", err)
	}
	defer rows.Close()

	var out []domain.ScreeningRow
	for rows.Next() {
		var (
			row  domain.ScreeningRow
			cats []string
			pct  *string
			just *string
			lack *string
			mAt  *time.Time
		)
		if err := rows.Scan(&row.Summary.Filename, &row.Summary.Name, &row.Summary.Email,
			&row.Summary.Phone, &row.Summary.Qualification, &row.Summary.Experience,
			&row.Summary.Skills, &row.Summary.ProfessionalEv, &row.Summary.PersonalEv,
			&row.Summary.PrimaryRole, &row.Summary.TotalYears, &cats, &row.Summary.CreatedAt,
			&pct, &just, &lack, &mAt); err != nil {
			return nil, fmt.Errorf("op=screenings.list scan: %w", err)
		}
		for _, c := range cats {
			row.Summary.Categories = append(row.Summary.Categories, domain.Category(c))
		}
		if pct != nil {
			row.Match = &domain.MatchResult{
				Filename:      row.Summary.Filename,
				Percentage:    *pct,
				Justification: deref(just),
				Lacking:       deref(lack),
			}
			if mAt != nil {
				row.Match.CreatedAt = *mAt
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=screenings.list rows: %w", err)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
