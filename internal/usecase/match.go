package usecase

import (
	"errors"
	"log/slog"
	"time"

	"github.com/logictrix/resume-screener/internal/adapter/observability"
	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/pkg/textx"
)

// MatchService scores resumes against a job description. It shares the
// screening collaborators and adds match caching keyed by the job
// description hash.
type MatchService struct {
	ScreenService
}

// NewMatchService wires a MatchService over an existing ScreenService.
func NewMatchService(s ScreenService) MatchService { return MatchService{ScreenService: s} }

// MatchBatch scores every file against jd and returns exactly one result
// per file, in input order. Failures degrade to placeholder records.
func (s MatchService) MatchBatch(ctx domain.Context, session, jd string, files []File) []domain.MatchResult {
	jdHash := JDHash(jd)
	out := make([]domain.MatchResult, len(files))
	s.fanOut(len(files), func(i int) {
		out[i] = s.matchOne(ctx, session, jd, jdHash, files[i])
	})
	return out
}

func (s MatchService) matchOne(ctx domain.Context, session, jd, jdHash string, f File) domain.MatchResult {
	unlock, err := s.Cache.Lock(ctx, session, f.Name+"|"+jdHash)
	if err != nil {
		return s.matchPlaceholder(f.Name, "processing interrupted: "+err.Error())
	}
	defer unlock()

	if cached, err := s.Cache.GetMatch(ctx, session, f.Name, jdHash); err == nil && cached.Complete() {
		observability.RecordCacheLookup("match", true)
		return cached
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("match cache lookup failed", slog.String("filename", f.Name), slog.Any("error", err))
	}
	observability.RecordCacheLookup("match", false)

	text, err := s.extractText(ctx, f)
	if err != nil {
		slog.Error("text extraction failed", slog.String("filename", f.Name), slog.Any("error", err))
		rec := s.matchPlaceholder(f.Name, "could not extract text from document")
		s.storeMatch(ctx, session, jdHash, rec)
		return rec
	}

	raw, err := s.AI.Invoke(ctx, text, matchPrompt+jd)
	if err != nil {
		slog.Error("match invocation failed", slog.String("filename", f.Name), slog.Any("error", err))
		observability.ScreeningsTotal.WithLabelValues("match", "placeholder").Inc()
		rec := s.matchPlaceholder(f.Name, failureMessage(err))
		s.storeMatch(ctx, session, jdHash, rec)
		return rec
	}

	fields := s.Parser.Parse(raw, domain.ModeMatch)
	rec := domain.MatchResult{
		Filename:      f.Name,
		Percentage:    fields["percentage_match"],
		Justification: fields["justification"],
		Lacking:       fields["lacking"],
		CreatedAt:     time.Now().UTC(),
	}
	observability.ScreeningsTotal.WithLabelValues("match", "ok").Inc()
	observability.ObserveScreening(parsePercent(rec.Percentage), -1)
	s.storeMatch(ctx, session, jdHash, rec)
	s.reclassify(ctx, session, rec)
	return rec
}

// reclassify upgrades an uncategorized summary when the match
// justification names a recognizable specialty. It takes the summary
// key lock so a concurrent summarize for the same file cannot be
// clobbered; lock order is safe because the summarize path never
// acquires a match key.
func (s MatchService) reclassify(ctx domain.Context, session string, m domain.MatchResult) {
	unlock, err := s.Cache.Lock(ctx, session, m.Filename)
	if err != nil {
		return
	}
	defer unlock()

	sum, err := s.Cache.GetSummary(ctx, session, m.Filename)
	if err != nil {
		return
	}
	if !s.Taxonomy.Reclassify(&sum, m) {
		return
	}
	s.storeSummary(ctx, session, sum)
}

func (s MatchService) matchPlaceholder(filename, msg string) domain.MatchResult {
	return domain.MatchResult{
		Filename:      filename,
		Percentage:    textx.NotAvailable,
		Justification: msg,
		CreatedAt:     time.Now().UTC(),
	}
}

func (s MatchService) storeMatch(ctx domain.Context, session, jdHash string, rec domain.MatchResult) {
	if err := s.Cache.PutMatch(ctx, session, rec.Filename, jdHash, rec); err != nil {
		slog.Warn("match cache store failed", slog.String("filename", rec.Filename), slog.Any("error", err))
	}
	if s.Repo != nil {
		if err := s.Repo.UpsertMatch(ctx, session, jdHash, rec); err != nil {
			slog.Warn("match archive failed", slog.String("filename", rec.Filename), slog.Any("error", err))
		}
	}
}
