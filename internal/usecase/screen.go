// Package usecase orchestrates screening flows over the domain ports.
package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/logictrix/resume-screener/internal/adapter/observability"
	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/internal/screening/experience"
	"github.com/logictrix/resume-screener/internal/screening/extract"
	"github.com/logictrix/resume-screener/internal/screening/phone"
	"github.com/logictrix/resume-screener/internal/screening/taxonomy"
	"github.com/logictrix/resume-screener/pkg/textx"
)

// File is one uploaded document handed to the screening flow.
type File struct {
	Name string
	Path string
}

// ScreenService runs the summarize flow for a batch of resumes.
type ScreenService struct {
	AI          domain.AIClient
	Extractor   domain.TextExtractor
	Detector    domain.LanguageDetector
	Translator  domain.Translator
	Cache       domain.ResultCache
	Repo        domain.ScreeningRepo
	Parser      *extract.Extractor
	Phones      phone.Normalizer
	Tenure      experience.Calculator
	Taxonomy    *taxonomy.Classifier
	Concurrency int
}

// NewScreenService wires a ScreenService with its collaborators.
func NewScreenService(ai domain.AIClient, ex domain.TextExtractor, det domain.LanguageDetector,
	tr domain.Translator, cache domain.ResultCache, repo domain.ScreeningRepo,
	parser *extract.Extractor, phones phone.Normalizer, tenure experience.Calculator,
	tax *taxonomy.Classifier, concurrency int) ScreenService {
	return ScreenService{
		AI: ai, Extractor: ex, Detector: det, Translator: tr,
		Cache: cache, Repo: repo, Parser: parser, Phones: phones,
		Tenure: tenure, Taxonomy: tax, Concurrency: concurrency,
	}
}

// SummarizeBatch screens every file and returns exactly one record per
// file, in input order. A failure on one file yields its placeholder
// record and never fails the batch.
func (s ScreenService) SummarizeBatch(ctx domain.Context, session string, files []File) []domain.ResumeSummary {
	out := make([]domain.ResumeSummary, len(files))
	s.fanOut(len(files), func(i int) {
		out[i] = s.summarizeOne(ctx, session, files[i])
	})
	return out
}

// fanOut runs fn for every index through a bounded worker pool.
func (s ScreenService) fanOut(n int, fn func(i int)) {
	workers := s.Concurrency
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

func (s ScreenService) summarizeOne(ctx domain.Context, session string, f File) domain.ResumeSummary {
	unlock, err := s.Cache.Lock(ctx, session, f.Name)
	if err != nil {
		return s.summaryPlaceholder(f.Name, "processing interrupted: "+err.Error())
	}
	defer unlock()

	if cached, err := s.Cache.GetSummary(ctx, session, f.Name); err == nil && cached.Complete() {
		observability.RecordCacheLookup("summary", true)
		return cached
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("summary cache lookup failed", slog.String("filename", f.Name), slog.Any("error", err))
	}
	observability.RecordCacheLookup("summary", false)

	text, err := s.extractText(ctx, f)
	if err != nil {
		slog.Error("text extraction failed", slog.String("filename", f.Name), slog.Any("error", err))
		rec := s.summaryPlaceholder(f.Name, "could not extract text from document")
		s.storeSummary(ctx, session, rec)
		return rec
	}

	raw, err := s.AI.Invoke(ctx, text, summaryPrompt)
	if err != nil {
		slog.Error("summary invocation failed", slog.String("filename", f.Name), slog.Any("error", err))
		observability.ScreeningsTotal.WithLabelValues("summary", "placeholder").Inc()
		rec := s.summaryPlaceholder(f.Name, failureMessage(err))
		s.storeSummary(ctx, session, rec)
		return rec
	}

	rec := s.buildSummary(f.Name, raw)
	observability.ScreeningsTotal.WithLabelValues("summary", "ok").Inc()
	observability.ObserveScreening(-1, rec.TotalYears)
	s.storeSummary(ctx, session, rec)
	return rec
}

// extractText pulls plain text from the document and translates it to
// English when the detector reports another language.
func (s ScreenService) extractText(ctx domain.Context, f File) (string, error) {
	text, err := s.Extractor.ExtractPath(ctx, f.Name, f.Path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrInvalidArgument
	}
	if code := s.Detector.Detect(text); code != "en" {
		translated, terr := s.Translator.Translate(ctx, text, code)
		if terr != nil {
			slog.Warn("translation failed, parsing original text", slog.String("filename", f.Name), slog.String("lang", code), slog.Any("error", terr))
			return text, nil
		}
		return translated, nil
	}
	return text, nil
}

// buildSummary parses the raw model response and enriches the record
// with the normalized phone, aggregated tenure, and categories.
func (s ScreenService) buildSummary(filename, raw string) domain.ResumeSummary {
	fields := s.Parser.Parse(raw, domain.ModeSummary)
	rec := domain.ResumeSummary{
		Filename:       filename,
		Name:           fields["name"],
		Email:          fields["email"],
		Phone:          s.Phones.Standardize(fields["phone"]),
		Qualification:  fields["qualification"],
		Experience:     fields["experience"],
		Skills:         fields["skills"],
		ProfessionalEv: fields["professional_evaluation"],
		PersonalEv:     fields["personal_evaluation"],
		PrimaryRole:    fields["primary_role"],
		CreatedAt:      time.Now().UTC(),
	}
	rec.TotalYears = s.Tenure.TotalYears(rec.Experience)
	rec.Categories = s.Taxonomy.Categorize(rec.PrimaryRole, rec.Skills)
	return rec
}

func (s ScreenService) summaryPlaceholder(filename, msg string) domain.ResumeSummary {
	return domain.ResumeSummary{
		Filename:       filename,
		Name:           textx.NotAvailable,
		Email:          textx.NotAvailable,
		Phone:          textx.NotAvailable,
		Qualification:  textx.NotAvailable,
		Skills:         textx.NotAvailable,
		ProfessionalEv: msg,
		PersonalEv:     textx.NotAvailable,
		PrimaryRole:    textx.NotAvailable,
		Categories:     []domain.Category{domain.CategoryUncategorized},
		CreatedAt:      time.Now().UTC(),
	}
}

func (s ScreenService) storeSummary(ctx domain.Context, session string, rec domain.ResumeSummary) {
	if err := s.Cache.PutSummary(ctx, session, rec.Filename, rec); err != nil {
		slog.Warn("summary cache store failed", slog.String("filename", rec.Filename), slog.Any("error", err))
	}
	if s.Repo != nil {
		if err := s.Repo.UpsertSummary(ctx, session, rec); err != nil {
			slog.Warn("summary archive failed", slog.String("filename", rec.Filename), slog.Any("error", err))
		}
	}
}

// failureMessage maps upstream errors to the human-readable text placed
// in the record's evaluation slot.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return "model provider rate limited the request; please retry shortly"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return "model provider timed out; please retry"
	default:
		return "model invocation failed: " + err.Error()
	}
}

// JDHash derives the cache partition key for a job description.
func JDHash(jd string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(jd)))
	return hex.EncodeToString(h[:16])
}

// parsePercent returns the numeric value of a percentage field, or -1
// when textual ("N/A").
func parsePercent(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return -1
	}
	return v
}
