package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logictrix/resume-screener/internal/adapter/cache/memory"
	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/internal/screening/experience"
	"github.com/logictrix/resume-screener/internal/screening/extract"
	"github.com/logictrix/resume-screener/internal/screening/phone"
	"github.com/logictrix/resume-screener/internal/screening/taxonomy"
)

const summaryResponse = `**Name:** Jane Doe
**Email:** jane.doe@example.com
**Phone:** 9876543210
**Qualification:** B.Tech Computer Science, IIT Delhi, 2019
**Experience:**
- Backend Developer at Acme Corp (Jan 2020 - Mar 2022)
- Software Engineer at Globex (Apr 2022 - Present)
**Skills:** Python, Django, PostgreSQL, Docker
**Professional Evaluation:** Strong backend engineer with production Django experience.
**Personal Evaluation:** Communicates clearly and mentors juniors.
**Primary Role:** Backend Developer
`

type stubAI struct {
	out   string
	err   error
	calls atomic.Int32
}

func (s *stubAI) Invoke(_ domain.Context, _, _ string) (string, error) {
	s.calls.Add(1)
	return s.out, s.err
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractPath(_ domain.Context, _, _ string) (string, error) {
	return s.text, s.err
}

type stubDetector struct{ code string }

func (s stubDetector) Detect(string) string {
	if s.code == "" {
		return "en"
	}
	return s.code
}

type stubTranslator struct {
	out   string
	calls atomic.Int32
}

func (s *stubTranslator) Translate(_ domain.Context, text, _ string) (string, error) {
	s.calls.Add(1)
	if s.out == "" {
		return text, nil
	}
	return s.out, nil
}

type recordingRepo struct {
	mu        sync.Mutex
	summaries []domain.ResumeSummary
	matches   []domain.MatchResult
	rows      []domain.ScreeningRow
	listErr   error
}

func (r *recordingRepo) UpsertSummary(_ domain.Context, _ string, rec domain.ResumeSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, rec)
	return nil
}

func (r *recordingRepo) UpsertMatch(_ domain.Context, _, _ string, rec domain.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, rec)
	return nil
}

func (r *recordingRepo) ListBySession(_ domain.Context, _ string) ([]domain.ScreeningRow, error) {
	return r.rows, r.listErr
}

func newScreenService(t *testing.T, ai domain.AIClient, ex domain.TextExtractor, det domain.LanguageDetector, tr domain.Translator, repo domain.ScreeningRepo) ScreenService {
	t.Helper()
	ref := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	return NewScreenService(ai, ex, det, tr,
		memory.New(time.Hour, 0), repo,
		extract.MustNew(), phone.Normalizer{}, experience.Calculator{Ref: ref},
		taxonomy.MustNew(), 2)
}

func TestSummarizeBatch_ParsesAndEnriches(t *testing.T) {
	t.Parallel()
	ai := &stubAI{out: summaryResponse}
	repo := &recordingRepo{}
	svc := newScreenService(t, ai, &stubExtractor{text: "resume text"}, stubDetector{}, &stubTranslator{}, repo)

	recs := svc.SummarizeBatch(context.Background(), "s1", []File{{Name: "jane.pdf", Path: "/tmp/jane.pdf"}})
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, "jane.pdf", rec.Filename)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "jane.doe@example.com", rec.Email)
	assert.Equal(t, "+91-9876543210", rec.Phone)
	assert.Equal(t, "Backend Developer", rec.PrimaryRole)
	// Jan 2020..Mar 2022 (27) merged with Apr 2022..Apr 2023 ref (12) = 39 months.
	assert.InDelta(t, 3.25, rec.TotalYears, 0.001)
	assert.Equal(t, []domain.Category{domain.CategoryBackend}, rec.Categories)
	assert.True(t, rec.Complete())

	require.Len(t, repo.summaries, 1)
	assert.Equal(t, "jane.pdf", repo.summaries[0].Filename)
}

func TestSummarizeBatch_PlaceholderOnModelFailure(t *testing.T) {
	t.Parallel()
	ai := &stubAI{err: domain.ErrUpstreamTimeout}
	repo := &recordingRepo{}
	svc := newScreenService(t, ai, &stubExtractor{text: "resume text"}, stubDetector{}, &stubTranslator{}, repo)

	recs := svc.SummarizeBatch(context.Background(), "s1", []File{{Name: "a.pdf"}, {Name: "b.pdf"}})
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "N/A", rec.Name)
		assert.Contains(t, rec.ProfessionalEv, "timed out")
		assert.Equal(t, []domain.Category{domain.CategoryUncategorized}, rec.Categories)
		assert.False(t, rec.Complete())
	}
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, []string{recs[0].Filename, recs[1].Filename})
	assert.Len(t, repo.summaries, 2)
}

func TestSummarizeBatch_PlaceholderOnExtractFailure(t *testing.T) {
	t.Parallel()
	ai := &stubAI{out: summaryResponse}
	svc := newScreenService(t, ai, &stubExtractor{err: assert.AnError}, stubDetector{}, &stubTranslator{}, &recordingRepo{})

	recs := svc.SummarizeBatch(context.Background(), "s1", []File{{Name: "a.pdf"}})
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].ProfessionalEv, "could not extract text")
	assert.Equal(t, int32(0), ai.calls.Load())
}

func TestSummarizeBatch_CompleteCacheHitSkipsModel(t *testing.T) {
	t.Parallel()
	ai := &stubAI{out: summaryResponse}
	svc := newScreenService(t, ai, &stubExtractor{text: "resume text"}, stubDetector{}, &stubTranslator{}, &recordingRepo{})

	cached := domain.ResumeSummary{Filename: "a.pdf", Name: "Cached Name", PrimaryRole: "QA Engineer"}
	require.NoError(t, svc.Cache.PutSummary(context.Background(), "s1", "a.pdf", cached))

	recs := svc.SummarizeBatch(context.Background(), "s1", []File{{Name: "a.pdf"}})
	require.Len(t, recs, 1)
	assert.Equal(t, "Cached Name", recs[0].Name)
	assert.Equal(t, int32(0), ai.calls.Load())
}

func TestSummarizeBatch_IncompleteCachedRecordRecomputes(t *testing.T) {
	t.Parallel()
	ai := &stubAI{out: summaryResponse}
	svc := newScreenService(t, ai, &stubExtractor{text: "resume text"}, stubDetector{}, &stubTranslator{}, &recordingRepo{})

	stale := domain.ResumeSummary{Filename: "a.pdf", Name: "Stale", PrimaryRole: "N/A"}
	require.NoError(t, svc.Cache.PutSummary(context.Background(), "s1", "a.pdf", stale))

	recs := svc.SummarizeBatch(context.Background(), "s1", []File{{Name: "a.pdf"}})
	require.Len(t, recs, 1)
	assert.Equal(t, "Jane Doe", recs[0].Name)
	assert.Equal(t, int32(1), ai.calls.Load())
}

func TestSummarizeBatch_TranslatesNonEnglish(t *testing.T) {
	t.Parallel()
	ai := &stubAI{out: summaryResponse}
	tr := &stubTranslator{out: "translated resume"}
	svc := newScreenService(t, ai, &stubExtractor{text: "texto original"}, stubDetector{code: "es"}, tr, &recordingRepo{})

	recs := svc.SummarizeBatch(context.Background(), "s1", []File{{Name: "a.pdf"}})
	require.Len(t, recs, 1)
	assert.Equal(t, int32(1), tr.calls.Load())
	assert.Equal(t, "Jane Doe", recs[0].Name)
}

func TestJDHash_StableAndTrimmed(t *testing.T) {
	t.Parallel()
	a := JDHash("Senior Go engineer")
	b := JDHash("  Senior Go engineer  ")
	c := JDHash("Junior Go engineer")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}
