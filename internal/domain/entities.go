// Package domain holds the core entities and ports of the resume screener.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrInternal          = errors.New("internal error")
)

// Mode selects how a raw model response is interpreted.
type Mode string

const (
	// ModeSummary parses a stand-alone resume summary response.
	ModeSummary Mode = "summary"
	// ModeMatch parses a resume-vs-job-description match response.
	ModeMatch Mode = "match"
)

// Category is one bucket of the fixed job-function taxonomy.
type Category string

const (
	CategoryFrontend      Category = "Frontend"
	CategoryBackend       Category = "Backend"
	CategoryFullStack     Category = "Full Stack"
	CategoryMobile        Category = "Mobile"
	CategoryAIML          Category = "AIML"
	CategoryTesting       Category = "Testing"
	CategoryCloudEngineer Category = "Cloud Engineer"
	CategoryDevOps        Category = "DevOps"
	CategoryHR            Category = "HR"
	CategoryUncategorized Category = "Uncategorized"
)

// ResumeSummary is the typed record produced from one summary response.
// Multi-line fields (Experience) keep their line structure; Skills stays
// comma-delimited as the model emits it.
type ResumeSummary struct {
	Filename       string
	Name           string
	Email          string
	Phone          string
	Qualification  string
	Experience     string
	Skills         string
	ProfessionalEv string
	PersonalEv     string
	PrimaryRole    string
	TotalYears     float64
	Categories     []Category
	CreatedAt      time.Time
}

// Complete reports whether the summary is reusable from cache. A record
// without a primary role must be recomputed (the parse that produced it
// predates role extraction or degraded).
func (s ResumeSummary) Complete() bool {
	return s.PrimaryRole != "" && s.PrimaryRole != "N/A"
}

// MatchResult is the typed record produced from one match response.
// Percentage is textual ("85" or "N/A"); absence means the parse degraded.
type MatchResult struct {
	Filename      string
	Percentage    string
	Justification string
	Lacking       string
	CreatedAt     time.Time
}

// Complete reports whether the match is reusable from cache.
func (m MatchResult) Complete() bool {
	return m.Percentage != "" && m.Percentage != "N/A"
}

// ScreeningRow is one flat exportable row: a summary joined with the most
// recent match for the session's job description, if any.
type ScreeningRow struct {
	Summary ResumeSummary
	Match   *MatchResult
}

// AIClient invokes the hosted language model: text in, text out.
// Failures surface as errors; the caller substitutes a placeholder record.
type AIClient interface {
	Invoke(ctx Context, input, prompt string) (string, error)
}

// TextExtractor extracts plain text from a document at path (PDF, DOCX,
// plain text, image OCR). Failures yield empty text upstream of parsing.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// LanguageDetector reports an ISO 639-1 code for the given text.
type LanguageDetector interface {
	Detect(text string) string
}

// Translator converts text to English ahead of parsing.
type Translator interface {
	Translate(ctx Context, text, fromLang string) (string, error)
}

// ResultCache partitions stored records by opaque session id; within a
// session, summaries key by filename and matches by (filename, jdHash).
// Put overwrites unconditionally; Get returns ErrNotFound on miss. Lock
// serializes concurrent work on one key and returns an unlock func.
type ResultCache interface {
	GetSummary(ctx Context, session, filename string) (ResumeSummary, error)
	PutSummary(ctx Context, session, filename string, rec ResumeSummary) error
	GetMatch(ctx Context, session, filename, jdHash string) (MatchResult, error)
	PutMatch(ctx Context, session, filename, jdHash string, rec MatchResult) error
	Lock(ctx Context, session, key string) (func(), error)
}

// ScreeningRepo archives computed records for listing and CSV export.
type ScreeningRepo interface {
	UpsertSummary(ctx Context, session string, rec ResumeSummary) error
	UpsertMatch(ctx Context, session, jdHash string, rec MatchResult) error
	ListBySession(ctx Context, session string) ([]ScreeningRow, error)
}

// Context aliases context.Context; adapters pass the request context through.
type Context = context.Context
