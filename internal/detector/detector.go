// Package detector owns one boycott-checking session: the canonical list fetched
// at startup, the personal list store and the product scraper.
package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/boycott-detector/internal/models"
	"github.com/maltedev/boycott-detector/internal/personal"
	"github.com/maltedev/boycott-detector/internal/scraper"
	"github.com/maltedev/boycott-detector/internal/verdict"
)

var (
	ErrCheckInProgress = errors.New("a check is already in progress")
	ErrEmptyName       = errors.New("company name is empty")

	// ErrUnknownManufacturer rejects the placeholder used when a page has no manufacturer.
	ErrUnknownManufacturer = errors.New("manufacturer is unknown")
)

// ListFetcher returns the canonical boycott list, or nil when it could not be fetched.
type ListFetcher interface {
	FetchOrNil(ctx context.Context) []string
}

type Deps struct {
	Lists        ListFetcher
	Scraper      scraper.Scraper
	PersonalPath string
	Logger       *slog.Logger
}

type Result struct {
	ID        uuid.UUID             `json:"id"`
	Record    *models.ProductRecord `json:"product"`
	Verdict   models.Verdict        `json:"verdict"`
	CheckedAt time.Time             `json:"checked_at"`
	Duration  time.Duration         `json:"duration"`
}

func (r *Result) Text() string {
	return r.Verdict.Text()
}

type Session struct {
	canonical []string
	personal  *personal.Store
	scraper   scraper.Scraper
	logger    *slog.Logger

	busy atomic.Bool
}

// New fetches the canonical list and opens the personal list. Neither failure is
// fatal: a failed fetch leaves the canonical list nil and a failed load keeps the
// names read so far but disables saving for the session.
func New(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Scraper == nil {
		return nil, fmt.Errorf("detector: scraper is required")
	}
	if deps.PersonalPath == "" {
		return nil, fmt.Errorf("detector: personal list path is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "detector")

	var canonical []string
	if deps.Lists != nil {
		canonical = deps.Lists.FetchOrNil(ctx)
	}
	if canonical == nil {
		logger.Warn("canonical boycott list unavailable, only the personal list will match")
	} else {
		logger.Info("loaded canonical boycott list", "count", len(canonical))
	}

	store, err := personal.Open(deps.PersonalPath)
	if err != nil {
		logger.Error("failed to load personal boycott list, it will not be saved this session",
			"path", deps.PersonalPath, "loaded", store.List().Len(), "error", err)
	} else {
		logger.Info("loaded personal boycott list", "path", store.Path(), "count", store.List().Len())
	}

	return &Session{
		canonical: canonical,
		personal:  store,
		scraper:   deps.Scraper,
		logger:    logger,
	}, nil
}

// Check scrapes url and evaluates it against both lists. Only one check runs at a
// time; a concurrent call returns ErrCheckInProgress without doing any work.
func (s *Session) Check(ctx context.Context, url string) (*Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckInProgress
	}
	defer s.busy.Store(false)

	id := uuid.New()
	logger := s.logger.With("check_id", id.String())
	start := time.Now()

	record, err := s.scraper.ScrapeProduct(ctx, url)
	if err != nil {
		logger.Error("check failed", "url", url, "error", err, "duration", time.Since(start))
		return nil, err
	}

	v := verdict.Evaluate(record, s.canonical, s.personal)

	logger.Info("check completed",
		"url", record.URL,
		"manufacturer", record.Manufacturer,
		"boycotted", v.IsBoycotted,
		"source", v.Source,
		"duration", time.Since(start),
	)

	return &Result{
		ID:        id,
		Record:    record,
		Verdict:   v,
		CheckedAt: start,
		Duration:  time.Since(start),
	}, nil
}

// Busy reports whether a check is running.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// AddToPersonal adds the record's manufacturer to the personal list.
func (s *Session) AddToPersonal(record *models.ProductRecord) (bool, error) {
	if record == nil {
		return false, ErrEmptyName
	}
	return s.AddName(record.Manufacturer)
}

// AddName adds name to the personal list and saves it. added is false when the
// name was already there.
func (s *Session) AddName(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}
	if name == models.Unknown {
		return false, ErrUnknownManufacturer
	}

	added, err := s.personal.Add(name)
	if err != nil {
		s.logger.Error("failed to save personal boycott list", "path", s.personal.Path(), "error", err)
		return false, err
	}

	s.logger.Info("personal boycott list updated", "name", name, "added", added)
	return added, nil
}

// CanonicalList returns a copy of the canonical list; nil when the fetch failed.
func (s *Session) CanonicalList() []string {
	if s.canonical == nil {
		return nil
	}
	out := make([]string, len(s.canonical))
	copy(out, s.canonical)
	return out
}

func (s *Session) PersonalNames() []string {
	return s.personal.List().Names()
}

func (s *Session) PersonalPath() string {
	return s.personal.Path()
}

// PersonalWritable is false when the personal list failed to load at startup.
func (s *Session) PersonalWritable() bool {
	return s.personal.Writable()
}
