package search

import (
	"context"
	"sync"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"go.uber.org/zap"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Searcher is what a session drives; satisfied by aggregate.Aggregator.
type Searcher interface {
	Search(ctx context.Context, filters models.SearchFilters) ([]models.JobPosting, error)
}

// Session owns the filter set, pagination and loading state for one search
// context. Filter edits replace the set wholesale; any change other than the
// page resets the page to 1, and a country change additionally resets the
// category because taxonomies are country-scoped.
//
// Rapid re-triggering is guarded by a generation token: every run stamps the
// current generation and a completion whose stamp is no longer current is
// discarded, so a slow stale response can never overwrite fresher state.
type Session struct {
	searcher Searcher
	logger   *zap.Logger
	pageSize int

	mu         sync.Mutex
	filters    models.SearchFilters
	state      State
	results    []models.JobPosting
	err        error
	hasMore    bool
	generation uint64
}

// Snapshot is an immutable view of session state handed to callers.
type Snapshot struct {
	State        State
	Filters      models.SearchFilters
	Results      []models.JobPosting
	HasMorePages bool
	Err          error
}

func NewSession(searcher Searcher, pageSize int, logger *zap.Logger) *Session {
	return &Session{
		searcher: searcher,
		logger:   logger,
		pageSize: pageSize,
		state:    StateIdle,
		filters:  models.SearchFilters{Page: 1},
	}
}

// SetFilters replaces the filter set and triggers a search, returning the
// settled state.
func (s *Session) SetFilters(ctx context.Context, next models.SearchFilters) Snapshot {
	next.SelectedSources = append([]models.Source(nil), next.SelectedSources...)

	s.mu.Lock()
	prev := s.filters
	if next.Page < 1 {
		next.Page = 1
	}
	if !next.SameQuery(prev) {
		next.Page = 1
	}
	if next.Country != prev.Country {
		next.Category = ""
	}
	s.filters = next
	s.mu.Unlock()

	return s.run(ctx)
}

// SetPage moves to the given 1-based page and triggers a search.
func (s *Session) SetPage(ctx context.Context, page int) Snapshot {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.filters.Page = page
	s.mu.Unlock()

	return s.run(ctx)
}

// Refresh re-runs the current search without changing any filter.
func (s *Session) Refresh(ctx context.Context) Snapshot {
	return s.run(ctx)
}

// Snapshot returns the current state without triggering anything.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) run(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.state = StateLoading
	s.err = nil
	s.generation++
	gen := s.generation
	filters := s.filters
	s.mu.Unlock()

	results, err := s.searcher.Search(ctx, filters)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding stale search completion",
			zap.Uint64("generation", gen),
			zap.Uint64("current", s.generation))
		return s.snapshotLocked()
	}

	if err != nil {
		s.state = StateFailed
		s.err = err
		s.results = nil
		s.hasMore = false
		s.logger.Error("job search failed", zap.Error(err))
		return s.snapshotLocked()
	}

	s.state = StateLoaded
	s.results = results
	// Heuristic: a full page suggests there is more. None of the sources
	// report a uniform total count.
	s.hasMore = len(results) >= s.pageSize
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:        s.state,
		Filters:      s.filters,
		Results:      s.results,
		HasMorePages: s.hasMore,
		Err:          s.err,
	}
}
