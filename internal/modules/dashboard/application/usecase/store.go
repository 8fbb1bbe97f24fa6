package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketDash/internal/modules/dashboard/application/port"
	"marketDash/internal/modules/dashboard/domain"
)

const (
	defaultErrorStatus  = 400
	defaultErrorMessage = "invalid request"
)

// Option customizes a Store or a Dashboard.
type Option func(*storeOptions)

type storeOptions struct {
	now       func() time.Time
	publisher port.EventPublisher
}

// WithClock overrides the clock used to compute default date windows.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPublisher emits a fetched/failed event after every completed fetch.
func WithPublisher(publisher port.EventPublisher) Option {
	return func(o *storeOptions) {
		o.publisher = publisher
	}
}

func buildOptions(opts []Option) storeOptions {
	options := storeOptions{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// Store owns the fetched records of one resource together with its filter, sort and paging
// state. Every method is safe for concurrent use; failures are recorded in the state instead of
// being returned.
type Store struct {
	resource  domain.Resource
	fetcher   port.RecordFetcher
	publisher port.EventPublisher
	now       func() time.Time

	mu          sync.Mutex
	all         []domain.Record
	filtered    []domain.Record
	criteria    domain.Criteria
	sort        domain.SortSpec
	currentPage int
	totalPages  int
	serverTotal int
	loading     bool
	lastError   string

	generation uint64
	cancel     context.CancelFunc
}

// NewStore builds an empty store using the resource's initial page size and default window.
func NewStore(resource domain.Resource, fetcher port.RecordFetcher, opts ...Option) *Store {
	options := buildOptions(opts)
	limit := resource.InitialLimit
	if limit <= 0 {
		limit = domain.ResetLimit
	}
	return &Store{
		resource:    resource,
		fetcher:     fetcher,
		publisher:   options.publisher,
		now:         options.now,
		all:         []domain.Record{},
		filtered:    []domain.Record{},
		criteria:    resource.DefaultCriteria(options.now(), limit),
		currentPage: 1,
	}
}

// Resource returns the store's configuration.
func (s *Store) Resource() domain.Resource {
	return s.resource
}

// Fetch replaces the cached records with a fresh page 1 fetched through the forwarder and
// re-applies the current filters. Starting a fetch cancels the one in flight; a response that
// resolves after a newer fetch started is discarded.
func (s *Store) Fetch(ctx context.Context) domain.State {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	generation := s.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.lastError = ""
	query := s.criteria.FetchQuery(s.resource.EffectiveFetchLimit())
	s.mu.Unlock()

	slog.Debug("store fetch started", slog.String("resource", s.resource.Name), slog.Uint64("generation", generation), slog.String("dateFrom", query.DateFrom), slog.String("dateTo", query.DateTo), slog.Int("limit", query.Limit))

	page, err := s.fetcher.FetchPage(fetchCtx, s.resource.Path, query)
	cancel()

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		slog.Debug("store fetch discarded stale response", slog.String("resource", s.resource.Name), slog.Uint64("generation", generation))
		return s.State()
	}
	s.cancel = nil
	s.loading = false

	var event *domain.Message
	switch {
	case err != nil && ctx.Err() != nil:
		slog.Info("store fetch abandoned", slog.String("resource", s.resource.Name), slog.Any("error", ctx.Err()))
	case err != nil:
		s.lastError = FormatFetchError(err)
		slog.Warn("store fetch failed", slog.String("resource", s.resource.Name), slog.String("lastError", s.lastError), slog.Any("error", err))
		event = s.eventLocked(domain.ActionFailed, map[string]any{"error": s.lastError})
	default:
		s.all = pageRecords(page)
		s.serverTotal = pageTotal(page)
		s.refilterLocked()
		slog.Info("store fetch completed", slog.String("resource", s.resource.Name), slog.Int("fetched", len(s.all)), slog.Int("serverTotal", s.serverTotal), slog.Int("filtered", len(s.filtered)))
		event = s.eventLocked(domain.ActionFetched, map[string]any{
			"fetched":     len(s.all),
			"serverTotal": s.serverTotal,
			"filtered":    len(s.filtered),
			"totalPages":  s.totalPages,
		})
	}
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(ctx, event)
	return state
}

// Cancel abandons the fetch in flight, if any, leaving the cached records untouched.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandonFetchLocked()
}

func (s *Store) abandonFetchLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.generation++
	s.loading = false
}

// abandonIfWindowChangedLocked drops the fetch in flight when next requests a different upstream
// window or page size than the one it was started with.
func (s *Store) abandonIfWindowChangedLocked(next domain.Criteria) {
	if next.DateFrom == s.criteria.DateFrom && next.DateTo == s.criteria.DateTo && next.Limit == s.criteria.Limit {
		return
	}
	if s.cancel != nil {
		slog.Debug("store fetch superseded by criteria change", slog.String("resource", s.resource.Name), slog.Uint64("generation", s.generation))
	}
	s.abandonFetchLocked()
}

// ApplyFilters merges patch into the criteria, rebuilds the filtered set and returns to page 1.
// Changing the date window or page size discards the fetch in flight.
func (s *Store) ApplyFilters(patch domain.CriteriaPatch) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.criteria.Merge(patch)
	s.abandonIfWindowChangedLocked(merged)
	s.criteria = merged
	s.refilterLocked()
	return s.stateLocked()
}

// ResetFilters restores the default window and page size, re-filters and clears the sort.
func (s *Store) ResetFilters() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	defaults := s.resource.DefaultCriteria(s.now(), domain.ResetLimit)
	s.abandonIfWindowChangedLocked(defaults)
	s.criteria = defaults
	s.refilterLocked()
	s.sort = domain.SortSpec{}
	return s.stateLocked()
}

// Sort orders the filtered records by field before paging. The stored filtered order is kept so
// ClearSort can restore it.
func (s *Store) Sort(field string, direction domain.Direction) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if direction != domain.DirectionDesc {
		direction = domain.DirectionAsc
	}
	s.sort = domain.SortSpec{Field: strings.TrimSpace(field), Direction: direction}
	return s.stateLocked()
}

// ClearSort restores the filtered order.
func (s *Store) ClearSort() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = domain.SortSpec{}
	return s.stateLocked()
}

// NextPage advances one page; it does nothing on the last page.
func (s *Store) NextPage() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage < s.totalPages {
		s.currentPage++
	}
	return s.stateLocked()
}

// PrevPage goes back one page; it does nothing on the first page.
func (s *Store) PrevPage() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage > 1 {
		s.currentPage--
	}
	return s.stateLocked()
}

// VisiblePage returns the sorted slice of the filtered records for the current page.
func (s *Store) VisiblePage() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// State returns a snapshot of the store for rendering.
func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) refilterLocked() {
	s.filtered = domain.FilterRecords(s.resource, s.all, s.criteria)
	s.currentPage = 1
	s.totalPages = domain.TotalPages(len(s.filtered), s.criteria.Limit)
}

func (s *Store) visibleLocked() []domain.Record {
	sorted := domain.SortRecords(s.resource, s.filtered, s.sort)
	return domain.PageSlice(sorted, s.currentPage, s.criteria.Limit)
}

func (s *Store) stateLocked() domain.State {
	return domain.State{
		Resource:      s.resource.Name,
		Records:       s.visibleLocked(),
		FilteredCount: len(s.filtered),
		FetchedCount:  len(s.all),
		ServerTotal:   s.serverTotal,
		CurrentPage:   s.currentPage,
		TotalPages:    s.totalPages,
		Loading:       s.loading,
		LastError:     s.lastError,
		Criteria:      s.criteria.Clone(),
		Sort:          s.sort,
		LimitOptions:  slices.Clone(domain.LimitOptions),
	}
}

func (s *Store) eventLocked(action string, data map[string]any) *domain.Message {
	if s.publisher == nil {
		return nil
	}
	topic := domain.FetchedTopic(s.resource.Name)
	if action == domain.ActionFailed {
		topic = domain.FailedTopic(s.resource.Name)
	}
	return &domain.Message{
		Topic:  topic,
		Entity: s.resource.Name,
		Action: action,
		Metadata: domain.Metadata{
			"dateFrom": s.criteria.DateFrom,
			"dateTo":   s.criteria.DateTo,
			"limit":    strconv.Itoa(s.criteria.Limit),
		},
		Data:      data,
		Timestamp: s.now().UTC(),
	}
}

func (s *Store) publish(ctx context.Context, msg *domain.Message) {
	if msg == nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		slog.Warn("store event publish failed", slog.String("topic", msg.Topic), slog.Any("error", err))
	}
}

func pageRecords(page *domain.Page) []domain.Record {
	if page == nil || page.Data == nil {
		return []domain.Record{}
	}
	return page.Data
}

func pageTotal(page *domain.Page) int {
	if page == nil {
		return 0
	}
	return page.Total
}

// FormatFetchError renders a fetch failure as "Error <status>: <message>". Failures that carry
// no upstream status or message fall back to 400 and "invalid request".
func FormatFetchError(err error) string {
	status := defaultErrorStatus
	message := defaultErrorMessage

	var upstream *port.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Status != 0 {
			status = upstream.Status
		}
		if trimmed := strings.TrimSpace(upstream.Message); trimmed != "" {
			message = trimmed
		}
	}
	return fmt.Sprintf("Error %d: %s", status, message)
}
