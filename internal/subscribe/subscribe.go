// Package subscribe keeps ICS subscriptions imported into the store on a
// cron schedule.
package subscribe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bssong66/PerformanceTracker-sub000/internal/ics"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// Fetcher downloads one feed.
type Fetcher interface {
	FetchOne(ctx context.Context, src ics.Source) (ics.FetchResult, error)
}

// Importer replaces every event tagged with a source.
type Importer interface {
	ReplaceSource(ctx context.Context, source string, events []model.SourceEvent) (int, error)
}

// Report is the outcome of syncing one subscription.
type Report struct {
	Source       string    `json:"source"`
	Events       int       `json:"events"`
	Materialized int       `json:"materialized"`
	Truncated    int       `json:"truncated"`
	FromCache    bool      `json:"from_cache"`
	At           time.Time `json:"at"`
	Err          error     `json:"-"`
}

type Options struct {
	Location *time.Location
	// Lookback and Horizon bound the window non-native recurrences are
	// materialized in, relative to the current month.
	Lookback time.Duration
	Horizon  time.Duration
	// OnSync is called after every SyncAll with its reports.
	OnSync func([]Report)
	Now    func() time.Time
}

type Syncer struct {
	fetcher Fetcher
	store   Importer
	sources []ics.Source
	opts    Options

	// running serializes syncs; a cron tick that fires during a manual
	// sync waits for it.
	running sync.Mutex

	mu   sync.Mutex
	last []Report
}

func New(f Fetcher, st Importer, sources []ics.Source, opts Options) *Syncer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 31 * 24 * time.Hour
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 365 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Syncer{fetcher: f, store: st, sources: sources, opts: opts}
}

// SyncAll imports every subscription. A failing feed leaves its previously
// imported events untouched.
func (s *Syncer) SyncAll(ctx context.Context) []Report {
	s.running.Lock()
	defer s.running.Unlock()

	reports := make([]Report, 0, len(s.sources))
	for _, src := range s.sources {
		if ctx.Err() != nil {
			break
		}
		reports = append(reports, s.syncOne(ctx, src))
	}

	s.mu.Lock()
	s.last = reports
	s.mu.Unlock()
	if s.opts.OnSync != nil {
		s.opts.OnSync(reports)
	}
	return reports
}

// Last returns the reports of the most recent SyncAll.
func (s *Syncer) Last() []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Report(nil), s.last...)
}

func (s *Syncer) syncOne(ctx context.Context, src ics.Source) Report {
	r := Report{Source: src.ID, At: s.opts.Now()}

	fetched, err := s.fetcher.FetchOne(ctx, src)
	if err != nil {
		r.Err = fmt.Errorf("fetch: %w", err)
		appLog.Error("subscription fetch failed", err, "id", src.ID)
		return r
	}
	r.FromCache = fetched.FromCache

	parsed, err := ics.ParseICS(src, fetched.Body, s.opts.Location)
	if err != nil {
		r.Err = fmt.Errorf("parse: %w", err)
		return r
	}

	now := s.opts.Now().In(s.opts.Location)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.opts.Location)
	res, err := ics.ToSourceEvents(src, parsed, ics.ImportConfig{
		Location:   s.opts.Location,
		RangeStart: month.Add(-s.opts.Lookback),
		RangeEnd:   month.Add(s.opts.Horizon),
	})
	if err != nil {
		r.Err = fmt.Errorf("import: %w", err)
		return r
	}

	n, err := s.store.ReplaceSource(ctx, src.ID, res.Events)
	if err != nil {
		r.Err = fmt.Errorf("store: %w", err)
		appLog.Error("subscription store failed", err, "id", src.ID)
		return r
	}
	r.Events = n
	r.Materialized = len(res.Materialized)
	r.Truncated = len(res.TruncatedEvents)
	appLog.Info("subscription synced", "id", src.ID, "events", n, "materialized", r.Materialized, "from_cache", r.FromCache)
	return r
}

// Start runs SyncAll on spec (standard 5-field cron) until the returned
// stop function is called. Stop waits for a running sync to finish.
func (s *Syncer) Start(ctx context.Context, spec string) (stop func(), err error) {
	if len(s.sources) == 0 {
		return func() {}, nil
	}
	c := cron.New(cron.WithLocation(s.opts.Location))
	if _, err := c.AddFunc(spec, func() { s.SyncAll(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("subscription schedule started", "cron", spec, "subscriptions", len(s.sources))

	return func() {
		<-c.Stop().Done()
	}, nil
}

// ValidateSchedule checks a cron spec without scheduling anything.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return errors.New("empty schedule")
	}
	_, err := cron.ParseStandard(spec)
	return err
}

// Failed reports whether any report carries an error.
func Failed(reports []Report) bool {
	for _, r := range reports {
		if r.Err != nil {
			return true
		}
	}
	return false
}
