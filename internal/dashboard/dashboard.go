// Package dashboard owns the in-memory day-record store for one user and
// everything derived from it: saves, merges, calendar grids, trends and
// remote sync. Load must be called before use; every mutation is persisted
// before the call returns.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/dauphindash/internal/activity"
	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/remote"
)

// ErrInvalidDate is returned for malformed date keys.
var ErrInvalidDate = errors.New("invalid date")

// Persister loads and saves the whole store.
type Persister interface {
	Load() (model.Store, error)
	Save(st model.Store) error
}

// DayUpserter is implemented by persisters that can write one day without
// rewriting the store.
type DayUpserter interface {
	Upsert(key string, rec model.DayRecord) error
}

// GoalStore persists the user's goals.
type GoalStore interface {
	Goals() (model.Goals, error)
	SetGoals(g model.Goals) error
}

// Notifier is told about every change so connected dashboards can refresh.
type Notifier func(entity, action, key string)

type Config struct {
	// Location defines "today" and every DateKey. Defaults to time.Local.
	Location *time.Location
	// Policy shades calendar cells. Defaults to the weighted policy.
	Policy      activity.Policy
	Goals       GoalStore
	PushTimeout time.Duration
	Logger      *slog.Logger
}

type Dashboard struct {
	mu    sync.RWMutex
	store model.Store
	goals model.Goals

	persist     Persister
	goalStore   GoalStore
	policy      activity.Policy
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
	pushTimeout time.Duration

	sources []remote.Source
	sinks   []remote.Sink
	tracker *remote.Tracker
	notify  Notifier
	pushes  sync.WaitGroup
}

func New(p Persister, cfg Config) *Dashboard {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Policy == nil {
		cfg.Policy = activity.DefaultWeighted()
	}
	if cfg.PushTimeout == 0 {
		cfg.PushTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dashboard{
		store:       model.Store{},
		goals:       model.DefaultGoals(),
		persist:     p,
		goalStore:   cfg.Goals,
		policy:      cfg.Policy,
		loc:         cfg.Location,
		now:         time.Now,
		logger:      cfg.Logger.With("component", "dashboard"),
		pushTimeout: cfg.PushTimeout,
		tracker:     remote.NewTracker(),
		notify:      func(string, string, string) {},
	}
}

// AddSource registers a backend that can be pulled from.
func (d *Dashboard) AddSource(src remote.Source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources = append(d.sources, src)
}

// AddSink registers a backend that receives pushes after each save.
func (d *Dashboard) AddSink(sink remote.Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sink)
}

// OnChange sets the change notifier.
func (d *Dashboard) OnChange(fn Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if fn == nil {
		fn = func(string, string, string) {}
	}
	d.notify = fn
}

// Load replaces the in-memory store and goals with the persisted ones.
func (d *Dashboard) Load() error {
	st, err := d.persist.Load()
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	if st == nil {
		st = model.Store{}
	}

	goals := model.DefaultGoals()
	if d.goalStore != nil {
		if goals, err = d.goalStore.Goals(); err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
	}

	d.mu.Lock()
	d.store = st
	d.applyGoals(goals)
	d.mu.Unlock()

	d.logger.Info("store loaded", "days", len(st))
	return nil
}

// Save persists the current store.
func (d *Dashboard) Save() error {
	d.mu.RLock()
	st := d.store.Clone()
	d.mu.RUnlock()
	if err := d.persist.Save(st); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

// Location is the zone every DateKey is computed in.
func (d *Dashboard) Location() *time.Location { return d.loc }

// Today is the current instant in the dashboard's zone.
func (d *Dashboard) Today() time.Time {
	return d.now().In(d.loc)
}

func (d *Dashboard) TodayKey() string {
	return datekey.Key(d.Today())
}

// Record returns the record for key, or the zero record when absent.
func (d *Dashboard) Record(key string) model.DayRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.Get(key).Clone()
}

// Snapshot returns a copy of the whole store.
func (d *Dashboard) Snapshot() model.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.Clone()
}

func (d *Dashboard) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.store)
}

// SaveForDate overwrites one day and persists it. Remote sinks are pushed in
// the background; their failures never undo the local save.
func (d *Dashboard) SaveForDate(key string, rec model.DayRecord) error {
	if !datekey.Valid(key) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	rec = rec.Clone()

	d.mu.Lock()
	prev, existed := d.store[key]
	d.store[key] = rec
	err := d.persistDay(key, rec)
	if err != nil {
		if existed {
			d.store[key] = prev
		} else {
			delete(d.store, key)
		}
	}
	snapshot := d.store.Clone()
	sinks := append([]remote.Sink(nil), d.sinks...)
	notify := d.notify
	d.mu.Unlock()

	if err != nil {
		return fmt.Errorf("save day %s: %w", key, err)
	}

	d.logger.Info("day saved", "date", key, "weight", rec.HasWeight(), "leetcode", rec.LeetCode, "workout", rec.Workout)
	notify("day", "saved", key)
	d.pushInBackground(sinks, snapshot, key, rec)
	return nil
}

// persistDay must be called with d.mu held.
func (d *Dashboard) persistDay(key string, rec model.DayRecord) error {
	if u, ok := d.persist.(DayUpserter); ok {
		return u.Upsert(key, rec)
	}
	return d.persist.Save(d.store.Clone())
}

// Import shallow-merges st into the store, incoming days winning, and
// persists the result. Malformed keys reject the whole import.
func (d *Dashboard) Import(st model.Store) (int, error) {
	for k := range st {
		if !datekey.Valid(k) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDate, k)
		}
	}
	n, err := d.merge(func(model.Store) model.Store { return st }, "imported", "")
	if err != nil {
		return 0, err
	}

	d.mu.RLock()
	snapshot := d.store.Clone()
	sinks := append([]remote.Sink(nil), d.sinks...)
	d.mu.RUnlock()
	d.pushInBackground(sinks, snapshot, "", model.DayRecord{})
	return n, nil
}

// Replace swaps in a whole store, as when restoring a backup.
func (d *Dashboard) Replace(st model.Store) error {
	for k := range st {
		if !datekey.Valid(k) {
			return fmt.Errorf("%w: %q", ErrInvalidDate, k)
		}
	}
	st = st.Clone()

	d.mu.Lock()
	if err := d.persist.Save(st); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("save replaced store: %w", err)
	}
	d.store = st
	notify := d.notify
	d.mu.Unlock()

	d.logger.Info("store replaced", "days", len(st))
	notify("store", "replaced", "")
	return nil
}

// merge shallow-merges what incoming returns into the store and persists the
// result. incoming runs under the write lock and sees the live store; on a
// persist failure the store is left untouched.
func (d *Dashboard) merge(incoming func(local model.Store) model.Store, action, key string) (int, error) {
	d.mu.Lock()
	merged := d.store.Clone()
	n := remote.MergeInto(merged, incoming(d.store))
	if n == 0 {
		d.mu.Unlock()
		return 0, nil
	}
	if err := d.persist.Save(merged); err != nil {
		d.mu.Unlock()
		return 0, fmt.Errorf("save merged store: %w", err)
	}
	d.store = merged
	notify := d.notify
	d.mu.Unlock()

	d.logger.Info("store merged", "action", action, "source", key, "days", n)
	notify("store", action, key)
	return n, nil
}

// Goals returns the current goals.
func (d *Dashboard) Goals() model.Goals {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.goals
}

// SetGoals validates, persists and applies new goals.
func (d *Dashboard) SetGoals(g model.Goals) error {
	if g.Weight <= 0 || g.WorkoutsPerWeek <= 0 || g.WorkoutsPerWeek > 7 || g.CodingCapPerDay <= 0 {
		return fmt.Errorf("invalid goals: weight and coding cap must be positive, workouts per week 1 to 7")
	}
	if d.goalStore != nil {
		if err := d.goalStore.SetGoals(g); err != nil {
			return fmt.Errorf("save goals: %w", err)
		}
	}

	d.mu.Lock()
	d.applyGoals(g)
	notify := d.notify
	d.mu.Unlock()

	notify("goals", "updated", "")
	return nil
}

// applyGoals must be called with d.mu held. The weighted policy follows the
// coding cap goal.
func (d *Dashboard) applyGoals(g model.Goals) {
	d.goals = g
	if w, ok := d.policy.(activity.Weighted); ok && g.CodingCapPerDay > 0 {
		w.CodingCap = g.CodingCapPerDay
		d.policy = w
	}
}

// Policy returns the active shading policy.
func (d *Dashboard) Policy() activity.Policy {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.policy
}

func (d *Dashboard) pushInBackground(sinks []remote.Sink, snapshot model.Store, key string, rec model.DayRecord) {
	for _, sink := range sinks {
		if !sink.Configured() {
			continue
		}
		d.pushes.Add(1)
		go func(sink remote.Sink) {
			defer d.pushes.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.pushTimeout)
			defer cancel()

			err := d.tracker.Run(sink.Name(), func() error {
				if ds, ok := sink.(remote.DaySink); ok && key != "" {
					return ds.PushDay(ctx, key, rec)
				}
				return sink.PushAll(ctx, snapshot)
			})
			if err != nil {
				d.logger.Warn("remote push failed", "provider", sink.Name(), "error", err)
				return
			}
			d.logger.Debug("remote push complete", "provider", sink.Name(), "date", key)
		}(sink)
	}
}

// WaitForPushes blocks until background pushes have finished.
func (d *Dashboard) WaitForPushes() {
	d.pushes.Wait()
}
