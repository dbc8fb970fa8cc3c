package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/remote"
)

// ErrUnknownProvider is returned for a provider name with no registered backend.
var ErrUnknownProvider = errors.New("unknown provider")

// mergeOrder fixes which provider wins when several pulls touch the same day:
// later entries are merged last.
var mergeOrder = map[string]int{
	remote.ProviderGist:     0,
	remote.ProviderSupabase: 1,
	remote.ProviderStrava:   2,
}

func (d *Dashboard) source(name string) remote.Source {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.sources {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func (d *Dashboard) sink(name string) remote.Sink {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.sinks {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Pull fetches one provider's data and merges it, returning the number of
// days written.
func (d *Dashboard) Pull(ctx context.Context, provider string) (int, error) {
	src := d.source(provider)
	if src == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if !src.Configured() {
		return 0, remote.ErrNotConfigured
	}

	var fetched model.Store
	err := d.tracker.Run(provider, func() error {
		var err error
		fetched, err = src.FetchAll(ctx)
		return err
	})
	if err != nil {
		d.logger.Warn("remote pull failed", "provider", provider, "error", err)
		return 0, fmt.Errorf("pull %s: %w", provider, err)
	}
	return d.mergeFrom(src, fetched)
}

// PullAll fetches every configured provider concurrently, then merges the
// results in a fixed order. Failed providers are skipped and reported in the
// joined error; the others are still merged.
func (d *Dashboard) PullAll(ctx context.Context) (map[string]int, error) {
	d.mu.RLock()
	var sources []remote.Source
	for _, s := range d.sources {
		if s.Configured() {
			sources = append(sources, s)
		}
	}
	d.mu.RUnlock()
	sort.SliceStable(sources, func(i, j int) bool {
		return mergeOrder[sources[i].Name()] < mergeOrder[sources[j].Name()]
	})

	fetched := make([]model.Store, len(sources))
	errs := make([]error, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			errs[i] = d.tracker.Run(src.Name(), func() error {
				st, err := src.FetchAll(ctx)
				fetched[i] = st
				return err
			})
			return nil
		})
	}
	g.Wait()

	counts := make(map[string]int, len(sources))
	var failed []error
	for i, src := range sources {
		if errs[i] != nil {
			d.logger.Warn("remote pull failed", "provider", src.Name(), "error", errs[i])
			failed = append(failed, fmt.Errorf("pull %s: %w", src.Name(), errs[i]))
			continue
		}
		n, err := d.mergeFrom(src, fetched[i])
		if err != nil {
			return counts, err
		}
		counts[src.Name()] = n
	}
	return counts, errors.Join(failed...)
}

// mergeFrom resolves fetched against the live store so overlays never carry
// stale local fields.
func (d *Dashboard) mergeFrom(src remote.Source, fetched model.Store) (int, error) {
	if len(fetched) == 0 {
		return 0, nil
	}
	return d.merge(func(local model.Store) model.Store {
		return remote.Resolve(src, local, fetched)
	}, "pulled", src.Name())
}

// Push sends the whole store to one provider and waits for the result.
func (d *Dashboard) Push(ctx context.Context, provider string) error {
	sink := d.sink(provider)
	if sink == nil {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if !sink.Configured() {
		return remote.ErrNotConfigured
	}
	snapshot := d.Snapshot()
	err := d.tracker.Run(provider, func() error {
		return sink.PushAll(ctx, snapshot)
	})
	if err != nil {
		d.logger.Warn("remote push failed", "provider", provider, "error", err)
		return fmt.Errorf("push %s: %w", provider, err)
	}
	d.logger.Info("remote push complete", "provider", provider, "days", len(snapshot))
	return nil
}

// SyncStatus reports every registered provider in merge order.
func (d *Dashboard) SyncStatus() []remote.Status {
	d.mu.RLock()
	seen := map[string]bool{}
	configured := map[string]bool{}
	links := map[string]string{}
	var names []string
	note := func(name string, ok bool, v any) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		configured[name] = configured[name] || ok
		if links[name] == "" {
			links[name] = linkFor(v)
		}
	}
	for _, s := range d.sources {
		note(s.Name(), s.Configured(), s)
	}
	for _, s := range d.sinks {
		note(s.Name(), s.Configured(), s)
	}
	d.mu.RUnlock()

	sort.SliceStable(names, func(i, j int) bool { return mergeOrder[names[i]] < mergeOrder[names[j]] })
	out := make([]remote.Status, 0, len(names))
	for _, name := range names {
		st := d.tracker.Get(name)
		st.Configured = configured[name]
		st.URL = links[name]
		out = append(out, st)
	}
	return out
}

func linkFor(v any) string {
	switch l := v.(type) {
	case interface{ URL() string }:
		return l.URL()
	case interface{ DashboardURL() string }:
		return l.DashboardURL()
	}
	return ""
}
