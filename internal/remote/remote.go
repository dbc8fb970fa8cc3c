// Package remote talks to the optional sync backends: a GitHub Gist, a
// Supabase table and Strava. Each backend can supply a full store, and the
// caller merges it into the local store shallowly, remote winning per day.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dukerupert/dauphindash/internal/model"
)

// ErrNotConfigured is returned when a backend is missing credentials.
var ErrNotConfigured = errors.New("remote not configured")

const (
	ProviderGist     = "gist"
	ProviderSupabase = "supabase"
	ProviderStrava   = "strava"
)

// Source supplies a complete store from a backend. A nil store with a nil
// error means the backend holds nothing yet.
type Source interface {
	Name() string
	Configured() bool
	FetchAll(ctx context.Context) (model.Store, error)
}

// Sink accepts the complete local store.
type Sink interface {
	Name() string
	Configured() bool
	PushAll(ctx context.Context, st model.Store) error
}

// DaySink accepts a single saved day.
type DaySink interface {
	Sink
	PushDay(ctx context.Context, key string, rec model.DayRecord) error
}

// Overlayer is implemented by sources that only know about some fields of a
// day. Their fetched records are laid over the local ones before merging.
type Overlayer interface {
	Overlay(local, fetched model.Store) model.Store
}

// Resolve returns what src contributes to a merge into local.
func Resolve(src Source, local, fetched model.Store) model.Store {
	if o, ok := src.(Overlayer); ok {
		return o.Overlay(local, fetched)
	}
	return fetched
}

// MergeInto copies every remote day into local, replacing whole records on
// collision. It never merges fields. The number of days written is returned.
func MergeInto(local, remote model.Store) int {
	n := 0
	for k, rec := range remote {
		local[k] = rec.Clone()
		n++
	}
	return n
}

// WorkoutOverlay marks each fetched workout day as a workout on top of the
// local record for that day, keeping its weight and coding count.
func WorkoutOverlay(local, fetched model.Store) model.Store {
	out := make(model.Store, len(fetched))
	for k, rec := range fetched {
		if !rec.Workout {
			continue
		}
		merged := local.Get(k).Clone()
		merged.Workout = true
		out[k] = merged
	}
	return out
}

type options struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL points a client at a different API host, for tests and proxies.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

func newOptions(baseURL string, opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func jsonRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// apiError builds an error from a non-2xx response, preferring the message
// field the backends put in their JSON error bodies.
func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%s: %d %s", op, resp.StatusCode, msg)
}

// Status is the sync state shown for one provider.
type Status struct {
	Provider   string     `json:"provider"`
	Configured bool       `json:"configured"`
	Syncing    bool       `json:"syncing"`
	LastSync   *time.Time `json:"last_sync,omitempty"`
	Error      string     `json:"error,omitempty"`
	URL        string     `json:"url,omitempty"`
}

// Tracker records the sync status of every provider.
type Tracker struct {
	mu       sync.Mutex
	statuses map[string]*Status
	now      func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]*Status), now: time.Now}
}

// Run marks provider as syncing for the duration of fn and records the outcome.
// A failed run keeps the previous LastSync.
func (t *Tracker) Run(provider string, fn func() error) error {
	t.mu.Lock()
	st := t.entry(provider)
	st.Syncing = true
	st.Error = ""
	t.mu.Unlock()

	err := fn()

	t.mu.Lock()
	defer t.mu.Unlock()
	st.Syncing = false
	if err != nil {
		st.Error = err.Error()
		return err
	}
	now := t.now()
	st.LastSync = &now
	return nil
}

// Get returns a copy of provider's status.
func (t *Tracker) Get(provider string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := *t.entry(provider)
	if st.LastSync != nil {
		ls := *st.LastSync
		st.LastSync = &ls
	}
	return st
}

func (t *Tracker) entry(provider string) *Status {
	st, ok := t.statuses[provider]
	if !ok {
		st = &Status{Provider: provider}
		t.statuses[provider] = st
	}
	return st
}
