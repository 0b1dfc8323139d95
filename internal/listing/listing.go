package listing

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"
	"sync/atomic"

	"finditweb/internal/models"
	"finditweb/internal/session"
	"finditweb/internal/upstream"
)

// Spec is the filter state of a listing view. The encoded query string is
// a pure function of it.
type Spec struct {
	Search     string
	ItemType   string
	CategoryID string
}

// Query encodes only the non-empty filter fields.
func (s Spec) Query() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set("search", s.Search)
	}
	if s.ItemType != "" {
		q.Set("type", s.ItemType)
	}
	if s.CategoryID != "" {
		q.Set("category", s.CategoryID)
	}
	return q
}

// Filtered reports whether any filter excludes results.
func (s Spec) Filtered() bool {
	return s.Search != "" || s.ItemType != "" || s.CategoryID != ""
}

// SyncSearch overwrites only the Search field from the URL search
// parameter, leaving the other filters untouched.
func SyncSearch(spec *Spec, values url.Values) {
	if values.Has("search") {
		spec.Search = values.Get("search")
	}
}

type State int

const (
	StateError State = iota
	StateEmptyUnauthenticated
	StateEmptyFiltered
	StateEmptyNoItems
	StatePopulated
)

type Result struct {
	State    State
	Items    []models.Item
	ErrorMsg string
}

type Options struct {
	// OwnerScope restricts the query to the current user's postings.
	OwnerScope bool
	// RequiresAuth skips the network entirely for anonymous sessions.
	RequiresAuth bool
	// MaxItems truncates the result, preserving server order. 0 = no cap.
	MaxItems int
}

// ErrStale marks a fetch whose result arrived after a newer fetch
// started; the late result must be discarded, never rendered.
var ErrStale = errors.New("stale listing fetch")

// Fetcher renders one filtered page of listings per call. Each call is a
// single attempt; the only state is a per-view generation counter used to
// detect and discard completions that a newer fetch for the same view has
// superseded.
type Fetcher struct {
	api      *upstream.Client
	sessions *session.Store
	gens     sync.Map // view key -> *atomic.Uint64
}

func NewFetcher(api *upstream.Client, sessions *session.Store) *Fetcher {
	return &Fetcher{api: api, sessions: sessions}
}

func (f *Fetcher) generation(sess *session.Session, opts Options) *atomic.Uint64 {
	key := "anon"
	if sess != nil {
		key = sess.ID()
	}
	if opts.OwnerScope {
		key += "|mine"
	}
	v, _ := f.gens.LoadOrStore(key, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

func (f *Fetcher) Fetch(ctx context.Context, sess *session.Session, spec Spec, opts Options) (Result, error) {
	counter := f.generation(sess, opts)
	gen := counter.Add(1)

	if opts.RequiresAuth && (sess == nil || sess.CurrentUser() == nil) {
		return Result{State: StateEmptyUnauthenticated}, nil
	}

	var (
		items []models.Item
		err   error
	)
	if opts.OwnerScope {
		items, err = f.api.ListMine(ctx, f.sessions.UpstreamCookie(sess), spec.Query())
	} else {
		items, err = f.api.ListItems(ctx, spec.Query())
	}

	if counter.Load() != gen {
		return Result{}, ErrStale
	}
	if err != nil {
		log.Printf("fetch items failed owner=%t err=%v", opts.OwnerScope, err)
		return Result{State: StateError, ErrorMsg: "Failed to load items. Please try again later."}, nil
	}
	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}
	if len(items) == 0 {
		if spec.Filtered() {
			return Result{State: StateEmptyFiltered}, nil
		}
		return Result{State: StateEmptyNoItems}, nil
	}
	return Result{State: StatePopulated, Items: items}, nil
}
