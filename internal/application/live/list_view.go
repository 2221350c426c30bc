package live

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// DefaultDebounce is how long search text must stay unchanged before a search subscription opens
const DefaultDebounce = 500 * time.Millisecond

// MinSearchLength is the shortest search text that opens a search subscription
const MinSearchLength = 3

// Row sets of a list view
const (
	ActiveDefault = "default"
	ActiveSearch  = "search"
)

// Filter is the equality filter of a default subscription, e.g. {"status": "Pending"}
type Filter map[string]string

// Source opens the two kinds of list subscriptions of one list page
type Source[T any] struct {
	// Default subscribes to the rows matching filter
	Default func(ctx context.Context, filter Filter, fn func([]T, error)) shared.Unsubscribe
	// Search subscribes to the rows whose search field equals text
	Search func(ctx context.Context, text string, fn func([]T, error)) shared.Unsubscribe
}

// MapSource converts the rows of a source
func MapSource[A, B any](src Source[A], f func(A) B) Source[B] {
	convert := func(fn func([]B, error)) func([]A, error) {
		return func(rows []A, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			out := make([]B, len(rows))
			for i, r := range rows {
				out[i] = f(r)
			}
			fn(out, nil)
		}
	}
	return Source[B]{
		Default: func(ctx context.Context, filter Filter, fn func([]B, error)) shared.Unsubscribe {
			return src.Default(ctx, filter, convert(fn))
		},
		Search: func(ctx context.Context, text string, fn func([]B, error)) shared.Unsubscribe {
			return src.Search(ctx, text, convert(fn))
		},
	}
}

// SearchActive reports whether the search rows are shown
func SearchActive(searchVisible bool, debounced string) bool {
	return searchVisible && utf8.RuneCountInString(debounced) >= MinSearchLength
}

// UseSearch is the one-shot form of the rule for plain list requests:
// a search text of at least MinSearchLength wins over the filter. It
// returns the trimmed term the query must use.
func UseSearch(text string) (string, bool) {
	term := strings.TrimSpace(text)
	return term, utf8.RuneCountInString(term) >= MinSearchLength
}

// ListState is what a list page shows
type ListState[T any] struct {
	Active        string
	Rows          []T
	Err           error
	SearchVisible bool
	SearchText    string
}

// ListView keeps a default subscription and a debounced search subscription
// of one list page live. Both stay open while a search is shown; only the
// active row set is published.
type ListView[T any] struct {
	ctx      context.Context
	source   Source[T]
	debounce time.Duration

	defaultSet *SubscriptionSet
	searchSet  *SubscriptionSet
	updates    *Latest[ListState[T]]

	mu            sync.Mutex
	filter        Filter
	defaultRows   []T
	defaultErr    error
	searchRows    []T
	searchErr     error
	searchVisible bool
	pendingText   string
	debounced     string
	timer         *time.Timer
	closed        bool
}

// ListViewOption configures a ListView
type ListViewOption func(*listViewOptions)

type listViewOptions struct {
	debounce time.Duration
}

// WithDebounce overrides DefaultDebounce
func WithDebounce(d time.Duration) ListViewOption {
	return func(o *listViewOptions) { o.debounce = d }
}

// NewListView creates a view and opens its default subscription with filter
func NewListView[T any](ctx context.Context, source Source[T], filter Filter, opts ...ListViewOption) *ListView[T] {
	o := listViewOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	v := &ListView[T]{
		ctx:        ctx,
		source:     source,
		debounce:   o.debounce,
		defaultSet: NewSubscriptionSet(),
		searchSet:  NewSubscriptionSet(),
		updates:    NewLatest[ListState[T]](),
	}
	v.SetFilter(filter)
	return v
}

// Updates delivers the latest state after every change
func (v *ListView[T]) Updates() <-chan ListState[T] {
	return v.updates.C()
}

// SetFilter replaces the default subscription
func (v *ListView[T]) SetFilter(filter Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	v.filter = cloneFilter(filter)
	v.defaultRows = nil
	v.defaultErr = nil
	gen := v.defaultSet.Replace()
	unsub := v.source.Default(v.ctx, v.filter, func(rows []T, err error) {
		v.mu.Lock()
		defer v.mu.Unlock()
		if !v.defaultSet.IsCurrent(gen) {
			return
		}
		v.defaultRows, v.defaultErr = rows, err
		v.publishLocked()
	})
	v.defaultSet.Add(gen, unsub)
}

// SetSearchText records typed text. The search subscription follows once
// the text stayed unchanged for the debounce interval.
func (v *ListView[T]) SetSearchText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	v.pendingText = text
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.debounce, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.closed || v.pendingText != text {
			return
		}
		v.applySearchLocked(text)
	})
}

// SetSearchVisible shows or hides the search field
func (v *ListView[T]) SetSearchVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.searchVisible == visible {
		return
	}
	v.searchVisible = visible
	v.publishLocked()
}

// State returns the current state
func (v *ListView[T]) State() ListState[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// Close cancels both subscriptions and the pending debounce
func (v *ListView[T]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.timer != nil {
		v.timer.Stop()
	}
	v.mu.Unlock()

	v.defaultSet.Close()
	v.searchSet.Close()
	v.updates.Close()
}

func (v *ListView[T]) applySearchLocked(text string) {
	text = strings.TrimSpace(text)
	if text == v.debounced {
		return
	}
	v.debounced = text
	v.searchRows = nil
	v.searchErr = nil
	gen := v.searchSet.Replace()

	if utf8.RuneCountInString(text) >= MinSearchLength {
		unsub := v.source.Search(v.ctx, text, func(rows []T, err error) {
			v.mu.Lock()
			defer v.mu.Unlock()
			if !v.searchSet.IsCurrent(gen) {
				return
			}
			v.searchRows, v.searchErr = rows, err
			v.publishLocked()
		})
		v.searchSet.Add(gen, unsub)
	}
	v.publishLocked()
}

func (v *ListView[T]) stateLocked() ListState[T] {
	s := ListState[T]{
		SearchVisible: v.searchVisible,
		SearchText:    v.debounced,
	}
	if SearchActive(v.searchVisible, v.debounced) {
		s.Active = ActiveSearch
		s.Rows = v.searchRows
		s.Err = v.searchErr
	} else {
		s.Active = ActiveDefault
		s.Rows = v.defaultRows
		s.Err = v.defaultErr
	}
	return s
}

func (v *ListView[T]) publishLocked() {
	if v.closed {
		return
	}
	v.updates.Publish(v.stateLocked())
}

func cloneFilter(f Filter) Filter {
	out := make(Filter, len(f))
	for k, val := range f {
		out[k] = val
	}
	return out
}
