package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionSet_ReplaceCancelsPrevious(t *testing.T) {
	set := NewSubscriptionSet()
	var cancelled atomic.Int32
	unsub := func() shared.Unsubscribe { return func() { cancelled.Add(1) } }

	gen1 := set.Replace()
	assert.True(t, set.Add(gen1, unsub()))
	assert.True(t, set.Add(gen1, unsub()))
	assert.Equal(t, 2, set.Len())

	gen2 := set.Replace()
	assert.NotEqual(t, gen1, gen2)
	assert.Equal(t, int32(2), cancelled.Load())
	assert.False(t, set.IsCurrent(gen1))
	assert.True(t, set.IsCurrent(gen2))

	// a late subscription from the old generation is cancelled on arrival
	assert.False(t, set.Add(gen1, unsub()))
	assert.Equal(t, int32(3), cancelled.Load())
	assert.Equal(t, 0, set.Len())
}

func TestSubscriptionSet_CloseIsIdempotent(t *testing.T) {
	set := NewSubscriptionSet()
	var cancelled atomic.Int32
	gen := set.Replace()
	set.Add(gen, func() { cancelled.Add(1) })

	set.Close()
	set.Close()
	assert.Equal(t, int32(1), cancelled.Load())
	assert.False(t, set.IsCurrent(gen))
	assert.False(t, set.IsCurrent(set.Current()))

	assert.False(t, set.Add(set.Current(), func() { cancelled.Add(1) }))
	assert.Equal(t, int32(2), cancelled.Load())

	reopened := set.Replace()
	assert.True(t, set.IsCurrent(reopened))
}

func TestLatest_KeepsNewestValue(t *testing.T) {
	l := NewLatest[int]()
	l.Publish(1)
	l.Publish(2)
	l.Publish(3)

	assert.Equal(t, 3, <-l.C())
	select {
	case v := <-l.C():
		t.Fatalf("unexpected value %d", v)
	default:
	}

	l.Publish(4)
	l.Close()
	l.Close()
	l.Publish(5)
	v, ok := <-l.C()
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	_, ok = <-l.C()
	assert.False(t, ok)
}

func TestSearchActive(t *testing.T) {
	tests := []struct {
		visible bool
		text    string
		want    bool
	}{
		{true, "", false},
		{true, "ab", false},
		{true, "abc", true},
		{false, "abcdef", false},
		{true, "äöü", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SearchActive(tt.visible, tt.text), "visible=%v text=%q", tt.visible, tt.text)
	}
	term, ok := UseSearch(" abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", term)
	_, ok = UseSearch(" ab ")
	assert.False(t, ok)
}

// fakeSource delivers rows asynchronously and records open subscriptions
type fakeSource struct {
	mu       sync.Mutex
	defaults map[string]func([]string, error)
	searches map[string]func([]string, error)
	open     map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		defaults: map[string]func([]string, error){},
		searches: map[string]func([]string, error){},
		open:     map[string]bool{},
	}
}

func (f *fakeSource) source() Source[string] {
	return Source[string]{
		Default: func(_ context.Context, filter Filter, fn func([]string, error)) shared.Unsubscribe {
			key := "default:" + filter["status"]
			f.mu.Lock()
			f.defaults[filter["status"]] = fn
			f.open[key] = true
			f.mu.Unlock()
			go fn([]string{"all-" + filter["status"]}, nil)
			return func() {
				f.mu.Lock()
				f.open[key] = false
				f.mu.Unlock()
			}
		},
		Search: func(_ context.Context, text string, fn func([]string, error)) shared.Unsubscribe {
			key := "search:" + text
			f.mu.Lock()
			f.searches[text] = fn
			f.open[key] = true
			f.mu.Unlock()
			go fn([]string{"hit-" + text}, nil)
			return func() {
				f.mu.Lock()
				f.open[key] = false
				f.mu.Unlock()
			}
		},
	}
}

func (f *fakeSource) isOpen(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open[key]
}

func (f *fakeSource) emitDefault(status string, rows []string) {
	f.mu.Lock()
	fn := f.defaults[status]
	f.mu.Unlock()
	go fn(rows, nil)
}

func waitState(t *testing.T, v *ListView[string], cond func(ListState[string]) bool) ListState[string] {
	t.Helper()
	var last ListState[string]
	require.Eventually(t, func() bool {
		last = v.State()
		return cond(last)
	}, time.Second, 5*time.Millisecond)
	return last
}

func TestListView_DefaultRowsAndFilterReplace(t *testing.T) {
	src := newFakeSource()
	v := NewListView(context.Background(), src.source(), Filter{"status": "Pending"}, WithDebounce(10*time.Millisecond))
	defer v.Close()

	waitState(t, v, func(s ListState[string]) bool { return len(s.Rows) == 1 && s.Rows[0] == "all-Pending" })

	v.SetFilter(Filter{"status": "Shipped"})
	assert.False(t, src.isOpen("default:Pending"))
	assert.True(t, src.isOpen("default:Shipped"))
	waitState(t, v, func(s ListState[string]) bool { return len(s.Rows) == 1 && s.Rows[0] == "all-Shipped" })

	// the replaced subscription can no longer write into the view
	src.emitDefault("Pending", []string{"stale"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"all-Shipped"}, v.State().Rows)
}

func TestListView_ShortSearchKeepsDefaultRows(t *testing.T) {
	src := newFakeSource()
	v := NewListView(context.Background(), src.source(), Filter{}, WithDebounce(10*time.Millisecond))
	defer v.Close()

	v.SetSearchVisible(true)
	v.SetSearchText("ab")
	time.Sleep(40 * time.Millisecond)

	s := v.State()
	assert.Equal(t, ActiveDefault, s.Active)
	assert.Equal(t, "ab", s.SearchText)
	assert.False(t, src.isOpen("search:ab"))
}

func TestListView_SearchActivationKeepsDefaultLive(t *testing.T) {
	src := newFakeSource()
	v := NewListView(context.Background(), src.source(), Filter{}, WithDebounce(10*time.Millisecond))
	defer v.Close()

	v.SetSearchVisible(true)
	v.SetSearchText("order-1")
	s := waitState(t, v, func(s ListState[string]) bool { return s.Active == ActiveSearch && len(s.Rows) == 1 })
	assert.Equal(t, []string{"hit-order-1"}, s.Rows)
	assert.True(t, src.isOpen("default:"), "default subscription stays open during a search")

	v.SetSearchVisible(false)
	s = v.State()
	assert.Equal(t, ActiveDefault, s.Active)
	assert.Equal(t, []string{"all-"}, s.Rows)
	assert.True(t, src.isOpen("search:order-1"), "hiding the field does not cancel the search subscription")
}

func TestListView_DebounceOnlyAppliesSettledText(t *testing.T) {
	src := newFakeSource()
	v := NewListView(context.Background(), src.source(), Filter{}, WithDebounce(30*time.Millisecond))
	defer v.Close()

	v.SetSearchVisible(true)
	v.SetSearchText("abc")
	v.SetSearchText("abcd")
	v.SetSearchText("abcde")
	waitState(t, v, func(s ListState[string]) bool { return s.SearchText == "abcde" && len(s.Rows) == 1 })

	src.mu.Lock()
	_, sawIntermediate := src.searches["abc"]
	src.mu.Unlock()
	assert.False(t, sawIntermediate)
}

func TestListView_SearchReplaceCancelsPrevious(t *testing.T) {
	src := newFakeSource()
	v := NewListView(context.Background(), src.source(), Filter{}, WithDebounce(5*time.Millisecond))
	defer v.Close()

	v.SetSearchText("first")
	require.Eventually(t, func() bool { return src.isOpen("search:first") }, time.Second, time.Millisecond)
	v.SetSearchText("second")
	require.Eventually(t, func() bool { return src.isOpen("search:second") }, time.Second, time.Millisecond)
	assert.False(t, src.isOpen("search:first"))

	v.SetSearchText("x")
	require.Eventually(t, func() bool { return !src.isOpen("search:second") }, time.Second, time.Millisecond)
}

func TestListView_CloseCancelsEverything(t *testing.T) {
	src := newFakeSource()
	v := NewListView(context.Background(), src.source(), Filter{"status": "Pending"}, WithDebounce(5*time.Millisecond))
	v.SetSearchText("query")
	require.Eventually(t, func() bool { return src.isOpen("search:query") }, time.Second, time.Millisecond)

	v.Close()
	v.Close()
	assert.False(t, src.isOpen("default:Pending"))
	assert.False(t, src.isOpen("search:query"))

	for range v.Updates() {
	}
}

func TestListView_ErrorsSurfaceInState(t *testing.T) {
	boom := errors.New("permission denied")
	src := Source[string]{
		Default: func(_ context.Context, _ Filter, fn func([]string, error)) shared.Unsubscribe {
			go fn(nil, boom)
			return func() {}
		},
		Search: func(context.Context, string, func([]string, error)) shared.Unsubscribe { return func() {} },
	}
	v := NewListView(context.Background(), src, nil)
	defer v.Close()

	s := <-v.Updates()
	assert.ErrorIs(t, s.Err, boom)
}

func TestMapSource(t *testing.T) {
	src := Source[int]{
		Default: func(_ context.Context, _ Filter, fn func([]int, error)) shared.Unsubscribe {
			fn([]int{1, 2}, nil)
			return func() {}
		},
		Search: func(_ context.Context, _ string, fn func([]int, error)) shared.Unsubscribe {
			fn(nil, errors.New("x"))
			return func() {}
		},
	}
	mapped := MapSource(src, func(i int) any { return i * 10 })

	var got []any
	mapped.Default(context.Background(), nil, func(rows []any, err error) { got = rows })
	assert.Equal(t, []any{10, 20}, got)

	var gotErr error
	mapped.Search(context.Background(), "abc", func(_ []any, err error) { gotErr = err })
	assert.Error(t, gotErr)
}
