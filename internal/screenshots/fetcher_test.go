package screenshots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(nil, 0, 0)
	assert.Equal(t, DefaultConcurrency, f.concurrency)
	assert.Equal(t, DefaultMaxBytes, f.maxBytes)
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
}

func TestFetcher_FetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slow.png":
			time.Sleep(50 * time.Millisecond)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("slow"))
		case "/fast.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("fast"))
		case "/big.png":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/slow.png", srv.URL + "/fast.png", srv.URL + "/missing.png", srv.URL + "/big.png"}
	f := NewFetcher(srv.Client(), 4, 32)

	var order []int
	got := make(map[int]Result)
	err := f.FetchAll(context.Background(), urls, func(r Result) {
		order = append(order, r.Slot)
		got[r.Slot] = r
	})
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, "slow", string(got[0].Data))
	assert.Equal(t, "image/png", got[0].ContentType)
	assert.Equal(t, "fast", string(got[1].Data))
	assert.Error(t, got[2].Err)
	assert.ErrorIs(t, got[3].Err, ErrTooLarge)
	for slot, r := range got {
		assert.Equal(t, urls[slot], r.URL)
	}

	// The slow slot finishes last.
	assert.Equal(t, 0, order[len(order)-1])
}

func TestFetcher_FetchAll_InvalidURL(t *testing.T) {
	f := NewFetcher(nil, 1, 0)
	var results []Result
	err := f.FetchAll(context.Background(), []string{"://bad"}, func(r Result) {
		results = append(results, r)
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestFetcher_FetchAll_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	f := NewFetcher(srv.Client(), 2, 0)

	var mu sync.Mutex
	delivered := 0
	done := make(chan error, 1)
	go func() {
		done <- f.FetchAll(ctx, []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}, func(Result) {
			mu.Lock()
			delivered++
			mu.Unlock()
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("FetchAll did not return after cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, delivered)
}

func TestFetcher_FetchAll_Empty(t *testing.T) {
	called := false
	err := NewFetcher(nil, 0, 0).FetchAll(context.Background(), nil, func(Result) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}
