package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/types"
)

// pagingServer serves one page per poll, growing by one record each time
// the page is requested.
func pagingServer(t *testing.T, pages [][]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		page := int(polls.Add(1)) - 1
		if page >= len(pages) {
			page = len(pages) - 1
		}
		records := make([]map[string]any, 0, len(pages[page]))
		for _, uid := range pages[page] {
			records = append(records, map[string]any{"uid": uid, "chain": "sepolia"})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total":        len(records),
			"attestations": records,
		})
	}))
	return srv, &polls
}

func TestWatcherDeliversOnlyUnseenRecords(t *testing.T) {
	srv, _ := pagingServer(t, [][]string{
		{"0x01", "0x02"},
		{"0x01", "0x02", "0x03"},
	})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	var mu sync.Mutex
	var delivered []string
	got := make(chan struct{}, 16)
	handler := func(_ context.Context, rec types.AttestationRecord) {
		mu.Lock()
		delivered = append(delivered, rec.UID)
		mu.Unlock()
		got <- struct{}{}
	}

	w, err := NewWatcher(c, QueryFilter{Chain: "sepolia"}, handler,
		WithSchedule("* * * * * *"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Two from the immediate poll, one more once the second page lands.
	for i := 0; i < 3; i++ {
		select {
		case <-got:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for delivery %d", i+1)
		}
	}

	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"0x01", "0x02", "0x03"}, delivered)
	require.Equal(t, 3, w.Seen())
}

func TestWatcherDoesNotRedeliver(t *testing.T) {
	srv, polls := pagingServer(t, [][]string{{"0x01", "0x02"}})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	var count atomic.Int32
	handler := func(_ context.Context, _ types.AttestationRecord) {
		count.Add(1)
	}

	w, err := NewWatcher(c, QueryFilter{}, handler, WithSchedule("* * * * * *"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// Wait until the watcher has polled at least twice.
	require.Eventually(t, func() bool { return polls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	w.Stop()

	require.Equal(t, int32(2), count.Load())
	require.Equal(t, 2, w.Seen())
}

func TestWatcherStartStopLifecycle(t *testing.T) {
	srv, _ := pagingServer(t, [][]string{{}})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	w, err := NewWatcher(c, QueryFilter{}, func(context.Context, types.AttestationRecord) {})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	err = w.Start(ctx)
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindInternal))

	w.Stop()
	w.Stop()
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	srv, polls := pagingServer(t, [][]string{{}})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	w, err := NewWatcher(c, QueryFilter{}, func(context.Context, types.AttestationRecord) {},
		WithSchedule("* * * * * *"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.Eventually(t, func() bool { return polls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

	cancel()
	time.Sleep(100 * time.Millisecond)
	settled := polls.Load()
	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, settled, polls.Load())
}

func TestWatcherStopWaitsForInFlightPoll(t *testing.T) {
	var gate sync.Once
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(wr http.ResponseWriter, _ *http.Request) {
		gate.Do(func() {
			close(arrived)
			<-release
		})
		_ = json.NewEncoder(wr).Encode(map[string]any{
			"total":        1,
			"attestations": []map[string]any{{"uid": "0x01", "chain": "sepolia"}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	var handled atomic.Int32
	w, err := NewWatcher(c, QueryFilter{}, func(context.Context, types.AttestationRecord) {
		handled.Add(1)
	}, WithSchedule("0 0 0 1 1 *"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the first poll to reach the server")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the first poll was still in flight")
	case <-time.After(150 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the poll finished")
	}

	// The poll's deliveries completed before Stop returned.
	require.Equal(t, int32(1), handled.Load())
}

func TestWatcherRestartReusesScheduleEntry(t *testing.T) {
	srv, polls := pagingServer(t, [][]string{{"0x01"}})
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	var handled atomic.Int32
	w, err := NewWatcher(c, QueryFilter{}, func(context.Context, types.AttestationRecord) {
		handled.Add(1)
	}, WithSchedule("0 0 0 1 1 *"))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	require.Equal(t, int32(1), polls.Load())

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	require.Equal(t, int32(2), polls.Load())

	require.Len(t, w.cron.Entries(), 1)

	// Dedup memory survives the restart: the record redelivered by the
	// second run's poll is not handed to the handler again.
	require.Equal(t, int32(1), handled.Load())
	require.Equal(t, 1, w.Seen())
}

func TestNewWatcherValidation(t *testing.T) {
	c, err := NewClient("https://indexer.example.com")
	require.NoError(t, err)

	_, err = NewWatcher(nil, QueryFilter{}, func(context.Context, types.AttestationRecord) {})
	require.Error(t, err)

	_, err = NewWatcher(c, QueryFilter{}, nil)
	require.Error(t, err)
}

func TestWatcherRejectsBadSchedule(t *testing.T) {
	c, err := NewClient("https://indexer.example.com")
	require.NoError(t, err)

	w, err := NewWatcher(c, QueryFilter{}, func(context.Context, types.AttestationRecord) {},
		WithSchedule("not a schedule"))
	require.NoError(t, err)

	err = w.Start(context.Background())
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindConfig))
}
