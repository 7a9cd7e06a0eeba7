// pkg/nessus/orchestrator_test.go
package nessus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nesslaunch/nesslaunch/pkg/retry"
)

// testSink records every event for assertions. Safe for concurrent use.
type testSink struct {
	mu       sync.Mutex
	started  int
	empty    int
	launched []uint32
	failed   map[uint32]error
	faults   map[uint32]string
}

func newTestSink() *testSink {
	return &testSink{
		failed: make(map[uint32]error),
		faults: make(map[uint32]string),
	}
}

func (s *testSink) BatchStarted(_ string, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
}

func (s *testSink) BatchEmpty(_ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty++
}

func (s *testSink) ScanLaunched(_ string, scanID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launched = append(s.launched, scanID)
}

func (s *testSink) ScanFailed(_ string, scanID uint32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[scanID] = err
}

func (s *testSink) TaskFault(_ string, scanID uint32, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[scanID] = reason
}

func (s *testSink) launchedSorted() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]uint32(nil), s.launched...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// fakeNessus is an httptest-backed Nessus management interface with
// per-endpoint call counters. launchStatus decides the response per scan id.
type fakeNessus struct {
	srv *httptest.Server

	mu           sync.Mutex
	tokenCalls   int
	sessionCalls int
	launchCalls  map[uint32]int

	launchStatus func(scanID uint32, attempt int) int
}

func newFakeNessus(t *testing.T) *fakeNessus {
	t.Helper()

	f := &fakeNessus{
		launchCalls:  make(map[uint32]int),
		launchStatus: func(uint32, int) int { return http.StatusOK },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /nessus6.js", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		f.mu.Unlock()
		fmt.Fprint(w, `var t={key:"getApiToken",value:function(){return"API-TOKEN"}};`)
	})
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.sessionCalls++
		f.mu.Unlock()
		fmt.Fprint(w, `{"token":"SESSION-TOKEN"}`)
	})
	mux.HandleFunc("POST /scans/{id}/launch", func(w http.ResponseWriter, r *http.Request) {
		var scanID uint32
		_, err := fmt.Sscanf(r.PathValue("id"), "%d", &scanID)
		require.NoError(t, err)

		f.mu.Lock()
		f.launchCalls[scanID]++
		attempt := f.launchCalls[scanID]
		status := f.launchStatus(scanID, attempt)
		f.mu.Unlock()

		w.WriteHeader(status)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeNessus) counts() (token, session int, launches map[uint32]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	launches = make(map[uint32]int, len(f.launchCalls))
	for id, n := range f.launchCalls {
		launches[id] = n
	}
	return f.tokenCalls, f.sessionCalls, launches
}

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts: 5,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestLaunchScans_EmptyBatchIsNoOp(t *testing.T) {
	fake := newFakeNessus(t)
	sink := newTestSink()
	client := newTestClient(t, fake.srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), nil)
	require.NoError(t, err)

	token, session, launches := fake.counts()
	require.Zero(t, token, "empty batch must not fetch the API token")
	require.Zero(t, session, "empty batch must not log in")
	require.Empty(t, launches)
	require.Equal(t, 1, sink.empty)
	require.Zero(t, sink.started)
}

func TestLaunchScans_AuthenticatesOncePerBatch(t *testing.T) {
	fake := newFakeNessus(t)
	sink := newTestSink()
	client := newTestClient(t, fake.srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), []uint32{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	token, session, launches := fake.counts()
	require.Equal(t, 1, token, "exactly one token fetch regardless of batch size")
	require.Equal(t, 1, session, "exactly one login regardless of batch size")
	require.Len(t, launches, 8)
	for id, n := range launches {
		require.Equal(t, 1, n, "scan %d should launch on the first attempt", id)
	}
	require.Len(t, sink.launchedSorted(), 8)
}

func TestLaunchScans_RetriesUntilSuccess(t *testing.T) {
	fake := newFakeNessus(t)
	fake.launchStatus = func(scanID uint32, attempt int) int {
		if attempt < 3 {
			return http.StatusServiceUnavailable
		}
		return http.StatusOK
	}

	sink := newTestSink()
	client := newTestClient(t, fake.srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), []uint32{9})
	require.NoError(t, err)

	_, _, launches := fake.counts()
	require.Equal(t, 3, launches[9], "two failures then success means exactly three calls")
	require.Equal(t, []uint32{9}, sink.launchedSorted())
	require.Empty(t, sink.failed)
}

func TestLaunchScans_FaultIsolation(t *testing.T) {
	fake := newFakeNessus(t)
	fake.launchStatus = func(scanID uint32, attempt int) int {
		if scanID == 8 {
			return http.StatusForbidden // scan 8 never launches
		}
		return http.StatusOK
	}

	sink := newTestSink()
	client := newTestClient(t, fake.srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), []uint32{5, 8, 11})
	require.NoError(t, err, "per-scan exhaustion must not fail the batch")

	_, _, launches := fake.counts()
	require.Equal(t, 1, launches[5])
	require.Equal(t, 5, launches[8], "failing scan exhausts its full retry budget")
	require.Equal(t, 1, launches[11])

	require.Equal(t, []uint32{5, 11}, sink.launchedSorted())
	require.Contains(t, sink.failed, uint32(8))

	var launchErr *LaunchError
	require.ErrorAs(t, sink.failed[8], &launchErr)
	require.Equal(t, uint32(8), launchErr.ScanID)
	require.Equal(t, http.StatusForbidden, launchErr.Status)
}

func TestLaunchScans_TokenFetchFailureAbortsBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /nessus6.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `nothing useful here`)
	})
	launched := false
	mux.HandleFunc("POST /scans/{id}/launch", func(w http.ResponseWriter, r *http.Request) {
		launched = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sink := newTestSink()
	client := newTestClient(t, srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), []uint32{5, 8})
	require.Error(t, err)
	require.True(t, IsParse(err))
	require.False(t, launched, "no launch may be attempted when authentication fails")
	require.Zero(t, sink.started)
}

func TestLaunchScans_SessionFailureAbortsBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /nessus6.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `var t={key:"getApiToken",value:function(){return"API-TOKEN"}};`)
	})
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"Invalid credentials"}`)
	})
	launched := false
	mux.HandleFunc("POST /scans/{id}/launch", func(w http.ResponseWriter, r *http.Request) {
		launched = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sink := newTestSink()
	client := newTestClient(t, srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), []uint32{5})
	require.Error(t, err)
	require.True(t, IsParse(err))
	require.False(t, launched)
	require.Zero(t, sink.started)
}

// panicSink deliberately blows up on success events to prove that a fault in
// one task is contained and reported, not propagated.
type panicSink struct {
	*testSink
	panicOn uint32
}

func (s *panicSink) ScanLaunched(batchID string, scanID uint32) {
	if scanID == s.panicOn {
		panic(fmt.Sprintf("sink failure for scan %d", scanID))
	}
	s.testSink.ScanLaunched(batchID, scanID)
}

func TestLaunchScans_TaskFaultIsContained(t *testing.T) {
	fake := newFakeNessus(t)

	sink := &panicSink{testSink: newTestSink(), panicOn: 8}
	client := newTestClient(t, fake.srv.URL, WithEventSink(sink), WithRetryConfig(fastRetry()))

	err := client.LaunchScans(context.Background(), []uint32{5, 8, 11})
	require.NoError(t, err, "a faulting task must not fail the batch")

	require.Equal(t, []uint32{5, 11}, sink.launchedSorted())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Contains(t, sink.faults, uint32(8))
	require.Contains(t, sink.faults[8], "sink failure")
}
