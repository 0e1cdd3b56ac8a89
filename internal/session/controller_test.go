package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"breachwatch-cli/internal/api"
)

// fakeBackend is a minimal monitor backend with per-endpoint call counters.
type fakeBackend struct {
	mu       sync.Mutex
	calls    map[string]int
	statsOut string
	failMon  bool
	failDel  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:    map[string]int{},
		statsOut: `{"total_breaches":5,"monitored_domains":2,"active_alerts":1,"system_status":"active"}`,
	}
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls[key]++
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/dashboard/stats":
			w.Write([]byte(f.statsOut))
		case r.URL.Path == "/api/alerts" && r.Method == http.MethodGet:
			w.Write([]byte(`{"alerts":[{"id":"a1","domain":"evil.com","breach_name":"X","severity":"high","message":"found"}]}`))
		case r.URL.Path == "/api/domains/monitored":
			w.Write([]byte(`{"domains":[{"id":"d1","domain":"x.com","created_at":"2024-05-06"}]}`))
		case strings.HasPrefix(r.URL.Path, "/api/breaches/domain/"):
			w.Write([]byte(`{"count":1,"breaches":[{"Name":"X","Domain":"evil.com","IsVerified":true,"DataClasses":["Emails"]}]}`))
		case strings.HasPrefix(r.URL.Path, "/api/search/email/"):
			w.Write([]byte(`{"email":"u@x.com","breaches_found":0,"breaches":[],"status":"scanned"}`))
		case r.URL.Path == "/api/domains/monitor":
			if f.failMon {
				http.Error(w, "nope", 500)
				return
			}
			w.Write([]byte(`{"message":"Domain monitoring activated","id":"d2"}`))
		case r.URL.Path == "/api/scan/comprehensive":
			w.Write([]byte(`{"message":"Comprehensive scan completed","scanned_domains":1,"results":[{"domain":"x.com","breaches_found":1,"status":"success"}]}`))
		case strings.HasPrefix(r.URL.Path, "/api/alerts/") && r.Method == http.MethodDelete:
			if f.failDel {
				http.Error(w, "nope", 500)
				return
			}
			w.Write([]byte(`{"message":"Alert dismissed","modified":1}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestController(t *testing.T, f *fakeBackend) *Controller {
	t.Helper()
	s := httptest.NewServer(f.handler())
	t.Cleanup(s.Close)
	return New(api.NewClientAt(s.URL), nil, 0)
}

func TestRefreshStats_ReplacesSnapshot(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	if err := ctrl.RefreshStats(context.Background()); err != nil {
		t.Fatalf("RefreshStats: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Stats == nil {
		t.Fatalf("stats snapshot not set")
	}
	if snap.Stats.TotalBreaches != 5 || snap.Stats.MonitoredDomains != 2 ||
		snap.Stats.ActiveAlerts != 1 || snap.Stats.SystemStatus != "active" {
		t.Fatalf("stats wrong: %+v", snap.Stats)
	}
}

func TestRefreshStats_FailureKeepsPriorSnapshot(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)
	if err := ctrl.RefreshStats(context.Background()); err != nil {
		t.Fatalf("RefreshStats: %v", err)
	}

	f.statsOut = `not json at all`
	err := ctrl.RefreshStats(context.Background())
	snap := ctrl.Snapshot()
	if snap.Stats == nil || snap.Stats.TotalBreaches != 5 {
		t.Fatalf("prior snapshot lost: %+v, err=%v", snap.Stats, err)
	}
}

func TestSearch_BlankQueryIsNoOp(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	// seed a prior result
	if _, err := ctrl.Search(context.Background(), "evil.com", ModeDomain); err != nil {
		t.Fatalf("seed search: %v", err)
	}
	prior := ctrl.Snapshot().LastResult
	before := f.total()

	result, err := ctrl.Search(context.Background(), "   ", ModeDomain)
	if result != nil || err != nil {
		t.Fatalf("want nil,nil for blank query, got %+v, %v", result, err)
	}
	if f.total() != before {
		t.Fatalf("blank query hit the network")
	}
	snap := ctrl.Snapshot()
	if snap.LastResult != prior {
		t.Fatalf("prior result changed on blank query")
	}
}

func TestSearch_DomainModeNormalizesBreach(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	result, err := ctrl.Search(context.Background(), "evil.com", ModeDomain)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := f.count("GET /api/breaches/domain/evil.com"); got != 1 {
		t.Fatalf("want exactly one domain-search request, got %d", got)
	}
	if result.Count != 1 || len(result.Breaches) != 1 {
		t.Fatalf("result wrong: %+v", result)
	}
	b := result.Breaches[0]
	if !b.Verified {
		t.Fatalf("want verified=true, got %+v", b)
	}
	if len(b.DataClasses) != 1 || b.DataClasses[0] != "Emails" {
		t.Fatalf("data classes wrong: %v", b.DataClasses)
	}
	snap := ctrl.Snapshot()
	if snap.LastResult == nil || snap.LastResult.Query != "evil.com" {
		t.Fatalf("result not applied to state: %+v", snap.LastResult)
	}
	if snap.Searching {
		t.Fatalf("searching flag not cleared")
	}
}

func TestSearch_EmailModeUsesEmailEndpoint(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	if _, err := ctrl.Search(context.Background(), "u@x.com", ModeEmail); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := f.count("GET /api/search/email/u@x.com"); got != 1 {
		t.Fatalf("want one email-search request, got %d calls=%v", got, f.calls)
	}
}

func TestSearch_TransportFailureBecomesErrorMarker(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	s.Close() // connection refused from here on

	ctrl := New(api.NewClientAt(s.URL), nil, 0)
	result, err := ctrl.Search(context.Background(), "evil.com", ModeDomain)
	if err == nil {
		t.Fatalf("want transport error returned")
	}
	if result == nil || !result.Failed() {
		t.Fatalf("want generic failure marker, got %+v", result)
	}
	snap := ctrl.Snapshot()
	if snap.LastResult == nil || !snap.LastResult.Failed() {
		t.Fatalf("failure marker not stored: %+v", snap.LastResult)
	}
	if snap.Searching {
		t.Fatalf("searching flag not cleared after failure")
	}
}

func TestSearch_NewerRequestWinsRegardlessOfArrivalOrder(t *testing.T) {
	release := make(chan struct{})
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimPrefix(r.URL.Path, "/api/breaches/domain/")
		if q == "a.com" {
			<-release // hold the first search until the second has finished
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":0,"breaches":[]}`))
	}))
	defer s.Close()

	ctrl := New(api.NewClientAt(s.URL), nil, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.Search(context.Background(), "a.com", ModeDomain)
	}()

	// make sure the "a.com" search was issued first
	time.Sleep(50 * time.Millisecond)
	if _, err := ctrl.Search(context.Background(), "b.com", ModeDomain); err != nil {
		t.Fatalf("second search: %v", err)
	}
	close(release)
	wg.Wait()

	snap := ctrl.Snapshot()
	if snap.LastResult == nil || snap.LastResult.Query != "b.com" {
		t.Fatalf("stale search overwrote newer result: %+v", snap.LastResult)
	}
}

func TestAddDomainMonitor_SuccessClearsPendingAndRefreshes(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)
	ctrl.SetPendingDomain("x.com")

	if err := ctrl.AddDomainMonitor(context.Background(), "x.com"); err != nil {
		t.Fatalf("AddDomainMonitor: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.PendingDomain != "" {
		t.Fatalf("pending domain not cleared: %q", snap.PendingDomain)
	}
	if got := f.count("GET /api/domains/monitored"); got != 1 {
		t.Fatalf("want domain-list refresh, got %d", got)
	}
	if got := f.count("GET /api/dashboard/stats"); got != 1 {
		t.Fatalf("want stats refresh, got %d", got)
	}
}

func TestAddDomainMonitor_FailureLeavesStateUntouched(t *testing.T) {
	f := newFakeBackend()
	f.failMon = true
	ctrl := newTestController(t, f)
	ctrl.SetPendingDomain("x.com")

	if err := ctrl.AddDomainMonitor(context.Background(), "x.com"); err == nil {
		t.Fatalf("want error on HTTP failure")
	}
	snap := ctrl.Snapshot()
	if snap.PendingDomain != "x.com" {
		t.Fatalf("pending domain changed on failure: %q", snap.PendingDomain)
	}
	if got := f.count("GET /api/domains/monitored"); got != 0 {
		t.Fatalf("domain-list refresh should not run on failure, got %d", got)
	}
	if got := f.count("GET /api/dashboard/stats"); got != 0 {
		t.Fatalf("stats refresh should not run on failure, got %d", got)
	}
}

func TestAddDomainMonitor_BlankIsNoOp(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	if err := ctrl.AddDomainMonitor(context.Background(), "  "); err != nil {
		t.Fatalf("want nil for blank domain, got %v", err)
	}
	if got := f.count("POST /api/domains/monitor"); got != 0 {
		t.Fatalf("blank domain hit the network")
	}
}

func TestDismissAlert_AlwaysRefetchesAlerts(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	if err := ctrl.DismissAlert(context.Background(), "3"); err != nil {
		t.Fatalf("DismissAlert: %v", err)
	}
	if got := f.count("DELETE /api/alerts/3"); got != 1 {
		t.Fatalf("want one delete, got %d", got)
	}
	if got := f.count("GET /api/alerts"); got != 1 {
		t.Fatalf("want alert refresh after delete, got %d", got)
	}

	// delete failure still triggers the re-fetch and surfaces the error
	f.failDel = true
	if err := ctrl.DismissAlert(context.Background(), "3"); err == nil {
		t.Fatalf("want delete error surfaced")
	}
	if got := f.count("GET /api/alerts"); got != 2 {
		t.Fatalf("want alert refresh even on failed delete, got %d", got)
	}
}

func TestRunComprehensiveScan_RefreshesStatsAndAlerts(t *testing.T) {
	f := newFakeBackend()
	s := httptest.NewServer(f.handler())
	defer s.Close()
	ctrl := New(api.NewClientAt(s.URL), nil, 10*time.Millisecond)

	summary, err := ctrl.RunComprehensiveScan(context.Background())
	if err != nil {
		t.Fatalf("RunComprehensiveScan: %v", err)
	}
	if summary == nil || summary.ScannedDomains != 1 {
		t.Fatalf("summary wrong: %+v", summary)
	}
	if got := f.count("POST /api/scan/comprehensive"); got != 1 {
		t.Fatalf("want one scan trigger, got %d", got)
	}
	if got := f.count("GET /api/dashboard/stats"); got != 1 {
		t.Fatalf("want post-scan stats refresh, got %d", got)
	}
	if got := f.count("GET /api/alerts"); got != 1 {
		t.Fatalf("want post-scan alerts refresh, got %d", got)
	}
	snap := ctrl.Snapshot()
	if snap.Scanning {
		t.Fatalf("scanning flag not cleared")
	}
	if snap.Stats == nil {
		t.Fatalf("stats not refreshed after scan")
	}
}

func TestRunComprehensiveScan_NewerScanWinsRegardlessOfArrivalOrder(t *testing.T) {
	var (
		mu           sync.Mutex
		refreshes    = map[string]int{}
		scanArrivals int
	)
	gate1 := make(chan struct{})
	gate2 := make(chan struct{})
	arrived2 := make(chan struct{})

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/scan/comprehensive":
			mu.Lock()
			scanArrivals++
			n := scanArrivals
			mu.Unlock()
			if n == 1 {
				<-gate1 // hold the first scan until the second is in flight
			} else {
				close(arrived2)
				<-gate2
			}
			w.Write([]byte(`{"message":"Comprehensive scan completed","scanned_domains":0}`))
		case "/api/dashboard/stats":
			mu.Lock()
			refreshes["stats"]++
			mu.Unlock()
			w.Write([]byte(`{"total_breaches":5,"monitored_domains":2,"active_alerts":1,"system_status":"active"}`))
		case "/api/alerts":
			mu.Lock()
			refreshes["alerts"]++
			mu.Unlock()
			w.Write([]byte(`{"alerts":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer s.Close()

	ctrl := New(api.NewClientAt(s.URL), nil, 0)

	var wg1, wg2 sync.WaitGroup
	wg1.Add(1)
	go func() {
		defer wg1.Done()
		ctrl.RunComprehensiveScan(context.Background())
	}()

	// make sure the first scan was issued before the second
	time.Sleep(50 * time.Millisecond)
	wg2.Add(1)
	go func() {
		defer wg2.Done()
		ctrl.RunComprehensiveScan(context.Background())
	}()
	<-arrived2 // the second scan holds the latest sequence number now

	// let the stale scan finish while the newer one is still in flight
	close(gate1)
	wg1.Wait()

	mu.Lock()
	stale := refreshes["stats"] + refreshes["alerts"]
	mu.Unlock()
	if stale != 0 {
		t.Fatalf("stale scan ran post-scan refreshes: %v", refreshes)
	}
	if snap := ctrl.Snapshot(); !snap.Scanning {
		t.Fatalf("stale scan cleared the newer scan's flag")
	}

	close(gate2)
	wg2.Wait()

	mu.Lock()
	gotStats, gotAlerts := refreshes["stats"], refreshes["alerts"]
	mu.Unlock()
	if gotStats != 1 || gotAlerts != 1 {
		t.Fatalf("want exactly one post-scan refresh, from the newer scan: stats=%d alerts=%d", gotStats, gotAlerts)
	}
	if snap := ctrl.Snapshot(); snap.Scanning {
		t.Fatalf("scanning flag not cleared by the newer scan")
	}
}

func TestTriggerComprehensiveScan_NoSettleNoRefresh(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	summary, err := ctrl.TriggerComprehensiveScan(context.Background())
	if err != nil {
		t.Fatalf("TriggerComprehensiveScan: %v", err)
	}
	if summary == nil || summary.ScannedDomains != 1 {
		t.Fatalf("summary wrong: %+v", summary)
	}
	if got := f.count("POST /api/scan/comprehensive"); got != 1 {
		t.Fatalf("want one scan trigger, got %d", got)
	}
	if got := f.count("GET /api/dashboard/stats"); got != 0 {
		t.Fatalf("fire-and-forget trigger must not refresh stats, got %d", got)
	}
	if got := f.count("GET /api/alerts"); got != 0 {
		t.Fatalf("fire-and-forget trigger must not refresh alerts, got %d", got)
	}
	if snap := ctrl.Snapshot(); snap.Scanning {
		t.Fatalf("scanning flag not cleared")
	}
}

func TestSetters_ReflectedInSnapshot(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	ctrl.SetQuery("evil.com")
	ctrl.SetMode(ModeEmail)
	ctrl.SetPendingDomain("x.com")

	snap := ctrl.Snapshot()
	if snap.Query != "evil.com" || snap.Mode != ModeEmail || snap.PendingDomain != "x.com" {
		t.Fatalf("setters not reflected: %+v", snap)
	}

	// a search records the query and mode it actually ran
	if _, err := ctrl.Search(context.Background(), "bad.org", ModeDomain); err != nil {
		t.Fatalf("Search: %v", err)
	}
	snap = ctrl.Snapshot()
	if snap.Query != "bad.org" || snap.Mode != ModeDomain {
		t.Fatalf("search did not record query/mode: %+v", snap)
	}
}

func TestRefreshAll_PopulatesEverything(t *testing.T) {
	f := newFakeBackend()
	ctrl := newTestController(t, f)

	if err := ctrl.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Stats == nil || len(snap.Alerts) != 1 || len(snap.Domains) != 1 {
		t.Fatalf("incomplete refresh: %+v", snap)
	}
}
