// Package session holds the dashboard's client-side view state and
// orchestrates the requests that feed it. All server-derived state (stats,
// alerts, monitored domains, search results) is replaced wholesale after a
// round trip and never mutated locally; the only client-owned truth is the
// query text, the search mode, the pending-new-domain text, and the in-flight
// flags.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"breachwatch-cli/internal/api"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type SearchMode string

const (
	ModeDomain SearchMode = "domain"
	ModeEmail  SearchMode = "email"
)

// Snapshot is a point-in-time copy of the view state, safe for a renderer to
// hold across later controller activity.
type Snapshot struct {
	Stats         *api.DashboardStats
	Alerts        []api.Alert
	Domains       []api.MonitoredDomain
	Query         string
	Mode          SearchMode
	LastResult    *api.SearchResult
	PendingDomain string
	Searching     bool
	Scanning      bool
}

// Controller is the dashboard session controller. Rapid user interaction can
// drive its operations concurrently; shared state sits behind a mutex, and
// search and scan carry per-operation sequence numbers so that a completion
// is applied only if it belongs to the latest issued request. A slow response
// can therefore never clobber the state of a newer one.
type Controller struct {
	client     *api.Client
	logger     *zap.Logger
	scanSettle time.Duration

	mu            sync.Mutex
	stats         *api.DashboardStats
	alerts        []api.Alert
	domains       []api.MonitoredDomain
	query         string
	mode          SearchMode
	lastResult    *api.SearchResult
	pendingDomain string
	searching     bool
	scanning      bool
	searchSeq     uint64
	scanSeq       uint64
}

// New builds a controller. scanSettle is how long to wait after triggering a
// comprehensive scan before polling its effects; the backend gives no
// completion signal, so the delay is a heuristic, not an acknowledgment.
func New(client *api.Client, logger *zap.Logger, scanSettle time.Duration) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:     client,
		logger:     logger,
		scanSettle: scanSettle,
		alerts:     []api.Alert{},
		domains:    []api.MonitoredDomain{},
		mode:       ModeDomain,
	}
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		Stats:         c.stats,
		Alerts:        append([]api.Alert(nil), c.alerts...),
		Domains:       append([]api.MonitoredDomain(nil), c.domains...),
		Query:         c.query,
		Mode:          c.mode,
		LastResult:    c.lastResult,
		PendingDomain: c.pendingDomain,
		Searching:     c.searching,
		Scanning:      c.scanning,
	}
	return snap
}

func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Controller) SetMode(m SearchMode) {
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

func (c *Controller) SetPendingDomain(d string) {
	c.mu.Lock()
	c.pendingDomain = d
	c.mu.Unlock()
}

// RefreshStats replaces the stats snapshot. On failure the prior snapshot is
// retained; the error is logged and returned for the caller to surface or
// ignore.
func (c *Controller) RefreshStats(ctx context.Context) error {
	stats, err := c.client.DashboardStats(ctx)
	if err != nil {
		c.logger.Warn("stats_refresh_failed", zap.Error(err))
		return err
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// RefreshAlerts replaces the alert list, defaulting to empty when the
// response carries none. Failure policy matches RefreshStats.
func (c *Controller) RefreshAlerts(ctx context.Context) error {
	alerts, err := c.client.Alerts(ctx)
	if err != nil {
		c.logger.Warn("alerts_refresh_failed", zap.Error(err))
		return err
	}
	if alerts == nil {
		alerts = []api.Alert{}
	}
	c.mu.Lock()
	c.alerts = alerts
	c.mu.Unlock()
	return nil
}

// RefreshMonitoredDomains replaces the monitored-domain list. Failure policy
// matches RefreshStats.
func (c *Controller) RefreshMonitoredDomains(ctx context.Context) error {
	domains, err := c.client.MonitoredDomains(ctx)
	if err != nil {
		c.logger.Warn("domains_refresh_failed", zap.Error(err))
		return err
	}
	if domains == nil {
		domains = []api.MonitoredDomain{}
	}
	c.mu.Lock()
	c.domains = domains
	c.mu.Unlock()
	return nil
}

// RefreshAll runs the three background refreshes and combines their errors.
func (c *Controller) RefreshAll(ctx context.Context) error {
	return multierr.Combine(
		c.RefreshStats(ctx),
		c.RefreshAlerts(ctx),
		c.RefreshMonitoredDomains(ctx),
	)
}

// Search looks up breaches for the query in the given mode. A blank query is
// a no-op that leaves prior state untouched. A transport failure is recorded
// as a generic failure marker in the result slot, never as a fault. The
// result is applied only if no newer search was issued while this one was in
// flight.
func (c *Controller) Search(ctx context.Context, query string, mode SearchMode) (*api.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq
	c.query = query
	c.mode = mode
	c.lastResult = nil
	c.searching = true
	c.mu.Unlock()

	var result *api.SearchResult
	var err error
	switch mode {
	case ModeEmail:
		result, err = c.client.EmailSearch(ctx, query)
	default:
		result, err = c.client.DomainBreaches(ctx, query)
	}
	if err != nil {
		c.logger.Warn("search_failed",
			zap.String("query", query),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		result = &api.SearchResult{Query: query, Error: "search request failed"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.searchSeq {
		// superseded by a newer search; discard the stale completion
		return result, err
	}
	c.lastResult = result
	c.searching = false
	return result, err
}

// AddDomainMonitor registers a domain for monitoring. Blank input is a
// no-op. On success the pending text is cleared and the domain list and
// stats are re-fetched; on failure nothing changes and the error is
// returned.
func (c *Controller) AddDomainMonitor(ctx context.Context, domain string) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil
	}

	if err := c.client.MonitorDomain(ctx, domain, nil); err != nil {
		c.logger.Warn("monitor_add_failed", zap.String("domain", domain), zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.pendingDomain = ""
	c.mu.Unlock()

	if err := multierr.Append(
		c.RefreshMonitoredDomains(ctx),
		c.RefreshStats(ctx),
	); err != nil {
		c.logger.Warn("post_monitor_refresh_failed", zap.Error(err))
	}
	return nil
}

// RunComprehensiveScan triggers a sweep of all monitored domains, waits the
// configured settle delay, then re-fetches stats and alerts. The delay gives
// the asynchronous backend job time to land its effects; it is not a
// completion acknowledgment. Like Search, the post-scan refresh and flag
// clear happen only if no newer scan was issued meanwhile.
func (c *Controller) RunComprehensiveScan(ctx context.Context) (*api.ScanSummary, error) {
	c.mu.Lock()
	c.scanSeq++
	seq := c.scanSeq
	c.scanning = true
	c.mu.Unlock()

	summary, err := c.client.ComprehensiveScan(ctx)
	if err != nil {
		c.logger.Warn("scan_trigger_failed", zap.Error(err))
	}

	if c.scanSettle > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(c.scanSettle):
		}
	}

	c.mu.Lock()
	latest := seq == c.scanSeq
	c.mu.Unlock()
	if !latest {
		// a newer scan owns the flag and the refresh now
		return summary, err
	}

	if rerr := multierr.Append(c.RefreshStats(ctx), c.RefreshAlerts(ctx)); rerr != nil {
		c.logger.Warn("post_scan_refresh_failed", zap.Error(rerr))
	}

	c.mu.Lock()
	if seq == c.scanSeq {
		c.scanning = false
	}
	c.mu.Unlock()
	return summary, err
}

// TriggerComprehensiveScan fires the scan without waiting or re-fetching:
// the backend job runs with eventual, unconfirmed effect. It still takes a
// scan sequence number, so an in-flight RunComprehensiveScan that it
// supersedes will skip its own refresh and flag clear.
func (c *Controller) TriggerComprehensiveScan(ctx context.Context) (*api.ScanSummary, error) {
	c.mu.Lock()
	c.scanSeq++
	seq := c.scanSeq
	c.scanning = true
	c.mu.Unlock()

	summary, err := c.client.ComprehensiveScan(ctx)
	if err != nil {
		c.logger.Warn("scan_trigger_failed", zap.Error(err))
	}

	c.mu.Lock()
	if seq == c.scanSeq {
		c.scanning = false
	}
	c.mu.Unlock()
	return summary, err
}

// DismissAlert deletes an alert by id, then re-fetches the alert list
// regardless of whether the delete succeeded. The delete error, if any, is
// returned.
func (c *Controller) DismissAlert(ctx context.Context, id string) error {
	delErr := c.client.DismissAlert(ctx, id)
	if delErr != nil {
		c.logger.Warn("alert_dismiss_failed", zap.String("alert_id", id), zap.Error(delErr))
	}
	// re-fetch unconditionally; RefreshAlerts logs its own failures
	_ = c.RefreshAlerts(ctx)
	return delErr
}
