package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"breachwatch-cli/internal/config"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	restyClient *resty.Client
}

// NewClient builds a client against the configured base URL.
func NewClient() *Client {
	return NewClientAt(config.GetBaseURL())
}

// NewClientAt builds a client against an explicit base URL. Used by tests and
// anywhere the configuration should not be consulted.
func NewClientAt(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	return &Client{restyClient: client}
}

func (c *Client) getAuthHeader() map[string]string {
	apiKey := config.GetAPIKey()
	if apiKey == "" {
		return nil
	}
	return map[string]string{"X-API-KEY": apiKey}
}

// Health checks the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	var info HealthInfo
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetResult(&info).
		Get("/api/health")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	return &info, nil
}

// DashboardStats fetches the dashboard counters.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetResult(&stats).
		Get("/api/dashboard/stats")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	return &stats, nil
}

// Alerts fetches the current alert list, newest first.
func (c *Client) Alerts(ctx context.Context) ([]Alert, error) {
	var body struct {
		Alerts []Alert `json:"alerts"`
	}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetResult(&body).
		Get("/api/alerts")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	return body.Alerts, nil
}

// MonitoredDomains fetches the list of domains under monitoring.
func (c *Client) MonitoredDomains(ctx context.Context) ([]MonitoredDomain, error) {
	var body struct {
		Domains []MonitoredDomain `json:"domains"`
	}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetResult(&body).
		Get("/api/domains/monitored")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	return body.Domains, nil
}

// DomainBreaches looks up breaches mentioning the given domain.
func (c *Client) DomainBreaches(ctx context.Context, domain string) (*SearchResult, error) {
	var result SearchResult
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetResult(&result).
		Get("/api/breaches/domain/" + url.PathEscape(domain))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	result.Query = domain
	return &result, nil
}

// EmailSearch looks up breaches affecting the given email address.
func (c *Client) EmailSearch(ctx context.Context, email string) (*SearchResult, error) {
	var result SearchResult
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetResult(&result).
		Get("/api/search/email/" + url.PathEscape(email))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	result.Query = email
	return &result, nil
}

// MonitorDomain asks the backend to start monitoring a domain. A 2xx status
// is the only success signal; the body is not consumed.
func (c *Client) MonitorDomain(ctx context.Context, domain string, emailPatterns []string) error {
	if emailPatterns == nil {
		emailPatterns = []string{}
	}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		SetBody(MonitorRequest{Domain: domain, EmailPatterns: emailPatterns}).
		Post("/api/domains/monitor")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("API error: %s", resp.Status())
	}
	return nil
}

// ComprehensiveScan triggers a sweep of all monitored domains. The backend
// may answer with a per-domain summary; older deployments return an empty
// body, so a summary that fails to parse is not an error.
func (c *Client) ComprehensiveScan(ctx context.Context) (*ScanSummary, error) {
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		Post("/api/scan/comprehensive")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error: %s", resp.Status())
	}
	var summary ScanSummary
	if err := json.Unmarshal(resp.Body(), &summary); err != nil {
		return nil, nil
	}
	return &summary, nil
}

// DismissAlert soft-deletes an alert by id. A 2xx status is the only success
// signal; the body is not consumed.
func (c *Client) DismissAlert(ctx context.Context, id string) error {
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(c.getAuthHeader()).
		Delete("/api/alerts/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("API error: %s", resp.Status())
	}
	return nil
}
