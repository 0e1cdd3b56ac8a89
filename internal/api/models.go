package api

import "encoding/json"

// Alert severities as emitted by the monitor backend.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type HealthInfo struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

type DashboardStats struct {
	TotalBreaches    int      `json:"total_breaches"`
	MonitoredDomains int      `json:"monitored_domains"`
	ActiveAlerts     int      `json:"active_alerts"`
	SystemStatus     string   `json:"system_status"`
	RecentBreaches   []Breach `json:"recent_breaches,omitempty"`
}

type Alert struct {
	ID         string `json:"id"`
	Domain     string `json:"domain"`
	BreachName string `json:"breach_name"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at"`
	Status     string `json:"status,omitempty"`
}

type MonitoredDomain struct {
	ID            string   `json:"id"`
	Domain        string   `json:"domain"`
	EmailPatterns []string `json:"email_patterns,omitempty"`
	CreatedAt     string   `json:"created_at"`
	Status        string   `json:"status,omitempty"`
}

// Breach is the canonical breach record. The backend serves two naming
// conventions for the same fields: PascalCase when a record comes straight
// from the upstream breach feed (Name, IsVerified, DataClasses, ...) and
// snake_case once it has been stored (breach_name, verified, data_classes,
// ...). UnmarshalJSON accepts either, preferring the PascalCase variant when
// both are present, so the ambiguity never leaves this package.
type Breach struct {
	Name        string   `json:"breach_name"`
	Domain      string   `json:"domain"`
	Description string   `json:"description"`
	Verified    bool     `json:"verified"`
	BreachDate  string   `json:"breach_date"`
	DataClasses []string `json:"data_classes"`
	PwnCount    int      `json:"emails_compromised"`
}

func (b *Breach) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         string   `json:"Name"`
		BreachName   string   `json:"breach_name"`
		Domain       string   `json:"Domain"`
		DomainSnake  string   `json:"domain"`
		Desc         string   `json:"Description"`
		DescSnake    string   `json:"description"`
		IsVerified   *bool    `json:"IsVerified"`
		Verified     *bool    `json:"verified"`
		BreachDate   string   `json:"BreachDate"`
		DateSnake    string   `json:"breach_date"`
		DataClasses  []string `json:"DataClasses"`
		ClassesSnake []string `json:"data_classes"`
		PwnCount     *int     `json:"PwnCount"`
		Compromised  *int     `json:"emails_compromised"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Name = firstNonEmpty(raw.Name, raw.BreachName)
	b.Domain = firstNonEmpty(raw.Domain, raw.DomainSnake)
	b.Description = firstNonEmpty(raw.Desc, raw.DescSnake)
	b.BreachDate = firstNonEmpty(raw.BreachDate, raw.DateSnake)

	if raw.IsVerified != nil {
		b.Verified = *raw.IsVerified
	} else if raw.Verified != nil {
		b.Verified = *raw.Verified
	}

	if raw.DataClasses != nil {
		b.DataClasses = raw.DataClasses
	} else {
		b.DataClasses = raw.ClassesSnake
	}

	if raw.PwnCount != nil {
		b.PwnCount = *raw.PwnCount
	} else if raw.Compromised != nil {
		b.PwnCount = *raw.Compromised
	}

	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// SearchResult is the body of a domain or email breach lookup. A server-side
// failure may arrive as a 200 with an error field; that is carried through as
// data, not turned into a transport error.
type SearchResult struct {
	Query    string   `json:"query,omitempty"`
	Email    string   `json:"email,omitempty"`
	Count    int      `json:"count"`
	Breaches []Breach `json:"breaches"`
	Status   string   `json:"status,omitempty"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// The count arrives as "count" on domain lookups and "breaches_found" on
// email lookups; a present "count" key wins even when zero.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type alias SearchResult
	aux := struct {
		*alias
		Count         *int `json:"count"`
		BreachesFound *int `json:"breaches_found"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Count != nil:
		r.Count = *aux.Count
	case aux.BreachesFound != nil:
		r.Count = *aux.BreachesFound
	}
	return nil
}

// Failed reports whether the result encodes a server- or transport-level
// failure rather than an empty result set.
func (r *SearchResult) Failed() bool {
	return r != nil && r.Error != ""
}

type MonitorRequest struct {
	Domain        string   `json:"domain"`
	EmailPatterns []string `json:"email_patterns"`
}

type DomainScanResult struct {
	Domain        string `json:"domain"`
	BreachesFound int    `json:"breaches_found,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

type ScanSummary struct {
	Message        string             `json:"message"`
	ScannedDomains int                `json:"scanned_domains"`
	Results        []DomainScanResult `json:"results,omitempty"`
	Error          string             `json:"error,omitempty"`
}
