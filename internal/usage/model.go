package usage

import "time"

// Record is one successful generation, appended for every served request.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Tier       string    `json:"tier"`
	Pro        bool      `json:"pro"`
	Technical  int       `json:"technical_qs"`
	Behavioral int       `json:"behavioral_qs"`
	Followup   int       `json:"followup_qs"`
	Total      int       `json:"total_qs"`
	Insights   bool      `json:"has_insights"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeatureEvent marks use of a named feature.
type FeatureEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Feature   string         `json:"feature"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// APIMetric is one completed HTTP request.
type APIMetric struct {
	ID         string    `json:"id"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	DurationMs float64   `json:"duration_ms"`
	UserID     string    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary counts what a generation produced.
type Summary struct {
	Technical  int
	Behavioral int
	Followup   int
	Insights   bool
}

// Total returns the number of questions.
func (s Summary) Total() int {
	return s.Technical + s.Behavioral + s.Followup
}

// Snapshot is a caller's quota position for today.
type Snapshot struct {
	Tier      string `json:"tier"`
	Unlimited bool   `json:"unlimited"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Day       string `json:"day"`
}

// Overview aggregates recent activity for admins.
type Overview struct {
	Period                 string         `json:"period"`
	TotalRequests          int            `json:"total_requests"`
	AvgResponseTimeSeconds float64        `json:"avg_response_time_seconds"`
	StatusCodes            map[int]int    `json:"status_codes"`
	SuccessRate            float64        `json:"success_rate"`
	FeatureUsage           map[string]int `json:"feature_usage"`
	ActiveUsers            int            `json:"active_users"`
	MostUsedFeature        *string        `json:"most_used_feature"`
}

// ErrorReport groups recent failed requests.
type ErrorReport struct {
	Period            string                   `json:"period"`
	TotalErrors       int                      `json:"total_errors"`
	ErrorsByCode      map[int]int              `json:"errors_by_code"`
	ErrorsByEndpoint  map[string]EndpointError `json:"errors_by_endpoint"`
	CriticalEndpoints []string                 `json:"critical_endpoints"`
}

// EndpointError counts failures of one endpoint.
type EndpointError struct {
	Count int         `json:"count"`
	Codes map[int]int `json:"codes"`
}

// UserAnalytics summarizes who generated questions over the last thirty days.
type UserAnalytics struct {
	Period         string         `json:"period"`
	TotalUsers     int            `json:"total_users"`
	ActiveUsers    int            `json:"active_users"`
	ProUsers       int            `json:"pro_users"`
	FreeUsers      int            `json:"free_users"`
	ConversionRate float64        `json:"conversion_rate"`
	TopUsers       []UserActivity `json:"top_users"`
}

// UserActivity is one user's generation count.
type UserActivity struct {
	Email       string    `json:"email,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Generations int       `json:"generations"`
	Tier        string    `json:"tier"`
	LastSeen    time.Time `json:"last_seen"`
}
