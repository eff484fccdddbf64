package usage

import (
	"context"
	"math"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	overviewWindow        = 7 * 24 * time.Hour
	errorReportWindow     = 24 * time.Hour
	criticalErrorsAtLeast = 11

	userReportWindow = 30 * 24 * time.Hour
	topUsersLimit    = 10
)

// Overview summarizes the last seven days of traffic, features and users.
func (r *Recorder) Overview(ctx context.Context) (Overview, error) {
	since := r.now().UTC().Add(-overviewWindow)

	var (
		metrics  []APIMetric
		features []FeatureEvent
		records  []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metrics, err = r.store.MetricsSince(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		features, err = r.store.FeaturesSince(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = r.store.RecordsSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	return buildOverview(metrics, features, records), nil
}

func buildOverview(metrics []APIMetric, features []FeatureEvent, records []Record) Overview {
	out := Overview{
		Period:       "last_7_days",
		StatusCodes:  make(map[int]int),
		FeatureUsage: make(map[string]int),
	}

	var totalMs float64
	for _, m := range metrics {
		out.TotalRequests++
		totalMs += m.DurationMs
		out.StatusCodes[m.StatusCode]++
	}
	if out.TotalRequests > 0 {
		out.AvgResponseTimeSeconds = round(totalMs/1000.0/float64(out.TotalRequests), 3)
		out.SuccessRate = round(float64(out.StatusCodes[http.StatusOK])/float64(out.TotalRequests)*100, 1)
	}

	for _, e := range features {
		name := e.Feature
		if name == "" {
			name = "unknown"
		}
		out.FeatureUsage[name]++
	}
	if len(out.FeatureUsage) > 0 {
		names := make([]string, 0, len(out.FeatureUsage))
		for name := range out.FeatureUsage {
			names = append(names, name)
		}
		// Ties resolve alphabetically.
		sort.Slice(names, func(i, j int) bool {
			if out.FeatureUsage[names[i]] != out.FeatureUsage[names[j]] {
				return out.FeatureUsage[names[i]] > out.FeatureUsage[names[j]]
			}
			return names[i] < names[j]
		})
		out.MostUsedFeature = &names[0]
	}

	users := make(map[string]struct{})
	for _, rec := range records {
		key := rec.Email
		if key == "" {
			key = rec.UserID
		}
		users[key] = struct{}{}
	}
	out.ActiveUsers = len(users)
	return out
}

// Errors groups failed requests from the last 24 hours by code and endpoint.
func (r *Recorder) Errors(ctx context.Context) (ErrorReport, error) {
	metrics, err := r.store.MetricsSince(ctx, r.now().UTC().Add(-errorReportWindow))
	if err != nil {
		return ErrorReport{}, err
	}
	report := ErrorReport{
		Period:            "last_24_hours",
		ErrorsByCode:      make(map[int]int),
		ErrorsByEndpoint:  make(map[string]EndpointError),
		CriticalEndpoints: []string{},
	}
	for _, m := range metrics {
		if m.StatusCode < http.StatusBadRequest {
			continue
		}
		report.TotalErrors++
		report.ErrorsByCode[m.StatusCode]++
		ep := report.ErrorsByEndpoint[m.Endpoint]
		if ep.Codes == nil {
			ep.Codes = make(map[int]int)
		}
		ep.Count++
		ep.Codes[m.StatusCode]++
		report.ErrorsByEndpoint[m.Endpoint] = ep
	}
	for endpoint, ep := range report.ErrorsByEndpoint {
		if ep.Count >= criticalErrorsAtLeast {
			report.CriticalEndpoints = append(report.CriticalEndpoints, endpoint)
		}
	}
	sort.Strings(report.CriticalEndpoints)
	return report, nil
}

// Users ranks the last thirty days of generations by user. A user is active
// with a generation in the last seven days and counts as pro when their most
// recent record was on a paid tier.
func (r *Recorder) Users(ctx context.Context) (UserAnalytics, error) {
	now := r.now().UTC()
	records, err := r.store.RecordsSince(ctx, now.Add(-userReportWindow))
	if err != nil {
		return UserAnalytics{}, err
	}
	return buildUserAnalytics(records, now.Add(-overviewWindow)), nil
}

func buildUserAnalytics(records []Record, activeSince time.Time) UserAnalytics {
	type activity struct {
		UserActivity
		pro bool
	}
	byUser := make(map[string]*activity)
	for _, rec := range records {
		key := rec.Email
		if key == "" {
			key = rec.UserID
		}
		a, ok := byUser[key]
		if !ok {
			a = &activity{UserActivity: UserActivity{Email: rec.Email, UserID: rec.UserID}}
			byUser[key] = a
		}
		a.Generations++
		if !rec.CreatedAt.Before(a.LastSeen) {
			a.LastSeen = rec.CreatedAt
			a.Tier = rec.Tier
			a.pro = rec.Pro
		}
	}

	out := UserAnalytics{Period: "last_30_days", TopUsers: []UserActivity{}}
	ranked := make([]UserActivity, 0, len(byUser))
	for _, a := range byUser {
		out.TotalUsers++
		if !a.LastSeen.Before(activeSince) {
			out.ActiveUsers++
		}
		if a.pro {
			out.ProUsers++
		}
		if a.Tier == "" {
			a.Tier = "free"
		}
		ranked = append(ranked, a.UserActivity)
	}
	out.FreeUsers = out.TotalUsers - out.ProUsers
	if out.TotalUsers > 0 {
		out.ConversionRate = round(float64(out.ProUsers)/float64(out.TotalUsers)*100, 1)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Generations != ranked[j].Generations {
			return ranked[i].Generations > ranked[j].Generations
		}
		return ranked[i].Email+ranked[i].UserID < ranked[j].Email+ranked[j].UserID
	})
	if len(ranked) > topUsersLimit {
		ranked = ranked[:topUsersLimit]
	}
	out.TopUsers = append(out.TopUsers, ranked...)
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
