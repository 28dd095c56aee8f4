package stranalyzer

import "context"

// HealthStatus is the aggregated health of the database and search index.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component -> "ok", "error" or "missing"
}

// Health checks the database and the search index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	return HealthStatus{Status: string(report.Status), Checks: report.Strings()}
}
