package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// APIMetric describes one completed request.
type APIMetric struct {
	Endpoint   string
	Method     string
	StatusCode int
	Duration   time.Duration
	UserID     string
	At         time.Time
}

// MetricSink receives per-request metrics.
type MetricSink interface {
	RecordRequest(ctx context.Context, m APIMetric)
}

// APIMetrics reports every non-preflight request to sink after it completes.
func APIMetrics(sink MetricSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		sink.RecordRequest(context.WithoutCancel(c.Request.Context()), APIMetric{
			Endpoint:   endpoint,
			Method:     c.Request.Method,
			StatusCode: c.Writer.Status(),
			Duration:   time.Since(start),
			UserID:     UserIDFromContext(c),
			At:         start.UTC(),
		})
	}
}
