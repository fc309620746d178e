package database

import (
	"context"
	"database/sql"
	"time"
)

// HealthStatus is the connectivity-plus-pool snapshot served by the robot
// daemon's /healthz endpoint.
type HealthStatus struct {
	Status          string        `json:"status"`
	ResponseTime    int64         `json:"response_time_ms"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	MaxOpenConns    int           `json:"max_open_conns"`
}

// Health pings the database and reports pool statistics. The error is
// non-nil exactly when Status is "unhealthy", so callers can branch on
// either.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()

	if err := c.DB.DB.PingContext(ctx); err != nil {
		return &HealthStatus{
			Status:       "unhealthy",
			ResponseTime: time.Since(start).Milliseconds(),
		}, err
	}

	return poolStatus(c.DB.DB.Stats(), time.Since(start)), nil
}

func poolStatus(stats sql.DBStats, elapsed time.Duration) *HealthStatus {
	return &HealthStatus{
		Status:          "healthy",
		ResponseTime:    elapsed.Milliseconds(),
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		WaitCount:       stats.WaitCount,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}
