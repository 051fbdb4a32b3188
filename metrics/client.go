// Package metrics ships per-second engine statistics to InfluxDB. Without an
// address the client runs as a stub that only logs.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/influxdata/influxdb/client/v2"
)

// Measurement is the series every sample is written to.
const Measurement = "engine_stats"

type Client struct {
	isStub bool

	influxdbClient client.Client
	database       string
	appName        string
}

// NewClient connects to the InfluxDB HTTP endpoint at addr. An empty addr
// yields a stub client.
func NewClient(addr, db, appName string) (*Client, error) {
	stub := &Client{isStub: true, appName: appName}
	if addr == "" {
		slog.Debug("influxdb: no client configured")
		return stub, nil
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:    addr,
		Timeout: 2 * time.Second,
	})
	if err != nil {
		return stub, fmt.Errorf("influxdb client: %w", err)
	}

	slog.Info("influxdb reporting enabled", "addr", addr, "db", db)
	return &Client{
		influxdbClient: c,
		database:       db,
		appName:        appName,
	}, nil
}

// Stub reports whether samples are only logged.
func (c *Client) Stub() bool { return c.isStub }

// Write sends one sample tagged with the app name and side.
func (c *Client) Write(side string, fields map[string]any, at time.Time) error {
	if c.isStub {
		args := make([]any, 0, 2+2*len(fields))
		args = append(args, "side", side)
		for k, v := range fields {
			args = append(args, k, v)
		}
		slog.Debug("stats", args...)
		return nil
	}

	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: c.database, Precision: "ms"})
	if err != nil {
		return fmt.Errorf("batch points: %w", err)
	}
	tags := map[string]string{"app": c.appName, "side": side}
	pt, err := client.NewPoint(Measurement, tags, fields, at)
	if err != nil {
		return fmt.Errorf("new point: %w", err)
	}
	bp.AddPoint(pt)
	if err := c.influxdbClient.Write(bp); err != nil {
		return fmt.Errorf("influxdb write: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.isStub {
		return nil
	}
	return c.influxdbClient.Close()
}
