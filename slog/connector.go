// Package slog provides logging decorators for civdoc interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/civdoc/civdoc"
)

// Ensure LoggingConnector implements civdoc.Connector.
var _ civdoc.Connector = (*LoggingConnector)(nil)

// LoggingConnector wraps a Connector with fetch logging.
type LoggingConnector struct {
	next   civdoc.Connector
	logger *slog.Logger
}

// NewLoggingConnector creates a new LoggingConnector.
func NewLoggingConnector(next civdoc.Connector, logger *slog.Logger) *LoggingConnector {
	return &LoggingConnector{next: next, logger: logger}
}

// Name delegates to the wrapped connector.
func (c *LoggingConnector) Name() string {
	return c.next.Name()
}

// Fetch delegates to the wrapped connector and logs the document count
// and duration.
func (c *LoggingConnector) Fetch(ctx context.Context) []*civdoc.Document {
	begin := time.Now()
	docs := c.next.Fetch(ctx)
	c.logger.Info("fetch",
		"connector", c.next.Name(),
		"documents", len(docs),
		"duration", time.Since(begin),
	)
	return docs
}
