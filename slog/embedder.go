package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/civdoc/civdoc"
)

// Ensure LoggingEmbedder implements civdoc.Embedder.
var _ civdoc.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with call logging.
type LoggingEmbedder struct {
	next   civdoc.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next civdoc.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs input size, vector
// dimensions and duration.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	begin := time.Now()
	vector, err := e.next.Embed(ctx, text)
	if err != nil {
		e.logger.Error("embed",
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	e.logger.Debug("embed",
		"chars", len(text),
		"dims", len(vector),
		"duration", time.Since(begin),
	)
	return vector, nil
}
