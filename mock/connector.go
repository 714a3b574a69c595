package mock

import (
	"context"

	"github.com/civdoc/civdoc"
)

var _ civdoc.Connector = (*Connector)(nil)

// Connector is a mock implementation of civdoc.Connector.
type Connector struct {
	NameFn  func() string
	FetchFn func(ctx context.Context) []*civdoc.Document
}

func (c *Connector) Name() string {
	if c.NameFn == nil {
		return "mock"
	}
	return c.NameFn()
}

func (c *Connector) Fetch(ctx context.Context) []*civdoc.Document {
	return c.FetchFn(ctx)
}
