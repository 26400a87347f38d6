// Package mock provides test doubles for relay interfaces using function fields.
package mock

import (
	"context"

	"github.com/davidmoxey/relay"
)

// Interface compliance check.
var _ relay.Opener = (*Opener)(nil)

// Opener is a test double for relay.Opener.
// Set OpenFn before calling Open.
type Opener struct {
	OpenFn func(ctx context.Context, req relay.Request) (relay.Stream, error)
}

// Open delegates to OpenFn.
func (o *Opener) Open(ctx context.Context, req relay.Request) (relay.Stream, error) {
	return o.OpenFn(ctx, req)
}
