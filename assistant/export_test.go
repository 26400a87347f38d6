package assistant

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/davidmoxey/relay"
)

// NewStream exposes the unexported stream constructor so transport tests
// can feed it arbitrary readers.
func NewStream(ctx context.Context, body io.ReadCloser, logger *zap.Logger) relay.Stream {
	return newStream(ctx, body, logger)
}
