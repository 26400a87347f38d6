package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/davidmoxey/relay"
)

var frameDelim = []byte("\n\n")

// stream implements [relay.Stream] over an HTTP response body. Bytes are
// accumulated in a raw buffer and carved into frames at blank-line
// boundaries; the trailing incomplete piece stays buffered until the next
// read completes it, so neither a frame nor a multi-byte rune is ever
// corrupted by a chunk boundary.
type stream struct {
	ctx    context.Context
	body   io.ReadCloser
	logger *zap.Logger

	readBuf []byte
	buf     []byte
	pending []relay.Event

	eof    bool
	err    error
	closed bool
}

// Interface compliance check.
var _ relay.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger *zap.Logger) *stream {
	return &stream{
		ctx:     ctx,
		body:    body,
		logger:  logger,
		readBuf: make([]byte, 4096),
	}
}

// Next returns the next decoded event. io.EOF signals normal completion.
// Events decoded before a read failure are delivered before the failure
// surfaces, so partial progress is never discarded. When the context is
// cancelled the context's error is returned instead of the read error.
func (s *stream) Next() (relay.Event, error) {
	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		if s.eof {
			return nil, io.EOF
		}
		if s.closed {
			return nil, relay.ErrStreamClosed
		}

		n, err := s.body.Read(s.readBuf)
		if n > 0 {
			s.buf = append(s.buf, s.readBuf[:n]...)
			s.splitFrames()
		}
		switch {
		case err == io.EOF:
			// Producers may omit the delimiter after the final frame.
			s.eof = true
			s.flushTail()
		case err != nil:
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				s.err = ctxErr
			} else {
				s.err = fmt.Errorf("assistant: read stream: %w", err)
			}
		}
	}
}

// splitFrames carves fully delimited frames off the front of the buffer,
// retaining the final incomplete piece as the new buffer.
func (s *stream) splitFrames() {
	for {
		i := bytes.Index(s.buf, frameDelim)
		if i < 0 {
			return
		}
		block := string(s.buf[:i])
		s.buf = s.buf[i+len(frameDelim):]
		s.parseBlock(block)
	}
}

func (s *stream) flushTail() {
	block := string(s.buf)
	s.buf = nil
	s.parseBlock(block)
}

func (s *stream) parseBlock(block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	evt, err := ParseFrame(block)
	if err != nil {
		s.logger.Warn("dropping malformed frame", zap.Error(err))
		return
	}
	s.pending = append(s.pending, evt)
}

// Close closes the underlying response body. Pending reads fail promptly;
// already decoded events are discarded with the stream.
func (s *stream) Close() error {
	s.closed = true
	return s.body.Close()
}
