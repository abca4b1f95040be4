package riak

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/tautek/riak/pbc"
)

// Stream delivers the batches of a multi-reply request. Every reply frame
// carries a batch and a done flag; the stream ends after the batch of the
// frame with done set.
//
// A Stream owns its connection, since its reply frames occupy the socket
// until done. Always Close it. After an error the stream is broken and keeps
// returning that error.
type Stream[T any] struct {
	conn     *Connection
	reqCode  pbc.MessageCode
	respCode pbc.MessageCode
	build    func() ([]byte, error)
	parse    func(payload []byte) (batch []T, done bool, err error)
	logger   zerolog.Logger
	stats    *clientStatsCollector

	firstRequestMade bool
	done             bool
	err              error
}

// BucketStream yields bucket names.
type BucketStream = Stream[[]byte]

// KeyStream yields keys of one bucket.
type KeyStream = Stream[[]byte]

// Next returns the next batch, which may be empty. Once the final batch has
// been returned, Next returns ErrEndOfStream.
func (s *Stream[T]) Next(ctx context.Context) ([]T, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, ErrEndOfStream
	}

	batch, err := s.step(ctx)
	if err != nil {
		s.err = s.recover(err)
		return nil, s.err
	}
	return batch, nil
}

// step sends the request on first use, then reads and parses one frame.
func (s *Stream[T]) step(ctx context.Context) ([]T, error) {
	if !s.firstRequestMade {
		payload, err := s.build()
		if err != nil {
			return nil, err
		}
		if err := s.conn.Send(ctx, s.reqCode, payload); err != nil {
			return nil, err
		}
		s.firstRequestMade = true
		s.stats.recordSent(len(payload))
	}

	reply, err := s.conn.Receive(ctx, s.respCode)
	if err != nil {
		return nil, err
	}

	batch, done, err := s.parse(reply)
	if err != nil {
		return nil, err
	}

	s.done = done
	s.stats.recordStreamBatch(len(reply))
	return batch, nil
}

// recover reconnects after a failure so the socket is clean for the next
// user. A reconnect error replaces the first one.
func (s *Stream[T]) recover(err error) error {
	s.stats.recordError(err)
	s.logger.Warn().Err(err).Stringer("request", s.reqCode).Msg("stream failed, reconnecting")

	if rerr := s.conn.Reconnect(); rerr != nil {
		s.stats.recordError(rerr)
		return rerr
	}
	s.stats.recordReconnect()
	return err
}

// All drains the stream and returns every batch concatenated.
func (s *Stream[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		batch, err := s.Next(ctx)
		if errors.Is(err, ErrEndOfStream) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
}

// Done reports whether the final batch has been delivered.
func (s *Stream[T]) Done() bool {
	return s.done
}

// Close closes the stream connection.
func (s *Stream[T]) Close() error {
	return s.conn.Close()
}

// openStream dials a dedicated connection with the client settings.
func openStream[T any](
	ctx context.Context,
	c *Client,
	reqCode, respCode pbc.MessageCode,
	build func() ([]byte, error),
	parse func(payload []byte) ([]T, bool, error),
) (*Stream[T], error) {
	conn, err := dialConnection(ctx, c.cfg)
	if err != nil {
		c.stats.recordError(err)
		return nil, err
	}
	c.stats.recordStreamOpened()

	return &Stream[T]{
		conn:     conn,
		reqCode:  reqCode,
		respCode: respCode,
		build:    build,
		parse:    parse,
		logger:   c.logger,
		stats:    c.stats,
	}, nil
}
