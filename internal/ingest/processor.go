// Package ingest consumes device sync requests from Kafka and commits them
// through the domain service.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/events"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded sync requests.
type Handler interface {
	Handle(context.Context, Request) error
}

// Request is the decoded representation of a sync request record.
type Request struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	UserID    string
	Records   []domain.DeviceRecord
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls sync requests from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader  Reader
	handler Handler
	logger  *log.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  log.New(log.Writer(), "[ingest] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes sync requests until the context
// is cancelled. Offsets are committed only after a request is handled;
// requests that can never succeed (undecodable, malformed batch) are
// committed and dropped to avoid poison-pill loops.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			continue
		}

		request, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.logger.Printf("decode error (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, decodeErr)
			recordDecodeError(msg.Topic)
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.Printf("commit error after decode failure: %v", commitErr)
			}
			continue
		}

		if handleErr := p.handler.Handle(ctx, request); handleErr != nil {
			p.logger.Printf("handler error (user=%s, offset=%d): %v", request.UserID, request.Offset, handleErr)
			recordHandlerError(request.Topic)
			if errors.Is(handleErr, domain.ErrMalformedRecord) {
				// Replays cannot fix a malformed batch.
				recordDropped(request.Topic)
				if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
					p.logger.Printf("commit error after dropping malformed batch: %v", commitErr)
				}
			}
			continue
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Printf("commit error: %v", commitErr)
		} else {
			recordProcessed(request)
		}
	}
}

func decodeMessage(msg kafka.Message) (Request, error) {
	var payload events.SyncRequested
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return Request{}, fmt.Errorf("invalid sync request payload: %w", err)
	}
	if payload.UserID == "" {
		return Request{}, errors.New("sync request missing user_id")
	}

	return Request{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		UserID:    payload.UserID,
		Records:   payload.Records,
	}, nil
}
