package ingest

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/wellness/internal/domain"
)

func syncRequestMessage(t *testing.T, payload string) kafka.Message {
	t.Helper()
	return kafka.Message{
		Topic:     "wellness.sync.requests",
		Partition: 0,
		Offset:    10,
		Time:      time.Now().UTC(),
		Value:     []byte(payload),
	}
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{"user_id":"user-1","records":[{"user_id":"user-1","date":"2024-03-08","activity_type":"running","value":30,"unit":"minutes"}]}`
	reader := &stubReader{
		messages: []kafka.Message{syncRequestMessage(t, payload)},
		after:    contextCanceled,
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, "user-1", handler.last.UserID)
	require.Len(t, handler.last.Records, 1)
	require.Equal(t, "running", *handler.last.Records[0].ActivityType)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{"user_id":"user-2","records":[]}`
	reader := &stubReader{
		messages: []kafka.Message{syncRequestMessage(t, payload)},
		after:    contextCanceled,
	}
	handler := &stubHandler{err: errors.New("postgres down")}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls, "failed requests must be refetched")
}

func TestProcessorCommitsUndecodableMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{
		messages: []kafka.Message{
			syncRequestMessage(t, `not-json`),
			syncRequestMessage(t, `{"records":[]}`), // missing user_id
		},
		after: contextCanceled,
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 0, handler.calls)
	require.Equal(t, 2, reader.commitCalls, "poison messages are committed and dropped")
}

func TestProcessorDropsMalformedBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{"user_id":"user-1","records":[{"date":"2024-03-08"}]}`
	reader := &stubReader{
		messages: []kafka.Message{syncRequestMessage(t, payload)},
		after:    contextCanceled,
	}
	handler := &stubHandler{err: domain.ErrMalformedRecord}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls, "malformed batches cannot succeed on retry")
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls int
	err   error
	last  Request
}

func (h *stubHandler) Handle(_ context.Context, req Request) error {
	h.calls++
	h.last = req
	return h.err
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
