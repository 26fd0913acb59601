package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwise/internal/events"
)

var errDrained = errors.New("drained")

type scriptedReader struct {
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (r *scriptedReader) FetchMessage(context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, errDrained
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, offset int64, ledger string) kafka.Message {
	t.Helper()
	data, err := events.New(events.TypeTransactionRemoved, ledger, nil).ToJSON()
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: data}
}

func TestSubscriber_Consume(t *testing.T) {
	r := &scriptedReader{msgs: []kafka.Message{
		eventMessage(t, 1, "a"),
		{Offset: 2, Value: []byte("nope")},
		eventMessage(t, 3, "b"),
	}}
	s := NewSubscriber(r, nil)

	var seen []string
	err := s.Consume(context.Background(), func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Ledger)
		return nil
	})
	assert.ErrorIs(t, err, errDrained)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)

	require.NoError(t, s.Close())
	assert.True(t, r.closed)
}

func TestSubscriber_HandlerErrorStopsWithoutCommit(t *testing.T) {
	r := &scriptedReader{msgs: []kafka.Message{eventMessage(t, 7, "a")}}
	boom := errors.New("boom")

	err := NewSubscriber(r, nil).Consume(context.Background(), func(context.Context, events.Event) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.committed)
}

func TestSubscriber_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSubscriber(&scriptedReader{}, nil).Consume(ctx, func(context.Context, events.Event) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
