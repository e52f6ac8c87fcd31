package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
	closes    int
	fetchErr  error
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return kafka.Message{}, r.fetchErr
	}
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}

func TestLowStockListener_HandleDecodesAlert(t *testing.T) {
	var buf bytes.Buffer
	var got domain.LowStockAlert
	listener := NewLowStockListener(nil,
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithHandler(func(_ context.Context, alert domain.LowStockAlert) error {
			got = alert
			return nil
		}),
	)

	err := listener.Handle(context.Background(), kafka.Message{Value: []byte(`{"skuCode":"A","remainingQty":3}`)})
	require.NoError(t, err)
	assert.Equal(t, domain.LowStockAlert{SKUCode: "A", RemainingQty: 3}, got)
	assert.Contains(t, buf.String(), "low stock alert")
}

func TestLowStockListener_HandleRejectsBadPayloads(t *testing.T) {
	listener := NewLowStockListener(nil)

	err := listener.Handle(context.Background(), kafka.Message{Value: []byte(`not json`)})
	assert.Error(t, err)

	err = listener.Handle(context.Background(), kafka.Message{Value: []byte(`{"remainingQty":3}`)})
	assert.ErrorIs(t, err, domain.ErrInvalidLowStockAlert)
}

func TestLowStockListener_RunCommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			{Value: []byte(`{"skuCode":"A","remainingQty":1}`)},
			{Value: []byte(`garbage`)},
		},
	}
	handled := 0
	listener := NewLowStockListener(reader, WithHandler(func(context.Context, domain.LowStockAlert) error {
		handled++
		return nil
	}))

	require.NoError(t, listener.Run(ctx))
	assert.Equal(t, 1, handled)
	assert.Len(t, reader.committed, 2)
	assert.Equal(t, 1, reader.closes)
}

func TestLowStockListener_RunOwnsReaderOnFetchFailure(t *testing.T) {
	reader := &fakeReader{fetchErr: errors.New("broker gone")}
	listener := NewLowStockListener(reader)

	err := listener.Run(context.Background())
	require.ErrorContains(t, err, "broker gone")
	assert.Equal(t, 1, reader.closes)
}

func TestLowStockListener_RunUnconfigured(t *testing.T) {
	var listener *LowStockListener
	assert.Error(t, listener.Run(context.Background()))
	assert.Error(t, NewLowStockListener(nil).Run(context.Background()))
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseBrokers(""))
}
