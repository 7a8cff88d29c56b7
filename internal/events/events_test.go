package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/MikeMC777/tienda/internal/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_OrderPlaced(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{w: w, log: logger.Discard()}

	p.PublishOrderPlaced(context.Background(), OrderPlaced{
		OrderID:   "o-1",
		UserID:    "u-1",
		Total:     "20.00",
		Lines:     []OrderLine{{ProductID: "p-1", Quantity: 2, LineTotal: "20.00"}},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	require.Len(t, w.msgs, 1)
	m := w.msgs[0]
	assert.Equal(t, "o-1", string(m.Key))
	assert.Equal(t, "20.00", gjson.GetBytes(m.Value, "total").String())
	assert.Equal(t, "p-1", gjson.GetBytes(m.Value, "lines.0.product_id").String())
	assert.EqualValues(t, 2, gjson.GetBytes(m.Value, "lines.0.quantity").Int())
	require.Len(t, m.Headers, 2)
	assert.Equal(t, TypeOrderPlaced, string(m.Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteErrorIsSwallowed(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{w: w, log: logger.Discard()}

	assert.NotPanics(t, func() {
		p.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: "o-2"})
	})
	assert.Len(t, w.msgs, 1)
}
