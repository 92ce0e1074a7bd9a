package produce

import (
	"context"
	"errors"
	"testing"

	"github.com/JrMarcco/connector/internal/pkg/xmq"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaProducer_Produce(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := NewKafkaProducer(w, zap.NewNop())

	err := p.Produce(t.Context(), &xmq.Message{
		Headers: xmq.Headers{"connector_id": "c-1"},
		Topic:   "offline_chat",
		Key:     []byte("42"),
		Val:     []byte{0x01, 0x02},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	got := w.msgs[0]
	assert.Equal(t, "offline_chat", got.Topic)
	assert.Equal(t, []byte("42"), got.Key)
	assert.Equal(t, []byte{0x01, 0x02}, got.Value)
	assert.Equal(t, []kafka.Header{{Key: "connector_id", Value: []byte("c-1")}}, got.Headers)
}

func TestKafkaProducer_ProduceFailed(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("broker unavailable")
	p := NewKafkaProducer(&fakeWriter{err: writeErr}, zap.NewNop())

	err := p.Produce(t.Context(), &xmq.Message{Topic: "offline_chat"})
	assert.ErrorIs(t, err, writeErr)
}

func TestXXHashBalancer(t *testing.T) {
	t.Parallel()

	b := &XXHashBalancer{}
	partitions := []int{0, 1, 2, 3, 4, 5, 6, 7}

	first := b.Balance(kafka.Message{Key: []byte("10086")}, partitions...)
	for range 16 {
		assert.Equal(t, first, b.Balance(kafka.Message{Key: []byte("10086")}, partitions...))
	}
	assert.Equal(t, partitions[partitionFromKey([]byte("10086"), len(partitions))], first)

	// 空 key 轮询所有分区。
	seen := make(map[int]struct{})
	for range len(partitions) {
		seen[b.Balance(kafka.Message{}, partitions...)] = struct{}{}
	}
	assert.Len(t, seen, len(partitions))
}
