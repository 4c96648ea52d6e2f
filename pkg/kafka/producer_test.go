package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	w := NewWriter(&Config{Brokers: []string{"localhost:9092"}, Topic: "hotel.reservation.notice"})
	require.NotNil(t, w)
	assert.Equal(t, "hotel.reservation.notice", w.Topic())
	assert.Equal(t, 5*time.Second, w.writer.WriteTimeout)
	assert.NoError(t, w.Close())
}

func TestWriter_PublishUnmarshalable(t *testing.T) {
	w := NewWriter(&Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
	defer w.Close()

	err := w.Publish(context.Background(), "k", make(chan int))
	assert.Error(t, err)
}

func TestMockProducer(t *testing.T) {
	p := NewMockProducer()
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "r-1", map[string]string{"status": "confirmed"}))
	assert.Equal(t, 1, p.Count())

	last := p.Last()
	require.NotNil(t, last)
	assert.Equal(t, "r-1", last.Key)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(last.Value, &payload))
	assert.Equal(t, "confirmed", payload["status"])

	p.Err = errors.New("broker down")
	assert.Error(t, p.Publish(ctx, "r-2", nil))
	assert.Equal(t, 1, p.Count())

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}

func TestProducerInterfaceImpl(t *testing.T) {
	var _ Producer = (*Writer)(nil)
	var _ Producer = (*MockProducer)(nil)
}
