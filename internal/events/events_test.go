package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/apiserver/internal/mq"
)

// memoryBackend queues published messages and replays them to subscribers.
type memoryBackend struct {
	messages []mq.Message
	closed   bool
}

func (m *memoryBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	id := fmt.Sprintf("%d", len(m.messages)+1)
	m.messages = append(m.messages, mq.Message{ID: id, Data: data, Attributes: attrs})
	return id, nil
}

func (m *memoryBackend) Subscribe(ctx context.Context, channel string, handler mq.Handler) error {
	for _, msg := range m.messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryBackend) Close() error {
	m.closed = true
	return nil
}

func TestPublishAndSubscribeRoundTrip(t *testing.T) {
	backend := &memoryBackend{}
	broker := mq.New(backend)
	publisher := NewPublisher(broker)

	publisher.EntityChanged(context.Background(), "farm", ActionCreated, 7)
	publisher.EntityChanged(context.Background(), "crop", ActionDeleted, 12)

	var received []ChangeEvent
	err := broker.Subscribe(context.Background(), Channel, func(ctx context.Context, msg mq.Message) error {
		event, err := Decode(msg.Data)
		if err != nil {
			return err
		}
		received = append(received, event)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, received, 2)

	assert.Equal(t, "farm", received[0].Entity)
	assert.Equal(t, ActionCreated, received[0].Action)
	assert.Equal(t, "7", received[0].ID.String())
	assert.False(t, received[0].At.IsZero())

	assert.Equal(t, "crop", received[1].Entity)
	assert.Equal(t, ActionDeleted, received[1].Action)
	assert.Equal(t, "12", received[1].ID.String())

	assert.Equal(t, map[string]string{"entity": "farm", "action": "created"}, backend.messages[0].Attributes)
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestNilPublisherIsSilent(t *testing.T) {
	var publisher *Publisher
	publisher.EntityChanged(context.Background(), "farm", ActionUpdated, 1)
}
