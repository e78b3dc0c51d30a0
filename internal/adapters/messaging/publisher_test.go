package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published []amqp.Publishing
	exchange  string
	key       string
	err       error
	closed    bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, exchange: "servicehub.events"}

	event := ProviderModerated{ProviderID: 4, UserID: 7, AdminID: 1, FromStatus: "pending", ToStatus: "approved", At: time.Now()}
	require.NoError(t, p.Publish(context.Background(), RoutingProviderModerated, event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "servicehub.events", ch.exchange)
	assert.Equal(t, RoutingProviderModerated, ch.key)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var got ProviderModerated
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	assert.Equal(t, uint(4), got.ProviderID)
	assert.Equal(t, "approved", got.ToStatus)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &RabbitPublisher{ch: ch, exchange: "x"}

	err := p.Publish(context.Background(), "k", map[string]int{"a": 1})
	assert.ErrorContains(t, err, "channel closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "k", nil), context.Canceled)

	assert.Error(t, p.Publish(context.Background(), "k", make(chan int)), "unencodable payload")
}
