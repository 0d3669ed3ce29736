package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	deliveries chan amqp.Delivery
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 4)}
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(_, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type ackResult struct {
	acked   bool
	requeue bool
}

// fakeAcknowledger reports the outcome of each delivery on results.
type fakeAcknowledger struct {
	results chan ackResult
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.results <- ackResult{acked: true}
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.results <- ackResult{requeue: requeue}
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.results <- ackResult{requeue: requeue}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewClient_DeclaresProductEventsQueue(t *testing.T) {
	ch := newFakeChannel()
	c, err := newClient(ch, "", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{ProductEventsQueue}, ch.declared)
	assert.NoError(t, c.Close())
	assert.True(t, ch.closed)
}

func TestPublishJSON(t *testing.T) {
	ch := newFakeChannel()
	c, err := newClient(ch, "", quietLogger())
	require.NoError(t, err)

	payload := map[string]interface{}{"id": "e-1", "product_id": 7}
	require.NoError(t, c.PublishJSON(context.Background(), "product.created", payload))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, ProductEventsQueue, ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "product.created", msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.JSONEq(t, `{"id":"e-1","product_id":7}`, string(msg.Body))
}

func TestPublishJSON_Errors(t *testing.T) {
	ch := newFakeChannel()
	c, err := newClient(ch, "", quietLogger())
	require.NoError(t, err)

	ch.publishErr = errors.New("channel closed")
	assert.ErrorContains(t, c.PublishJSON(context.Background(), "product.deleted", map[string]int{"product_id": 1}), "channel closed")

	assert.Error(t, c.PublishJSON(context.Background(), "product.deleted", func() {}), "unmarshalable payload")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.PublishJSON(ctx, "product.deleted", nil), context.Canceled)
}

func TestPublishJSON_Concurrent(t *testing.T) {
	ch := newFakeChannel()
	c, err := newClient(ch, "", quietLogger())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.PublishJSON(context.Background(), "product.updated", map[string]int{"product_id": i}))
		}(i)
	}
	wg.Wait()
	assert.Len(t, ch.published, 20)
}

func TestConsumeProductEvents(t *testing.T) {
	ch := newFakeChannel()
	c, err := newClient(ch, "", quietLogger())
	require.NoError(t, err)

	ack := &fakeAcknowledger{results: make(chan ackResult, 4)}
	handler := LogProductEvent(quietLogger())
	require.NoError(t, c.ConsumeProductEvents(handler))

	body, _ := json.Marshal(map[string]interface{}{"id": "e-1", "product_id": 1})
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Type: "product.created", Body: body}
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("not json")}
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("not json"), Redelivered: true}
	close(ch.deliveries)

	want := []ackResult{{acked: true}, {requeue: true}, {requeue: false}}
	for i, w := range want {
		select {
		case got := <-ack.results:
			assert.Equal(t, w, got, "delivery %d", i+1)
		case <-time.After(time.Second):
			t.Fatalf("delivery %d was never settled", i+1)
		}
	}
}
