package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"supplement-iq/internal/config"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
)

type fakeBackend struct {
	published []Message
	channels  []string
	pubErr    error
	inbox     []Message
	handled   []error
	closed    bool
}

func (f *fakeBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if f.pubErr != nil {
		return "", f.pubErr
	}
	f.channels = append(f.channels, channel)
	f.published = append(f.published, Message{ID: "m1", Data: data, Attributes: attrs})
	return "m1", nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	for _, m := range f.inbox {
		f.handled = append(f.handled, handler(ctx, m))
	}
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestMQDelegates(t *testing.T) {
	b := &fakeBackend{}
	m := New(b)
	id, err := m.Publish(context.Background(), "q", []byte("x"), nil)
	require.NoError(t, err)
	require.Equal(t, "m1", id)
	require.NoError(t, m.Close())
	require.True(t, b.closed)
}

func TestPublisher(t *testing.T) {
	b := &fakeBackend{}
	p := NewPublisher(New(b), "submission.reviewed", logging.Discard())
	pid := 4
	ev := SubmissionReviewed{
		SubmissionID: 9, ProductID: &pid, JobType: model.JobAdd, Status: model.StatusApproved,
		Category: model.CategoryProtein, ProductName: "Gold Whey",
		SubmittedBy: uuid.New(), ReviewedBy: uuid.New(), ReviewedAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, p.PublishSubmissionReviewed(context.Background(), ev))
	require.Equal(t, []string{"submission.reviewed"}, b.channels)
	require.Equal(t, EventSubmissionReviewed, b.published[0].Attributes["type"])

	var got SubmissionReviewed
	require.NoError(t, json.Unmarshal(b.published[0].Data, &got))
	require.Equal(t, ev, got)

	b.pubErr = errors.New("down")
	err := p.PublishSubmissionReviewed(context.Background(), ev)
	require.ErrorContains(t, err, "publish submission.reviewed: down")
}

func TestPublisherWithoutBroker(t *testing.T) {
	p := NewPublisher(nil, "q", logging.Discard())
	require.NoError(t, p.PublishSubmissionReviewed(context.Background(), SubmissionReviewed{SubmissionID: 1}))
}

func TestConsumeSubmissionReviewed(t *testing.T) {
	good, _ := json.Marshal(SubmissionReviewed{SubmissionID: 3, Status: model.StatusRejected})
	b := &fakeBackend{inbox: []Message{
		{ID: "a", Data: good},
		{ID: "b", Data: []byte("{not json")},
		{ID: "c", Data: good},
	}}
	var seen []int
	calls := 0
	err := ConsumeSubmissionReviewed(context.Background(), New(b), "q", logging.Discard(),
		func(_ context.Context, ev SubmissionReviewed) error {
			calls++
			seen = append(seen, ev.SubmissionID)
			if calls == 2 {
				return errors.New("retry")
			}
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, []int{3, 3}, seen)
	require.NoError(t, b.handled[0])
	require.NoError(t, b.handled[1])
	require.EqualError(t, b.handled[2], "retry")
}

func TestNewRabbitMQClient(t *testing.T) {
	t.Cleanup(func() { amqpDial = amqp.Dial })

	_, err := NewRabbitMQClient(config.RabbitMQConfig{})
	require.ErrorContains(t, err, "url is required")

	amqpDial = func(string) (*amqp.Connection, error) { return nil, errors.New("refused") }
	_, err = NewRabbitMQClient(config.RabbitMQConfig{URL: "amqp://localhost"})
	require.ErrorContains(t, err, "rabbitmq dial: refused")
}

func TestHeadersToAttributes(t *testing.T) {
	require.Nil(t, headersToAttributes(nil))
	attrs := headersToAttributes(amqp.Table{"type": "x", "raw": []byte("y"), "n": int32(2)})
	require.Equal(t, map[string]string{"type": "x", "raw": "y", "n": "2"}, attrs)
}
