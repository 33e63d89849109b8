package events

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Name() string { return "mock" }

func (m *mockPublisher) Publish(ctx context.Context, e Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newEvent(t *testing.T) Event {
	t.Helper()
	e, err := New(TypeBookingCreated, "barber-1", map[string]string{"booking_id": "b1"})
	require.NoError(t, err)
	return e
}

func TestNewEvent(t *testing.T) {
	e := newEvent(t)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TypeBookingCreated, e.Type)
	assert.Equal(t, "barber-1", e.Key)
	assert.JSONEq(t, `{"booking_id":"b1"}`, string(e.Payload))

	_, err := New(TypeBookingCreated, "k", func() {})
	assert.Error(t, err)
}

func TestDispatcherDeliversToAllPublishers(t *testing.T) {
	e := newEvent(t)

	failing := new(mockPublisher)
	failing.On("Publish", mock.Anything, e).Return(errors.New("broker down")).Once()
	failing.On("Close").Return(nil).Once()

	ok := new(mockPublisher)
	ok.On("Publish", mock.Anything, e).Return(nil).Once()
	ok.On("Close").Return(nil).Once()

	d := NewDispatcher(zerolog.Nop(), time.Second, failing, ok)
	d.Emit(context.Background(), e)
	require.NoError(t, d.Close(context.Background()))

	failing.AssertExpectations(t)
	ok.AssertExpectations(t)
}

func TestDispatcherIgnoresCallerCancellation(t *testing.T) {
	e := newEvent(t)

	p := new(mockPublisher)
	p.On("Publish", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), e).Return(nil).Once()
	p.On("Close").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(zerolog.Nop(), time.Second, p)
	d.Emit(ctx, e)
	cancel()
	require.NoError(t, d.Close(context.Background()))

	p.AssertExpectations(t)
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	p := new(mockPublisher)
	p.On("Close").Return(nil)

	d := NewDispatcher(zerolog.Nop(), time.Second, p)
	require.NoError(t, d.Close(context.Background()))
	d.Emit(context.Background(), newEvent(t))

	p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

type blockingPublisher struct {
	release chan struct{}
}

func (b *blockingPublisher) Name() string { return "blocking" }
func (b *blockingPublisher) Publish(ctx context.Context, _ Event) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
func (b *blockingPublisher) Close() error { return nil }

func TestDispatcherCloseHonorsDeadline(t *testing.T) {
	bp := &blockingPublisher{release: make(chan struct{})}
	defer close(bp.release)

	d := NewDispatcher(zerolog.Nop(), time.Minute, bp)
	d.Emit(context.Background(), newEvent(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

// gatedPublisher holds deliveries of the gated event id until released and
// records the order in which events reach it.
type gatedPublisher struct {
	gate    string
	release chan struct{}

	mu   sync.Mutex
	seen []string
}

func (g *gatedPublisher) Name() string { return "gated" }
func (g *gatedPublisher) Publish(ctx context.Context, e Event) error {
	if e.ID == g.gate {
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.mu.Lock()
	g.seen = append(g.seen, e.ID)
	g.mu.Unlock()
	return nil
}
func (g *gatedPublisher) Close() error { return nil }

func (g *gatedPublisher) delivered() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.seen)
}

func TestDispatcherKeepsPerKeyOrder(t *testing.T) {
	created, err := New(TypeBookingCreated, "barber-1", nil)
	require.NoError(t, err)
	cancelled, err := New(TypeBookingCancelled, "barber-1", nil)
	require.NoError(t, err)
	other, err := New(TypeBookingCreated, "barber-2", nil)
	require.NoError(t, err)

	gp := &gatedPublisher{gate: created.ID, release: make(chan struct{})}
	d := NewDispatcher(zerolog.Nop(), time.Minute, gp)
	d.Emit(context.Background(), created)
	d.Emit(context.Background(), cancelled)
	d.Emit(context.Background(), other)

	// Another barber's event is not held up by the stalled one.
	require.Eventually(t, func() bool {
		return slices.Contains(gp.delivered(), other.ID)
	}, time.Second, 5*time.Millisecond)
	assert.NotContains(t, gp.delivered(), cancelled.ID)

	close(gp.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{other.ID, created.ID, cancelled.ID}, gp.delivered())
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "barbershop.bookings")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	e := newEvent(t)
	p := NewRedisPublisher(client, "barbershop.bookings")
	require.NoError(t, p.Publish(ctx, e))

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, TypeBookingCreated, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisherMessageShape(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	e := newEvent(t)
	require.NoError(t, p.Publish(ctx, e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, TypeBookingCreated, msg.Topic)
	assert.Equal(t, []byte("barber-1"), msg.Key)
	assert.JSONEq(t, string(e.Payload), string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, e.ID, headers[headerEventID])
	assert.Equal(t, TypeBookingCreated, headers[headerEventType])
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headers["traceparent"])
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}
