package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/metrics"
)

// Dispatcher fans events out to publishers in the background. Delivery is best
// effort: failures are logged and counted, never returned to the emitter.
// Events sharing a Key are delivered in emission order; distinct keys proceed
// in parallel.
type Dispatcher struct {
	publishers []Publisher
	log        zerolog.Logger
	timeout    time.Duration

	mu     sync.Mutex
	closed bool
	tails  map[string]chan struct{} // last pending delivery per key
	wg     sync.WaitGroup
}

func NewDispatcher(log zerolog.Logger, timeout time.Duration, publishers ...Publisher) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		publishers: publishers,
		log:        log.With().Str("component", "events").Logger(),
		timeout:    timeout,
		tails:      make(map[string]chan struct{}),
	}
}

// Emit schedules e for delivery and returns immediately. The request context
// only contributes its values (trace span); its cancellation is ignored.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn().Str("event_type", e.Type).Str("event_id", e.ID).Msg("dispatcher closed, event dropped")
		return
	}

	var prev, done chan struct{}
	if e.Key != "" {
		prev = d.tails[e.Key]
		done = make(chan struct{})
		d.tails[e.Key] = done
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if prev != nil {
			<-prev
		}
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		d.publish(pctx, e)
		cancel()
		if done != nil {
			d.release(e.Key, done)
		}
	}()
}

func (d *Dispatcher) release(key string, done chan struct{}) {
	close(done)
	d.mu.Lock()
	if d.tails[key] == done {
		delete(d.tails, key)
	}
	d.mu.Unlock()
}

func (d *Dispatcher) publish(ctx context.Context, e Event) {
	for _, p := range d.publishers {
		err := p.Publish(ctx, e)
		metrics.IncEventPublish(p.Name(), err == nil)
		if err != nil {
			d.log.Error().Err(err).
				Str("publisher", p.Name()).
				Str("event_type", e.Type).
				Str("event_id", e.ID).
				Msg("event publish failed")
		}
	}
}

// Close stops accepting events, waits for in-flight deliveries until ctx is
// done, then closes every publisher.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		d.log.Warn().Msg("event drain timed out")
	}

	for _, p := range d.publishers {
		if cerr := p.Close(); cerr != nil {
			d.log.Error().Err(cerr).Str("publisher", p.Name()).Msg("publisher close failed")
		}
	}
	return err
}
