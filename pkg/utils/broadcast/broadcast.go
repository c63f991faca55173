package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/racetelemetry/laprecorder/log"
)

//nolint:lll // by design
// see https://betterprogramming.pub/how-to-broadcast-messages-in-go-using-channels-b68f42bdf32e

type BroadcastServer[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	// Done is closed once all listeners are closed.
	Done() <-chan struct{}
	Close()
}

type broadcastServer[T any] struct {
	name           string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	sendTimeout    time.Duration
	bufSize        int
	numRcv         int64
	numSnd         int64
	numSkip        int64
	mu             sync.Mutex
}

type Option[T any] func(*broadcastServer[T])

// WithSendTimeout sets how long a message waits for a slow listener before it is skipped.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(b *broadcastServer[T]) {
		b.sendTimeout = d
	}
}

// WithListenerBuffer sets the channel capacity of each subscription.
func WithListenerBuffer[T any](n int) Option[T] {
	return func(b *broadcastServer[T]) {
		b.bufSize = n
	}
}

func (b *broadcastServer[T]) Subscribe() <-chan T {
	ch := make(chan T, b.bufSize)
	select {
	case b.addListener <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

func (b *broadcastServer[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.done:
	}
}

func (b *broadcastServer[T]) Done() <-chan struct{} {
	return b.done
}

func (b *broadcastServer[T]) Close() {
	b.mu.Lock()
	log.Info("Closing broadcast server",
		log.String("name", b.name),
		log.Int64("rcv", b.numRcv), log.Int64("snd", b.numSnd), log.Int64("skip", b.numSkip))
	b.mu.Unlock()
	b.cancel()
}

// NewBroadcastServer forwards every message of source to all subscribers.
// The server stops when source is closed or Close is called.
//
//nolint:whitespace // false positive
func NewBroadcastServer[T any](
	name string,
	source <-chan T,
	opts ...Option[T],
) BroadcastServer[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &broadcastServer[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		sendTimeout:    50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

func (b *broadcastServer[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter(fmt.Sprintf("lrec.broadcast.%s", b.name))
	register := func(metricName, desc string, valueProvider func() int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),

			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				b.mu.Lock()
				v := valueProvider()
				b.mu.Unlock()
				o.Observe(v, metric.WithAttributes(attribute.String("name", b.name)))
				return nil
			})); err != nil {
			log.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	type data struct {
		name  string
		desc  string
		value func() int64
	}
	for _, d := range []*data{
		{"lrec.broadcast.rcv", "Number of received messages", func() int64 { return b.numRcv }},
		{"lrec.broadcast.snd", "Number of sent messages", func() int64 { return b.numSnd }},
		{"lrec.broadcast.skip", "Number of skipped messages", func() int64 { return b.numSkip }},
		{
			"lrec.broadcast.listener", "Number of listeners",
			func() int64 { return int64(len(b.listeners)) },
		},
	} {
		register(d.name, d.desc, d.value)
	}
}

//nolint:funlen,cyclop,gocognit // by design
func (b *broadcastServer[T]) serve() {
	defer func() {
		log.Debug("Closing listeners", log.String("name", b.name))
		b.mu.Lock()
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.mu.Unlock()
		close(b.done)
	}()
	for {
		select {
		case <-b.ctx.Done():
			log.Debug("broadcast server about to be closed", log.String("name", b.name))
			return
		case ch := <-b.addListener:
			b.mu.Lock()
			b.listeners = append(b.listeners, ch)
			b.mu.Unlock()
		case ch := <-b.removeListener:
			b.mu.Lock()
			for i, listener := range b.listeners {
				if listener == ch {
					b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
					close(listener)
					log.Debug("removed listener",
						log.String("name", b.name), log.Int("len", len(b.listeners)))
					break
				}
			}
			b.mu.Unlock()
		case msg, ok := <-b.source:
			if !ok {
				log.Debug("source closed", log.String("name", b.name))
				return
			}
			b.mu.Lock()
			b.numRcv++
			listeners := b.listeners
			b.mu.Unlock()

			for _, listener := range listeners {
				select {
				case listener <- msg:
					b.mu.Lock()
					b.numSnd++
					b.mu.Unlock()
				case <-time.After(b.sendTimeout):
					b.mu.Lock()
					b.numSkip++
					b.mu.Unlock()
					log.Warn("skipping slow listener", log.String("name", b.name))
				}
			}
		}
	}
}
