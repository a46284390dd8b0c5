package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var ErrQueueFull = errors.New("mail queue is full")

const sendTimeout = 15 * time.Second

// Dispatcher delivers mail in the background. Callers never wait for, or
// learn about, delivery failures: they are logged and dropped.
type Dispatcher struct {
	mailer  Mailer
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
	workers int

	queue chan Message
	wg    sync.WaitGroup
	mu    sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

func NewDispatcher(mailer Mailer, workers, queueSize int, log logrus.FieldLogger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		mailer: mailer,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "mail",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Infof("Circuit breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
		}),
		log:     log,
		workers: workers,
		queue:   make(chan Message, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}

	d.log.Infof("Mail dispatcher started with %d workers", d.workers)
}

// Stop stops accepting messages, lets workers drain the queue and waits
// for them until ctx is done. Pending sends are cancelled after that.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.log.Info("Mail dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

// Enqueue schedules msg for delivery without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return errors.New("mail dispatcher stopped")
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(d.ctx, sendTimeout)
	defer cancel()

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.mailer.Send(ctx, msg)
	})

	if err != nil {
		d.log.WithError(err).WithField("to", msg.To).Warn("Failed to deliver mail")
		return
	}

	d.log.WithField("to", msg.To).Debug("Mail delivered")
}
