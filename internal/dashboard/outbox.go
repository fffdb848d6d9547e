package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger_lib "github.com/s21platform/logger-lib"
)

// outbox forwards view updates to the realtime publisher off the caller's
// goroutine. Only the latest payload per channel is kept; channels are
// published in the order they were first touched.
type outbox struct {
	publisher Publisher
	logger    logger_lib.LoggerInterface
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]interface{}
	order   []string
	closed  bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func newOutbox(publisher Publisher, logger logger_lib.LoggerInterface, timeout time.Duration) *outbox {
	o := &outbox{
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
		pending:   make(map[string]interface{}),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *outbox) push(channel string, data interface{}) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if _, ok := o.pending[channel]; !ok {
		o.order = append(o.order, channel)
	}
	o.pending[channel] = data
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// close publishes what is still pending and stops the loop.
func (o *outbox) close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.stopped
		return
	}
	o.closed = true
	o.mu.Unlock()

	close(o.done)
	<-o.stopped
}

func (o *outbox) run() {
	defer close(o.stopped)

	for {
		select {
		case <-o.wake:
			o.flush()
		case <-o.done:
			o.flush()
			return
		}
	}
}

func (o *outbox) flush() {
	for {
		o.mu.Lock()
		order, pending := o.order, o.pending
		o.order, o.pending = nil, make(map[string]interface{})
		o.mu.Unlock()

		if len(order) == 0 {
			return
		}

		for _, channel := range order {
			o.send(channel, pending[channel])
		}
	}
}

func (o *outbox) send(channel string, data interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if err := o.publisher.Publish(ctx, channel, data); err != nil {
		o.logger.Warn(fmt.Sprintf("failed to publish to %s: %v", channel, err))
	}
}
