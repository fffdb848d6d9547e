package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

type Publisher interface {
	Publish(event model.ChangeEvent) int
	Resync() int
}

// Listener turns Postgres NOTIFY payloads on the change channel into hub events.
type Listener struct {
	listener  *pq.Listener
	channel   string
	publisher Publisher
	logger    logger_lib.LoggerInterface
}

func NewListener(cfg *config.Config, publisher Publisher, logger logger_lib.LoggerInterface) (*Listener, error) {
	l := pq.NewListener(cfg.Postgres.DSN(), minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Error(fmt.Sprintf("change feed listener event %d: %v", ev, err))
		}
	})

	if err := l.Listen(cfg.Postgres.ChangeChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Postgres.ChangeChannel, err)
	}

	return &Listener{
		listener:  l,
		channel:   cfg.Postgres.ChangeChannel,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Run dispatches notifications until ctx is cancelled. All hub handlers run on
// this goroutine, one event at a time.
func (l *Listener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-l.listener.Notify:
			if n == nil {
				l.logger.Warn("change feed reconnected, requesting resync")
				l.publisher.Resync()
				continue
			}
			l.dispatch(n.Extra)
		case <-time.After(pingInterval):
			if err := l.listener.Ping(); err != nil {
				l.logger.Error(fmt.Sprintf("change feed ping failed: %v", err))
			}
		}
	}
}

func (l *Listener) Close() {
	_ = l.listener.Close()
}

func (l *Listener) dispatch(payload string) {
	event, err := Decode(payload)
	if err != nil {
		l.logger.Error(fmt.Sprintf("failed to decode change payload on %s: %v", l.channel, err))
		return
	}
	l.publisher.Publish(event)
}

func Decode(payload string) (model.ChangeEvent, error) {
	var event model.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, err
	}
	if event.Table == "" || event.Op == "" {
		return event, fmt.Errorf("payload misses table or op")
	}
	return event, nil
}
