package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/realtime"
)

const defaultChannelPrefix = "taskflow.activity"

type RedisConfig struct {
	Addr     string
	Password string
	// Channel is a prefix; each project publishes on "<prefix>.<project id>".
	Channel string
}

// redisBus shares activity between replicas. Each project gets its own
// channel so operators can watch a single project with redis-cli.
type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedisBus(ctx context.Context, cfg RedisConfig, log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	prefix := strings.TrimSuffix(strings.TrimSpace(cfg.Channel), ".")
	if prefix == "" {
		prefix = defaultChannelPrefix
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &redisBus{log: log.With("service", "RedisBus"), rdb: rdb, prefix: prefix}, nil
}

func projectChannel(prefix string, ev realtime.Event) string {
	return prefix + "." + ev.ProjectID.String()
}

func (b *redisBus) Publish(ctx context.Context, ev realtime.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.Action, err)
	}
	return b.rdb.Publish(ctx, projectChannel(b.prefix, ev), raw).Err()
}

// StartForwarder pattern-subscribes to every project channel and returns once
// the subscription is confirmed. Delivery runs until ctx is done.
func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	sub := b.rdb.PSubscribe(ctx, b.prefix+".*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := decodeEvent(m.Payload)
				if err != nil {
					b.log.Warn("dropping malformed activity event", "channel", m.Channel, "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func decodeEvent(payload string) (realtime.Event, error) {
	var ev realtime.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return realtime.Event{}, err
	}
	if ev.Action == "" {
		return realtime.Event{}, fmt.Errorf("event without action")
	}
	return ev, nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
