// Package hermes carries interview lifecycle events over NATS.
package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// QueueGroup is shared by every rehearse replica so that each event is
// handled once across the deployment.
const QueueGroup = "rehearse"

// Handler receives the raw payload of a delivered event.
type Handler func(subject string, data []byte)

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NewClient connects to url. The connection keeps retrying in the
// background, so events emitted before the server is reachable are buffered.
func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nc, err := nats.Connect(url, connectOptions(token, logger)...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return &Client{
		conn:   nc,
		logger: logger,
		subs:   make(map[string]*nats.Subscription),
	}, nil
}

func connectOptions(token string, logger *slog.Logger) []nats.Option {
	opts := []nats.Option{
		nats.Name("rehearse"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.ReconnectBufSize(4 << 20),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("event bus disconnected, buffering events", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("event bus reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error("event bus error", "subject", subject, "error", err)
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	return opts
}

// Emit publishes evt as JSON on its own subject.
func (c *Client) Emit(evt Event) error {
	return c.Publish(evt.Subject(), evt)
}

// Publish sends data as JSON on subject.
func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe delivers subject to handler through QueueGroup. Subscribing twice
// to the same subject is an error.
func (c *Client) Subscribe(subject string, handler Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.subs[subject]; dup {
		return fmt.Errorf("already subscribed to %s", subject)
	}
	sub, err := c.conn.QueueSubscribe(subject, QueueGroup, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs[subject] = sub
	c.logger.Info("subscribed", "subject", subject, "queue", QueueGroup)
	return nil
}

// Close stops deliveries and flushes buffered events before disconnecting.
func (c *Client) Close() {
	c.mu.Lock()
	for subject, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warn("unsubscribe failed", "subject", subject, "error", err)
		}
	}
	clear(c.subs)
	c.mu.Unlock()

	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("event bus drain failed", "error", err)
		c.conn.Close()
	}
}
