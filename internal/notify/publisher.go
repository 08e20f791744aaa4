// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify publishes content change events to Valkey (Redis
// compatible) so external consumers such as a static site builder can
// react to edits.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/models"
)

const (
	// DefaultChannel is the pub/sub channel events are published on.
	DefaultChannel = "inkwell:content"

	publishTimeout = 2 * time.Second
	dialTimeout    = 5 * time.Second
)

var published = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_notify_events_total",
		Help: "Content change events by entity and delivery result.",
	},
	[]string{"entity", "result"},
)

// client is the part of *redis.Client the publisher uses.
type client interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Publisher sends change events to a Valkey channel. Delivery is best
// effort: failures are logged and counted, never returned.
type Publisher struct {
	client  client
	channel string
	owned   *redis.Client
}

// Options configures Dial.
type Options struct {
	Host     string
	Port     string
	Password string
	Channel  string
	// Timeout bounds the initial ping. Zero means five seconds.
	Timeout time.Duration
}

// NewPublisher creates a Publisher on channel using a client the caller
// owns. An empty channel selects DefaultChannel.
func NewPublisher(c *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: c, channel: channel}
}

// Dial connects to Valkey, verifies the connection with a ping and returns
// a Publisher that owns the client. Callers release it with Close.
func Dial(ctx context.Context, opts Options) (*Publisher, error) {
	addr := net.JoinHostPort(opts.Host, opts.Port)
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       0,
	})

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = dialTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.Ping(pingCtx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("notify: ping %s: %w", addr, err)
	}

	p := NewPublisher(c, opts.Channel)
	p.owned = c
	slog.Info("valkey connected", "addr", addr, "channel", p.channel)
	return p, nil
}

// Close releases the client opened by Dial. It is a no-op for publishers
// built with NewPublisher.
func (p *Publisher) Close() error {
	if p.owned == nil {
		return nil
	}
	return p.owned.Close()
}

// Publish encodes ev as JSON and publishes it. The request context only
// contributes its values; a cancelled request still gets its event out.
func (p *Publisher) Publish(ctx context.Context, ev models.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("notify encode error", "entity", ev.Entity, "error", err)
		published.WithLabelValues(ev.Entity, "error").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		slog.Warn("notify publish error", "channel", p.channel, "entity", ev.Entity, "id", ev.ID, "error", err)
		published.WithLabelValues(ev.Entity, "error").Inc()
		return
	}

	published.WithLabelValues(ev.Entity, "ok").Inc()
	slog.Debug("change event published", "channel", p.channel, "entity", ev.Entity, "action", ev.Action, "receivers", receivers)
}
