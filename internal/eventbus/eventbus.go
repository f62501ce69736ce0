// Package eventbus publishes simulation events to Redis Pub/Sub, grounded
// on internal/script/redisrouter's use of go-redis for message transport.
// Unlike redisrouter's request/response pattern, eventbus is a one-way,
// non-blocking sink: the event stream (spec.md §6) is ordinary telemetry,
// not a command channel awaiting a correlated reply. Each event is wrapped
// in a protocol.Message before publishing, so a downstream subscriber gets
// the same envelope (id, timestamp, source, schema_version) regardless of
// which simevent.Kind it carries.
package eventbus

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/fourloop/pwrcore/internal/protocol"
	"github.com/fourloop/pwrcore/internal/redishealth"
	"github.com/fourloop/pwrcore/internal/simevent"
	"github.com/redis/go-redis/v9"
)

// Sink publishes simevent.Event values to a Redis channel without blocking
// the step loop: publish failures are logged, never returned, so a broken
// or absent Redis connection never stalls or faults a simulation step. A
// redishealth.Monitor runs alongside it, logging connection loss/recovery
// so a flapping Redis link shows up in the process log instead of silent
// per-publish failures.
type Sink struct {
	rdb     *redis.Client
	channel string
	source  protocol.Source
	logger  *log.Logger
	timeout time.Duration

	health     *redishealth.Monitor
	stopHealth context.CancelFunc
}

// New creates a Sink publishing to the given channel, tagging every message
// with source as the envelope's publisher. logger may be nil, in which case
// publish errors and health transitions are silently dropped.
func New(rdb *redis.Client, channel string, source protocol.Source, logger *log.Logger) *Sink {
	s := &Sink{rdb: rdb, channel: channel, source: source, logger: logger, timeout: 2 * time.Second}
	if rdb == nil {
		return s
	}

	s.health = redishealth.New(rdb,
		redishealth.WithOnDown(func() { s.logf("eventbus: redis connection lost on channel %s", channel) }),
		redishealth.WithOnUp(func() { s.logf("eventbus: redis connection restored on channel %s", channel) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s.stopHealth = cancel
	go s.health.Run(ctx)
	return s
}

// Publish wraps ev in a protocol.Message and publishes it, logging (never
// returning) any error.
func (s *Sink) Publish(ev simevent.Event) {
	if s == nil || s.rdb == nil {
		return
	}
	msg, err := protocol.NewMessage(s.source, protocol.TypeSimEvent, ev)
	if err != nil {
		s.logf("eventbus: build envelope for event %s: %v", ev.ID, err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logf("eventbus: marshal event %s: %v", ev.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.rdb.Publish(ctx, s.channel, data).Err(); err != nil {
		s.logf("eventbus: publish to %s: %v", s.channel, err)
	}
}

func (s *Sink) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// TransportDegraded reports whether the Redis event transport is currently
// down. A nil Sink, or one with no Redis client configured, is never
// degraded — there's no transport to lose.
func (s *Sink) TransportDegraded() bool {
	if s == nil || s.health == nil {
		return false
	}
	return s.health.Degraded()
}

// Close stops the health monitor and releases the underlying Redis client.
func (s *Sink) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	if s.stopHealth != nil {
		s.stopHealth()
	}
	return s.rdb.Close()
}
