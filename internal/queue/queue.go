// Package queue publishes the live transcript stream to RabbitMQ for
// external consumers (archivers, minute-takers). The feed is optional: when
// RABBITMQ_HOST is unset the server runs without it, and publish failures
// are logged but never affect the session.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meetingnexus/backend/internal/util"
	"github.com/meetingnexus/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const transcriptExchange = "transcripts"

// Feed is a publisher on the transcript topic exchange. Messages are routed
// by "transcript.<session>" so consumers can bind a single session or all of
// them.
type Feed struct {
	mu   sync.Mutex
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// Enabled reports whether a transcript feed is configured in the
// environment.
func Enabled() bool {
	return util.GetEnv("RABBITMQ_HOST") != ""
}

// Init connects to RabbitMQ using the RABBITMQ_* environment variables and
// declares the transcript exchange. Connection attempts back off and retry
// until ctx expires; a broker that never comes up fails startup.
func Init(ctx context.Context) (*Feed, error) {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnvString("RABBITMQ_PORT", "5672")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var conn *amqp091.Connection
	err := util.RetryErrWithBackoff(dialCtx, time.Second, 8*time.Second, func(context.Context) error {
		var dialErr error
		conn, dialErr = amqp091.Dial(connURL)
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	f := &Feed{conn: conn}
	if _, err := f.channel(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("[Queue] Transcript feed connected", "host", host)
	return f, nil
}

// channel returns the open publish channel, opening one if needed. Callers
// must hold no lock.
func (f *Feed) channel() (*amqp091.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch != nil && !f.ch.IsClosed() {
		return f.ch, nil
	}

	ch, err := f.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		transcriptExchange,
		"topic",
		false, // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("ExchangeDeclare failed: %w", err)
	}

	f.ch = ch
	return ch, nil
}

// PublishTranscript publishes one transcript event for the given session.
// Errors are logged and swallowed; a broken broker never blocks the meeting.
func (f *Feed) PublishTranscript(sessionID string, payload []byte) {
	ch, err := f.channel()
	if err != nil {
		logger.Warn("[Queue] Transcript feed unavailable", "err", err)
		return
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp091.Transient,
		Timestamp:    time.Now(),
	}

	err = ch.Publish(
		transcriptExchange,
		"transcript."+sessionID,
		false,
		false,
		publishing,
	)
	if err != nil {
		logger.Warn("[Queue] Failed to publish transcript", "session", sessionID, "err", err)
	}
}

// Close shuts the connection down.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch != nil {
		f.ch.Close()
	}
	if f.conn != nil {
		f.conn.Close()
	}
}
