// Package queue carries stage tasks over NATS JetStream. Ingest and enrich
// travel on separate work-queue subjects so slow enrichments never starve
// the lighter-weight fetches.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"NewsHarvester/internal/ports"
)

const (
	streamName    = "HARVEST"
	subjectIngest = "harvest.ingest"
	subjectEnrich = "harvest.enrich"
)

// Queue publishes stage tasks onto JetStream.
type Queue struct {
	js     nats.JetStreamContext
	logger *slog.Logger
}

var _ ports.Dispatcher = (*Queue)(nil)

// NewQueue wires a JetStream context and ensures the stream exists.
func NewQueue(nc *nats.Conn, logger *slog.Logger) (*Queue, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	if err := setupStream(js); err != nil {
		return nil, err
	}

	return &Queue{js: js, logger: logger}, nil
}

// EnqueueIngest publishes onto the fast queue.
func (q *Queue) EnqueueIngest(ctx context.Context, task ports.IngestTask) error {
	return q.publish(ctx, subjectIngest, task)
}

// EnqueueEnrich publishes onto the slow queue.
func (q *Queue) EnqueueEnrich(ctx context.Context, task ports.EnrichTask) error {
	return q.publish(ctx, subjectEnrich, task)
}

func (q *Queue) publish(ctx context.Context, subject string, task any) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task for %s: %w", subject, err)
	}

	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	return nil
}

func setupStream(js nats.JetStreamContext) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"harvest.>"},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("add stream %s: %w", streamName, err)
	}

	return nil
}
