package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"NewsHarvester/internal/ports"
	"NewsHarvester/internal/usecase"
)

const (
	ingestDeadline = 2 * time.Minute
	enrichDeadline = 10 * time.Minute
)

// Workers binds the durable consumers for both pipeline stages. Each stage
// gets its own subscription with its own ack-pending bound so the number of
// in-flight enrichments stays independent of ingest throughput.
type Workers struct {
	queue    *Queue
	ingest   *usecase.Ingest
	enrich   *usecase.Enrich
	adjuster ports.IntervalAdjuster
	logger   *slog.Logger

	ingestPending int
	enrichPending int

	subs []*nats.Subscription
}

// WorkersConfig caps in-flight messages per stage.
type WorkersConfig struct {
	IngestWorkers int
	EnrichWorkers int
}

func NewWorkers(q *Queue, ingest *usecase.Ingest, enrich *usecase.Enrich,
	adjuster ports.IntervalAdjuster, cfg WorkersConfig, logger *slog.Logger) *Workers {
	return &Workers{
		queue:         q,
		ingest:        ingest,
		enrich:        enrich,
		adjuster:      adjuster,
		logger:        logger,
		ingestPending: cfg.IngestWorkers,
		enrichPending: cfg.EnrichWorkers,
	}
}

// Start subscribes both durable consumers. Handlers run on the NATS delivery
// goroutines; the ack-pending limits bound concurrency.
func (w *Workers) Start(ctx context.Context) error {
	ingestSub, err := w.queue.js.Subscribe(subjectIngest, w.handleIngest(ctx),
		nats.Durable("harvester-ingest"),
		nats.ManualAck(),
		nats.AckWait(ingestDeadline),
		nats.MaxAckPending(w.ingestPending),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subjectIngest, err)
	}
	w.subs = append(w.subs, ingestSub)

	enrichSub, err := w.queue.js.Subscribe(subjectEnrich, w.handleEnrich(ctx),
		nats.Durable("harvester-enrich"),
		nats.ManualAck(),
		nats.AckWait(enrichDeadline),
		nats.MaxAckPending(w.enrichPending),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subjectEnrich, err)
	}
	w.subs = append(w.subs, enrichSub)

	w.logger.Info("queue workers started",
		"ingest_pending", w.ingestPending, "enrich_pending", w.enrichPending)

	return nil
}

// Stop drains the subscriptions so in-flight handlers finish.
func (w *Workers) Stop() {
	for _, sub := range w.subs {
		if err := sub.Drain(); err != nil {
			w.logger.Warn("drain subscription", "error", err)
		}
	}
}

func (w *Workers) handleIngest(root context.Context) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var task ports.IngestTask
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			w.logger.Error("drop malformed ingest task", "error", err)
			w.ack(msg)
			return
		}

		ctx, cancel := context.WithTimeout(root, ingestDeadline)
		defer cancel()

		result, err := w.ingest.Run(ctx, task)
		if err != nil {
			w.logger.Error("ingest failed, redelivering",
				"url", task.URL, "correlation_id", task.CorrelationID, "error", err)
			w.nak(msg)
			return
		}

		switch result.Outcome {
		case usecase.IngestScraped:
			if task.Chain {
				next := ports.EnrichTask{
					ItemID:        result.ItemID,
					JobID:         task.JobID,
					CorrelationID: task.CorrelationID,
				}
				if err := w.queue.EnqueueEnrich(ctx, next); err != nil {
					w.logger.Error("chain enrich failed, redelivering ingest",
						"item_id", result.ItemID, "error", err)
					w.nak(msg)
					return
				}
			}
		case usecase.IngestBlocked, usecase.IngestFetchFailed:
			// Terminal for this chain. A job-linked miss stretches the
			// schedule instead of retrying the fetch.
			if task.JobID != nil {
				if err := w.adjuster.AdjustNoContent(ctx, *task.JobID); err != nil {
					w.logger.Warn("interval backoff failed",
						"job_id", *task.JobID, "error", err)
				}
			}
		}

		w.ack(msg)
	}
}

func (w *Workers) handleEnrich(root context.Context) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var task ports.EnrichTask
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			w.logger.Error("drop malformed enrich task", "error", err)
			w.ack(msg)
			return
		}

		ctx, cancel := context.WithTimeout(root, enrichDeadline)
		defer cancel()

		if _, err := w.enrich.Run(ctx, task); err != nil {
			w.logger.Error("enrich failed, redelivering",
				"item_id", task.ItemID, "correlation_id", task.CorrelationID, "error", err)
			w.nak(msg)
			return
		}

		w.ack(msg)
	}
}

func (w *Workers) ack(msg *nats.Msg) {
	if err := msg.Ack(); err != nil {
		w.logger.Warn("ack failed", "error", err)
	}
}

func (w *Workers) nak(msg *nats.Msg) {
	if err := msg.Nak(); err != nil {
		w.logger.Warn("nak failed", "error", err)
	}
}
