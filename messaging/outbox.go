package messaging

import (
	"context"
	"sync"
	"time"

	"bracket/metrics"
	"bracket/store"
)

const (
	drainBatch      = 50
	maxOutboxRetry  = 10
	publishDeadline = 10 * time.Second
)

// OutboxStore is the slice of the store the drainer uses.
type OutboxStore interface {
	ListPendingOutbox(limit, maxRetries int) ([]store.OutboxMessage, error)
	AckOutbox(id int64) error
	IncrementOutboxRetries(id int64) error
}

// LogFunc is a printf-style logger.
type LogFunc func(format string, args ...any)

// OutboxDrainer periodically publishes pending outbox rows to their topics.
type OutboxDrainer struct {
	db       OutboxStore
	pub      Publisher
	interval time.Duration
	logFn    LogFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewOutboxDrainer(db OutboxStore, pub Publisher, interval time.Duration, logFn LogFunc) *OutboxDrainer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxDrainer{
		db:       db,
		pub:      pub,
		interval: interval,
		logFn:    logFn,
		stopChan: make(chan struct{}),
	}
}

// Start begins the drain loop.
func (d *OutboxDrainer) Start() {
	d.wg.Add(1)
	go d.drainLoop()
}

// Stop stops the drain loop and waits for it to exit.
func (d *OutboxDrainer) Stop() {
	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
	d.wg.Wait()
}

func (d *OutboxDrainer) drainLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.Drain()
		}
	}
}

// Drain publishes one batch. It returns how many rows were acknowledged.
func (d *OutboxDrainer) Drain() int {
	if !d.pub.IsConnected() {
		return 0
	}

	msgs, err := d.db.ListPendingOutbox(drainBatch, maxOutboxRetry)
	if err != nil {
		d.logFn("outbox: list pending: %v", err)
		return 0
	}

	sent := 0
	for _, msg := range msgs {
		ctx, cancel := context.WithTimeout(context.Background(), publishDeadline)
		err := d.pub.Publish(ctx, msg.Topic, msg.Payload)
		cancel()
		if err != nil {
			metrics.OutboxPublishTotal.WithLabelValues("error").Inc()
			d.logFn("outbox: publish %s #%d (retry %d): %v", msg.MsgType, msg.ID, msg.Retries+1, err)
			if err := d.db.IncrementOutboxRetries(msg.ID); err != nil {
				d.logFn("outbox: bump retries #%d: %v", msg.ID, err)
			}
			continue
		}
		metrics.OutboxPublishTotal.WithLabelValues("ok").Inc()
		if err := d.db.AckOutbox(msg.ID); err != nil {
			d.logFn("outbox: ack #%d: %v", msg.ID, err)
			continue
		}
		sent++
	}
	return sent
}
