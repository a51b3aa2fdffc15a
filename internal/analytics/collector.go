package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/kafka"
)

// Publisher ships batches of events to the analytics topic.
// *kafka.Producer satisfies it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector takes search events off the request path. Each event is
// recorded into the Aggregator and, when a Publisher is set, published in
// batches. Track never blocks; events are dropped when the buffer is full.
type Collector struct {
	aggregator    *Aggregator
	publisher     Publisher
	eventCh       chan SearchEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
	closeOnce     sync.Once

	mu      sync.Mutex
	dropped int64
}

// NewCollector builds a Collector. publisher may be nil.
func NewCollector(agg *Aggregator, publisher Publisher, cfg config.AnalyticsConfig) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	return &Collector{
		aggregator:    agg,
		publisher:     publisher,
		eventCh:       make(chan SearchEvent, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the background loop. It runs until ctx is cancelled or
// Close is called, flushing buffered events on the way out.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(batch)
					return
				}
				batch = c.handle(ctx, batch, event)
			case <-ticker.C:
				batch = c.flushCtx(ctx, batch)
			case <-ctx.Done():
				batch = c.drainRemaining(batch)
				c.flush(batch)
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"publishing", c.publisher != nil,
	)
}

func (c *Collector) Track(event SearchEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Dropped reports how many events Track discarded.
func (c *Collector) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close stops accepting events and waits for the loop to finish. Track
// must not be called after Close.
func (c *Collector) Close() {
	c.closeOnce.Do(func() { close(c.eventCh) })
	<-c.done
}

func (c *Collector) handle(ctx context.Context, batch []kafka.Event, event SearchEvent) []kafka.Event {
	if c.aggregator != nil {
		c.aggregator.Record(event)
	}
	if c.publisher == nil {
		return batch
	}
	batch = append(batch, kafka.Event{Key: string(event.Type), Value: event})
	if len(batch) >= c.batchSize {
		return c.flushCtx(ctx, batch)
	}
	return batch
}

func (c *Collector) drainRemaining(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = c.handle(context.Background(), batch, event)
		default:
			return batch
		}
	}
}

// flush publishes what is left with a short deadline of its own.
func (c *Collector) flush(batch []kafka.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.flushCtx(ctx, batch)
}

func (c *Collector) flushCtx(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if c.publisher == nil || len(batch) == 0 {
		return batch[:0]
	}
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("analytics batch publish failed",
			"batch_size", len(batch),
			"error", err,
		)
		return batch[:0]
	}
	c.logger.Debug("analytics batch published", "events", len(batch))
	return batch[:0]
}
