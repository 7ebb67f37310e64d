package reconcile

import (
	"context"
	"sync"
	"time"

	"folio/internal/domain/orders"
	"folio/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	DefaultInterval    = time.Minute
	DefaultMaxAttempts = 10
	DefaultCapacity    = 1000
)

type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Capacity    int
}

// Entry is an order write that failed after the gateway verified the payment.
type Entry struct {
	Order      orders.PaymentOrder
	Attempts   int
	LastError  string
	EnqueuedAt time.Time
}

// Writer persists a verified order together with its audit entry and follow-ups.
type Writer interface {
	Record(ctx context.Context, o orders.PaymentOrder) error
}

// Queue holds verified orders whose write failed and replays them through a Writer.
// Entries are keyed by gateway order id so a retried verify does not queue twice.
type Queue struct {
	mu      sync.Mutex
	pending map[string]*Entry
	order   []string

	writer Writer
	cfg    Config
	logger *zap.SugaredLogger
}

func NewQueue(writer Writer, cfg Config, logger *zap.SugaredLogger) *Queue {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &Queue{
		pending: make(map[string]*Entry),
		writer:  writer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Enqueue records o for a later retry. It returns false when the queue is full.
func (q *Queue) Enqueue(o orders.PaymentOrder, cause error) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.pending[o.GatewayOrderID]; ok {
		e.Order = o
		if cause != nil {
			e.LastError = cause.Error()
		}
		return true
	}
	if len(q.pending) >= q.cfg.Capacity {
		q.logger.Errorw("reconcile queue full, order needs manual reconciliation",
			"order_id", o.GatewayOrderID, "gateway", o.Gateway)
		return false
	}

	e := &Entry{Order: o, EnqueuedAt: time.Now()}
	if cause != nil {
		e.LastError = cause.Error()
	}
	q.pending[o.GatewayOrderID] = e
	q.order = append(q.order, o.GatewayOrderID)
	metrics.ReconcileQueueDepth.Set(float64(len(q.pending)))
	return true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Entry, 0, len(q.order))
	for _, id := range q.order {
		if e, ok := q.pending[id]; ok {
			out = append(out, *e)
		}
	}
	return out
}

func (q *Queue) remove(id string) {
	delete(q.pending, id)
	for i, v := range q.order {
		if v == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Drain retries every queued write once. Entries that succeed are dropped, entries that
// reach MaxAttempts are dropped with an error log, the rest stay queued.
func (q *Queue) Drain(ctx context.Context) (written, abandoned int) {
	for _, e := range q.snapshot() {
		if ctx.Err() != nil {
			break
		}

		o := e.Order
		err := q.writer.Record(ctx, o)

		q.mu.Lock()
		cur, ok := q.pending[o.GatewayOrderID]
		if !ok {
			q.mu.Unlock()
			continue
		}
		switch {
		case err == nil:
			q.remove(o.GatewayOrderID)
			written++
			q.logger.Infow("reconciled order", "order_id", o.GatewayOrderID, "gateway", o.Gateway, "attempts", cur.Attempts+1)
		default:
			cur.Attempts++
			cur.LastError = err.Error()
			if cur.Attempts >= q.cfg.MaxAttempts {
				q.remove(o.GatewayOrderID)
				abandoned++
				q.logger.Errorw("giving up on order write, reconcile manually",
					"order_id", o.GatewayOrderID, "gateway", o.Gateway, "payment_id", o.PaymentID,
					"attempts", cur.Attempts, "error", err)
			} else {
				q.logger.Warnw("order write retry failed", "order_id", o.GatewayOrderID, "attempts", cur.Attempts, "error", err)
			}
		}
		metrics.ReconcileQueueDepth.Set(float64(len(q.pending)))
		q.mu.Unlock()
	}
	return written, abandoned
}

// Schedule registers Drain on s every Interval. Overlapping runs are skipped.
func (q *Queue) Schedule(s gocron.Scheduler) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(q.cfg.Interval),
		gocron.NewTask(func() {
			if q.Len() == 0 {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Interval)
			defer cancel()
			q.Drain(ctx)
		}),
		gocron.WithName("reconcile-orders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
}
