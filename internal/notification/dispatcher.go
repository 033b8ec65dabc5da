package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/expense-bot/internal/core/events"
)

type Worker struct {
	ID         int
	WorkerPool chan chan Intent
	JobChannel chan Intent
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Intent, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Intent),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Intent)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("notification worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case intent := <-w.JobChannel:
				w.Logger.Debug("worker delivering intent", "worker_id", w.ID, "intent_id", intent.ID, "kind", intent.Kind)
				processFunc(intent)
			case <-ctx.Done():
				w.Logger.Debug("notification worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
}

// Dispatcher buffers intents in a bounded queue and delivers them on a worker pool
// by publishing to the event bus. Notify never blocks; a full queue drops the intent.
type Dispatcher struct {
	bus     *events.EventBus
	logger  *slog.Logger
	timeout time.Duration

	jobQueue   chan Intent
	workerPool chan chan Intent
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	stopped    atomic.Bool
	dropped    atomic.Int64
	delivered  atomic.Int64
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(bus *events.EventBus, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	timeout := config.DeliveryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		bus:        bus,
		logger:     logger,
		timeout:    timeout,
		jobQueue:   make(chan Intent, queueSize),
		workerPool: make(chan chan Intent, maxWorkers),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.deliver)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification dispatcher started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case intent := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- intent:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

// Notify enqueues the intent and returns immediately.
func (d *Dispatcher) Notify(_ context.Context, intent Intent) {
	if d.stopped.Load() {
		d.dropped.Add(1)
		d.logger.Warn("notification dropped after shutdown", "intent_id", intent.ID, "kind", intent.Kind)
		return
	}

	select {
	case d.jobQueue <- intent:
	default:
		d.dropped.Add(1)
		d.logger.Warn("notification queue full, dropping intent",
			"intent_id", intent.ID,
			"kind", intent.Kind,
			"employee_id", intent.EmployeeID)
	}
}

func (d *Dispatcher) deliver(intent Intent) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	if err := d.bus.PublishSync(ctx, intent); err != nil {
		d.logger.Warn("notification delivery failed",
			"intent_id", intent.ID,
			"kind", intent.Kind,
			"employee_id", intent.EmployeeID,
			"error", err)
		return
	}
	d.delivered.Add(1)
}

func (d *Dispatcher) Dropped() int64   { return d.dropped.Load() }
func (d *Dispatcher) Delivered() int64 { return d.delivered.Load() }

// Shutdown stops the workers; intents still queued are discarded.
func (d *Dispatcher) Shutdown() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}
	d.logger.Info("shutting down notification dispatcher", "pending", len(d.jobQueue))
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}
