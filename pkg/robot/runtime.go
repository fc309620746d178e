package robot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/catalog"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/queue"
)

// Robot names a single producer: a type of enhancement and the handler
// that produces it.
type Robot struct {
	ID      string
	Type    models.EnhancementType
	Handler Handler
}

// RuntimeConfig tunes the polling loop.
type RuntimeConfig struct {
	// PollInterval is the base sleep when the queue is empty in daemon mode.
	PollInterval time.Duration
	// PollJitter adds up to +/-PollJitter of randomness to PollInterval, so
	// many runtime instances polling the same type don't thunder in lockstep.
	PollJitter time.Duration
}

// Runtime is the long-lived polling loop that drives a single Robot. It is
// a direct generalization of a typical worker/worker-pool shape: Start
// spawns a goroutine, Stop closes a channel and waits on a WaitGroup. There
// is no per-claim timeout — handlers may run for arbitrarily long, and a
// runtime killed mid-handler leaves its claimed row in PROCESSING until an
// operator revives it.
type Runtime struct {
	robot   Robot
	queue   Queue
	catalog Catalog
	writer  ArtifactWriter
	config  RuntimeConfig
	metrics Metrics

	// instanceID distinguishes concurrently-running runtimes for the same
	// robot in logs, since two operators can start the same daemon twice.
	instanceID string

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Metrics is the subset of metrics instrumentation the runtime reports to.
// A nil Metrics is valid; every method is a no-op on it (see NopMetrics).
type Metrics interface {
	ObserveClaim(robotID string, enhancementType models.EnhancementType)
	ObserveOutcome(robotID string, enhancementType models.EnhancementType, outcome string)
	ObservePoll(robotID string, duration time.Duration)
}

// NopMetrics satisfies Metrics by doing nothing; used when no metrics
// backend is wired (e.g. bounded CLI runs).
type NopMetrics struct{}

func (NopMetrics) ObserveClaim(string, models.EnhancementType)           {}
func (NopMetrics) ObserveOutcome(string, models.EnhancementType, string) {}
func (NopMetrics) ObservePoll(string, time.Duration)                     {}

// NewRuntime constructs a Runtime for the given robot.
func NewRuntime(r Robot, q Queue, c Catalog, w ArtifactWriter, cfg RuntimeConfig, m Metrics) *Runtime {
	if m == nil {
		m = NopMetrics{}
	}
	return &Runtime{
		robot:      r,
		queue:      q,
		catalog:    c,
		writer:     w,
		config:     cfg,
		metrics:    m,
		instanceID: uuid.NewString(),
		stopCh:     make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine.
func (rt *Runtime) Start(ctx context.Context) {
	rt.wg.Add(1)
	go rt.run(ctx)
}

// Stop signals the loop to exit and waits for it to finish. Safe to call
// multiple times.
func (rt *Runtime) Stop() {
	rt.stopOnce.Do(func() { close(rt.stopCh) })
	rt.wg.Wait()
}

// RunBounded runs the loop inline (no goroutine) until the queue is empty
// or ctx is cancelled, without sleeping between empty polls. It is the
// direct implementation of the CLI's --max-iterations flag and is used
// directly by tests that want deterministic, synchronous iteration.
func (rt *Runtime) RunBounded(ctx context.Context, maxIterations int) (iterations int, err error) {
	for i := 0; i < maxIterations; i++ {
		select {
		case <-ctx.Done():
			return iterations, ctx.Err()
		default:
		}

		did, err := rt.pollOnce(ctx)
		if err != nil {
			return iterations, err
		}
		if !did {
			return iterations, nil
		}
		iterations++
	}
	return iterations, nil
}

func (rt *Runtime) run(ctx context.Context) {
	defer rt.wg.Done()

	log := slog.With("robot_id", rt.robot.ID, "enhancement_type", rt.robot.Type, "instance_id", rt.instanceID)
	log.Info("robot runtime started")

	for {
		select {
		case <-rt.stopCh:
			log.Info("robot runtime stopping")
			return
		case <-ctx.Done():
			log.Info("robot runtime stopping: context cancelled")
			return
		default:
		}

		did, err := rt.pollOnce(ctx)
		if err != nil {
			// Storage-layer connection failures propagate and terminate the
			// runtime: loud failure is preferred to silent stall.
			log.Error("robot runtime terminating on storage error", "error", err)
			return
		}
		if !did {
			rt.sleep(rt.pollInterval())
		}
	}
}

func (rt *Runtime) sleep(d time.Duration) {
	select {
	case <-rt.stopCh:
	case <-time.After(d):
	}
}

// pollOnce runs one iteration: claim, load, handle, transition. Returns
// did=false when nothing was pending (the caller decides whether to sleep
// or exit). A non-nil error comes from the queue, catalog or artifact
// store (a storage failure or a rejected state transition) — handler
// errors are always converted to a Fail outcome and never surface here.
func (rt *Runtime) pollOnce(ctx context.Context) (did bool, err error) {
	start := time.Now()
	pe, err := rt.queue.ClaimNext(ctx, rt.robot.Type)
	rt.metrics.ObservePoll(rt.robot.ID, time.Since(start))
	if err != nil {
		if errors.Is(err, queue.ErrNoWorkAvailable) {
			return false, nil
		}
		return false, fmt.Errorf("robot: claim next: %w", err)
	}
	rt.metrics.ObserveClaim(rt.robot.ID, rt.robot.Type)

	doc, err := rt.catalog.GetByID(ctx, pe.DocumentID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			reason := "document no longer exists"
			if setErr := rt.queue.SetStatus(ctx, pe.ID, models.StatusDiscarded, &reason); setErr != nil {
				return true, fmt.Errorf("robot: discard vanished document: %w", setErr)
			}
			rt.metrics.ObserveOutcome(rt.robot.ID, rt.robot.Type, "discarded")
			return true, nil
		}
		return true, fmt.Errorf("robot: load document: %w", err)
	}

	outcome := rt.invoke(ctx, doc)

	if err := rt.apply(ctx, pe, outcome); err != nil {
		return true, err
	}
	return true, nil
}

// invoke calls the handler, converting a panic (Go's analogue of an
// uncaught exception) into a Fail outcome.
func (rt *Runtime) invoke(ctx context.Context, doc *models.Document) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Fail(fmt.Sprintf("%v", r))
		}
	}()
	return rt.robot.Handler.Handle(ctx, doc)
}

func (rt *Runtime) apply(ctx context.Context, pe *models.PendingEnhancement, outcome Outcome) error {
	switch outcome.kind {
	case kindProduced:
		if err := rt.queue.SetStatus(ctx, pe.ID, models.StatusImporting, nil); err != nil {
			return fmt.Errorf("robot: transition to importing: %w", err)
		}
		if _, err := rt.writer.Put(ctx, pe.DocumentID, rt.robot.Type, outcome.content, rt.robot.ID); err != nil {
			return fmt.Errorf("robot: write artifact: %w", err)
		}
		if err := rt.queue.SetStatus(ctx, pe.ID, models.StatusCompleted, nil); err != nil {
			return fmt.Errorf("robot: transition to completed: %w", err)
		}
		rt.metrics.ObserveOutcome(rt.robot.ID, rt.robot.Type, "completed")
		return nil

	case kindDiscard:
		reason := outcome.reason
		if err := rt.queue.SetStatus(ctx, pe.ID, models.StatusDiscarded, &reason); err != nil {
			return fmt.Errorf("robot: transition to discarded: %w", err)
		}
		rt.metrics.ObserveOutcome(rt.robot.ID, rt.robot.Type, "discarded")
		return nil

	case kindFail:
		reason := outcome.reason
		if err := rt.queue.SetStatus(ctx, pe.ID, models.StatusFailed, &reason); err != nil {
			return fmt.Errorf("robot: transition to failed: %w", err)
		}
		rt.metrics.ObserveOutcome(rt.robot.ID, rt.robot.Type, "failed")
		return nil

	default:
		return fmt.Errorf("robot: unknown outcome kind %d", outcome.kind)
	}
}

// pollInterval returns the poll duration with jitter applied.
func (rt *Runtime) pollInterval() time.Duration {
	base := rt.config.PollInterval
	jitter := rt.config.PollJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}
