package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glyphlang/glyph/pkg/codegen/symbolic"
	"github.com/glyphlang/glyph/pkg/config"
	glyphErrors "github.com/glyphlang/glyph/pkg/errors"
	"github.com/glyphlang/glyph/pkg/logging"
)

// Runner drives a fixed-size pool of workers, each pulling CompilationJobs
// off a queue and running them through symbolic.Generate - the teacher's
// channel-based worker-pool dispatch idiom applied to this job's unit of
// work instead of bytecode instructions.
type Runner struct {
	store    Store
	cache    *ArtifactCache
	metrics  *Metrics
	tracer   *Tracer
	notifier *Notifier
	logger   *logging.Logger

	queue   chan CompilationJob
	workers int
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

func WithCache(c *ArtifactCache) Option   { return func(r *Runner) { r.cache = c } }
func WithMetrics(m *Metrics) Option       { return func(r *Runner) { r.metrics = m } }
func WithTracer(t *Tracer) Option         { return func(r *Runner) { r.tracer = t } }
func WithNotifier(n *Notifier) Option     { return func(r *Runner) { r.notifier = n } }
func WithLogger(l *logging.Logger) Option { return func(r *Runner) { r.logger = l } }
func WithWorkerCount(workers int) Option  { return func(r *Runner) { r.workers = workers } }

// NewRunner builds a Runner over the given Store, with queue depth
// proportional to the worker count so Submit rarely blocks.
func NewRunner(store Store, opts ...Option) *Runner {
	r := &Runner{
		store:   store,
		workers: config.DefaultWorkerPoolSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = make(chan CompilationJob, r.workers*4)
	r.stop = make(chan struct{})
	return r
}

// Store returns the Store a caller can poll for a submitted job's record,
// e.g. a one-shot CLI invocation with no Notifier subscriber.
func (r *Runner) Store() Store { return r.store }

// Start launches the worker pool. Call Stop to shut it down.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Stop signals the workers to exit and waits for them to return. A job a
// worker is already processing finishes first; jobs still waiting in the
// queue are not drained and may be left unprocessed.
func (r *Runner) Stop() {
	close(r.stop)
	r.wg.Wait()
}

// Submit enqueues a job for generation, persisting its initial "queued"
// record before returning so a concurrent Load never misses it.
func (r *Runner) Submit(ctx context.Context, job CompilationJob) error {
	if err := r.store.Save(ctx, job, RecordFor(job, StatusQueued, "", nil, time.Now())); err != nil {
		return fmt.Errorf("persisting queued job %s: %w", job.ID, err)
	}
	if r.metrics != nil {
		r.metrics.JobSubmitted()
	}
	r.notify(job.ID, StatusQueued, nil)

	select {
	case r.queue <- job:
		return nil
	case <-r.stop:
		return fmt.Errorf("job runner is stopped")
	}
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case job, ok := <-r.queue:
			if !ok {
				return
			}
			r.process(ctx, job)
		}
	}
}

func (r *Runner) process(ctx context.Context, job CompilationJob) {
	r.notify(job.ID, StatusGenerating, nil)

	var span func(error)
	if r.tracer != nil {
		ctx, span = r.tracer.StartJobSpan(ctx, job.ID.String())
	}

	artifact, opTables, err := r.generate(job)

	if span != nil {
		span(err)
	}

	now := time.Now()
	if err != nil {
		r.logGeneratorFailure(job, err)
		if r.metrics != nil {
			r.metrics.GeneratorError(kindOf(err))
		}
		_ = r.store.Save(ctx, job, RecordFor(job, StatusFailed, "", err, now))
		r.notify(job.ID, StatusFailed, err)
		return
	}

	if r.metrics != nil {
		for i := 0; i < len(job.Decls); i++ {
			r.metrics.FunctionEmitted()
		}
		for i := 0; i < opTables; i++ {
			r.metrics.OperatorTableRegistered()
		}
	}

	_ = r.store.Save(ctx, job, RecordFor(job, StatusDone, artifact, nil, now))
	r.notify(job.ID, StatusDone, nil)
}

// generate runs the symbolic generator for a job, checking the artifact
// cache first so an unchanged resubmission never re-emits. It returns the
// manifest-prefixed artifact text and the number of distinct operator
// tables the generator registered.
func (r *Runner) generate(job CompilationJob) (string, int, error) {
	key := FingerprintKey(job.Decls, job.Config)

	if r.cache != nil {
		if cached, ok := r.cache.Get(context.Background(), key); ok {
			return cached, 0, nil
		}
	}

	symCfg := symbolic.Config{
		FileName:      job.Config.FileName,
		MainClassName: job.Config.MainClassName,
	}

	opTables := 0
	symCfg.Diagnostics = func(e symbolic.DiagnosticEntry) {
		if e.Kind == symbolic.DiagOperatorTable {
			opTables++
		}
	}

	out, err := symbolic.Generate(symCfg, job.Decls)
	if err != nil {
		return "", 0, err
	}
	out = symbolic.RuntimeManifest(symCfg) + "\n" + out

	if r.cache != nil {
		_ = r.cache.Put(context.Background(), key, out)
	}
	return out, opTables, nil
}

func (r *Runner) notify(id uuid.UUID, status Status, err error) {
	if r.notifier == nil {
		return
	}
	event := StatusEvent{JobID: id, Status: status}
	if err != nil {
		event.Error = err.Error()
	}
	r.notifier.Notify(event)
}

func kindOf(err error) string {
	var ge *symbolic.GeneratorError
	if errors.As(err, &ge) {
		return ge.Kind.String()
	}
	return "unknown"
}

func (r *Runner) logGeneratorFailure(job CompilationJob, err error) {
	if r.logger == nil {
		return
	}
	compileErr := &glyphErrors.CompileError{
		Message:  err.Error(),
		FileName: job.Config.FileName,
		Context:  fmt.Sprintf("job %s, class %s", job.ID, job.Config.MainClassName),
	}
	r.logger.ErrorWithFields("generation failed", map[string]interface{}{
		"job_id": job.ID.String(),
		"error":  compileErr.FormatError(false),
	})
}
