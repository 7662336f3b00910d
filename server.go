package pagetex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/pagetex/internal/completion"
	"github.com/gogpu/pagetex/internal/parallel"
	"github.com/gogpu/pagetex/render"
	"github.com/gogpu/pagetex/source"
	"github.com/gogpu/pagetex/texture"
	"github.com/gogpu/pagetex/world"
)

// Server runs texture jobs in the background and applies their results to
// slots of a texture.Store.
//
// A Server is driven by one control goroutine: Submit, SubmitTo,
// PollAndApply, InFlight and Close must not be called concurrently.
// WaitIdle, Running and Pending may be called from any goroutine.
type Server struct {
	store   *texture.Store
	opts    serverOptions
	builder *world.Builder
	adapter *render.Adapter

	pool  *parallel.WorkerPool
	queue completion.Queue[result]
	table jobTable

	closed bool
}

// NewServer creates a server writing into store.
func NewServer(store *texture.Store, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Server{
		store:   store,
		opts:    o,
		builder: world.NewBuilder(o.fonts),
		pool:    parallel.NewWorkerPool(o.maxInFlight),
		table:   newJobTable(),
	}
	s.adapter = render.NewAdapter(
		render.WithCompiler(o.compiler),
		render.WithRasterizer(o.rasterizer),
		render.WithLogger(s.log()),
	)
	s.log().Debug("pagetex: server started", "max_in_flight", s.pool.Limit(), "jobs_per_tick", o.jobsPerTick)
	return s
}

func (s *Server) log() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return Logger()
}

// Store returns the store results are written to.
func (s *Server) Store() *texture.Store {
	return s.store
}

// Submit allocates a new slot and starts a job rendering src into it. The
// slot holds the store's fallback texture until the job is applied.
//
// Submit never blocks. Jobs that fail static validation return an error
// wrapping ErrInvalidJob and allocate nothing; a closed server returns
// ErrServerClosed.
func (s *Server) Submit(src source.Source, opts JobOptions) (texture.Handle, JobID, error) {
	if !s.accepting() {
		return texture.InvalidHandle, 0, ErrServerClosed
	}
	inputs, err := opts.validate(src)
	if err != nil {
		return texture.InvalidHandle, 0, err
	}
	slot := s.store.Allocate()
	id, err := s.dispatch(slot, src, opts, inputs)
	if err != nil {
		_ = s.store.Release(slot)
		return texture.InvalidHandle, 0, err
	}
	return slot, id, nil
}

// SubmitTo starts a job rendering src into an existing slot. When several
// jobs target one slot, the one applied last wins.
func (s *Server) SubmitTo(slot texture.Handle, src source.Source, opts JobOptions) (JobID, error) {
	if !s.accepting() {
		return 0, ErrServerClosed
	}
	if !s.store.Valid(slot) {
		return 0, fmt.Errorf("%w: %w: %d", ErrInvalidJob, texture.ErrInvalidHandle, slot)
	}
	inputs, err := opts.validate(src)
	if err != nil {
		return 0, err
	}
	return s.dispatch(slot, src, opts, inputs)
}

func (s *Server) accepting() bool {
	return !s.closed && s.pool.IsRunning()
}

// dispatch registers a job and hands it to the pool. A job the pool
// refuses is taken back out of the table before ErrServerClosed is
// returned, so it is never counted or waited for.
func (s *Server) dispatch(slot texture.Handle, src source.Source, opts JobOptions, inputs map[string]any) (JobID, error) {
	j := &job{
		id:        s.table.nextID(),
		source:    src,
		options:   opts,
		inputs:    inputs,
		slot:      slot,
		submitted: time.Now(),
	}
	s.table.insert(j)

	t := j.task()
	if !s.pool.Go(func(ctx context.Context) {
		s.queue.Push(s.run(ctx, t))
	}) {
		s.table.take(j.id)
		return 0, ErrServerClosed
	}
	s.opts.metrics.JobSubmitted()
	s.log().Debug("pagetex: job submitted", "job_id", j.id, "source", src.String(), "slot", int(slot))
	return j.id, nil
}

// PollAndApply applies the results that have completed since the last
// call, in completion order, and removes their jobs from the server. It
// never waits for running jobs. With WithJobsPerTick, at most that many
// results are applied; the rest stay queued for the next call.
//
// A successful result replaces the slot contents in place. A failed one
// leaves the slot untouched and is logged. Both are reported in the
// returned outcomes.
func (s *Server) PollAndApply() []Outcome {
	results := s.queue.Drain(s.opts.jobsPerTick)
	if len(results) == 0 {
		return nil
	}
	outcomes := make([]Outcome, 0, len(results))
	for _, r := range results {
		j, ok := s.table.take(r.id)
		if !ok {
			s.log().Warn("pagetex: result for unknown job", "job_id", r.id)
			continue
		}
		outcomes = append(outcomes, s.apply(j, r))
	}
	return outcomes
}

func (s *Server) apply(j *job, r result) Outcome {
	out := Outcome{
		ID:      j.id,
		Slot:    j.slot,
		Page:    r.page,
		Digest:  r.digest,
		Elapsed: time.Since(j.submitted),
	}

	jerr := r.err
	if jerr == nil {
		err := s.store.Write(j.slot, texture.Image{
			Width:  r.width,
			Height: r.height,
			Pixels: r.pixels,
			Format: j.options.Format,
			Alpha:  j.options.Alpha,
		})
		if err == nil || errors.Is(err, texture.ErrHostUpload) {
			s.opts.metrics.SlotWritten()
		}
		if err != nil {
			jerr = &JobError{ID: j.id, Stage: StageApply, Kind: KindInternal, Err: err}
		}
	}

	if jerr != nil {
		out.Err = jerr
		s.opts.metrics.JobCompleted(jerr.Kind.String(), out.Elapsed)
		s.log().Error("pagetex: job failed",
			"job_id", j.id,
			"stage", jerr.Stage.String(),
			"kind", jerr.Kind.String(),
			"error", jerr.Err)
		return out
	}
	s.opts.metrics.JobCompleted("", out.Elapsed)
	s.log().Debug("pagetex: job applied",
		"job_id", j.id,
		"slot", int(j.slot),
		"page", r.page,
		"elapsed", out.Elapsed)
	return out
}

// WaitIdle blocks until every dispatched job has finished running or ctx
// is done. Finished results still need PollAndApply.
func (s *Server) WaitIdle(ctx context.Context) error {
	return s.pool.Wait(ctx)
}

// Running returns the number of jobs currently executing on a worker.
// Jobs waiting for a MaxInFlight slot are not counted. Safe to call from
// any goroutine.
func (s *Server) Running() int {
	return s.pool.Running()
}

// InFlight returns the number of jobs submitted but not yet applied.
func (s *Server) InFlight() int {
	return s.table.len()
}

// Pending returns the number of finished results waiting for
// PollAndApply.
func (s *Server) Pending() int {
	return s.queue.Len()
}

// Close stops accepting jobs and waits for running ones to finish or for
// ctx to be done. Running jobs are never interrupted. Results produced
// before or during Close can still be applied with PollAndApply.
func (s *Server) Close(ctx context.Context) error {
	if !s.closed {
		s.closed = true
		if n := s.table.len(); n > 0 {
			s.log().Info("pagetex: closing with jobs in flight",
				"jobs", s.table.ids(),
				"running", s.pool.Running(),
				"unfinished", s.pool.Pending())
		}
	}
	done := make(chan struct{})
	go func() {
		s.pool.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
