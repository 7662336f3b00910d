package pagetex

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/gogpu/pagetex/source"
)

// run executes one job end to end on a worker goroutine. It only reads the
// task and the server's immutable collaborators; the outcome travels back
// by value.
func (s *Server) run(ctx context.Context, t task) (r result) {
	r = result{id: t.id, page: t.page}
	stage := StageLoad
	defer func() {
		if p := recover(); p != nil {
			s.log().Debug("pagetex: worker panic", "job_id", t.id, "stack", string(debug.Stack()))
			r = result{
				id:     t.id,
				page:   t.page,
				digest: r.digest,
				err: &JobError{
					ID:    t.id,
					Stage: stage,
					Kind:  KindInternal,
					Err:   fmt.Errorf("panic: %v", p),
				},
			}
		}
	}()

	log := s.log().With("job_id", t.id)
	log.Debug("pagetex: job started", "source", t.source.String())

	bundle, digest, err := source.Open(ctx, s.opts.loader, t.source)
	r.digest = digest
	if err != nil {
		r.err = sourceError(t.id, err)
		return r
	}

	stage = StageWorld
	w := s.builder.Build(bundle, t.inputs, t.fonts)

	stage = StageCompile
	res, err := s.adapter.Render(ctx, w, t.page, t.width, t.height)
	if err != nil {
		r.err = renderError(t.id, err)
		return r
	}

	r.pixels = res.Pixels
	r.width, r.height = res.Width, res.Height
	log.Debug("pagetex: job rendered", "page", res.Page, "pages", res.PageCount, "warnings", len(res.Diagnostics))
	return r
}
